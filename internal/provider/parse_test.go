package provider

import (
	"testing"

	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{
			name:   "fenced json",
			input:  "Here you go:\n```json\n{\"issues\": []}\n```\nThanks",
			want:   `{"issues": []}`,
			wantOK: true,
		},
		{
			name:   "fence without language",
			input:  "```\n[1, 2]\n```",
			want:   "[1, 2]",
			wantOK: true,
		},
		{
			name:   "fenced prose is skipped",
			input:  "```text\nnot json\n```\nthen {\"a\": 1}",
			want:   `{"a": 1}`,
			wantOK: true,
		},
		{
			name:   "bare object",
			input:  `The result is {"issues": [{"id": "1"}]} and more text {"x": 2}`,
			want:   `{"issues": [{"id": "1"}]}`,
			wantOK: true,
		},
		{
			name:   "array opens first",
			input:  `[{"id": "a"}] {"issues": []}`,
			want:   `[{"id": "a"}]`,
			wantOK: true,
		},
		{
			name:   "braces inside strings",
			input:  `{"text": "a } b", "q": "say \"{\""}`,
			want:   `{"text": "a } b", "q": "say \"{\""}`,
			wantOK: true,
		},
		{name: "unbalanced", input: `{"issues": [`, wantOK: false},
		{name: "mismatched", input: `{"issues": ]}`, wantOK: false},
		{name: "no json", input: "I could not find any issues.", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIssues(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		got, err := ParseIssues("```json\n{\"issues\": [{\"id\": \"1\", \"type\": \"grammar\", \"position\": 3.0, \"length\": 2}]}\n```")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "grammar", got[0].Type)
		assert.Equal(t, 3.0, got[0].Position)
	})

	t.Run("bare array", func(t *testing.T) {
		got, err := ParseIssues(`[{"id": "1", "type": "style"}, {"id": "2", "type": "clarity"}]`)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("empty list", func(t *testing.T) {
		got, err := ParseIssues(`{"issues": []}`)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("errors", func(t *testing.T) {
		for _, input := range []string{
			"no json here",
			`{"problems": []}`,
			`{"issues": "none"}`,
			`[{"position": "three"}]`,
		} {
			_, err := ParseIssues(input)
			assert.Error(t, err, input)
		}

		_, err := ParseIssues("nothing")
		require.ErrorIs(t, err, ErrNoJSON)
	})
}

func TestSanitize(t *testing.T) {
	text := "Their going to the store, its late."

	raws := []RawIssue{
		// exact offsets
		{ID: "1", Type: "Grammar", Text: "Their", Position: 0, Length: 5, Suggestions: []string{"They're"}},
		// wrong offsets, relocated by text
		{ID: "2", Type: "grammar", Text: "its", Position: 2, Length: 3, Suggestions: []string{"it's", ""}},
		// no text, offsets trusted
		{Type: "style", Position: 13, Length: 5, Message: " vague "},
		// unknown type
		{ID: "4", Type: "tone", Text: "late"},
		// text not present
		{ID: "5", Type: "clarity", Text: "tomorrow"},
		// out of bounds
		{ID: "6", Type: "clarity", Position: 30, Length: 20},
		// overlaps the first
		{ID: "7", Type: "style", Text: "Their going", Position: 0},
		// duplicate id
		{ID: "1", Type: "punctuation", Position: 35, Length: 0, Suggestions: []string{"!"}},
	}

	got, dropped := Sanitize(text, raws)
	assert.Equal(t, 4, dropped)

	want := []issue.Issue{
		{ID: "remote-0", Type: issue.Grammar, Message: "Grammar Issue", Text: "Their", Position: 0, Length: 5, Suggestions: []string{"They're"}},
		{ID: "remote-13", Type: issue.Style, Message: "vague", Text: "o the", Position: 13, Length: 5, Suggestions: []string{}},
		{ID: "remote-26", Type: issue.Grammar, Message: "Grammar Issue", Text: "its", Position: 26, Length: 3, Suggestions: []string{"it's"}},
		{ID: "remote-35", Type: issue.Punctuation, Message: "Punctuation", Text: "", Position: 35, Length: 0, Suggestions: []string{"!"}},
	}
	assert.Equal(t, want, got)
}

func TestSanitize_NearestOccurrence(t *testing.T) {
	text := "the cat and the dog and the bird"

	got, _ := Sanitize(text, []RawIssue{{ID: "x", Type: "style", Text: "the", Position: 22}})
	require.Len(t, got, 1)
	assert.Equal(t, 24, got[0].Position)
}

func TestSanitize_SplitsRune(t *testing.T) {
	got, dropped := Sanitize("café au lait", []RawIssue{{ID: "x", Type: "style", Position: 4, Length: 2}})
	assert.Empty(t, got)
	assert.Equal(t, 1, dropped)
}
