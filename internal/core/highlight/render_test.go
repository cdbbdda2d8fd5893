package highlight

import (
	"strings"
	"testing"

	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(id string, typ issue.Type, pos, length int) issue.Issue {
	return issue.Issue{ID: id, Type: typ, Message: "msg " + id, Position: pos, Length: length}
}

func TestRender(t *testing.T) {
	text := "they was going. this is important"
	issues := []issue.Issue{
		span("they-was-0", issue.Grammar, 0, 8),
		span("capitalization-16", issue.Capitalization, 16, 1),
		span("end-punctuation-33", issue.Punctuation, 33, 0),
	}

	segs := Render(text, issues)

	assert.Equal(t, text, PlainText(segs))
	assert.Equal(t, []string{"they-was-0", "capitalization-16", "end-punctuation-33"}, Accepted(segs))

	want := []Segment{
		{Text: "they was", SpanID: "they-was-0", Type: issue.Grammar, Message: "msg they-was-0", Position: 0},
		{Text: " going. ", Position: 8},
		{Text: "t", SpanID: "capitalization-16", Type: issue.Capitalization, Message: "msg capitalization-16", Position: 16},
		{Text: "his is important", Position: 17},
		{Text: "", SpanID: "end-punctuation-33", Type: issue.Punctuation, Message: "msg end-punctuation-33", Position: 33},
	}
	assert.Equal(t, want, segs)
	assert.True(t, segs[4].Marker())
}

func TestRender_DropsInvalidAndOverlapping(t *testing.T) {
	text := "héllo world"

	tests := []struct {
		name   string
		issues []issue.Issue
		want   []string
	}{
		{
			name:   "negative position",
			issues: []issue.Issue{span("neg", issue.Style, -1, 2)},
			want:   nil,
		},
		{
			name:   "past the end",
			issues: []issue.Issue{span("long", issue.Style, 8, 10)},
			want:   nil,
		},
		{
			name:   "splits a rune",
			issues: []issue.Issue{span("mid", issue.Style, 2, 1)},
			want:   nil,
		},
		{
			name: "later position wins",
			issues: []issue.Issue{
				span("a", issue.Style, 0, 6),
				span("b", issue.Grammar, 4, 4),
			},
			want: []string{"b"},
		},
		{
			name: "longer wins at same position",
			issues: []issue.Issue{
				span("short", issue.Style, 7, 2),
				span("long", issue.Grammar, 7, 5),
			},
			want: []string{"long"},
		},
		{
			name: "marker on boundary survives",
			issues: []issue.Issue{
				span("word", issue.Style, 7, 5),
				span("mark", issue.Punctuation, 7, 0),
			},
			want: []string{"mark", "word"},
		},
		{
			name: "enclosing span loses to a marker strictly inside",
			issues: []issue.Issue{
				span("word", issue.Style, 7, 5),
				span("mark", issue.Punctuation, 9, 0),
			},
			want: []string{"mark"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Render(text, tt.issues)
			assert.Equal(t, text, PlainText(segs))
			assert.Equal(t, tt.want, Accepted(segs))
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	text := "one two three four"
	issues := []issue.Issue{
		span("c", issue.Clarity, 8, 5),
		span("a", issue.Grammar, 0, 3),
		span("x", issue.Style, 2, 4),
		span("b", issue.Style, 4, 3),
	}

	first := Render(text, issues)
	for range 5 {
		assert.Equal(t, first, Render(text, issues))
	}

	reversed := []issue.Issue{issues[3], issues[2], issues[1], issues[0]}
	assert.Equal(t, first, Render(text, reversed), "input order does not matter")
}

func TestRender_Empty(t *testing.T) {
	assert.Empty(t, Render("", nil))

	segs := Render("plain", nil)
	require.Len(t, segs, 1)
	assert.False(t, segs[0].Annotated())
}

func TestHTML(t *testing.T) {
	text := `a <b> & "c"`
	segs := Render(text, []issue.Issue{
		{ID: "g-2", Type: issue.Grammar, Message: `say "b"`, Position: 2, Length: 3},
		{ID: "p-11", Type: issue.Punctuation, Message: "end", Position: 11, Length: 0},
	})

	out := HTML(segs)
	assert.Equal(t,
		`a <span class="grammar-error" data-issue-id="g-2" title="say &#34;b&#34;">&lt;b&gt;</span> &amp; &#34;c&#34;`+
			`<span class="punctuation-suggestion insertion" data-issue-id="p-11" title="end"></span>`,
		out)
}

func TestCSSClass(t *testing.T) {
	seen := map[string]bool{}
	for _, typ := range issue.Types {
		class := CSSClass(typ)
		assert.NotEmpty(t, class)
		assert.False(t, seen[class], "class %s is unique", class)
		seen[class] = true
	}
	assert.Equal(t, "clarity-suggestion", CSSClass(issue.Clarity))
}

func TestTerminalPlain(t *testing.T) {
	text := "teh end"
	segs := Render(text, []issue.Issue{
		span("s-0", issue.Grammar, 0, 3),
		span("p-7", issue.Punctuation, 7, 0),
	})

	out := Terminal(segs, TerminalOptions{Plain: true, Selected: "p-7"})
	assert.Equal(t, "[teh] end[["+MarkerGlyph+"]]", out)
}

func TestTerminalStyled(t *testing.T) {
	segs := Render("line one\nline two", []issue.Issue{span("x-5", issue.Style, 5, 8)})

	out := Terminal(segs, TerminalOptions{})
	assert.Equal(t, 1, strings.Count(out, "\n"), "newlines are preserved")
	assert.Contains(t, out, "line ")
}
