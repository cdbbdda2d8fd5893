package detect

import (
	"strings"
	"testing"

	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/core/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqRand replays a fixed sequence of values.
type seqRand struct {
	vals []int
	i    int
}

func (s *seqRand) IntN(n int) int {
	v := s.vals[s.i%len(s.vals)] % n
	s.i++
	return v
}

func newDetector(t *testing.T, opts Options) *Detector {
	t.Helper()
	reg, err := rules.Builtin()
	require.NoError(t, err)
	return New(reg, opts)
}

func assertValidSet(t *testing.T, text string, found []issue.Issue) {
	t.Helper()
	for _, is := range found {
		assert.GreaterOrEqual(t, is.Position, 0, is.ID)
		assert.LessOrEqual(t, is.End(), len(text), is.ID)
		assert.True(t, is.InBounds(text), "%s is on rune boundaries", is.ID)
		assert.Equal(t, text[is.Position:is.End()], is.Text, is.ID)
	}
	assert.False(t, issue.Overlapping(found), "issues must not overlap")
}

func byID(found []issue.Issue) map[string]issue.Issue {
	m := make(map[string]issue.Issue, len(found))
	for _, is := range found {
		m[is.ID] = is
	}
	return m
}

func TestDetect_Empty(t *testing.T) {
	d := newDetector(t, Options{Fallback: true})

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		found := d.Detect(text, "en-us")
		assert.NotNil(t, found)
		assert.Empty(t, found)
	}
}

func TestDetect_GrammarAndCapitalization(t *testing.T) {
	d := newDetector(t, Options{})
	text := "they was going. this is important"

	found := d.Detect(text, "en-us")
	assertValidSet(t, text, found)

	ids := byID(found)

	grammar, ok := ids["they-was-0"]
	require.True(t, ok, "grammar issue at 0")
	assert.Equal(t, issue.Grammar, grammar.Type)
	assert.Equal(t, "they was", grammar.Text)
	assert.Equal(t, 8, grammar.Length)
	assert.Equal(t, []string{"they were"}, grammar.Suggestions)

	_, ok = ids["capitalization-0"]
	assert.False(t, ok, "capitalization at 0 overlaps the grammar issue")

	capital, ok := ids["capitalization-16"]
	require.True(t, ok, "capitalization issue on the second sentence")
	assert.Equal(t, issue.Capitalization, capital.Type)
	assert.Equal(t, 1, capital.Length)
	require.NotEmpty(t, capital.Suggestions)
	assert.True(t, strings.HasPrefix(capital.Suggestions[0], "This"))

	punct, ok := ids["end-punctuation-33"]
	require.True(t, ok)
	assert.True(t, punct.IsInsertion())
}

func TestDetect_MissingPunctuation(t *testing.T) {
	d := newDetector(t, Options{Fallback: true})
	text := "The report is due tomorrow"

	found := d.Detect(text, "en-us")
	require.Len(t, found, 1)

	is := found[0]
	assert.Equal(t, issue.Punctuation, is.Type)
	assert.Equal(t, 0, is.Length)
	assert.Equal(t, len(text), is.Position)
	assert.Equal(t, []string{"The report is due tomorrow."}, is.Suggestions)
}

func TestDetect_FixedMatchIsNotReported(t *testing.T) {
	d := newDetector(t, Options{})
	text := "They was late. We left in order to eat."

	found := d.Detect(text, "en-us")
	assertValidSet(t, text, found)

	target, ok := byID(found)["in-order-to-23"]
	require.True(t, ok)

	fixed := target.SpliceIn(text, target.Suggestions[0]).Apply(text)
	assert.Equal(t, "They was late. We left to eat.", fixed)

	for _, is := range d.Detect(fixed, "en-us") {
		assert.NotEqual(t, "in-order-to", is.RuleID())
	}
}

func TestDetect_CaseInsensitiveKeepsTextCasing(t *testing.T) {
	d := newDetector(t, Options{})
	text := "They Was late. THEY WAS tired."

	found := d.Detect(text, "en-us")
	assertValidSet(t, text, found)

	ids := byID(found)
	assert.Equal(t, "They Was", ids["they-was-0"].Text)
	assert.Equal(t, "THEY WAS", ids["they-was-15"].Text)
}

func TestDetect_Languages(t *testing.T) {
	d := newDetector(t, Options{})

	tests := []struct {
		name string
		text string
		lang string
		want string
	}{
		{name: "british spelling", text: "The color is red.", lang: "en-gb", want: "color-4"},
		{name: "spanish", text: "Vivo en el casa grande.", lang: "es", want: "el-casa-8"},
		{name: "spanish region", text: "Vivo en el casa grande.", lang: "es-MX", want: "el-casa-8"},
		{name: "french", text: "Il y a le table.", lang: "fr", want: "le-table-7"},
		{name: "unknown falls back", text: "They was here.", lang: "tlh", want: "they-was-0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := d.Detect(tt.text, tt.lang)
			assertValidSet(t, tt.text, found)
			_, ok := byID(found)[tt.want]
			assert.True(t, ok, "expected %s in %v", tt.want, found)
		})
	}

	assert.Empty(t, d.Detect("The color is red.", "en-us"), "color is only flagged for en-gb")
}

func TestDetect_OverlappingOccurrences(t *testing.T) {
	reg := rules.NewRegistry(rules.Table{
		Language: rules.DefaultLanguage,
		Rules: []rules.Rule{
			{ID: "aa", Text: "aa", Type: issue.Style, Suggestions: []string{"a"}},
			{ID: "aa-again", Text: "AA", Type: issue.Clarity},
		},
	})
	d := New(reg, Options{})
	text := "Say aaa."

	found := d.Detect(text, "en-us")
	assertValidSet(t, text, found)
	require.Len(t, found, 1)
	assert.Equal(t, "aa-4", found[0].ID)
}

func TestDetect_Unicode(t *testing.T) {
	d := newDetector(t, Options{})
	text := "élan vital. ça va bien"

	found := d.Detect(text, "fr")
	assertValidSet(t, text, found)

	ids := byID(found)
	first := ids["capitalization-0"]
	assert.Equal(t, 2, first.Length)
	assert.Equal(t, []string{"Élan vital."}, first.Suggestions)

	second := ids["capitalization-13"]
	assert.Equal(t, "Ça va bien", second.Suggestions[0])

	_, ok := ids[issue.MakeID("end-punctuation", len(text))]
	assert.True(t, ok)
}

func TestDetect_Fallback(t *testing.T) {
	text := "The weather today is pleasant and calm."

	t.Run("disabled", func(t *testing.T) {
		d := newDetector(t, Options{})
		assert.Empty(t, d.Detect(text, "en-us"))
	})

	t.Run("enabled", func(t *testing.T) {
		d := newDetector(t, Options{Fallback: true, Rand: &seqRand{vals: []int{1, 1}}})
		found := d.Detect(text, "en-us")
		assertValidSet(t, text, found)
		require.Len(t, found, 1)

		is := found[0]
		assert.Equal(t, "fallback-4", is.ID)
		assert.Equal(t, issue.Style, is.Type)
		assert.Equal(t, "weather", is.Text)
		assert.Equal(t, []string{"weather (improved)"}, is.Suggestions)
		assert.Equal(t, "This is a demonstration issue.", is.Explanation)
	})

	t.Run("templates", func(t *testing.T) {
		want := map[issue.Type]string{
			issue.Grammar:        "The",
			issue.Style:          "The (improved)",
			issue.Clarity:        "Clearer The",
			issue.Punctuation:    "The,",
			issue.Capitalization: "the",
		}
		for i, typ := range issue.Types {
			d := newDetector(t, Options{Fallback: true, Rand: &seqRand{vals: []int{0, i}}})
			found := d.Detect(text, "en-us")
			require.Len(t, found, 1)
			assert.Equal(t, typ, found[0].Type)
			assert.Equal(t, want[typ], found[0].Suggestions[0])
		}
	})

	t.Run("short text", func(t *testing.T) {
		d := newDetector(t, Options{Fallback: true})
		assert.Empty(t, d.Detect("All good here.", "en-us"))
	})

	t.Run("not when issues exist", func(t *testing.T) {
		d := newDetector(t, Options{Fallback: true})
		for _, is := range d.Detect("the weather today is pleasant and calm.", "en-us") {
			assert.NotEqual(t, "fallback", is.RuleID())
		}
	})
}

func TestDetect_Spelling(t *testing.T) {
	dict := NewDictionary([]string{"the", "cat", "sat", "on", "mat"})
	d := newDetector(t, Options{Speller: dict})
	text := "Teh cat sat on the mat with NASA."

	found := d.Detect(text, "en-us")
	assertValidSet(t, text, found)

	ids := byID(found)
	spell, ok := ids["spelling-0"]
	require.True(t, ok)
	assert.Equal(t, issue.Grammar, spell.Type)
	assert.Equal(t, "Possible spelling mistake", spell.Message)
	assert.Contains(t, spell.Suggestions, "The")

	_, ok = ids["spelling-28"]
	assert.False(t, ok, "acronyms are ignored")
	_, ok = ids["spelling-23"]
	assert.True(t, ok, "unknown word 'with' is reported")
}

type panicSpeller struct{}

func (panicSpeller) Known(string) bool       { panic("boom") }
func (panicSpeller) Suggest(string) []string { return nil }

func TestDetect_RecoversFromPanics(t *testing.T) {
	d := newDetector(t, Options{Speller: panicSpeller{}})

	found := d.Detect("Something long enough to check.", "en-us")
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestDetect_Deterministic(t *testing.T) {
	d := newDetector(t, Options{})
	text := "mistakes were made. it was absolutely essential in order to win"

	first := d.Detect(text, "en-us")
	assertValidSet(t, text, first)
	for range 5 {
		assert.Equal(t, first, d.Detect(text, "en-us"))
	}
}
