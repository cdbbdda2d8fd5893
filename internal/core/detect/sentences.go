package detect

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hay-kot/polish/internal/core/issue"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	capitalizationRule = "capitalization"
	punctuationRule    = "end-punctuation"
)

// closers may follow a terminator without ending the sentence early.
const closers = "\"')]}”’»"

// splitSentences returns the trimmed byte range of every sentence in text.
// A sentence ends at whitespace that follows '.', '!' or '?' (optionally
// behind closing quotes or brackets), or at a blank line.
func splitSentences(text string) []issue.Range {
	var out []issue.Range

	start := -1
	last := 0 // end of the last non-space rune
	newlines := 0
	emit := func() {
		if start >= 0 {
			out = append(out, issue.Range{Position: start, Length: last - start})
		}
		start = -1
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			if r == '\n' {
				newlines++
			}
			if start >= 0 && (newlines >= 2 || terminated(text[start:last])) {
				emit()
			}
		} else {
			newlines = 0
			if start < 0 {
				start = i
			}
			last = i + size
		}
		i += size
	}
	emit()
	return out
}

// terminated reports whether s ends with sentence-final punctuation.
func terminated(s string) bool {
	s = strings.TrimRight(s, closers)
	r, _ := utf8.DecodeLastRuneInString(s)
	return r == '.' || r == '!' || r == '?'
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// structural applies the sentence-boundary rules: capitalization of the first
// letter and terminal punctuation. Suggestions rewrite the whole sentence and
// carry it as their scope.
func structural(text, lang string) []issue.Issue {
	upper := cases.Upper(language.Make(lang))

	var out []issue.Issue
	for _, rng := range splitSentences(text) {
		sentence := text[rng.Position:rng.End()]
		scope := rng

		first, size := utf8.DecodeRuneInString(sentence)
		if unicode.IsLower(first) {
			out = append(out, issue.Issue{
				ID:          issue.MakeID(capitalizationRule, rng.Position),
				Type:        issue.Capitalization,
				Message:     "Sentence should start with a capital letter",
				Text:        sentence[:size],
				Position:    rng.Position,
				Length:      size,
				Suggestions: []string{upper.String(sentence[:size]) + sentence[size:]},
				Explanation: "The first word of a sentence is capitalized.",
				Scope:       &scope,
			})
		}

		if !terminated(sentence) && hasLetter(sentence) {
			out = append(out, issue.Issue{
				ID:          issue.MakeID(punctuationRule, rng.End()),
				Type:        issue.Punctuation,
				Message:     "Sentence is missing end punctuation",
				Text:        "",
				Position:    rng.End(),
				Length:      0,
				Suggestions: []string{sentence + "."},
				Explanation: "End the sentence with a period, question mark, or exclamation point.",
				Scope:       &scope,
			})
		}
	}
	return out
}
