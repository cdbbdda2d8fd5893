package detect

import (
	"unicode"
	"unicode/utf8"

	"github.com/hay-kot/polish/internal/core/issue"
)

// word is a run of letters (with inner apostrophes) and its byte range.
type word struct {
	Text string
	issue.Range
}

// extractWords tokenizes text into words. Apostrophes only continue a word
// that has already started, and trailing apostrophes are not part of it.
func extractWords(text string) []word {
	var words []word

	start := -1
	end := 0 // end of the last letter in the current word
	flush := func() {
		if start >= 0 && end > start {
			words = append(words, word{
				Text:  text[start:end],
				Range: issue.Range{Position: start, Length: end - start},
			})
		}
		start = -1
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r != utf8.RuneError && unicode.IsLetter(r):
			if start < 0 {
				start = i
			}
			end = i + size
		case (r == '\'' || r == '’') && start >= 0:
		default:
			flush()
		}
		i += size
	}
	flush()
	return words
}
