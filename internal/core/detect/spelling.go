package detect

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/sajari/fuzzy"
)

// Speller decides whether a word is spelled correctly and proposes
// corrections when it is not.
type Speller interface {
	Known(word string) bool
	Suggest(word string) []string
}

// maxSpellingSuggestions caps the corrections attached to one issue.
const maxSpellingSuggestions = 3

// Dictionary is a Speller backed by a word list and a fuzzy model.
type Dictionary struct {
	words map[string]struct{}
	model *fuzzy.Model
}

// NewDictionary trains a dictionary from words. Matching is case-insensitive.
func NewDictionary(words []string) *Dictionary {
	model := fuzzy.NewModel()
	model.SetDepth(2)

	d := &Dictionary{words: make(map[string]struct{}, len(words)), model: model}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		d.words[w] = struct{}{}
		model.TrainWord(w)
	}
	return d
}

// ReadDictionary trains a dictionary from one word per line. Lines starting
// with '#' are ignored.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return NewDictionary(words), nil
}

// LoadDictionary reads a word list from disk.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadDictionary(f)
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int { return len(d.words) }

// Known reports whether word is in the dictionary.
func (d *Dictionary) Known(word string) bool {
	_, ok := d.words[strings.ToLower(word)]
	return ok
}

// Suggest returns up to three corrections, closest first.
func (d *Dictionary) Suggest(word string) []string {
	lower := strings.ToLower(word)
	suggestions := d.model.SpellCheckSuggestions(lower, maxSpellingSuggestions)
	suggestions = slices.DeleteFunc(suggestions, func(s string) bool { return s == "" || s == lower })
	if len(suggestions) > maxSpellingSuggestions {
		suggestions = suggestions[:maxSpellingSuggestions]
	}
	return suggestions
}

// spelling reports words the speller does not know. Short words and
// all-caps words (acronyms) are ignored.
func spelling(text string, sp Speller) []issue.Issue {
	var out []issue.Issue
	for _, w := range extractWords(text) {
		if utf8.RuneCountInString(w.Text) <= 2 || isAllUpper(w.Text) || sp.Known(w.Text) {
			continue
		}

		suggestions := sp.Suggest(w.Text)
		if startsUpper(w.Text) {
			for i, s := range suggestions {
				suggestions[i] = upperFirst(s)
			}
		}

		out = append(out, issue.Issue{
			ID:          issue.MakeID("spelling", w.Position),
			Type:        issue.Grammar,
			Message:     "Possible spelling mistake",
			Text:        w.Text,
			Position:    w.Position,
			Length:      w.Length,
			Suggestions: suggestions,
		})
	}
	return out
}

func isAllUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 0
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
