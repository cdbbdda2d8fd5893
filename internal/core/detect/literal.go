package detect

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/core/rules"
)

// literal reports every case-insensitive occurrence of every rule in the
// table. Occurrences may overlap each other; an occurrence whose exact range
// was already reported by an earlier rule is skipped.
func literal(text string, table rules.Table) []issue.Issue {
	var out []issue.Issue
	occupied := make(map[issue.Range]bool)

	for _, rule := range table.Rules {
		for _, pos := range matchFold(text, rule.Text) {
			rng := issue.Range{Position: pos, Length: len(rule.Text)}
			if occupied[rng] {
				continue
			}
			occupied[rng] = true

			out = append(out, issue.Issue{
				ID:          issue.MakeID(rule.ID, pos),
				Type:        rule.Type,
				Message:     rule.Message,
				Text:        text[pos:rng.End()],
				Position:    pos,
				Length:      rng.Length,
				Suggestions: slices.Clone(rule.Suggestions),
				Explanation: rule.Explanation,
			})
		}
	}
	return out
}

// matchFold returns the start of every window of text that equals needle under
// Unicode case folding. Windows start on rune boundaries and have the same
// byte length as needle.
func matchFold(text, needle string) []int {
	if needle == "" || len(needle) > len(text) {
		return nil
	}

	var hits []int
	for i := 0; i+len(needle) <= len(text); {
		window := text[i : i+len(needle)]
		if strings.EqualFold(window, needle) && (issue.Range{Position: i, Length: len(needle)}).Within(text) {
			hits = append(hits, i)
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return hits
}
