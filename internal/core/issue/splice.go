package issue

import (
	"slices"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Splice is a concrete text replacement: Length bytes at Position are
// replaced with Text.
type Splice struct {
	Position int
	Length   int
	Text     string
}

// End returns the exclusive end of the replaced region in the original text.
func (s Splice) End() int { return s.Position + s.Length }

// Delta returns the change in text length caused by the splice.
func (s Splice) Delta() int { return len(s.Text) - s.Length }

// Range returns the replaced region.
func (s Splice) Range() Range { return Range{Position: s.Position, Length: s.Length} }

// Apply returns text with the splice applied. The splice must be in bounds.
func (s Splice) Apply(text string) string {
	return text[:s.Position] + s.Text + text[s.End():]
}

// SpliceIn converts replacement into the splice it produces in text.
//
// A replacement that is one of the issue's own suggestions, on an issue with a
// scope, describes the whole scope after the fix. It is reduced to the minimal
// differing region so the splice lines up with the span (a capitalised first
// letter, an inserted full stop). Any other replacement overwrites the span.
func (i Issue) SpliceIn(text, replacement string) Splice {
	direct := Splice{Position: i.Position, Length: i.Length, Text: replacement}
	if i.Scope == nil || !i.Scope.Within(text) || !slices.Contains(i.Suggestions, replacement) {
		return direct
	}

	scoped := text[i.Scope.Position:i.Scope.End()]
	prefix, suffix := commonAffixes(scoped, replacement)
	return Splice{
		Position: i.Scope.Position + prefix,
		Length:   len(scoped) - prefix - suffix,
		Text:     replacement[prefix : len(replacement)-suffix],
	}
}

// Localize rewrites scoped suggestions as plain replacements for the span so
// the issue survives edits that touch its scope but not its span. Suggestions
// whose change falls outside the span are dropped.
func (i Issue) Localize(text string) Issue {
	if i.Scope == nil {
		return i
	}
	if !i.InBounds(text) {
		i.Scope = nil
		return i
	}

	local := make([]string, 0, len(i.Suggestions))
	for _, s := range i.Suggestions {
		sp := i.SpliceIn(text, s)
		if sp.Position < i.Position || sp.End() > i.End() {
			continue
		}
		local = append(local, text[i.Position:sp.Position]+sp.Text+text[sp.End():i.End()])
	}
	i.Suggestions = local
	i.Scope = nil
	return i
}

var dmp = diffmatchpatch.New()

// commonAffixes returns the byte lengths of the shared prefix and suffix of a
// and b. The two never overlap in either string.
func commonAffixes(a, b string) (prefix, suffix int) {
	prefixRunes := dmp.DiffCommonPrefix(a, b)
	prefix = runeBytes(a, prefixRunes)

	suffixRunes := dmp.DiffCommonSuffix(a[prefix:], b[prefix:])
	suffix = len(a) - runeOffsetFromEnd(a, suffixRunes)
	return prefix, suffix
}

// runeBytes returns the byte length of the first n runes of s.
func runeBytes(s string, n int) int {
	off := 0
	for ; n > 0 && off < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}

// runeOffsetFromEnd returns the byte offset where the last n runes of s begin.
func runeOffsetFromEnd(s string, n int) int {
	off := len(s)
	for ; n > 0 && off > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:off])
		off -= size
	}
	return off
}
