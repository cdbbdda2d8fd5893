// Package issue defines the issue span shared by detection, highlighting and
// editing. Offsets are byte offsets into UTF-8 text and ranges are half-open.
package issue

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Type categorizes an issue.
type Type string

const (
	Grammar        Type = "grammar"
	Style          Type = "style"
	Clarity        Type = "clarity"
	Punctuation    Type = "punctuation"
	Capitalization Type = "capitalization"
)

// Types lists every issue type in display order.
var Types = []Type{Grammar, Style, Clarity, Punctuation, Capitalization}

// IsValid reports whether t is a known issue type.
func (t Type) IsValid() bool {
	switch t {
	case Grammar, Style, Clarity, Punctuation, Capitalization:
		return true
	default:
		return false
	}
}

// Label returns the heading shown for the type in suggestion lists.
func (t Type) Label() string {
	switch t {
	case Grammar:
		return "Grammar Issue"
	case Style:
		return "Style Suggestion"
	case Clarity:
		return "Clarity Improvement"
	case Punctuation:
		return "Punctuation"
	case Capitalization:
		return "Capitalization"
	default:
		return "Suggestion"
	}
}

// ParseType converts s into a Type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown issue type %q", s)
	}
	return t, nil
}

// Range is a half-open [Position, Position+Length) interval over a text.
type Range struct {
	Position int `json:"position"`
	Length   int `json:"length"`
}

// End returns the exclusive end offset.
func (r Range) End() int { return r.Position + r.Length }

// Empty reports whether the range is an insertion point.
func (r Range) Empty() bool { return r.Length == 0 }

// Conflicts reports whether two ranges may not coexist in one span set.
// Non-empty ranges conflict when they intersect. An insertion point conflicts
// with a non-empty range only when it lies strictly inside it, so markers may
// sit on either boundary. Two insertion points conflict when they coincide.
func (r Range) Conflicts(o Range) bool {
	switch {
	case r.Empty() && o.Empty():
		return r.Position == o.Position
	case r.Empty():
		return o.Position < r.Position && r.Position < o.End()
	case o.Empty():
		return r.Position < o.Position && o.Position < r.End()
	default:
		return r.Position < o.End() && o.Position < r.End()
	}
}

// Within reports whether the range is a valid slice of text that starts and
// ends on rune boundaries.
func (r Range) Within(text string) bool {
	if r.Position < 0 || r.Length < 0 || r.End() > len(text) {
		return false
	}
	return onBoundary(text, r.Position) && onBoundary(text, r.End())
}

func onBoundary(text string, off int) bool {
	return off == len(text) || utf8.RuneStart(text[off])
}

// Issue is a single writing issue found in a text snapshot.
type Issue struct {
	ID          string   `json:"id"`
	Type        Type     `json:"type" validate:"required,oneof=grammar style clarity punctuation capitalization"`
	Message     string   `json:"message"`
	Text        string   `json:"text"`
	Position    int      `json:"position" validate:"gte=0"`
	Length      int      `json:"length" validate:"gte=0"`
	Suggestions []string `json:"suggestions"`
	Explanation string   `json:"explanation,omitempty"`

	// Scope is set when suggestions rewrite a wider region than the span, such
	// as a whole sentence. See SpliceIn.
	Scope *Range `json:"scope,omitempty"`
}

// Range returns the span covered by the issue.
func (i Issue) Range() Range { return Range{Position: i.Position, Length: i.Length} }

// End returns the exclusive end offset of the issue.
func (i Issue) End() int { return i.Position + i.Length }

// IsInsertion reports whether the issue marks a point where text is missing.
func (i Issue) IsInsertion() bool { return i.Length == 0 }

// HasSuggestions reports whether the issue can be applied.
func (i Issue) HasSuggestions() bool { return len(i.Suggestions) > 0 }

// InBounds reports whether the issue describes a valid region of text.
func (i Issue) InBounds(text string) bool { return i.Range().Within(text) }

// RuleID returns the rule identifier encoded in the issue id.
func (i Issue) RuleID() string {
	idx := strings.LastIndexByte(i.ID, '-')
	if idx < 0 {
		return i.ID
	}
	if _, err := strconv.Atoi(i.ID[idx+1:]); err != nil {
		return i.ID
	}
	return i.ID[:idx]
}

// MakeID builds the id of an issue found by ruleID at position.
func MakeID(ruleID string, position int) string {
	return ruleID + "-" + strconv.Itoa(position)
}

// Moved returns a copy of the issue shifted by delta bytes with its id
// rewritten for the new position.
func (i Issue) Moved(delta int) Issue {
	if delta == 0 {
		return i
	}
	rule := i.RuleID()
	i.Position += delta
	i.ID = MakeID(rule, i.Position)
	if i.Scope != nil {
		s := *i.Scope
		s.Position += delta
		i.Scope = &s
	}
	return i
}
