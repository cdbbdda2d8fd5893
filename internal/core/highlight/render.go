// Package highlight turns a text and its issues into an ordered sequence of
// plain and annotated segments, and renders that sequence for a terminal or
// as HTML.
package highlight

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hay-kot/polish/internal/core/issue"
)

// Segment is a contiguous piece of the rendered text. Plain segments have an
// empty SpanID. An annotated segment with empty Text is an insertion marker.
type Segment struct {
	Text     string     `json:"text"`
	SpanID   string     `json:"span_id,omitempty"`
	Type     issue.Type `json:"type,omitempty"`
	Message  string     `json:"message,omitempty"`
	Position int        `json:"position"`
}

// Annotated reports whether the segment belongs to an issue.
func (s Segment) Annotated() bool { return s.SpanID != "" }

// Marker reports whether the segment is an insertion point.
func (s Segment) Marker() bool { return s.Annotated() && s.Text == "" }

// Render splits text into segments around the given issues. Issues are
// considered right to left (by descending position, then descending length);
// an issue that is out of bounds, splits a rune, or conflicts with an issue
// already accepted is skipped. Offsets always refer to text as given.
func Render(text string, issues []issue.Issue) []Segment {
	ordered := slices.Clone(issues)
	slices.SortStableFunc(ordered, func(a, b issue.Issue) int {
		if c := cmp.Compare(b.Position, a.Position); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Length, a.Length); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	accepted := make([]issue.Issue, 0, len(ordered))
	for _, is := range ordered {
		if !is.InBounds(text) {
			continue
		}
		if slices.ContainsFunc(accepted, func(a issue.Issue) bool { return a.Range().Conflicts(is.Range()) }) {
			continue
		}
		accepted = append(accepted, is)
	}

	// accepted is right to left; build back to front and reverse.
	segments := make([]Segment, 0, 2*len(accepted)+1)
	cursor := len(text)
	for _, is := range accepted {
		if is.End() < cursor {
			segments = append(segments, Segment{Text: text[is.End():cursor], Position: is.End()})
		}
		segments = append(segments, Segment{
			Text:     text[is.Position:is.End()],
			SpanID:   is.ID,
			Type:     is.Type,
			Message:  is.Message,
			Position: is.Position,
		})
		cursor = is.Position
	}
	if cursor > 0 {
		segments = append(segments, Segment{Text: text[:cursor], Position: 0})
	}
	slices.Reverse(segments)
	return segments
}

// PlainText concatenates the text of every segment.
func PlainText(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Accepted returns the ids of annotated segments in order.
func Accepted(segments []Segment) []string {
	var ids []string
	for _, s := range segments {
		if s.Annotated() {
			ids = append(ids, s.SpanID)
		}
	}
	return ids
}
