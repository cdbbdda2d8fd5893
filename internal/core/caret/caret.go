// Package caret keeps a text cursor in place across re-renders. A caret is
// saved as a byte offset into the plain text of an editable region, which
// does not change when the region is rebuilt from a new segment sequence,
// and restored by walking the new segments.
package caret

import (
	"unicode/utf8"

	"github.com/hay-kot/polish/internal/core/highlight"
	"github.com/hay-kot/polish/internal/core/issue"
)

// Position addresses a caret inside a segment sequence: a segment index and a
// byte offset within that segment's text.
type Position struct {
	Segment int
	Offset  int
}

// Ref is a saved caret. The zero value means no caret was saved.
type Ref struct {
	Offset int
	valid  bool
}

// At returns a Ref for a known offset.
func At(offset int) Ref { return Ref{Offset: max(offset, 0), valid: true} }

// Valid reports whether the Ref holds a caret.
func (r Ref) Valid() bool { return r.valid }

// Editable is an editable region that can report and place a caret.
type Editable interface {
	PlainText() string
	// CaretOffset returns the caret's byte offset in PlainText, or false when
	// the region has no caret.
	CaretOffset() (int, bool)
	SetCaret(Position)
}

// Save captures the caret of ed. The offset is clamped to the text and moved
// back to the start of the rune it falls in.
func Save(ed Editable) Ref {
	off, ok := ed.CaretOffset()
	if !ok {
		return Ref{}
	}
	text := ed.PlainText()
	return At(snap(text, min(max(off, 0), len(text))))
}

// Locate maps ref onto segments. Text-bearing segments own the half-open
// range of offsets they cover; an offset at or past the end of the text lands
// at the end of the last text-bearing segment. Without a saved caret or any
// text the caret goes to the start of the region.
func Locate(segments []highlight.Segment, ref Ref) Position {
	if !ref.valid {
		return Position{}
	}

	last := -1
	start := 0
	for i, s := range segments {
		if s.Text == "" {
			continue
		}
		end := start + len(s.Text)
		if ref.Offset < end {
			return Position{Segment: i, Offset: snap(s.Text, ref.Offset-start)}
		}
		last = i
		start = end
	}

	if last < 0 {
		return Position{}
	}
	return Position{Segment: last, Offset: len(segments[last].Text)}
}

// Restore places the caret of ed at ref within segments and returns where it
// was placed.
func Restore(ed Editable, segments []highlight.Segment, ref Ref) Position {
	pos := Locate(segments, ref)
	ed.SetCaret(pos)
	return pos
}

// Offset converts a Position back into a plain-text offset. Out of range
// positions are clamped.
func Offset(segments []highlight.Segment, pos Position) int {
	off := 0
	for i, s := range segments {
		if i == pos.Segment {
			return off + min(max(pos.Offset, 0), len(s.Text))
		}
		off += len(s.Text)
	}
	return off
}

// Shift moves ref across a replacement of removed bytes at `at` by inserted
// bytes. A caret inside the replaced region ends up after the inserted text.
func Shift(ref Ref, at, removed, inserted int) Ref {
	if !ref.valid {
		return ref
	}
	switch {
	case ref.Offset <= at:
		return ref
	case ref.Offset >= at+removed:
		return At(ref.Offset + inserted - removed)
	default:
		return At(at + inserted)
	}
}

// ShiftSplice is Shift for an applied splice.
func ShiftSplice(ref Ref, sp issue.Splice) Ref {
	return Shift(ref, sp.Position, sp.Length, len(sp.Text))
}

// snap moves off back to the nearest rune start in s.
func snap(s string, off int) int {
	for off > 0 && off < len(s) && !utf8.RuneStart(s[off]) {
		off--
	}
	return off
}
