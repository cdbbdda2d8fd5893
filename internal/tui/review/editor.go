package review

import (
	"github.com/hay-kot/polish/internal/core/caret"
	"github.com/hay-kot/polish/internal/core/highlight"
)

// editor is the view's copy of the document. The session redraws it after
// its own edits and restores the caret into it, so it must never call back
// into the session.
type editor struct {
	text     string
	segments []highlight.Segment
	offset   int
}

func (e *editor) PlainText() string { return e.text }

func (e *editor) CaretOffset() (int, bool) { return e.offset, true }

func (e *editor) SetCaret(p caret.Position) {
	e.offset = caret.Offset(e.segments, p)
}

func (e *editor) Render(text string, segments []highlight.Segment) {
	e.text = text
	e.segments = segments
	e.offset = min(e.offset, len(text))
}
