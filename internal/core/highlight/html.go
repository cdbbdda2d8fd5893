package highlight

import (
	"html"
	"strings"

	"github.com/hay-kot/polish/internal/core/issue"
)

// CSSClass returns the class applied to highlights of type t.
func CSSClass(t issue.Type) string {
	switch t {
	case issue.Grammar:
		return "grammar-error"
	case issue.Style:
		return "style-suggestion"
	case issue.Clarity:
		return "clarity-suggestion"
	case issue.Punctuation:
		return "punctuation-suggestion"
	case issue.Capitalization:
		return "capitalization-suggestion"
	default:
		return "suggestion"
	}
}

// HTML renders segments as escaped text with a span element around every
// issue. Insertion points render as empty spans with an extra "insertion"
// class. Newlines are kept as-is.
func HTML(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if !s.Annotated() {
			b.WriteString(html.EscapeString(s.Text))
			continue
		}

		class := CSSClass(s.Type)
		if s.Marker() {
			class += " insertion"
		}

		b.WriteString(`<span class="`)
		b.WriteString(class)
		b.WriteString(`" data-issue-id="`)
		b.WriteString(html.EscapeString(s.SpanID))
		b.WriteString(`" title="`)
		b.WriteString(html.EscapeString(s.Message))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(s.Text))
		b.WriteString(`</span>`)
	}
	return b.String()
}
