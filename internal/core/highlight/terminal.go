package highlight

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/core/styles"
)

// MarkerGlyph stands in for insertion points in terminal output.
const MarkerGlyph = "‸"

// TerminalOptions controls terminal rendering.
type TerminalOptions struct {
	// Selected is the id of an issue drawn with the selection style.
	Selected string
	// Plain disables styling; markers and selection are still shown.
	Plain bool
}

// Terminal renders segments with per-type lipgloss styles.
func Terminal(segments []Segment, opts TerminalOptions) string {
	var b strings.Builder
	for _, s := range segments {
		if !s.Annotated() {
			b.WriteString(s.Text)
			continue
		}

		text := s.Text
		style := styles.IssueStyle(s.Type)
		if s.Marker() {
			text = MarkerGlyph
			style = styles.MarkerStyle
		}
		if s.SpanID == opts.Selected {
			style = style.Inherit(styles.SelectedStyle)
		}
		if opts.Plain {
			b.WriteString(plainMark(text, s.SpanID == opts.Selected))
			continue
		}
		b.WriteString(renderLines(style, text))
	}
	return b.String()
}

// renderLines styles each line separately so newlines inside a segment do
// not get padded or carry escape codes across lines.
func renderLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func plainMark(text string, selected bool) string {
	if selected {
		return "[[" + text + "]]"
	}
	return "[" + text + "]"
}

// Legend renders one styled label per issue type with its count.
func Legend(counts map[issue.Type]int) string {
	parts := make([]string, 0, len(issue.Types))
	for _, t := range issue.Types {
		parts = append(parts, styles.BadgeStyle(t).Render(t.Label())+" "+styles.MutedStyle.Render(strconv.Itoa(counts[t])))
	}
	return strings.Join(parts, styles.DividerStyle.Render("  ·  "))
}
