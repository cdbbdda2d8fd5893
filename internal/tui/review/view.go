package review

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/hay-kot/polish/internal/core/highlight"
	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/core/session"
	"github.com/hay-kot/polish/internal/core/styles"
	"github.com/mattn/go-runewidth"
)

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{
		m.viewport.View(),
		styles.DividerStyle.Render(strings.Repeat("─", max(m.width, 1))),
		m.renderDetail(),
		m.renderStatus(),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// refresh re-renders the document into the viewport and scrolls the caret
// into view.
func (m *Model) refresh() {
	before, after := splitSegments(m.ed.segments, m.ed.offset)
	opts := highlight.TerminalOptions{Selected: m.selected}

	head := highlight.Terminal(before, opts) + renderCaret(&after)
	body := head + highlight.Terminal(after, opts)

	wrap := lipgloss.NewStyle().Width(max(m.viewport.Width, 1))
	m.viewport.SetContent(wrap.Render(body))

	line := strings.Count(wrap.Render(head), "\n")
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

// renderCaret draws the caret over the first rune of after and removes that
// rune from it. At a line end or the end of the text it draws a space.
func renderCaret(after *[]highlight.Segment) string {
	for i, s := range *after {
		if s.Text == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(s.Text)
		if rest := s.Text[size:]; rest != "" {
			(*after)[i].Text = rest
		} else {
			// an emptied annotated segment would render as a marker
			*after = slices.Delete(*after, i, i+1)
		}
		if r == '\n' {
			return styles.CaretStyle.Render(" ") + "\n"
		}
		return styles.CaretStyle.Render(string(r))
	}
	return styles.CaretStyle.Render(" ")
}

// splitSegments cuts segments at a plain-text offset. Insertion markers at
// the offset stay on the left. The returned slices do not share memory with
// segments.
func splitSegments(segments []highlight.Segment, off int) (before, after []highlight.Segment) {
	pos := 0
	for i, s := range segments {
		if pos >= off && s.Text != "" {
			return slices.Clone(segments[:i]), slices.Clone(segments[i:])
		}
		end := pos + len(s.Text)
		if pos < off && off < end {
			head, tail := s, s
			head.Text = s.Text[:off-pos]
			tail.Text = s.Text[off-pos:]
			before = append(slices.Clone(segments[:i]), head)
			after = append([]highlight.Segment{tail}, segments[i+1:]...)
			return before, after
		}
		pos = end
	}
	return slices.Clone(segments), nil
}

func (m Model) renderDetail() string {
	target, ok := issue.Find(m.s.Issues(), m.selected)
	if !ok {
		return styles.MutedStyle.Render("No issue under the caret. Press tab to jump to the next one.")
	}

	var b strings.Builder
	b.WriteString(styles.BadgeStyle(target.Type).Render(target.Type.Label()))
	b.WriteString(" ")
	b.WriteString(target.Message)
	if target.Text != "" {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  %q", target.Text)))
	}

	if len(target.Suggestions) == 0 {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render("  no suggestions"))
	}
	for i, sug := range target.Suggestions {
		if i == 9 {
			break
		}
		b.WriteString("\n  ")
		b.WriteString(styles.HeaderStyle.Render(strconv.Itoa(i + 1)))
		b.WriteString(" ")
		b.WriteString(sug)
	}

	if target.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(target.Explanation))
	}
	return b.String()
}

func (m Model) renderStatus() string {
	stats := session.ComputeStats(m.ed.text, m.s.Issues())
	line, col := lineCol(m.ed.text, m.ed.offset)

	name := m.path
	if name == "" {
		name = "[stdin]"
	}
	if m.dirty {
		name += " [+]"
	}

	parts := []string{
		styles.HeaderStyle.Render(name),
		m.s.Language(),
		fmt.Sprintf("Ln %d, Col %d", line, col),
		fmt.Sprintf("%d words", stats.Words),
		highlight.Legend(stats.Counts),
	}
	out := strings.Join(parts, styles.DividerStyle.Render("  │  "))
	if m.status != "" {
		out += "\n" + styles.MutedStyle.Render(m.status)
	}
	return out
}

// lineCol returns the 1-based line and display column of offset.
func lineCol(text string, offset int) (int, int) {
	offset = min(offset, len(text))
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	return strings.Count(text[:offset], "\n") + 1, runewidth.StringWidth(text[start:offset]) + 1
}

// verticalMove moves offset dir lines up or down, keeping the display column
// where the target line is long enough.
func verticalMove(text string, offset, dir int) int {
	offset = min(offset, len(text))
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	col := runewidth.StringWidth(text[start:offset])

	var target int
	if dir < 0 {
		if start == 0 {
			return 0
		}
		target = strings.LastIndexByte(text[:start-1], '\n') + 1
	} else {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}
		target = offset + next + 1
	}

	end := strings.IndexByte(text[target:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += target
	}

	w := 0
	for i, r := range text[target:end] {
		rw := runewidth.RuneWidth(r)
		if w+rw > col {
			return target + i
		}
		w += rw
	}
	return end
}
