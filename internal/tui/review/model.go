// Package review is the interactive review screen: the document with its
// issues highlighted, a caret, and keys to apply or dismiss suggestions.
package review

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/core/session"
)

// reserved lines below the document: detail panel, status bar, help.
const chromeHeight = 8

// Options configures the review screen.
type Options struct {
	Path    string
	Text    string
	Session *session.Session
	// Remote enables the remote check key.
	Remote bool
	// Save writes the document; nil disables writing.
	Save func(text string) error
}

type refinedMsg struct {
	n   int
	err error
}

type savedMsg struct {
	err error
}

// Model is the bubbletea model of the review screen.
type Model struct {
	s      *session.Session
	ed     *editor
	path   string
	remote bool
	save   func(string) error

	keys     keyMap
	help     help.Model
	viewport viewport.Model

	selected    string
	status      string
	dirty       bool
	confirmQuit bool
	refining    bool
	width       int
	height      int
}

// New attaches a review screen to s and loads text into it.
func New(opts Options) Model {
	ed := &editor{}
	opts.Session.Attach(ed)
	opts.Session.SetText(opts.Text)
	ed.Render(opts.Session.Text(), opts.Session.Render())

	m := Model{
		s:        opts.Session,
		ed:       ed,
		path:     opts.Path,
		remote:   opts.Remote,
		save:     opts.Save,
		keys:     defaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   20 + chromeHeight,
	}
	m.selectAtCaret()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Text returns the current document text.
func (m Model) Text() string {
	return m.ed.text
}

// Dirty reports whether the document has unsaved edits.
func (m Model) Dirty() bool {
	return m.dirty
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.refresh()
		return m, nil

	case refinedMsg:
		m.refining = false
		m.ed.Render(m.s.Text(), m.s.Render())
		switch {
		case errors.Is(msg.err, session.ErrStale):
			m.status = "document changed during remote check"
		case msg.err != nil:
			m.status = "remote check failed: " + msg.err.Error()
		default:
			m.status = fmt.Sprintf("remote check added %d issue(s)", msg.n)
		}
		m.selectAtCaret()
		m.refresh()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = "write failed: " + msg.err.Error()
		} else {
			m.dirty = false
			m.status = "wrote " + m.path
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Quit) {
		m.confirmQuit = false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.dirty && !m.confirmQuit && msg.String() != "ctrl+c" {
			m.confirmQuit = true
			m.status = "unsaved changes, press q again to quit"
			m.refresh()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		m.moveCaret(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCaret(1)
	case key.Matches(msg, m.keys.Up):
		m.moveLine(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveLine(1)
	case key.Matches(msg, m.keys.Next):
		m.cycle(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycle(-1)

	case key.Matches(msg, m.keys.Apply):
		m.apply(0)
	case key.Matches(msg, m.keys.Pick):
		n, _ := strconv.Atoi(msg.String())
		m.apply(n - 1)

	case key.Matches(msg, m.keys.Dismiss):
		if m.selected != "" && m.s.Dismiss(m.selected) {
			m.ed.Render(m.s.Text(), m.s.Render())
			m.status = "dismissed " + m.selected
			m.selectAtCaret()
		}

	case key.Matches(msg, m.keys.ApplyAll):
		res := m.s.ApplyAll()
		if len(res.Applied) > 0 {
			m.dirty = true
		}
		m.status = fmt.Sprintf("applied %d suggestion(s)", len(res.Applied))
		if len(res.Skipped) > 0 {
			m.status += fmt.Sprintf(", skipped %d", len(res.Skipped))
		}
		m.selectAtCaret()

	case key.Matches(msg, m.keys.Refine):
		if !m.remote {
			m.status = "no remote provider configured"
			break
		}
		if m.refining {
			break
		}
		m.refining = true
		m.status = "checking remotely…"
		m.refresh()
		return m, refine(m.s)

	case key.Matches(msg, m.keys.Write):
		if m.save == nil {
			m.status = "writing is disabled"
			break
		}
		return m, write(m.save, m.ed.text)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.refresh()
	return m, nil
}

func refine(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		n, err := s.Refine(context.Background())
		return refinedMsg{n: n, err: err}
	}
}

func write(save func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: save(text)}
	}
}

// apply applies suggestion n of the selected issue.
func (m *Model) apply(n int) {
	target, ok := issue.Find(m.s.Issues(), m.selected)
	if !ok {
		m.status = "no issue selected"
		return
	}
	if n < 0 || n >= len(target.Suggestions) {
		if !target.HasSuggestions() {
			m.status = "nothing to apply, dismiss with d"
		}
		return
	}

	if m.s.Apply(target.ID, target.Suggestions[n]) {
		m.dirty = true
		m.status = fmt.Sprintf("applied %q", target.Suggestions[n])
	}
	m.selectAtCaret()
}

func (m *Model) moveCaret(dir int) {
	text, off := m.ed.text, m.ed.offset
	switch {
	case dir < 0 && off > 0:
		_, size := utf8.DecodeLastRuneInString(text[:off])
		m.ed.offset = off - size
	case dir > 0 && off < len(text):
		_, size := utf8.DecodeRuneInString(text[off:])
		m.ed.offset = off + size
	}
	m.selectAtCaret()
}

func (m *Model) moveLine(dir int) {
	m.ed.offset = verticalMove(m.ed.text, m.ed.offset, dir)
	m.selectAtCaret()
}

// cycle selects the next or previous issue, wrapping around, and moves the
// caret to it.
func (m *Model) cycle(dir int) {
	issues := m.s.Issues()
	if len(issues) == 0 {
		m.selected = ""
		m.status = "no issues"
		return
	}

	idx := -1
	for i, is := range issues {
		if is.ID == m.selected {
			idx = i
			break
		}
	}

	switch {
	case idx >= 0:
		idx = (idx + dir + len(issues)) % len(issues)
	case dir > 0:
		idx = 0
		for i, is := range issues {
			if is.Position >= m.ed.offset {
				idx = i
				break
			}
		}
	default:
		idx = len(issues) - 1
		for i := len(issues) - 1; i >= 0; i-- {
			if issues[i].Position < m.ed.offset {
				idx = i
				break
			}
		}
	}

	m.selected = issues[idx].ID
	m.ed.offset = issues[idx].Position
}

// selectAtCaret selects the issue under the caret, if any.
func (m *Model) selectAtCaret() {
	m.selected = ""
	off := m.ed.offset
	for _, is := range m.s.Issues() {
		if is.Position == off || (is.Position < off && off < is.End()) {
			m.selected = is.ID
			return
		}
	}
}
