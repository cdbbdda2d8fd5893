// Package styles provides shared lipgloss styles for CLI and TUI output.
package styles

import (
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/hay-kot/polish/internal/core/issue"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	HeaderStyle  lipgloss.Style
	MutedStyle   lipgloss.Style
	DividerStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style

	// MarkerStyle draws insertion points, which cover no text.
	MarkerStyle lipgloss.Style
	// SelectedStyle is layered over the issue under the cursor in the TUI.
	SelectedStyle lipgloss.Style
	CaretStyle    lipgloss.Style

	HelpStyle  lipgloss.Style
	PanelStyle lipgloss.Style
)

// issueStyles maps issue types to their highlight style.
var issueStyles map[issue.Type]lipgloss.Style

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	MutedStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	ErrorStyle = lipgloss.NewStyle().
		Foreground(p.Error)
	SuccessStyle = lipgloss.NewStyle().
		Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().
		Foreground(p.Warning)

	MarkerStyle = lipgloss.NewStyle().
		Foreground(p.Warning).
		Bold(true)
	SelectedStyle = lipgloss.NewStyle().
		Background(p.Surface).
		Bold(true)

	CaretStyle = lipgloss.NewStyle().
		Reverse(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)

	issueStyles = map[issue.Type]lipgloss.Style{
		issue.Grammar:        underline(p.Error),
		issue.Style:          underline(p.Primary),
		issue.Clarity:        underline(p.Success),
		issue.Punctuation:    underline(p.Warning),
		issue.Capitalization: underline(p.Accent),
	}
}

func underline(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Underline(true)
}

// IssueStyle returns the highlight style for an issue type.
func IssueStyle(t issue.Type) lipgloss.Style {
	if s, ok := issueStyles[t]; ok {
		return s
	}
	return underline(CurrentPalette.Foreground)
}

// BadgeStyle returns the label style used when listing an issue of type t.
func BadgeStyle(t issue.Type) lipgloss.Style {
	return IssueStyle(t).UnsetUnderline().Bold(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func hexPtr(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := hexPtr(CurrentPalette.Foreground)
	primary := hexPtr(CurrentPalette.Primary)
	secondary := hexPtr(CurrentPalette.Secondary)
	muted := hexPtr(CurrentPalette.Muted)
	surface := hexPtr(CurrentPalette.Surface)

	cfg.Document.Color = fg

	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}
