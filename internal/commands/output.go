package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/hay-kot/polish/internal/core/config"
	"github.com/hay-kot/polish/internal/core/styles"
	"github.com/hay-kot/polish/internal/polish"
	"github.com/muesli/termenv"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/term"
)

// errNoInput is returned when a command would read a terminal as stdin.
var errNoInput = errors.New("no input provided (stdin is a terminal); pass a file or pipe text")

// ApplyColor sets the lipgloss color profile for the configured color mode.
func ApplyColor(mode string) {
	switch mode {
	case config.ColorNever:
		lipgloss.SetColorProfile(termenv.Ascii)
	case config.ColorAlways:
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}

// readInput reads a file, or stdin when path is empty or "-".
func readInput(path string) (string, error) {
	if path == "" || path == polish.StdinPath {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return "", errNoInput
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// writeFileKeepMode replaces the contents of path, keeping its permissions.
func writeFileKeepMode(path, text string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(text), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// position converts a byte offset into a 1-based line and rune column.
func position(text string, offset int) (line, col int) {
	offset = min(max(offset, 0), len(text))
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	return strings.Count(text[:offset], "\n") + 1, utf8.RuneCountInString(text[start:offset]) + 1
}

// renderDiff shows the changes between before and after inline: removed text
// struck through, inserted text highlighted.
func renderDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	removed := styles.ErrorStyle.Strikethrough(true)
	inserted := styles.SuccessStyle.Underline(true)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString(removed.Render("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			b.WriteString(inserted.Render("{+" + d.Text + "+}"))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
