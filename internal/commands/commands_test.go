package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/hay-kot/polish/internal/core/config"
	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/core/rules"
	"github.com/hay-kot/polish/internal/core/styles"
	"github.com/hay-kot/polish/internal/polish"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	palette, _ := styles.GetPalette(styles.DefaultTheme)
	styles.SetTheme(palette)
	os.Exit(m.Run())
}

const sample = "they was going. this is important"

// runCLI runs the given arguments against a root command with the check,
// fix, render and rules commands registered. It returns stdout and the exit
// code requested through cli.Exit.
func runCLI(t *testing.T, args ...string) (string, int, error) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	app, err := polish.New(&cfg, "", zerolog.Nop())
	require.NoError(t, err)

	exitCode := 0
	orig := cli.OsExiter
	cli.OsExiter = func(code int) { exitCode = code }
	t.Cleanup(func() { cli.OsExiter = orig })

	flags := &Flags{LogLevel: "warn", Config: &cfg}
	var out bytes.Buffer
	root := &cli.Command{Name: "polish", Writer: &out, ErrWriter: &bytes.Buffer{}}
	root = NewCheckCmd(flags, app).Register(root)
	root = NewFixCmd(flags, app).Register(root)
	root = NewRenderCmd(flags, app).Register(root)
	root = NewRulesCmd(flags, app).Register(root)

	err = root.Run(context.Background(), append([]string{"polish"}, args...))
	return out.String(), exitCode, err
}

func writeDoc(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		offset    int
		line, col int
	}{
		{name: "start", text: "abc", offset: 0, line: 1, col: 1},
		{name: "second line", text: "ab\ncd", offset: 4, line: 2, col: 2},
		{name: "runes", text: "é\nçà x", offset: 7, line: 2, col: 3},
		{name: "clamped", text: "ab", offset: 99, line: 1, col: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col := position(tt.text, tt.offset)
			assert.Equal(t, tt.line, line)
			assert.Equal(t, tt.col, col)
		})
	}
}

func TestRenderDiff(t *testing.T) {
	out := renderDiff("they was here", "they were here")
	assert.Contains(t, out, "[-")
	assert.Contains(t, out, "{+")
	assert.True(t, strings.HasPrefix(out, "they w"))
	assert.True(t, strings.HasSuffix(out, " here"))

	assert.Equal(t, "same", renderDiff("same", "same"))
}

func TestSuggestionHint(t *testing.T) {
	is := issue.Issue{Text: "they was", Position: 0, Length: 8, Suggestions: []string{"they were"}}
	assert.Contains(t, suggestionHint(is, ""), `"they was" → "they were"`)

	is.Suggestions = nil
	assert.Empty(t, suggestionHint(is, ""))

	ins := issue.Issue{Position: 3, Suggestions: []string{"."}}
	assert.Contains(t, suggestionHint(ins, "abc"), `"‸" → "."`)
}

func TestPrintReports(t *testing.T) {
	reports := []polish.Report{
		{
			Path: "a.txt",
			Issues: []issue.Issue{{
				ID: "they-was-5", Type: issue.Grammar, Message: "Subject-verb agreement error",
				Text: "they was", Position: 5, Length: 8, Suggestions: []string{"they were"},
			}},
		},
		{Path: "b.txt"},
		{Path: "c.txt", Error: "read c.txt: no such file"},
	}
	texts := map[string]string{"a.txt": "Yes.\nthey was here."}

	var buf bytes.Buffer
	printReports(&buf, reports, texts)
	out := buf.String()

	assert.Contains(t, out, "a.txt")
	assert.NotContains(t, out, "b.txt")
	assert.Contains(t, out, "2:1")
	assert.Contains(t, out, "Grammar Issue")
	assert.Contains(t, out, "read c.txt: no such file")
	assert.Contains(t, out, "1 issue(s) in 1 file(s)")

	buf.Reset()
	printReports(&buf, []polish.Report{{Path: "b.txt"}}, nil)
	assert.Contains(t, buf.String(), "No issues found")
}

func TestCheckCmd_JSON(t *testing.T) {
	path := writeDoc(t, "doc.txt", sample)

	out, code, err := runCLI(t, "check", "--json", path)
	require.NoError(t, err)
	assert.Zero(t, code)

	sc := bufio.NewScanner(strings.NewReader(out))
	require.True(t, sc.Scan())

	var report polish.Report
	require.NoError(t, json.Unmarshal(sc.Bytes(), &report))
	assert.Equal(t, path, report.Path)
	assert.Equal(t, "en-us", report.Language)

	ids := make([]string, len(report.Issues))
	for i, is := range report.Issues {
		ids[i] = is.ID
	}
	assert.Equal(t, []string{"they-was-0", "capitalization-16", "end-punctuation-33"}, ids)
	assert.False(t, sc.Scan(), "expected one line per report")
}

func TestCheckCmd_ExitCodes(t *testing.T) {
	path := writeDoc(t, "doc.txt", sample)
	clean := writeDoc(t, "clean.txt", "All good here.")

	_, code, err := runCLI(t, "check", "--strict", path)
	require.Error(t, err)
	assert.Equal(t, 1, code)

	out, code, err := runCLI(t, "check", "--strict", clean)
	require.NoError(t, err)
	assert.Zero(t, code)
	assert.Contains(t, out, "No issues found")

	_, code, err = runCLI(t, "check", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Equal(t, 2, code)
}

func TestFixCmd_Yes(t *testing.T) {
	path := writeDoc(t, "doc.txt", sample)

	out, _, err := runCLI(t, "fix", "--yes", path)
	require.NoError(t, err)
	assert.Contains(t, out, "{+")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "they were going. This is important.", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFixCmd_DryRun(t *testing.T) {
	path := writeDoc(t, "doc.txt", sample)

	out, _, err := runCLI(t, "fix", "--dry-run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[-")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))
}

func TestRenderCmd_Plain(t *testing.T) {
	path := writeDoc(t, "doc.txt", "they was here.")

	out, _, err := runCLI(t, "render", "--html", path)
	require.NoError(t, err)
	assert.Contains(t, out, "grammar-error")
	assert.Contains(t, out, "here.")
}

func TestRulesMarkdown(t *testing.T) {
	md := rulesMarkdown(rules.MustBuiltin(), "en-us")
	assert.Contains(t, md, "# English (US)")
	assert.Contains(t, md, "| they-was | Grammar Issue | `they was` | they were |")
	assert.Contains(t, md, "Available languages:")

	md = rulesMarkdown(rules.MustBuiltin(), "xx")
	assert.Contains(t, md, "No table for `xx`")
}

func TestValidateConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	res := validateConfig(&cfg, "")
	assert.True(t, res.Valid)

	cfg.Rules.Packs = []string{filepath.Join(t.TempDir(), "missing.yaml")}
	res = validateConfig(&cfg, "")
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "rules.packs[0]", res.Errors[0].Field)
}
