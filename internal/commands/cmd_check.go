package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/core/styles"
	"github.com/hay-kot/polish/internal/polish"
	"github.com/hay-kot/polish/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type CheckCmd struct {
	flags *Flags
	app   *polish.App

	// flags
	jsonOutput bool
	remote     bool
	strict     bool
	workers    int
}

// NewCheckCmd creates a new check command
func NewCheckCmd(flags *Flags, app *polish.App) *CheckCmd {
	return &CheckCmd{flags: flags, app: app}
}

// Register adds the check command to the application
func (cmd *CheckCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "check",
		Usage:     "Report writing issues in files or stdin",
		UsageText: "polish check [--json] [--remote] [--strict] [files or globs...]",
		Description: `Checks each file for grammar, style, clarity, punctuation and capitalization
issues. Arguments may be glob patterns; "**" matches across directories.
With no arguments the text is read from stdin.

Use --json for one JSON report per line.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output reports as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "remote",
				Usage:       "also run the configured remote provider",
				Destination: &cmd.remote,
			},
			&cli.BoolFlag{
				Name:        "strict",
				Usage:       "exit with status 1 when any issue is found",
				Destination: &cmd.strict,
			},
			&cli.IntFlag{
				Name:        "workers",
				Usage:       "files checked concurrently (defaults to check.workers)",
				Destination: &cmd.workers,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CheckCmd) run(ctx context.Context, c *cli.Command) error {
	opts := polish.CheckOptions{
		Language: cmd.flags.Language,
		Remote:   cmd.remote,
		Workers:  cmd.workers,
	}
	if cmd.remote && !cmd.app.Remote() {
		fmt.Fprintln(os.Stderr, "remote provider not configured, running local checks only")
	}

	var (
		reports []polish.Report
		err     error
		texts   = map[string]string{}
	)
	if c.Args().Len() == 0 {
		text, rerr := readInput("")
		if rerr != nil {
			return rerr
		}
		texts[polish.StdinPath] = text
		reports, err = cmd.app.CheckDocuments(ctx, []polish.Document{{Path: polish.StdinPath, Text: text}}, opts)
	} else {
		paths, perr := polish.ExpandPaths(c.Args().Slice())
		if perr != nil {
			return perr
		}
		if len(paths) == 0 {
			return fmt.Errorf("no files match %v", c.Args().Slice())
		}
		reports, err = cmd.app.CheckFiles(ctx, paths, opts)
	}
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, r := range reports {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
		}
	} else {
		for _, r := range reports {
			if _, ok := texts[r.Path]; !ok && r.Error == "" {
				data, _ := os.ReadFile(r.Path)
				texts[r.Path] = string(data)
			}
		}
		printReports(out, reports, texts)
	}

	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
	}
	switch {
	case failed > 0:
		return cli.Exit("", 2)
	case cmd.strict && polish.Total(reports) > 0:
		return cli.Exit("", 1)
	}
	return nil
}

// printReports writes one line per issue, grouped by file, followed by a
// summary. texts maps paths to their contents for line and column numbers;
// without an entry byte offsets are shown.
func printReports(w io.Writer, reports []polish.Report, texts map[string]string) {
	files := 0
	for _, r := range reports {
		if r.Error != "" {
			_, _ = fmt.Fprintf(w, "%s %s\n", styles.ErrorStyle.Render("error"), r.Error)
			continue
		}
		if len(r.Issues) == 0 {
			continue
		}
		files++

		_, _ = fmt.Fprintln(w, styles.HeaderStyle.Render(r.Path))
		text, hasText := texts[r.Path]
		for _, is := range r.Issues {
			loc := fmt.Sprintf("@%d", is.Position)
			if hasText {
				line, col := position(text, is.Position)
				loc = fmt.Sprintf("%d:%d", line, col)
			}
			_, _ = fmt.Fprintf(w, "  %s  %s  %s%s\n",
				styles.MutedStyle.Render(fmt.Sprintf("%-7s", loc)),
				styles.BadgeStyle(is.Type).Render(fmt.Sprintf("%-14s", is.Type.Label())),
				is.Message,
				suggestionHint(is, text),
			)
		}
	}

	total := polish.Total(reports)
	if total == 0 {
		_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("No issues found"))
		return
	}
	_, _ = fmt.Fprintf(w, "\n%d issue(s) in %d file(s)\n", total, files)
}

// suggestionHint shows the first suggestion as a replacement of the span.
// Sentence-level suggestions are narrowed to the span when text is known.
func suggestionHint(is issue.Issue, text string) string {
	if is.Scope != nil && text != "" {
		is = is.Localize(text)
	}
	if !is.HasSuggestions() {
		return ""
	}
	from := is.Text
	if is.IsInsertion() {
		from = "‸"
	}
	sug := is.Suggestions[0]
	if is.Scope != nil {
		return styles.MutedStyle.Render(fmt.Sprintf("  → %q", sug))
	}
	return styles.MutedStyle.Render(fmt.Sprintf("  %q → %q", from, sug))
}
