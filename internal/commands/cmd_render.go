package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/hay-kot/polish/internal/core/highlight"
	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/polish"
	"github.com/hay-kot/polish/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type RenderCmd struct {
	flags *Flags
	app   *polish.App

	// flags
	html       bool
	jsonOutput bool
	plain      bool
	issues     iojson.FileReader[[]issue.Issue]
}

// NewRenderCmd creates a new render command
func NewRenderCmd(flags *Flags, app *polish.App) *RenderCmd {
	return &RenderCmd{
		flags: flags,
		app:   app,
		issues: iojson.FileReader[[]issue.Issue]{
			Name:  "issues",
			Usage: "JSON file with the issues to highlight instead of detecting them",
		},
	}
}

// Register adds the render command to the application
func (cmd *RenderCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "render",
		Usage:     "Print a document with its issues highlighted",
		UsageText: "polish render [--html | --json] [--issues file] [file]",
		Description: `Highlights issues in the terminal, or emits HTML markup or the segment list.

Overlapping issues are resolved the same way in every format: the one further
into the text wins and the other is dropped. With --issues the given issue set
is rendered as-is (for example the output of 'polish check --json').`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "html",
				Usage:       "emit HTML with a span per issue",
				Destination: &cmd.html,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "emit the segment list as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "mark issues with brackets instead of colors",
				Destination: &cmd.plain,
			},
			cmd.issues.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RenderCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.html && cmd.jsonOutput {
		return fmt.Errorf("--html and --json are mutually exclusive")
	}

	text, err := readInput(c.Args().First())
	if err != nil {
		return err
	}

	var segments []highlight.Segment
	if cmd.issues.IsSet() {
		issues, err := cmd.issues.Read()
		if err != nil {
			return fmt.Errorf("read issues: %w", err)
		}
		segments = highlight.Render(text, issues)
	} else {
		s := cmd.app.NewSession(cmd.flags.Language)
		s.SetText(text)
		segments = s.Render()
	}

	out := c.Root().Writer
	switch {
	case cmd.jsonOutput:
		return iojson.WriteWith(out, os.Stderr, segments)
	case cmd.html:
		_, err = fmt.Fprintln(out, highlight.HTML(segments))
		return err
	}

	_, err = fmt.Fprintln(out, highlight.Terminal(segments, highlight.TerminalOptions{Plain: cmd.plain}))
	if err != nil {
		return err
	}
	if !cmd.plain {
		_, err = fmt.Fprintf(out, "\n%s\n", highlight.Legend(countSegments(segments)))
	}
	return err
}

func countSegments(segments []highlight.Segment) map[issue.Type]int {
	counts := make(map[issue.Type]int)
	for _, s := range segments {
		if s.Annotated() {
			counts[s.Type]++
		}
	}
	return counts
}
