package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hay-kot/polish/internal/polish"
	"github.com/hay-kot/polish/internal/tui/review"
	"github.com/urfave/cli/v3"
)

type ReviewCmd struct {
	flags *Flags
	app   *polish.App

	// flags
	readOnly bool
}

// NewReviewCmd creates a new review command.
func NewReviewCmd(flags *Flags, app *polish.App) *ReviewCmd {
	return &ReviewCmd{flags: flags, app: app}
}

// Register adds the review command to the application.
func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "review",
		Usage:     "Review a document's issues interactively",
		UsageText: "polish review [--read-only] <file>",
		Description: `Opens the document with its issues highlighted. Move between issues with tab,
apply a suggestion with enter (or 1-9 for a specific one), dismiss with d,
apply everything with A and write the file with w. Press ? for all keys.

Logs go to the log file while the review screen is open.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "read-only",
				Usage:       "disable writing the file",
				Destination: &cmd.readOnly,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ReviewCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" || path == polish.StdinPath {
		return fmt.Errorf("review requires a file; stdin is used by the terminal")
	}

	text, err := readInput(path)
	if err != nil {
		return err
	}

	opts := review.Options{
		Path:    path,
		Text:    text,
		Session: cmd.app.NewSession(cmd.flags.Language),
		Remote:  cmd.app.Remote(),
	}
	if !cmd.readOnly {
		opts.Save = func(text string) error { return writeFileKeepMode(path, text) }
	}

	p := tea.NewProgram(review.New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("review: %w", err)
	}

	if m, ok := final.(review.Model); ok && m.Dirty() {
		_, _ = fmt.Fprintf(c.Root().Writer, "%s has unsaved changes that were discarded\n", path)
	}
	return nil
}
