package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/hay-kot/polish/internal/core/edit"
	"github.com/hay-kot/polish/internal/core/styles"
	"github.com/hay-kot/polish/internal/polish"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

type FixCmd struct {
	flags *Flags
	app   *polish.App

	// flags
	yes    bool
	dryRun bool
	remote bool
}

// NewFixCmd creates a new fix command
func NewFixCmd(flags *Flags, app *polish.App) *FixCmd {
	return &FixCmd{flags: flags, app: app}
}

// Register adds the fix command to the application
func (cmd *FixCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "fix",
		Usage:     "Apply every suggestion to a file",
		UsageText: "polish fix [--yes] [--dry-run] [file]",
		Description: `Applies the first suggestion of every issue in one pass and writes the
result back to the file after confirmation. Issues without suggestions are left
in place. With no file, or "-", stdin is fixed and written to stdout.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "write without asking",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "show the changes without writing",
				Destination: &cmd.dryRun,
			},
			&cli.BoolFlag{
				Name:        "remote",
				Usage:       "include remote provider suggestions",
				Destination: &cmd.remote,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *FixCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	text, err := readInput(path)
	if err != nil {
		return err
	}

	s := cmd.app.NewSession(cmd.flags.Language)
	s.SetText(text)
	if cmd.remote && cmd.app.Remote() {
		if _, err := s.Refine(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "remote analysis skipped: %v\n", err)
		}
	}

	res := s.ApplyAll()
	fixed := s.Text()
	out := c.Root().Writer
	toStdout := path == "" || path == polish.StdinPath

	if toStdout && !cmd.dryRun {
		_, err := fmt.Fprint(out, fixed)
		return err
	}

	printFixSummary(res, len(s.Issues()))
	if len(res.Applied) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(out, renderDiff(text, fixed))

	if cmd.dryRun {
		return nil
	}

	if !cmd.yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to write %s without a terminal; pass --yes", path)
		}
		ok, err := confirm(fmt.Sprintf("Write %d change(s) to %s?", len(res.Applied), path))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Aborted")
			return nil
		}
	}

	if err := writeFileKeepMode(path, fixed); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, styles.SuccessStyle.Render("Wrote "+path))
	return nil
}

func printFixSummary(res edit.Result, remaining int) {
	fmt.Fprintf(os.Stderr, "Applied %d suggestion(s)", len(res.Applied))
	if len(res.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, ", skipped %d", len(res.Skipped))
	}
	if remaining > 0 {
		fmt.Fprintf(os.Stderr, ", %d issue(s) left for review", remaining)
	}
	fmt.Fprintln(os.Stderr)
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Write").
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(styles.FormTheme()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
