package commands

import (
	"context"
	"os"

	initcmd "github.com/hay-kot/polish/internal/commands/init"
	"github.com/urfave/cli/v3"
)

type InitCmd struct {
	flags    *Flags
	yes      bool
	force    bool
	provider string
	theme    string
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Initialize polish configuration with an interactive wizard",
		UsageText: "polish init [options]",
		Description: `Sets up polish for first-time use with an interactive wizard.

The wizard generates ~/.config/polish/config.yaml with sensible defaults,
asking for a default language, theme, and optional remote provider, then runs
the doctor checks against the result.

Use --yes to accept all defaults without prompts.
Use --force to overwrite existing configuration.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
			&cli.StringFlag{
				Name:        "provider",
				Usage:       "remote provider to configure (gemini, openai)",
				Destination: &cmd.provider,
			},
			&cli.StringFlag{
				Name:        "theme",
				Usage:       "color theme",
				Destination: &cmd.theme,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	wizard := initcmd.NewWizard(initcmd.WizardOptions{
		ConfigPath: cmd.flags.ConfigPath,
		DataDir:    cmd.flags.DataDir,
		Yes:        cmd.yes,
		Force:      cmd.force,
		Defaults: initcmd.ConfigOptions{
			Language: cmd.flags.Language,
			Theme:    cmd.theme,
			Provider: cmd.provider,
		},
		Out: os.Stderr,
	})
	return wizard.Run(ctx)
}
