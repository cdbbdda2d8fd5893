package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/polish/internal/commands"
	"github.com/hay-kot/polish/internal/core/config"
	"github.com/hay-kot/polish/internal/core/logging"
	"github.com/hay-kot/polish/internal/core/styles"
	"github.com/hay-kot/polish/internal/polish"
	"github.com/hay-kot/polish/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

var (
	// fullScreen lists commands that own the terminal and must not log to stderr.
	fullScreen = map[string]bool{"review": true}
	// diagnostic commands run without an App so a broken rule pack or
	// dictionary can still be reported.
	diagnostic = map[string]bool{"doctor": true, "config": true, "init": true}
)

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		polishApp = &polish.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "polish",
		Usage:     "Find and fix grammar, style, and punctuation issues in prose",
		UsageText: "polish [global options] command [command options]",
		Description: `Polish checks documents against per-language rule tables and highlights the
issues it finds. Suggestions can be applied one at a time in the review screen
or all at once with 'polish fix'.

Run 'polish check <files>' to report issues.
Run 'polish review <file>' to fix them interactively.`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("POLISH_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("POLISH_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("POLISH_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("POLISH_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "language",
				Aliases:     []string{"l"},
				Usage:       "document language (defaults to the configured language)",
				Sources:     cli.EnvVars("POLISH_LANGUAGE"),
				Destination: &flags.Language,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logFile := flags.LogFile
			if logFile == "" && fullScreen[c.Args().First()] {
				logFile = commands.DefaultLogFile()
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.Render.Theme)
			styles.SetTheme(palette)
			commands.ApplyColor(cfg.Render.Color)

			if diagnostic[c.Args().First()] {
				return ctx, nil
			}

			app, err := polish.New(cfg, flags.ConfigPath, logging.Component("polish"))
			if err != nil {
				return ctx, err
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*polishApp = *app

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewCheckCmd(flags, polishApp).Register(app)
	app = commands.NewFixCmd(flags, polishApp).Register(app)
	app = commands.NewReviewCmd(flags, polishApp).Register(app)
	app = commands.NewRenderCmd(flags, polishApp).Register(app)
	app = commands.NewRulesCmd(flags, polishApp).Register(app)
	app = commands.NewServeCmd(flags, polishApp).Register(app)
	app = commands.NewInitCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		if exitErr, ok := runErr.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
