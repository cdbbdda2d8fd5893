package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/hay-kot/polish/internal/core/logging"
	"github.com/hay-kot/polish/internal/polish"
	"github.com/hay-kot/polish/internal/profiler"
	"github.com/hay-kot/polish/internal/server"
	"github.com/urfave/cli/v3"
)

type ServeCmd struct {
	flags *Flags
	app   *polish.App

	// flags
	addr      string
	pprofAddr string
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *polish.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the checker over HTTP",
		UsageText: "polish serve [--addr host:port]",
		Description: `Starts an HTTP API for editors and other tools.

Endpoints:
  GET  /health         liveness probe
  GET  /metrics        Prometheus metrics
  POST /v1/check       detect issues in text
  POST /v1/apply       apply one suggestion
  POST /v1/apply-all   apply every suggestion that fits
  POST /v1/render      render highlighted text as segments or HTML`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to server.addr from config)",
				Sources:     cli.EnvVars("POLISH_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "pprof",
				Usage:       "serve pprof endpoints on this address (disabled when empty)",
				Destination: &cmd.pprofAddr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	addr := cmd.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	if cmd.flags.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.pprofAddr != "" {
		prof := profiler.New(cmd.pprofAddr, logging.Component("profiler"))
		if err := prof.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			_ = prof.Shutdown(shutdownCtx)
		}()
	}

	srv := server.New(server.Options{
		Addr:            addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Language:        cmd.app.Language(cmd.flags.Language),
		NewSession:      cmd.app.NewSession,
		Logger:          logging.Component("server"),
	})

	_, _ = fmt.Fprintf(os.Stderr, "listening on http://%s\n", addr)
	return srv.Run(ctx)
}
