// Package server exposes detection, editing and rendering over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hay-kot/polish/internal/core/session"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SessionFactory creates an empty session for a language.
type SessionFactory func(language string) *session.Session

// Options configures a Server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	// Language is used when a request does not name one.
	Language   string
	NewSession SessionFactory
	Logger     zerolog.Logger
}

// Server is the HTTP API.
type Server struct {
	opts    Options
	log     zerolog.Logger
	metrics *Metrics
	router  *gin.Engine
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	s := &Server{
		opts:    opts,
		log:     opts.Logger,
		metrics: NewMetrics(),
	}

	s.router = gin.New()
	s.router.Use(gin.Recovery(), s.requestID(), s.observe(), s.limitBody())
	s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's metric set.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", s.opts.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		s.log.Info().Msg("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) newSession(lang string) *session.Session {
	if lang == "" {
		lang = s.opts.Language
	}
	return s.opts.NewSession(lang)
}
