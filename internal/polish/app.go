// Package polish wires configuration, rule tables, the detector and the
// optional remote provider into the services the CLI, server and TUI use.
package polish

import (
	"errors"
	"fmt"

	"github.com/hay-kot/polish/internal/core/config"
	"github.com/hay-kot/polish/internal/core/detect"
	"github.com/hay-kot/polish/internal/core/logging"
	"github.com/hay-kot/polish/internal/core/rules"
	"github.com/hay-kot/polish/internal/core/session"
	"github.com/hay-kot/polish/internal/provider"
	"github.com/rs/zerolog"
)

// App is the central entry point for polish operations.
// Commands and the TUI consume App instead of building their own detector.
type App struct {
	Config     *config.Config
	ConfigPath string
	Rules      *rules.Registry
	Detector   *detect.Detector
	// Provider is nil when no remote analyzer is configured or its key is
	// missing.
	Provider *provider.Client

	log zerolog.Logger
}

// New builds an App from a loaded configuration. Relative rule pack and
// dictionary paths resolve against configPath.
func New(cfg *config.Config, configPath string, log zerolog.Logger) (*App, error) {
	reg, err := rules.Builtin()
	if err != nil {
		return nil, err
	}
	if err := reg.LoadPacks(cfg.PackPaths(configPath)...); err != nil {
		return nil, fmt.Errorf("load rule packs: %w", err)
	}

	opts := detect.Options{
		Fallback: cfg.Detector.Fallback,
		Rand:     detect.NewRand(cfg.Detector.Seed),
		Logger:   logging.Sub(log, "detect"),
	}
	if path := cfg.DictionaryPath(configPath); path != "" {
		dict, err := detect.LoadDictionary(path)
		if err != nil {
			return nil, err
		}
		opts.Speller = dict
		log.Debug().Int("words", dict.Len()).Str("path", path).Msg("loaded dictionary")
	}

	app := &App{
		Config:     cfg,
		ConfigPath: configPath,
		Rules:      reg,
		Detector:   detect.New(reg, opts),
		log:        log,
	}

	if cfg.ProviderEnabled() {
		client, err := provider.New(cfg.ProviderClientConfig(), logging.Sub(log, "provider"))
		switch {
		case errors.Is(err, provider.ErrNoAPIKey):
			log.Warn().Str("env", cfg.Provider.APIKeyEnv).Msg("provider key not set, remote analysis disabled")
		case err != nil:
			return nil, fmt.Errorf("provider: %w", err)
		default:
			app.Provider = client
		}
	}

	return app, nil
}

// Remote reports whether a remote analyzer is available.
func (a *App) Remote() bool {
	return a.Provider != nil
}

// Language returns lang, or the configured language when lang is empty.
func (a *App) Language(lang string) string {
	if lang == "" {
		return a.Config.Language
	}
	return rules.Normalize(lang)
}

// NewSession creates an empty session for lang. The provider, when
// configured, is attached as the session's analyzer.
func (a *App) NewSession(lang string) *session.Session {
	opts := session.Options{
		Language:      a.Language(lang),
		RefineTimeout: a.Config.Provider.Timeout,
		Logger:        logging.Sub(a.log, "session"),
	}
	if a.Provider != nil {
		opts.Analyzer = a.Provider
	}
	return session.New(a.Detector, opts)
}
