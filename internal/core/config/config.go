// Package config handles configuration loading and validation for polish.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/hay-kot/polish/internal/core/rules"
	"github.com/hay-kot/polish/internal/core/styles"
	"github.com/hay-kot/polish/internal/provider"
	"gopkg.in/yaml.v3"
)

// Color modes for terminal output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultAPIKeyEnv is the environment variable read for the provider key
// when provider.api_key_env is not set.
const DefaultAPIKeyEnv = "POLISH_API_KEY"

// Config holds the application configuration.
type Config struct {
	Language string         `yaml:"language"`
	Detector DetectorConfig `yaml:"detector"`
	Rules    RulesConfig    `yaml:"rules"`
	Provider ProviderConfig `yaml:"provider"`
	Server   ServerConfig   `yaml:"server"`
	Check    CheckConfig    `yaml:"check"`
	Render   RenderConfig   `yaml:"render"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// DetectorConfig controls local detection.
type DetectorConfig struct {
	// Fallback reports one random demonstration issue when no rule matches.
	Fallback bool `yaml:"fallback"`
	// Seed pins the fallback's random source. Zero uses a random seed.
	Seed uint64 `yaml:"seed"`
	// Dictionary is a word list enabling the spelling rule.
	Dictionary string `yaml:"dictionary"`
}

// RulesConfig lists extra rule packs merged over the built-in tables.
type RulesConfig struct {
	Packs []string `yaml:"packs"`
}

// ProviderConfig configures the optional remote analyzer. An empty kind
// disables it.
type ProviderConfig struct {
	Kind      string        `yaml:"kind"`
	Endpoint  string        `yaml:"endpoint"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int           `yaml:"burst"`
}

// ServerConfig configures `polish serve`.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// CheckConfig configures `polish check`.
type CheckConfig struct {
	Workers int `yaml:"workers"`
}

// RenderConfig configures terminal output.
type RenderConfig struct {
	Theme string `yaml:"theme"`
	Color string `yaml:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Language: rules.DefaultLanguage,
		Rules:    RulesConfig{Packs: []string{}},
		Provider: ProviderConfig{
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   provider.DefaultTimeout,
			Burst:     1,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:7878",
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Check: CheckConfig{
			Workers: 4,
		},
		Render: RenderConfig{
			Theme: styles.DefaultTheme,
			Color: ColorAuto,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Language == "" {
		c.Language = defaults.Language
	}
	c.Language = rules.Normalize(c.Language)
	c.Provider.Kind = strings.ToLower(strings.TrimSpace(c.Provider.Kind))
	if c.Provider.APIKeyEnv == "" {
		c.Provider.APIKeyEnv = defaults.Provider.APIKeyEnv
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = defaults.Provider.Timeout
	}
	if c.Provider.Burst == 0 {
		c.Provider.Burst = defaults.Provider.Burst
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}
	if c.Check.Workers == 0 {
		c.Check.Workers = defaults.Check.Workers
	}
	if c.Render.Theme == "" {
		c.Render.Theme = defaults.Render.Theme
	}
	if c.Render.Color == "" {
		c.Render.Color = defaults.Render.Color
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Provider.Kind != "" && !slices.Contains(provider.Kinds, c.Provider.Kind) {
		return fmt.Errorf("provider.kind %q must be one of %s", c.Provider.Kind, strings.Join(provider.Kinds, ", "))
	}

	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout cannot be negative")
	}

	if c.Provider.RateLimit < 0 {
		return fmt.Errorf("provider.rate_limit cannot be negative")
	}

	if c.Provider.Burst < 1 {
		return fmt.Errorf("provider.burst must be at least 1")
	}

	if c.Check.Workers < 1 {
		return fmt.Errorf("check.workers must be at least 1")
	}

	if c.Server.MaxBodyBytes < 1 {
		return fmt.Errorf("server.max_body_bytes must be at least 1")
	}

	if _, ok := styles.GetPalette(c.Render.Theme); !ok {
		return fmt.Errorf("render.theme %q must be one of %s", c.Render.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	switch c.Render.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("render.color %q must be one of auto, always, never", c.Render.Color)
	}

	return nil
}

// ProviderEnabled reports whether a remote analyzer is configured.
func (c *Config) ProviderEnabled() bool {
	return c.Provider.Kind != ""
}

// APIKey reads the provider key from the configured environment variable.
func (c *Config) APIKey() string {
	return strings.TrimSpace(os.Getenv(c.Provider.APIKeyEnv))
}

// ProviderClientConfig returns the client configuration for the remote analyzer.
func (c *Config) ProviderClientConfig() provider.Config {
	return provider.Config{
		Kind:      c.Provider.Kind,
		Endpoint:  c.Provider.Endpoint,
		Model:     c.Provider.Model,
		APIKey:    c.APIKey(),
		Timeout:   c.Provider.Timeout,
		RateLimit: c.Provider.RateLimit,
		Burst:     c.Provider.Burst,
	}
}
