package initcmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hay-kot/polish/internal/core/config"
	"gopkg.in/yaml.v3"
)

// ConfigOptions holds the answers collected by the wizard.
type ConfigOptions struct {
	Language string
	Theme    string
	Provider string // empty disables the remote analyzer
	Model    string
}

// GenerateConfig builds a config from the defaults and the wizard answers.
func GenerateConfig(opts ConfigOptions) config.Config {
	cfg := config.DefaultConfig()
	if opts.Language != "" {
		cfg.Language = opts.Language
	}
	if opts.Theme != "" {
		cfg.Render.Theme = opts.Theme
	}
	cfg.Provider.Kind = opts.Provider
	if opts.Provider != "" {
		cfg.Provider.Model = opts.Model
	}
	return cfg
}

const configHeader = `# polish configuration
# Rule packs and the dictionary path are resolved relative to this file.
`

// WriteConfig writes cfg as YAML, creating parent directories.
func WriteConfig(cfg config.Config, configPath string) error {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	return os.WriteFile(configPath, buf.Bytes(), 0o644)
}
