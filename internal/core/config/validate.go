package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hay-kot/criterio"
	"github.com/hay-kot/polish/internal/core/rules"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// rule pack parsing and file accessibility. The configPath argument specifies
// the config file location to validate (empty string skips config file check).
// Relative rule pack and dictionary paths are resolved against the config
// file's directory. This calls Validate() first for basic structural
// validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateRulePacks(configPath),
		c.validateDictionary(configPath),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings(configPath string) []ValidationWarning {
	var warnings []ValidationWarning

	if reg, err := rules.Builtin(); err == nil {
		// pack errors are reported by ValidateDeep
		_ = reg.LoadPacks(c.PackPaths(configPath)...)
		if resolved := reg.Resolve(c.Language); resolved == rules.DefaultLanguage && c.Language != rules.DefaultLanguage {
			warnings = append(warnings, ValidationWarning{
				Category: "Language",
				Item:     c.Language,
				Message:  fmt.Sprintf("no rule table for %q, using %s", c.Language, resolved),
			})
		}
	}

	if c.Detector.Fallback {
		warnings = append(warnings, ValidationWarning{
			Category: "Detector",
			Item:     "fallback",
			Message:  "fallback reports random demonstration issues and should be disabled outside demos",
		})
	}

	if c.ProviderEnabled() && c.APIKey() == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Provider",
			Item:     c.Provider.APIKeyEnv,
			Message:  fmt.Sprintf("%s is not set; remote analysis is disabled", c.Provider.APIKeyEnv),
		})
	}

	return warnings
}

// ResolvePath resolves a path from the config file against the config
// file's directory.
func ResolvePath(configPath, path string) string {
	if path == "" || filepath.IsAbs(path) || configPath == "" {
		return path
	}
	return filepath.Join(filepath.Dir(configPath), path)
}

// PackPaths returns the configured rule pack paths, resolved.
func (c *Config) PackPaths(configPath string) []string {
	out := make([]string, len(c.Rules.Packs))
	for i, p := range c.Rules.Packs {
		out[i] = ResolvePath(configPath, p)
	}
	return out
}

// DictionaryPath returns the configured dictionary path, resolved.
func (c *Config) DictionaryPath(configPath string) string {
	return ResolvePath(configPath, c.Detector.Dictionary)
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// validateRulePacks checks every rule pack exists and parses.
func (c *Config) validateRulePacks(configPath string) error {
	var errs criterio.FieldErrorsBuilder
	for i, path := range c.PackPaths(configPath) {
		if _, err := rules.LoadFile(path); err != nil {
			errs = errs.Append(fmt.Sprintf("rules.packs[%d]", i), fmt.Errorf("%s: %v", filepath.Base(path), err))
		}
	}
	return errs.ToError()
}

func (c *Config) validateDictionary(configPath string) error {
	path := c.DictionaryPath(configPath)
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return criterio.NewFieldErrors("detector.dictionary", fmt.Errorf("file not found: %s", c.Detector.Dictionary))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("detector.dictionary", fmt.Errorf("%s is a directory, not a file", c.Detector.Dictionary))
	}
	return nil
}
