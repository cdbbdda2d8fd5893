package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/hay-kot/polish/internal/core/config"
	"github.com/hay-kot/polish/internal/core/detect"
	"github.com/hay-kot/polish/internal/core/rules"
)

// Checks returns the standard check list for cfg loaded from configPath.
func Checks(cfg *config.Config, configPath string) []Check {
	return []Check{
		&ConfigCheck{cfg: cfg, path: configPath},
		&RulesCheck{cfg: cfg, path: configPath},
		&DictionaryCheck{cfg: cfg, path: configPath},
		&ProviderCheck{cfg: cfg},
	}
}

// ConfigCheck validates the loaded configuration.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

func (c *ConfigCheck) Name() string { return "Configuration" }

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	err := c.cfg.ValidateDeep(c.path)
	var fieldErrs criterio.FieldErrors
	switch {
	case err == nil:
		detail := c.path
		if detail == "" {
			detail = "defaults"
		}
		result.Items = append(result.Items, pass("config", detail))
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			result.Items = append(result.Items, fail(fe.Field, fe.Err.Error()))
		}
	default:
		result.Items = append(result.Items, fail("config", err.Error()))
	}

	for _, w := range c.cfg.Warnings(c.path) {
		if w.Category == "Provider" {
			continue // reported by ProviderCheck
		}
		label := w.Category
		if w.Item != "" {
			label += " " + w.Item
		}
		result.Items = append(result.Items, warn(label, w.Message))
	}

	return result
}

// RulesCheck loads the built-in tables and every configured rule pack.
type RulesCheck struct {
	cfg  *config.Config
	path string
}

func (c *RulesCheck) Name() string { return "Rules" }

func (c *RulesCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	reg, err := rules.Builtin()
	if err != nil {
		result.Items = append(result.Items, fail("built-in tables", err.Error()))
		return result
	}
	result.Items = append(result.Items, pass("built-in tables", fmt.Sprintf("%d languages", len(reg.Languages()))))

	for _, path := range c.cfg.PackPaths(c.path) {
		table, err := rules.LoadFile(path)
		if err != nil {
			result.Items = append(result.Items, fail(path, err.Error()))
			continue
		}
		result.Items = append(result.Items, pass(path, fmt.Sprintf("%d rules for %s", len(table.Rules), table.Language)))
	}

	return result
}

// DictionaryCheck loads the spelling word list when one is configured.
type DictionaryCheck struct {
	cfg  *config.Config
	path string
}

func (c *DictionaryCheck) Name() string { return "Dictionary" }

func (c *DictionaryCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	path := c.cfg.DictionaryPath(c.path)
	if path == "" {
		result.Items = append(result.Items, pass("spelling", "no dictionary configured, spelling rule disabled"))
		return result
	}

	dict, err := detect.LoadDictionary(path)
	if err != nil {
		result.Items = append(result.Items, fail(path, err.Error()))
		return result
	}
	if dict.Len() == 0 {
		result.Items = append(result.Items, warn(path, "dictionary is empty"))
		return result
	}

	result.Items = append(result.Items, pass(path, fmt.Sprintf("%d words", dict.Len())))
	return result
}

// ProviderCheck reports whether the remote analyzer can be used.
type ProviderCheck struct {
	cfg *config.Config
}

func (c *ProviderCheck) Name() string { return "Remote provider" }

func (c *ProviderCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	if !c.cfg.ProviderEnabled() {
		result.Items = append(result.Items, pass("provider", "disabled"))
		return result
	}

	p := c.cfg.Provider
	detail := p.Kind
	if p.Model != "" {
		detail += " " + p.Model
	}
	result.Items = append(result.Items, pass("provider", detail))

	if c.cfg.APIKey() == "" {
		result.Items = append(result.Items, warn(p.APIKeyEnv, "not set, remote checks are skipped"))
	} else {
		result.Items = append(result.Items, pass(p.APIKeyEnv, "set"))
	}

	return result
}
