package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

const housePack = `
language: en-us
name: House style
rules:
  - id: utilize
    text: utilize
    type: style
    message: Prefer a plain word
    suggestions: [use]
`

func TestValidateDeep_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yaml", "language: en-us\n")
	writeFile(t, dir, "house.yaml", housePack)
	writeFile(t, dir, "words.txt", "hello\nworld\n")

	cfg := validConfig(t)
	cfg.Rules.Packs = []string{"house.yaml"}
	cfg.Detector.Dictionary = "words.txt"

	assert.NoError(t, cfg.ValidateDeep(configPath))
}

func TestValidateDeep_BadPacks(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	writeFile(t, dir, "broken.yaml", "language: en-us\nrules:\n  - id: x\n    type: tone\n")

	cfg := validConfig(t)
	cfg.Rules.Packs = []string{"missing.yaml", "broken.yaml"}

	err := cfg.ValidateDeep(configPath)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
	assert.Equal(t, "rules.packs[0]", fieldErrs[0].Field)
	assert.Equal(t, "rules.packs[1]", fieldErrs[1].Field)
}

func TestValidateDeep_Dictionary(t *testing.T) {
	cfg := validConfig(t)
	cfg.Detector.Dictionary = filepath.Join(t.TempDir(), "nope.txt")

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "detector.dictionary", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "file not found")

	cfg.Detector.Dictionary = t.TempDir()
	require.ErrorAs(t, cfg.ValidateDeep(""), &fieldErrs)
	assert.Contains(t, fieldErrs[0].Err.Error(), "is a directory")
}

func TestValidateDeep_FileAccess(t *testing.T) {
	cfg := validConfig(t)
	cfg.DataDir = writeFile(t, t.TempDir(), "data", "not a dir")

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)

	fields := []string{fieldErrs[0].Field, fieldErrs[1].Field}
	assert.ElementsMatch(t, []string{"config_file", "data_dir"}, fields)
}

func TestValidateDeep_StructuralFirst(t *testing.T) {
	cfg := validConfig(t)
	cfg.Check.Workers = 0

	err := cfg.ValidateDeep("")
	require.Error(t, err)

	var fieldErrs criterio.FieldErrors
	assert.NotErrorAs(t, err, &fieldErrs)
	assert.Contains(t, err.Error(), "check.workers")
}

func TestWarnings(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		assert.Empty(t, validConfig(t).Warnings(""))
	})

	t.Run("fallback and missing key", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Detector.Fallback = true
		cfg.Provider.Kind = "openai"
		cfg.Provider.APIKeyEnv = "POLISH_TEST_UNSET_KEY"
		require.NoError(t, os.Unsetenv("POLISH_TEST_UNSET_KEY"))

		warnings := cfg.Warnings("")
		require.Len(t, warnings, 2)
		assert.Equal(t, "Detector", warnings[0].Category)
		assert.Equal(t, "Provider", warnings[1].Category)
	})

	t.Run("unknown language", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Language = "xx"

		warnings := cfg.Warnings("")
		require.Len(t, warnings, 1)
		assert.Equal(t, "Language", warnings[0].Category)
	})

	t.Run("regional language", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Language = "fr-ca"
		assert.Empty(t, cfg.Warnings(""))
	})
}
