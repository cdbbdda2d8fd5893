package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := Load(path, dataDir)
		require.NoError(t, err)

		assert.Equal(t, "en-us", cfg.Language)
		assert.Equal(t, dataDir, cfg.DataDir)
		assert.False(t, cfg.Detector.Fallback)
		assert.False(t, cfg.ProviderEnabled())
		assert.Equal(t, DefaultAPIKeyEnv, cfg.Provider.APIKeyEnv)
		assert.Equal(t, 4, cfg.Check.Workers)
		assert.Equal(t, "tokyo-night", cfg.Render.Theme)
		assert.Equal(t, ColorAuto, cfg.Render.Color)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
language: EN_GB
detector:
  fallback: true
  seed: 42
  dictionary: words.txt
rules:
  packs: [house.yaml]
provider:
  kind: Gemini
  model: gemini-test
  api_key_env: TEST_POLISH_KEY
  timeout: 5s
  rate_limit: 0.5
server:
  addr: ":9000"
check:
  workers: 2
render:
  theme: gruvbox
  color: never
`)

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	assert.Equal(t, "en-gb", cfg.Language)
	assert.True(t, cfg.Detector.Fallback)
	assert.Equal(t, uint64(42), cfg.Detector.Seed)
	assert.Equal(t, "gemini", cfg.Provider.Kind)
	assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 1, cfg.Provider.Burst)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Check.Workers)
	assert.Equal(t, "gruvbox", cfg.Render.Theme)
	assert.Equal(t, "/data", cfg.DataDir)

	assert.Equal(t, []string{filepath.Join(dir, "house.yaml")}, cfg.PackPaths(path))
	assert.Equal(t, filepath.Join(dir, "words.txt"), cfg.DictionaryPath(path))

	t.Setenv("TEST_POLISH_KEY", " secret ")
	pc := cfg.ProviderClientConfig()
	assert.Equal(t, "secret", pc.APIKey)
	assert.Equal(t, "gemini-test", pc.Model)
	assert.InDelta(t, 0.5, pc.RateLimit, 0.0001)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "bad yaml", yaml: "language: [", wantErr: "parse config file"},
		{name: "provider kind", yaml: "provider:\n  kind: bard", wantErr: "provider.kind"},
		{name: "negative timeout", yaml: "provider:\n  timeout: -1s", wantErr: "provider.timeout"},
		{name: "negative rate", yaml: "provider:\n  rate_limit: -2", wantErr: "provider.rate_limit"},
		{name: "workers", yaml: "check:\n  workers: -1", wantErr: "check.workers"},
		{name: "theme", yaml: "render:\n  theme: neon", wantErr: "render.theme"},
		{name: "color", yaml: "render:\n  color: sometimes", wantErr: "render.color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.yaml)
			_, err := Load(path, t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_RequiresDataDir(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "", ResolvePath("/etc/polish/config.yaml", ""))
	assert.Equal(t, "/abs/pack.yaml", ResolvePath("/etc/polish/config.yaml", "/abs/pack.yaml"))
	assert.Equal(t, "/etc/polish/pack.yaml", ResolvePath("/etc/polish/config.yaml", "pack.yaml"))
	assert.Equal(t, "pack.yaml", ResolvePath("", "pack.yaml"))
}
