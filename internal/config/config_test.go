package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pronosticos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, FetchHTTP, cfg.Datasource.FetchMode)
	assert.Equal(t, 6, cfg.Model.MaxGoals)
	assert.Equal(t, filepath.Join(cfg.Paths.AssetsPath, "pronosticos.db"), cfg.Paths.DBPath)
}

func TestLoadOverridesDefaults(t *testing.T) {
	assets := t.TempDir()
	path := writeConfig(t, `
paths:
  assets: `+assets+`
logging:
  level: debug
  output: console
model:
  min_matches_played: 5
  max_goals: 8
  over_under_lines: [1, 2, 3]
http:
  address: "127.0.0.1:9090"
  read_timeout: 5s
datasource:
  fetch_mode: chromedp
  cache_ttl: 0s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(assets, "cache"), cfg.Paths.CachePath)
	assert.Equal(t, filepath.Join(assets, "pronosticos.db"), cfg.Paths.DBPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Address)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout, "unset values keep their defaults")
	assert.Equal(t, FetchChromedp, cfg.Datasource.FetchMode)
	assert.Equal(t, time.Duration(0), cfg.Datasource.CacheTTL)

	pc := cfg.PoddsConfig()
	assert.Equal(t, 5, pc.MinMatchesPlayed)
	assert.Equal(t, 8, pc.MaxGoals)
	assert.Equal(t, []int{1, 2, 3}, pc.OverUnderLines)
	assert.Equal(t, 10, pc.MinBacktestSample)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().HTTP, cfg.HTTP)
}

func TestLoadFromEnvironment(t *testing.T) {
	path := writeConfig(t, "http:\n  address: \":7070\"\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Address)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"fetch mode":   "datasource:\n  fetch_mode: carrier-pigeon\n",
		"log level":    "logging:\n  level: loud\n",
		"log output":   "logging:\n  output: printer\n",
		"max goals":    "model:\n  max_goals: 0\n",
		"timeout":      "datasource:\n  timeout: 0s\n",
		"negative ttl": "datasource:\n  cache_ttl: -1m\n",
		"bad yaml":     "model: [unclosed\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.AssetsPath = filepath.Join(base, "assets")
	cfg.Paths.CachePath = filepath.Join(base, "assets", "cache")
	cfg.Paths.DBPath = filepath.Join(base, "db", "pronosticos.db")

	require.NoError(t, cfg.EnsureDirectories())
	for _, dir := range []string{cfg.Paths.CachePath, filepath.Join(base, "db")} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
