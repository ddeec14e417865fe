package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int32(10), cfg.Records.Pool.MaxConns)
	assert.Equal(t, int32(2), cfg.Records.Pool.MinConns)
	assert.Equal(t, "company_cache.db", cfg.Cache.Path)
	assert.Equal(t, 90, cfg.Cache.TTLDays)
	assert.Equal(t, "https://api.bochaai.com", cfg.Bocha.BaseURL)
	assert.Equal(t, 10, cfg.Bocha.Count)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, int64(1024), cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 2.0, cfg.Search.WebRPS, 0.001)
	assert.Equal(t, 4, cfg.Search.WebBurst)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
cache:
  ttl_days: 30
bocha:
  freshness: oneYear
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Cache.TTLDays)
	assert.Equal(t, "oneYear", cfg.Bocha.Freshness)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Bocha.Count)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ENTBRAIN_LOG_LEVEL", "warn")
	t.Setenv("ENTBRAIN_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestCacheTTL(t *testing.T) {
	cfg := CacheConfig{TTLDays: 30}
	assert.Equal(t, 30*24, int(cfg.TTL().Hours()))
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "records.database_url")
	assert.Contains(t, err.Error(), "bocha.key")
	assert.Contains(t, err.Error(), "anthropic.key")

	cfg.Records.DatabaseURL = "postgres://localhost/brain"
	cfg.Bocha.Key = "bk"
	cfg.Anthropic.Key = "ak"
	assert.NoError(t, cfg.Validate())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
