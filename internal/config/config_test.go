package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "https://example.com/api"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "khidma", cfg.App.Name)
	assert.Equal(t, 10, cfg.API.TimeoutSeconds)
	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.Equal(t, "exports", cfg.Exports.Path)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("KHIDMA_TEST_API_URL", "https://api.test.example.com")

	path := writeConfig(t, `
api:
  base_url: "${KHIDMA_TEST_API_URL}"
  timeout_seconds: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.test.example.com", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
}

func TestLoadRejectsMissingBaseURL(t *testing.T) {
	path := writeConfig(t, `
app:
  name: khidma
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url is required")
}

func TestLoadRejectsInvalidBaseURL(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "not a url"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url is invalid")
}

func TestCacheRequiresRedisAddress(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "https://example.com/api"
cache:
  enabled: true
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis address is empty")
}

func TestRateLimitDefaultsOnlyWhenEnabled(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: "https://example.com/api"
  rate_limit:
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float64(10), cfg.API.RateLimit.RPS)
	assert.Equal(t, 5, cfg.API.RateLimit.Burst)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
