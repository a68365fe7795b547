package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "tok"
api:
  base_url: "http://localhost:8080/api/v1"
  timeout_seconds: 5
  cache_ttl_seconds: 60
database:
  path: "`+filepath.Join(t.TempDir(), "data", "state.db")+`"
monitoring:
  health_check_port: 8090
  prometheus_enabled: true
  prometheus_port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Telegram.BotToken)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout())
	assert.Equal(t, 60, cfg.API.CacheTTLSeconds)
	assert.True(t, cfg.Monitoring.PrometheusEnabled)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "secret-token")
	path := writeConfig(t, `
telegram:
  bot_token: "${TEST_BOT_TOKEN}"
api:
  base_url: "http://localhost:8080"
database:
  path: "`+filepath.Join(t.TempDir(), "state.db")+`"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", cfg.Telegram.BotToken)
}

func TestLoadRequiresBaseURL(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "tok"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestAPITimeoutDefault(t *testing.T) {
	var cfg Config
	assert.Equal(t, 10*time.Second, cfg.APITimeout())
}
