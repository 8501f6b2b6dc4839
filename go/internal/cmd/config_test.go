package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, "root", cfg.API.GameKey)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Empty(t, cfg.Feed.Addr)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaguectl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://league.example.com
  timeout: 5s
flag_file: /tmp/flags.json
feed:
  addr: ":9090"
log_level: debug
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://league.example.com", cfg.API.BaseURL)
	assert.Equal(t, "root", cfg.API.GameKey)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, ":9090", cfg.Feed.Addr)

	t.Setenv("LEAGUE_API_BASE_URL", "http://override:1")
	t.Setenv("LEAGUE_GAME_KEY", "arcs")
	t.Setenv("LEAGUE_HTTP_TIMEOUT", "12")
	t.Setenv("NATS_URL", "nats://bus:4222")
	applyEnv(cfg)

	assert.Equal(t, "http://override:1", cfg.API.BaseURL)
	assert.Equal(t, "arcs", cfg.API.GameKey)
	assert.Equal(t, 12*time.Second, cfg.API.Timeout)
	assert.Equal(t, "nats://bus:4222", cfg.Feed.NATSURL)
	assert.Equal(t, "/tmp/flags.json", cfg.FlagFile)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o644))

	_, err := loadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestClockFormat(t *testing.T) {
	assert.Equal(t, "0:00", clock(0))
	assert.Equal(t, "1:05", clock(65))
	assert.Equal(t, "25:00", clock(1500))
	assert.Equal(t, "-0:30", clock(-30))
}
