package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadConfig(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":9090"
session:
  maxRooms: 10
  historyCap: 5
  gracePeriod: "3s"
  expireAfter: "1h"
  createLimit: 2
  createWindow: "30s"
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	// дефолты логирования
	assert.Equal(t, "session-service", cfg.Logging.Service)
	assert.Equal(t, "dev", cfg.Logging.Env)
	assert.Equal(t, "std", cfg.Logging.Backend)

	set := cfg.SessionSettings()
	assert.Equal(t, 10, set.MaxRooms)
	assert.Equal(t, 5, set.HistoryCap)
	assert.Equal(t, 3*time.Second, set.GracePeriod)
	assert.Equal(t, time.Hour, set.ExpireAfter)
	assert.Equal(t, 2, set.CreateLimit)
	assert.Equal(t, 30*time.Second, set.CreateWindow)
}

func TestLoadConfigMissingAddr(t *testing.T) {
	writeConfig(t, `
logging:
  env: "dev"
`)
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestSessionSettingsDurationFallbacks(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":8080"
session:
  gracePeriod: "not-a-duration"
`)
	cfg, err := LoadConfig()
	require.NoError(t, err)

	set := cfg.SessionSettings()
	assert.Equal(t, 2500*time.Millisecond, set.GracePeriod)
	assert.Equal(t, 2*time.Hour, set.ExpireAfter)
	assert.Equal(t, time.Minute, set.SweepEvery)
}
