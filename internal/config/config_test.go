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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  name: "autofix"
  environment: "test"
server:
  port: 9999
  static_dir: "web"
database:
  path: "data/test.db"
session:
  ttl_seconds: 600
redis:
  enabled: true
  address: "localhost:6379"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "autofix", cfg.App.Name)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "data/test.db", cfg.Database.Path)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL())
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "data/expanded.db")
	path := writeConfig(t, `
database:
  path: "${TEST_DB_PATH}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/expanded.db", cfg.Database.Path)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "data/test.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "autofix", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL())
	assert.Equal(t, float64(20), cfg.RateLimit.RPS)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing database path", `server: {port: 8080}`},
		{"bad port", "database: {path: x.db}\nserver: {port: 99999}"},
		{"redis enabled without address", "database: {path: x.db}\nredis: {enabled: true}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
