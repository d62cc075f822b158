package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT", "REQUEST_TIMEOUT",
	"BODY_LIMIT", "ENABLE_USER_ROUTE", "RATE_LIMIT_ENABLED", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"OPS_ADDR", "LOG_LEVEL", "LOG_FORMAT", "CONFIG_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, DefaultBodyLimit, cfg.BodyLimit)
	assert.False(t, cfg.EnableUserRoute)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Empty(t, cfg.OpsAddr)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  port: "8088"
  readTimeout: 5s
  bodyLimit: 2048
routes:
  user: true
rateLimit:
  enabled: true
  rps: 5
  burst: 10
log:
  format: json
`)
	t.Setenv("PORT", "9099")
	t.Setenv("RATE_LIMIT_BURST", "20")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9099", cfg.Port, "env wins over file")
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, int64(2048), cfg.BodyLimit)
	assert.True(t, cfg.EnableUserRoute)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "ops:\n  addr: 127.0.0.1:9100\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.OpsAddr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad duration", "READ_TIMEOUT", "soon"},
		{"bad bool", "ENABLE_USER_ROUTE", "maybe"},
		{"bad port", "PORT", "http"},
		{"port out of range", "PORT", "70000"},
		{"bad body limit", "BODY_LIMIT", "lots"},
		{"zero body limit", "BODY_LIMIT", "0"},
		{"bad log format", "LOG_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "server: [not, a, map")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateRateLimit(t *testing.T) {
	cfg := Default()
	cfg.RateLimitEnabled = true
	cfg.RateLimitRPS = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.RateLimitRPS = 1
	assert.NoError(t, cfg.Validate())
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "on"} {
		got, ok := parseBool(v)
		assert.True(t, ok, v)
		assert.True(t, got, v)
	}
	for _, v := range []string{"0", "false", "No", "off"} {
		got, ok := parseBool(v)
		assert.True(t, ok, v)
		assert.False(t, got, v)
	}
	_, ok := parseBool("sometimes")
	assert.False(t, ok)
}

func TestLoadMalformedDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=4000\n=oops\n"), 0o600))
	chdir(t, dir)

	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=4000\n"), 0o600))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "4000", cfg.Port)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
