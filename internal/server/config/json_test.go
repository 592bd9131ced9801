package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"http_addr":           ":8080",
		"database_dsn":        "postgres://u:p@db:5432/app",
		"db_host":             "db",
		"db_port":             6543,
		"db_name":             "app",
		"db_user":             "u",
		"db_password":         "p",
		"db_sslmode":          "verify-full",
		"db_retry_base":       "1s",
		"db_retry_cap":        "10s",
		"db_retry_max":        3,
		"nats_url":            "nats://localhost:4222",
		"nats_subject_prefix": "people",
		"rate_limit_rps":      50,
		"rate_limit_burst":    100,
		"log_level":           "debug",
		"shutdown_timeout":    "2s",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, "postgres://u:p@db:5432/app", cfg.DatabaseDSN)
		assert.Equal(t, "db", cfg.DBHost)
		assert.Equal(t, 6543, cfg.DBPort)
		assert.Equal(t, "app", cfg.DBName)
		assert.Equal(t, "u", cfg.DBUser)
		assert.Equal(t, "p", cfg.DBPassword)
		assert.Equal(t, "verify-full", cfg.DBSSLMode)
		assert.Equal(t, time.Second, cfg.DBRetryBase)
		assert.Equal(t, 10*time.Second, cfg.DBRetryCap)
		assert.Equal(t, uint64(3), cfg.DBRetryMax)
		assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
		assert.Equal(t, "people", cfg.NATSSubjectPrefix)
		assert.Equal(t, 50.0, cfg.RateLimitRPS)
		assert.Equal(t, 100, cfg.RateLimitBurst)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg

		require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))
		assert.Equal(t, want, *cfg)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, map[string]any{"db_name": "only"})
		cfg := &Config{}
		cfg.LoadDefaults()

		require.NoError(t, parseJson(cfg, []string{"-c", partial}))
		assert.Equal(t, "only", cfg.DBName)
		assert.Equal(t, ":3000", cfg.HTTPAddr)
		assert.Equal(t, 5*time.Second, cfg.DBRetryBase)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJson(&Config{}, []string{"-c", bad}))
	})

	t.Run("missing file → error", func(t *testing.T) {
		require.Error(t, parseJson(&Config{}, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
	})
}
