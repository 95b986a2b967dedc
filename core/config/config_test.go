package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig_Defaults tests that struct tag defaults reach every section.
func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sql", cfg.Backend.Driver)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Record.MaxConnectAttempts)
	assert.Equal(t, int64(43200), cfg.Record.PointMarginSeconds)
	assert.Equal(t, int64(10800), cfg.Record.SearchStrideSeconds)
	assert.Equal(t, 8, cfg.Record.SearchMaxIterations)
	assert.Equal(t, "passthrough", cfg.Record.FilterMode)
	assert.Equal(t, 0, cfg.Buffer.Capacity)
	assert.Equal(t, "point", cfg.Backend.Influx.Measurement)
	assert.Equal(t, 500, cfg.Backend.SQL.BatchSize)
}

// TestLoadConfig_EnvOverrides tests that environment variables and the .env
// file override nested keys.
func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RECORD_FILTER_MODE=whitelist\nRECORD_FILTER_CODES=192,64\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("RECORD_FILTER_MODE")
		os.Unsetenv("RECORD_FILTER_CODES")
	})
	t.Setenv("BACKEND_DRIVER", "badger")
	t.Setenv("BACKEND_BADGER_IN_MEMORY", "true")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "whitelist", cfg.Record.FilterMode)
	assert.Equal(t, "192,64", cfg.Record.FilterCodes)
	assert.Equal(t, "badger", cfg.Backend.Driver)
	assert.True(t, cfg.Backend.Badger.InMemory)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	cfg.Backend.Driver = "oracle"
	cfg.Record.FilterMode = "sideways"
	cfg.Record.FilterCodes = "192,x"
	cfg.Buffer.Capacity = -1

	err = cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"backend.driver", "record.filter_mode", "record.filter_codes", "buffer.capacity"} {
		assert.ErrorContains(t, err, key)
	}
}
