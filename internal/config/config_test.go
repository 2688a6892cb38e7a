package config

import (
	"testing"
	"time"

	"hypoavg/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATA_DIR", "SCHEMA_DIR", "SCHEMA_DATABASE_URL", "PORT", "GIN_MODE",
		"METRICS_ENABLED", "SHUTDOWN_TIMEOUT", "AGGREGATE_WORKERS", "WATCH_DATA_DIR"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "schemas", cfg.Schema.Dir)
	assert.False(t, cfg.Schema.UsePostgres())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 4, cfg.Aggregate.Workers)
	assert.False(t, cfg.Aggregate.WatchDataDir)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/observations")
	t.Setenv("SCHEMA_DATABASE_URL", "postgres://localhost/schemas?sslmode=disable")
	t.Setenv("AGGREGATE_WORKERS", "1")
	t.Setenv("WATCH_DATA_DIR", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/observations", cfg.Storage.DataDir)
	assert.True(t, cfg.Schema.UsePostgres())
	assert.Equal(t, 1, cfg.Aggregate.Workers)
	assert.True(t, cfg.Aggregate.WatchDataDir)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("workers not a number", func(t *testing.T) {
		t.Setenv("AGGREGATE_WORKERS", "many")
		_, err := Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeConfigInvalid))
	})

	t.Run("workers zero", func(t *testing.T) {
		t.Setenv("AGGREGATE_WORKERS", "0")
		_, err := Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeConfigInvalid))
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("AGGREGATE_WORKERS", "")
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")
		_, err := Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeConfigInvalid))
	})
}
