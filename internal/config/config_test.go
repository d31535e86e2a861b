package config

import (
	"testing"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StorageMongo, cfg.StorageDriver)
	assert.Equal(t, 3*time.Second, cfg.AggregateRetryMaxWait)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("AGGREGATE_RETRY_MAX_ELAPSED", "750ms")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.AggregateRetryMaxWait)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	_, err := LoadConfig(logger.NewNop())
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}
