package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.App.Storage)
	assert.Equal(t, int32(4), cfg.Inventory.Precision)
	assert.Equal(t, 3, cfg.Queue.MaxRetry)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.True(t, cfg.Inventory.ZeroCostFloor)
	assert.Empty(t, cfg.Inventory.StrictOperations)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("INVENTORY_PRECISION", "2")
	t.Setenv("INVENTORY_STRICT_OPERATIONS", "PROCESSED, MOVEMENT")
	t.Setenv("INVENTORY_EXTERNAL_CHANNEL_ACTIVE", "true")
	t.Setenv("QUEUE_TIMEOUT", "1m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.App.Storage)
	assert.Equal(t, int32(2), cfg.Inventory.Precision)
	assert.Equal(t, []string{"PROCESSED", "MOVEMENT"}, cfg.Inventory.StrictOperations)
	assert.True(t, cfg.Inventory.ExternalChannelActive)
	assert.Equal(t, time.Minute, cfg.Queue.Timeout)
}

func TestLoad_StorageInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/ledger?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
