package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageMemory, cfg.App.Storage)
	assert.Equal(t, 24*time.Hour, cfg.Ledger.VoidWindow())
	assert.Equal(t, 10, cfg.Ledger.VoidReasonMin)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("LEDGER_VOID_WINDOW_HOURS", "48")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.Ledger.VoidWindow())
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_Seed(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SEED_ADMIN_EMAIL", "admin@tienda.co")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.Seed.Enabled(), "sin password no se siembra")
	assert.Equal(t, "Principal", cfg.Seed.StoreName)

	t.Setenv("SEED_ADMIN_PASSWORD", "cambiar-ya")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Seed.Enabled())
}

func TestLoad_DriverDesconocido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/ledger?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())
}
