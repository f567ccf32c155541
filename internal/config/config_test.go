package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("SETTLEMENT_LEASE", "45s")
	t.Setenv("SCHEDULER_AUTOSETTLE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "poolgame", cfg.MongoDB.Database)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, 45*time.Second, cfg.Settlement.Lease)
	assert.True(t, cfg.Scheduler.AutoSettle)
	assert.Equal(t, "@every 1m", cfg.Scheduler.Spec)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Store:      StoreConfig{Driver: DriverMemory},
		JWT:        JWTConfig{Secret: "s"},
		Settlement: SettlementConfig{Lease: time.Minute},
	}
	assert.NoError(t, valid.Validate())

	badDriver := valid
	badDriver.Store.Driver = "sqlite"
	assert.Error(t, badDriver.Validate())

	noSecret := valid
	noSecret.JWT.Secret = ""
	assert.Error(t, noSecret.Validate())

	noLease := valid
	noLease.Settlement.Lease = 0
	assert.Error(t, noLease.Validate())
}
