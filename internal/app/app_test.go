package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/poolgame-backend/internal/config"
	"github.com/ArowuTest/poolgame-backend/internal/logging"
)

func TestNewWithMemoryStore(t *testing.T) {
	cfg := &config.Config{
		Store:      config.StoreConfig{Driver: config.DriverMemory},
		Settlement: config.SettlementConfig{Lease: time.Minute},
	}

	a, err := New(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.NotNil(t, a.Draws)
	assert.NotNil(t, a.Settlements)
	assert.NotNil(t, a.Rounds)
	assert.NoError(t, a.Close(context.Background()))
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}
	_, err := OpenStore(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}
