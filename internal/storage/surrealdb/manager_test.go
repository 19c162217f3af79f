package surrealdb

import (
	"context"
	"testing"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	mgr := testManager(t)

	assert.NotNil(t, mgr.UserStore())
	assert.NotNil(t, mgr.HoldingStore())
	assert.Equal(t, common.BackendSurrealDB, mgr.Backend())
	require.NoError(t, mgr.Ping(context.Background()))
}

func TestMigrateIdempotent(t *testing.T) {
	mgr := testManager(t)
	require.NoError(t, mgr.Migrate(context.Background()))
}

func TestNewManagerBadAddress(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.SurrealDB.Password = "wrong"

	_, err := NewManager(context.Background(), testLogger(), cfg)
	assert.Error(t, err)
}
