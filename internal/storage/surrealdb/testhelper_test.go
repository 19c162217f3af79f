package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/marketplay/internal/common"
	tcommon "github.com/bobmcallan/marketplay/tests/common"
	"github.com/stretchr/testify/require"
)

// testConfig points at the shared SurrealDB container with a unique database
// per test to ensure isolation.
func testConfig(t *testing.T) *common.Config {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)

	// SurrealDB rejects "/" in database names, which subtests produce.
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())

	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = common.BackendSurrealDB
	cfg.Storage.SurrealDB = common.SurrealDBConfig{
		Address:   sc.Address(),
		Namespace: "marketplay_test",
		Database:  fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000),
		Username:  "root",
		Password:  "root",
	}
	return cfg
}

// testManager returns a migrated manager on a fresh database.
func testManager(t *testing.T) *Manager {
	t.Helper()

	mgr, err := NewManager(context.Background(), testLogger(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	require.NoError(t, mgr.Migrate(context.Background()))
	return mgr
}

// testLogger returns a silent logger for tests.
func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
