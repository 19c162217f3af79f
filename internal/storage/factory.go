// Package storage selects the persistence backend configured for marketplay.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/storage/postgres"
	"github.com/bobmcallan/marketplay/internal/storage/surrealdb"
)

// NewStorageManager creates the StorageManager for config.Storage.Backend.
// Supported backends: "postgres" (default), "surrealdb".
func NewStorageManager(ctx context.Context, logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = common.BackendPostgres
	}

	switch backend {
	case common.BackendPostgres:
		return postgres.NewManager(ctx, logger, config)

	case common.BackendSurrealDB:
		return surrealdb.NewManager(ctx, logger, config)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: %s, %s)", backend, common.BackendPostgres, common.BackendSurrealDB)
	}
}
