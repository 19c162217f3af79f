// Package surrealdb implements marketplay storage on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/surrealdb/surrealdb.go"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	userStore    *UserStore
	holdingStore *HoldingStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(ctx context.Context, logger *common.Logger, config *common.Config) (*Manager, error) {
	sc := config.Storage.SurrealDB

	// Connect to SurrealDB
	db, err := surrealdb.New(sc.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	// Sign in
	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": sc.Username,
		"pass": sc.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	// Select namespace and database
	if err := db.Use(ctx, sc.Namespace, sc.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	m := NewManagerWithDB(db, logger)

	logger.Info().
		Str("address", sc.Address).
		Str("namespace", sc.Namespace).
		Str("database", sc.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

// NewManagerWithDB wraps an already connected handle.
func NewManagerWithDB(db *surrealdb.DB, logger *common.Logger) *Manager {
	return &Manager{
		db:           db,
		logger:       logger,
		userStore:    NewUserStore(db, logger),
		holdingStore: NewHoldingStore(db, logger),
	}
}

func (m *Manager) UserStore() interfaces.UserStore {
	return m.userStore
}

func (m *Manager) HoldingStore() interfaces.HoldingStore {
	return m.holdingStore
}

func (m *Manager) Backend() string {
	return common.BackendSurrealDB
}

// Migrate defines tables and indexes (SurrealDB v3 errors on querying non-existent tables).
func (m *Manager) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := surrealdb.Query[any](ctx, m.db, stmt, nil); err != nil {
			return fmt.Errorf("failed to apply %q: %w", stmt, err)
		}
	}
	m.logger.Info().Int("statements", len(schema)).Msg("SurrealDB schema migrated")
	return nil
}

func (m *Manager) Ping(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, m.db, "RETURN true", nil); err != nil {
		return common.StorageFailure("ping", err)
	}
	return nil
}

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
