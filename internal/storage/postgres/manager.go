// Package postgres implements marketplay storage on PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Manager implements interfaces.StorageManager using PostgreSQL.
type Manager struct {
	db     *sql.DB
	logger *common.Logger

	userStore    *UserStore
	holdingStore *HoldingStore
}

// NewManager opens a connection pool to the configured database and checks it is reachable.
func NewManager(ctx context.Context, logger *common.Logger, config *common.Config) (*Manager, error) {
	pg := config.Storage.Postgres

	db, err := sql.Open("pgx", pg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if pg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pg.MaxOpenConns)
	}
	if pg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	m := NewManagerWithDB(db, logger)

	logger.Info().
		Int("max_open_conns", pg.MaxOpenConns).
		Msg("Postgres storage manager initialized")

	return m, nil
}

// NewManagerWithDB wraps an existing handle.
func NewManagerWithDB(db *sql.DB, logger *common.Logger) *Manager {
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
	return common.BackendPostgres
}

// Migrate creates the schema. Every statement is idempotent.
func (m *Manager) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	m.logger.Info().Int("statements", len(schema)).Msg("Postgres schema migrated")
	return nil
}

func (m *Manager) Ping(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return common.StorageFailure("ping", err)
	}
	return nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
