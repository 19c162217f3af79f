// Package interfaces defines service contracts for marketplay
package interfaces

import (
	"context"

	"github.com/bobmcallan/marketplay/internal/models"
)

// StorageManager coordinates the user and holding stores of one backend.
type StorageManager interface {
	UserStore() UserStore
	HoldingStore() HoldingStore

	// Backend names the storage implementation ("postgres", "surrealdb").
	Backend() string

	// Migrate creates the schema if it does not exist. It is idempotent.
	Migrate(ctx context.Context) error

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// UserStore resolves and registers accounts.
type UserStore interface {
	// GetUserBySubject returns the user whose firebase_uid equals subject.
	// A missing user is reported as a not_found error.
	GetUserBySubject(ctx context.Context, subject string) (*models.User, error)

	// CreateUser inserts a user and returns it with ID and CreatedAt populated.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)

	ListUsers(ctx context.Context) ([]*models.User, error)
}

// HoldingStore persists the positions owned by a user.
type HoldingStore interface {
	// ReplaceAll atomically removes every holding of userID and inserts
	// holdings in order. On failure the previous set is left untouched.
	ReplaceAll(ctx context.Context, userID int64, holdings []models.HoldingInput) ([]*models.Holding, error)

	// ListAll returns the holdings of userID ordered by id. An empty slice,
	// never nil, is returned when the user has none.
	ListAll(ctx context.Context, userID int64) ([]*models.Holding, error)

	// DeleteAll removes every holding of userID and reports how many were removed.
	DeleteAll(ctx context.Context, userID int64) (int64, error)
}
