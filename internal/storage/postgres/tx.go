package postgres

import (
	"context"
	"database/sql"

	"github.com/bobmcallan/marketplay/internal/common"
)

type txFn func(*sql.Tx) error

// withTransaction runs fn in a transaction, rolling back on error or panic.
// Errors returned by fn are passed through unchanged.
func withTransaction(ctx context.Context, db *sql.DB, fn txFn) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return common.StorageFailure("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return common.StorageFailure("commit transaction", err)
	}
	return nil
}
