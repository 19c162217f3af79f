package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/models"
)

// HoldingStore manages rows of the portfolios table.
type HoldingStore struct {
	db     *sql.DB
	logger *common.Logger
}

func NewHoldingStore(db *sql.DB, logger *common.Logger) *HoldingStore {
	return &HoldingStore{db: db, logger: logger}
}

// ReplaceAll locks the owner row so concurrent replacements for the same
// user serialize; the last to commit wins.
func (s *HoldingStore) ReplaceAll(ctx context.Context, userID int64, holdings []models.HoldingInput) ([]*models.Holding, error) {
	normalized, err := models.NormalizeHoldings(holdings)
	if err != nil {
		return nil, common.InvalidRequest(err.Error())
	}

	var inserted []*models.Holding
	err = withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		var owner int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&owner); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.NotFound("User not found")
			}
			return common.StorageFailure("lock user", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM portfolios WHERE user_id = $1`, userID); err != nil {
			return common.StorageFailure("delete holdings", err)
		}

		inserted = make([]*models.Holding, 0, len(normalized))
		for _, h := range normalized {
			row := &models.Holding{UserID: userID, Ticker: h.Ticker, Quantity: h.Quantity}
			err := tx.QueryRowContext(ctx,
				`INSERT INTO portfolios (user_id, ticker, quantity) VALUES ($1, $2, $3) RETURNING id, created_at`,
				userID, h.Ticker, h.Quantity,
			).Scan(&row.ID, &row.CreatedAt)
			if err != nil {
				return common.StorageFailure("insert holding", err)
			}
			inserted = append(inserted, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int64("user_id", userID).Int("holdings", len(inserted)).Msg("Holdings replaced")
	return inserted, nil
}

func (s *HoldingStore) ListAll(ctx context.Context, userID int64) ([]*models.Holding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, ticker, quantity, created_at FROM portfolios WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, common.StorageFailure("list holdings", err)
	}
	defer rows.Close()

	holdings := []*models.Holding{}
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.UserID, &h.Ticker, &h.Quantity, &h.CreatedAt); err != nil {
			return nil, common.StorageFailure("scan holding", err)
		}
		holdings = append(holdings, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageFailure("list holdings", err)
	}
	return holdings, nil
}

func (s *HoldingStore) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM portfolios WHERE user_id = $1`, userID)
	if err != nil {
		return 0, common.StorageFailure("delete holdings", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, common.StorageFailure("delete holdings", err)
	}
	s.logger.Debug().Int64("user_id", userID).Int64("deleted", n).Msg("Holdings deleted")
	return n, nil
}

var _ interfaces.HoldingStore = (*HoldingStore)(nil)
