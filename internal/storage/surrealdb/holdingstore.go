package surrealdb

import (
	"context"
	"strings"
	"time"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

type holdingRow struct {
	Num       int64     `json:"num"`
	UserID    int64     `json:"user_id"`
	Ticker    string    `json:"ticker"`
	Quantity  float64   `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func (r holdingRow) toModel() *models.Holding {
	return &models.Holding{
		ID:        r.Num,
		UserID:    r.UserID,
		Ticker:    r.Ticker,
		Quantity:  r.Quantity,
		CreatedAt: r.CreatedAt,
	}
}

const holdingSelectFields = "num, user_id, ticker, quantity, created_at"

// ownerMissing is thrown inside the replace transaction when the owner row is absent.
const ownerMissing = "owner user not found"

// replaceSQL runs as one transaction: either every statement commits or none does.
const replaceSQL = `BEGIN TRANSACTION;
IF array::len((SELECT num FROM $owner)) = 0 { THROW "` + ownerMissing + `" };
DELETE portfolios WHERE user_id = $user_id;
INSERT INTO portfolios $rows;
COMMIT TRANSACTION;`

const deleteOnlySQL = `BEGIN TRANSACTION;
IF array::len((SELECT num FROM $owner)) = 0 { THROW "` + ownerMissing + `" };
DELETE portfolios WHERE user_id = $user_id;
COMMIT TRANSACTION;`

const maxConflictAttempts = 3

type HoldingStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewHoldingStore(db *surrealdb.DB, logger *common.Logger) *HoldingStore {
	return &HoldingStore{
		db:     db,
		logger: logger,
	}
}

func (s *HoldingStore) ReplaceAll(ctx context.Context, userID int64, holdings []models.HoldingInput) ([]*models.Holding, error) {
	normalized, err := models.NormalizeHoldings(holdings)
	if err != nil {
		return nil, common.InvalidRequest(err.Error())
	}

	inserted := make([]*models.Holding, 0, len(normalized))
	rows := make([]map[string]any, 0, len(normalized))
	sql := deleteOnlySQL

	if len(normalized) > 0 {
		// Ids reserved by a replacement that later fails are simply skipped.
		first, err := allocateIDs(ctx, s.db, holdingsTable, len(normalized))
		if err != nil {
			return nil, common.StorageFailure("replace holdings", err)
		}
		now := time.Now().UTC()
		for i, h := range normalized {
			num := first + int64(i)
			rows = append(rows, map[string]any{
				"id":         surrealmodels.NewRecordID(holdingsTable, num),
				"num":        num,
				"user_id":    userID,
				"ticker":     h.Ticker,
				"quantity":   h.Quantity,
				"created_at": now,
			})
			inserted = append(inserted, &models.Holding{
				ID: num, UserID: userID, Ticker: h.Ticker, Quantity: h.Quantity, CreatedAt: now,
			})
		}
		sql = replaceSQL
	}

	vars := map[string]any{
		"owner":   surrealmodels.NewRecordID(usersTable, userID),
		"user_id": userID,
		"rows":    rows,
	}
	// Concurrent replacements for one owner can abort with a write conflict.
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		var results *[]surrealdb.QueryResult[any]
		results, err = surrealdb.Query[any](ctx, s.db, sql, vars)
		if err == nil {
			err = statementError(results)
		}
		if err == nil || !isConflict(err) {
			break
		}
	}
	if err != nil {
		if strings.Contains(err.Error(), ownerMissing) {
			return nil, common.NotFound("User not found")
		}
		return nil, common.StorageFailure("replace holdings", err)
	}

	s.logger.Debug().Int64("user_id", userID).Int("holdings", len(inserted)).Msg("Holdings replaced")
	return inserted, nil
}

func (s *HoldingStore) ListAll(ctx context.Context, userID int64) ([]*models.Holding, error) {
	sql := "SELECT " + holdingSelectFields + " FROM portfolios WHERE user_id = $user_id ORDER BY num ASC"
	results, err := surrealdb.Query[[]holdingRow](ctx, s.db, sql, map[string]any{"user_id": userID})
	if err != nil {
		return nil, common.StorageFailure("list holdings", err)
	}

	holdings := []*models.Holding{}
	for _, r := range firstRows(results) {
		holdings = append(holdings, r.toModel())
	}
	return holdings, nil
}

func (s *HoldingStore) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	sql := "DELETE portfolios WHERE user_id = $user_id RETURN BEFORE"
	results, err := surrealdb.Query[[]holdingRow](ctx, s.db, sql, map[string]any{"user_id": userID})
	if err != nil {
		return 0, common.StorageFailure("delete holdings", err)
	}

	n := int64(len(firstRows(results)))
	s.logger.Debug().Int64("user_id", userID).Int64("deleted", n).Msg("Holdings deleted")
	return n, nil
}

var _ interfaces.HoldingStore = (*HoldingStore)(nil)
