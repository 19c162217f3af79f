package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lockUserSQL       = regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1 FOR UPDATE`)
	deleteHoldingsSQL = regexp.QuoteMeta(`DELETE FROM portfolios WHERE user_id = $1`)
	insertHoldingSQL  = regexp.QuoteMeta(`INSERT INTO portfolios (user_id, ticker, quantity) VALUES ($1, $2, $3) RETURNING id, created_at`)
	listHoldingsSQL   = regexp.QuoteMeta(`SELECT id, user_id, ticker, quantity, created_at FROM portfolios WHERE user_id = $1 ORDER BY id`)
	getUserSQL        = regexp.QuoteMeta(`SELECT id, firebase_uid, email, phone, created_at FROM users WHERE firebase_uid = $1`)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestReplaceAll_Transaction(t *testing.T) {
	db, mock := newMock(t)
	store := NewHoldingStore(db, common.NewSilentLogger())
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(lockUserSQL).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(deleteHoldingsSQL).WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(insertHoldingSQL).WithArgs(int64(7), "AAPL", 15.5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(10, now))
	mock.ExpectQuery(insertHoldingSQL).WithArgs(int64(7), "MSFT", 10.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))
	mock.ExpectCommit()

	got, err := store.ReplaceAll(context.Background(), 7, []models.HoldingInput{
		{Ticker: "aapl", Quantity: 15.5},
		{Ticker: "MSFT", Quantity: 10.0},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(10), got[0].ID)
	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.Equal(t, int64(7), got[0].UserID)
	assert.Equal(t, int64(11), got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_InsertFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	store := NewHoldingStore(db, common.NewSilentLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(lockUserSQL).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(deleteHoldingsSQL).WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(insertHoldingSQL).WithArgs(int64(7), "AAPL", 15.5).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := store.ReplaceAll(context.Background(), 7, models.DemoHoldings())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_UnknownOwner(t *testing.T) {
	db, mock := newMock(t)
	store := NewHoldingStore(db, common.NewSilentLogger())

	mock.ExpectBegin()
	mock.ExpectQuery(lockUserSQL).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := store.ReplaceAll(context.Background(), 99, models.DemoHoldings())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_InvalidInputTouchesNothing(t *testing.T) {
	db, mock := newMock(t)
	store := NewHoldingStore(db, common.NewSilentLogger())

	_, err := store.ReplaceAll(context.Background(), 7, []models.HoldingInput{{Ticker: "AAPL", Quantity: -1}})
	require.Error(t, err)
	assert.Equal(t, common.KindInvalidRequest, common.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_BeginFailure(t *testing.T) {
	db, mock := newMock(t)
	store := NewHoldingStore(db, common.NewSilentLogger())

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	_, err := store.ReplaceAll(context.Background(), 7, models.DemoHoldings())
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll(t *testing.T) {
	db, mock := newMock(t)
	store := NewHoldingStore(db, common.NewSilentLogger())
	now := time.Now()

	mock.ExpectQuery(listHoldingsSQL).WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "ticker", "quantity", "created_at"}).
			AddRow(1, 7, "AAPL", 15.5, now).
			AddRow(2, 7, "MSFT", 10.0, now))

	got, err := store.ListAll(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.Equal(t, 10.0, got[1].Quantity)

	mock.ExpectQuery(listHoldingsSQL).WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "ticker", "quantity", "created_at"}))

	empty, err := store.ListAll(context.Background(), 8)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll_QueryFailure(t *testing.T) {
	db, mock := newMock(t)
	store := NewHoldingStore(db, common.NewSilentLogger())

	mock.ExpectQuery(listHoldingsSQL).WithArgs(int64(7)).WillReturnError(sql.ErrConnDone)

	_, err := store.ListAll(context.Background(), 7)
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestDeleteAll(t *testing.T) {
	db, mock := newMock(t)
	store := NewHoldingStore(db, common.NewSilentLogger())

	mock.ExpectExec(deleteHoldingsSQL).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(deleteHoldingsSQL).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := store.DeleteAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = store.DeleteAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserBySubject(t *testing.T) {
	db, mock := newMock(t)
	store := NewUserStore(db, common.NewSilentLogger())
	now := time.Now()

	mock.ExpectQuery(getUserSQL).WithArgs("test_user_123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "firebase_uid", "email", "phone", "created_at"}).
			AddRow(1, "test_user_123", "test@marketplay.ai", nil, now))

	u, err := store.GetUserBySubject(context.Background(), "test_user_123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "test@marketplay.ai", u.Email)
	assert.Empty(t, u.Phone)

	mock.ExpectQuery(getUserSQL).WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "firebase_uid", "email", "phone", "created_at"}))

	_, err = store.GetUserBySubject(context.Background(), "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "User not found", common.MessageOf(err))

	mock.ExpectQuery(getUserSQL).WithArgs("boom").WillReturnError(errors.New("network down"))
	_, err = store.GetUserBySubject(context.Background(), "boom")
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_RequiresSubject(t *testing.T) {
	db, mock := newMock(t)
	store := NewUserStore(db, common.NewSilentLogger())

	_, err := store.CreateUser(context.Background(), &models.User{Email: "x@example.com"})
	assert.Equal(t, common.KindInvalidRequest, common.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateAppliesSchema(t *testing.T) {
	db, mock := newMock(t)
	m := NewManagerWithDB(db, common.NewSilentLogger())

	for range schema {
		mock.ExpectExec("CREATE (TABLE|INDEX) IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, m.Migrate(context.Background()))
	assert.Equal(t, common.BackendPostgres, m.Backend())
	assert.NoError(t, mock.ExpectationsWereMet())
}
