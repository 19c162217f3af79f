package surrealdb

import (
	"context"
	"time"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// userRow is the stored shape of a user. Num mirrors the integer record key.
type userRow struct {
	Num         int64     `json:"num"`
	FirebaseUID string    `json:"firebase_uid"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:          r.Num,
		FirebaseUID: r.FirebaseUID,
		Email:       r.Email,
		Phone:       r.Phone,
		CreatedAt:   r.CreatedAt,
	}
}

const userSelectFields = "num, firebase_uid, email, phone, created_at"

type UserStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewUserStore(db *surrealdb.DB, logger *common.Logger) *UserStore {
	return &UserStore{
		db:     db,
		logger: logger,
	}
}

func (s *UserStore) GetUserBySubject(ctx context.Context, subject string) (*models.User, error) {
	sql := "SELECT " + userSelectFields + " FROM users WHERE firebase_uid = $uid LIMIT 1"
	results, err := surrealdb.Query[[]userRow](ctx, s.db, sql, map[string]any{"uid": subject})
	if err != nil {
		return nil, common.StorageFailure("get user", err)
	}
	rows := firstRows(results)
	if len(rows) == 0 {
		return nil, common.NotFound("User not found")
	}
	return rows[0].toModel(), nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.FirebaseUID == "" {
		return nil, common.InvalidRequest("firebase_uid is required")
	}

	id, err := allocateIDs(ctx, s.db, usersTable, 1)
	if err != nil {
		return nil, common.StorageFailure("create user", err)
	}

	row := userRow{
		Num:         id,
		FirebaseUID: user.FirebaseUID,
		Email:       user.Email,
		Phone:       user.Phone,
		CreatedAt:   time.Now().UTC(),
	}
	sql := "CREATE $rid CONTENT $user"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(usersTable, id), "user": row}

	if _, err := surrealdb.Query[[]userRow](ctx, s.db, sql, vars); err != nil {
		if isUniqueViolation(err) {
			return nil, common.InvalidRequest("user already exists: " + user.FirebaseUID)
		}
		return nil, common.StorageFailure("create user", err)
	}

	s.logger.Debug().Int64("user_id", id).Str("firebase_uid", row.FirebaseUID).Msg("User created")
	return row.toModel(), nil
}

func (s *UserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	sql := "SELECT " + userSelectFields + " FROM users ORDER BY num ASC"
	results, err := surrealdb.Query[[]userRow](ctx, s.db, sql, nil)
	if err != nil {
		return nil, common.StorageFailure("list users", err)
	}

	users := []*models.User{}
	for _, r := range firstRows(results) {
		users = append(users, r.toModel())
	}
	return users, nil
}

var _ interfaces.UserStore = (*UserStore)(nil)
