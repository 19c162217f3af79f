package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// UserStore reads and provisions rows of the users table.
type UserStore struct {
	db     *sql.DB
	logger *common.Logger
}

func NewUserStore(db *sql.DB, logger *common.Logger) *UserStore {
	return &UserStore{db: db, logger: logger}
}

const userColumns = `id, firebase_uid, email, phone, created_at`

type userScanner interface {
	Scan(dest ...any) error
}

func scanUser(row userScanner) (*models.User, error) {
	var (
		u            models.User
		email, phone sql.NullString
	)
	if err := row.Scan(&u.ID, &u.FirebaseUID, &email, &phone, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Email = email.String
	u.Phone = phone.String
	return &u, nil
}

func (s *UserStore) GetUserBySubject(ctx context.Context, subject string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE firebase_uid = $1`, subject)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NotFound("User not found")
		}
		return nil, common.StorageFailure("get user", err)
	}
	return u, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.FirebaseUID == "" {
		return nil, common.InvalidRequest("firebase_uid is required")
	}

	created := *user
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (firebase_uid, email, phone) VALUES ($1, NULLIF($2, ''), NULLIF($3, '')) RETURNING id, created_at`,
		user.FirebaseUID, user.Email, user.Phone,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.InvalidRequest("user already exists: " + user.FirebaseUID)
		}
		return nil, common.StorageFailure("create user", err)
	}

	s.logger.Debug().Int64("user_id", created.ID).Str("firebase_uid", created.FirebaseUID).Msg("User created")
	return &created, nil
}

func (s *UserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, common.StorageFailure("list users", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, common.StorageFailure("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, common.StorageFailure("list users", err)
	}
	return users, nil
}

var _ interfaces.UserStore = (*UserStore)(nil)
