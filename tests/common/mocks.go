package common

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/marketplay/internal/common"
	"github.com/bobmcallan/marketplay/internal/interfaces"
	"github.com/bobmcallan/marketplay/internal/models"
)

// MockStorage is an in-memory StorageManager for service and handler tests.
// Setting Err makes every store operation fail with a storage error.
type MockStorage struct {
	mu       sync.Mutex
	users    []*models.User
	holdings []*models.Holding
	nextID   int64

	Err     error
	PingErr error

	ReplaceCalls int
	ListCalls    int
	DeleteCalls  int
}

// NewMockStorage creates an empty MockStorage.
func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

// AddUser registers a user with the given subject and returns it.
func (m *MockStorage) AddUser(subject, email string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u := &models.User{ID: m.nextID, FirebaseUID: subject, Email: email, CreatedAt: time.Now()}
	m.users = append(m.users, u)
	return u
}

func (m *MockStorage) UserStore() interfaces.UserStore       { return (*mockUserStore)(m) }
func (m *MockStorage) HoldingStore() interfaces.HoldingStore { return (*mockHoldingStore)(m) }
func (m *MockStorage) Backend() string                       { return "mock" }
func (m *MockStorage) Migrate(ctx context.Context) error     { return m.Err }
func (m *MockStorage) Close() error                          { return nil }

func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingErr != nil {
		return common.StorageFailure("ping", m.PingErr)
	}
	return nil
}

type mockUserStore MockStorage

func (s *mockUserStore) GetUserBySubject(ctx context.Context, subject string) (*models.User, error) {
	m := (*MockStorage)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, common.StorageFailure("get user", m.Err)
	}
	for _, u := range m.users {
		if u.FirebaseUID == subject {
			return u, nil
		}
	}
	return nil, common.NotFound("User not found")
}

func (s *mockUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	m := (*MockStorage)(s)
	if m.Err != nil {
		return nil, common.StorageFailure("create user", m.Err)
	}
	if _, err := s.GetUserBySubject(ctx, user.FirebaseUID); err == nil {
		return nil, common.InvalidRequest("user already exists: " + user.FirebaseUID)
	}
	u := m.AddUser(user.FirebaseUID, user.Email)
	u.Phone = user.Phone
	return u, nil
}

func (s *mockUserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	m := (*MockStorage)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, common.StorageFailure("list users", m.Err)
	}
	return append([]*models.User{}, m.users...), nil
}

type mockHoldingStore MockStorage

func (s *mockHoldingStore) ReplaceAll(ctx context.Context, userID int64, holdings []models.HoldingInput) ([]*models.Holding, error) {
	m := (*MockStorage)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceCalls++
	if m.Err != nil {
		return nil, common.StorageFailure("replace holdings", m.Err)
	}
	normalized, err := models.NormalizeHoldings(holdings)
	if err != nil {
		return nil, common.InvalidRequest(err.Error())
	}

	kept := m.holdings[:0]
	for _, h := range m.holdings {
		if h.UserID != userID {
			kept = append(kept, h)
		}
	}
	m.holdings = kept

	inserted := make([]*models.Holding, 0, len(normalized))
	for _, h := range normalized {
		m.nextID++
		row := &models.Holding{ID: m.nextID, UserID: userID, Ticker: h.Ticker, Quantity: h.Quantity, CreatedAt: time.Now()}
		m.holdings = append(m.holdings, row)
		inserted = append(inserted, row)
	}
	return inserted, nil
}

func (s *mockHoldingStore) ListAll(ctx context.Context, userID int64) ([]*models.Holding, error) {
	m := (*MockStorage)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.Err != nil {
		return nil, common.StorageFailure("list holdings", m.Err)
	}
	out := []*models.Holding{}
	for _, h := range m.holdings {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *mockHoldingStore) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	m := (*MockStorage)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.Err != nil {
		return 0, common.StorageFailure("delete holdings", m.Err)
	}
	var n int64
	kept := m.holdings[:0]
	for _, h := range m.holdings {
		if h.UserID == userID {
			n++
			continue
		}
		kept = append(kept, h)
	}
	m.holdings = kept
	return n, nil
}

var _ interfaces.StorageManager = (*MockStorage)(nil)
