package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/ec-storefront/internal/domain/user"
)

// MockUserStore is an in-memory user.Repository for testing
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]*user.User

	InsertCalls []string
	UpdateCalls []string
	DeleteCalls []string

	Err error
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:       make(map[string]*user.User),
		InsertCalls: make([]string, 0),
		UpdateCalls: make([]string, 0),
		DeleteCalls: make([]string, 0),
	}
}

func copyUser(u *user.User) *user.User {
	cp := *u
	if u.TokenExpiry != nil {
		t := *u.TokenExpiry
		cp.TokenExpiry = &t
	}
	if u.ResetExpiry != nil {
		t := *u.ResetExpiry
		cp.ResetExpiry = &t
	}
	return &cp
}

// SetUser stores u directly without recording a call.
func (m *MockUserStore) SetUser(u *user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.UserID] = copyUser(u)
}

// GetData returns a stored user without recording a call.
func (m *MockUserStore) GetData(userID string) (*user.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, false
	}
	return copyUser(u), true
}

func (m *MockUserStore) emailTakenLocked(u *user.User) bool {
	for id, existing := range m.users {
		if id != u.UserID && existing.Email == u.Email {
			return true
		}
	}
	return false
}

func (m *MockUserStore) Insert(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCalls = append(m.InsertCalls, u.UserID)
	if m.Err != nil {
		return m.Err
	}
	if m.emailTakenLocked(u) {
		return user.ErrEmailTaken
	}
	m.users[u.UserID] = copyUser(u)
	return nil
}

func (m *MockUserStore) Update(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, u.UserID)
	if m.Err != nil {
		return m.Err
	}
	if m.emailTakenLocked(u) {
		return user.ErrEmailTaken
	}
	if _, ok := m.users[u.UserID]; ok {
		m.users[u.UserID] = copyUser(u)
	}
	return nil
}

func (m *MockUserStore) findLocked(match func(*user.User) bool) (*user.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (m *MockUserStore) FindByID(_ context.Context, userID string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(func(u *user.User) bool { return u.UserID == userID })
}

func (m *MockUserStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(func(u *user.User) bool { return u.Email == email })
}

func (m *MockUserStore) FindByVerificationToken(_ context.Context, token string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(func(u *user.User) bool { return token != "" && u.VerificationToken == token })
}

func (m *MockUserStore) FindByResetToken(_ context.Context, token string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findLocked(func(u *user.User) bool { return token != "" && u.ResetToken == token })
}

func (m *MockUserStore) List(_ context.Context) ([]*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockUserStore) Delete(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, userID)
	if m.Err != nil {
		return false, m.Err
	}
	if _, ok := m.users[userID]; !ok {
		return false, nil
	}
	delete(m.users, userID)
	return true, nil
}
