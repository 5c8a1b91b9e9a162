//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mangopay-card-gateway/internal/domain"
	"mangopay-card-gateway/internal/domain/model"
	"mangopay-card-gateway/internal/domain/ports/adapter"
	"mangopay-card-gateway/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// MockSessionStore is a small in-memory store used by unit tests.
type MockSessionStore struct {
	mu       sync.Mutex
	store    map[string]*model.RegistrationSession
	SetCalls int
	SetFunc  func(ctx context.Context, key string, s *model.RegistrationSession) error
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{store: make(map[string]*model.RegistrationSession)}
}

func (m *MockSessionStore) Has(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[key]
	return ok, nil
}

func (m *MockSessionStore) Get(ctx context.Context, key string) (*model.RegistrationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSessionStore) Set(ctx context.Context, key string, s *model.RegistrationSession) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	cp := *s
	m.store[key] = &cp
	return nil
}

func (m *MockSessionStore) Finalize(ctx context.Context, key string, state model.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[key]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.State.Terminal() {
		return domain.ErrSessionAlreadyFinalized
	}
	s.State = state
	return nil
}

func (m *MockSessionStore) Stored(key string) *model.RegistrationSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store[key]
}

func (m *MockSessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// MockCardRegistrationAPI fakes the remote MangoPay API.
type MockCardRegistrationAPI struct {
	CreateFunc  func(ctx context.Context, req adapter.CardRegistrationCreate) (*model.CardRegistration, error)
	GetFunc     func(ctx context.Context, id string) (*model.CardRegistration, error)
	UpdateFunc  func(ctx context.Context, reg *model.CardRegistration) (*model.CardRegistration, error)
	CreateCalls int
	GetCalls    int
	UpdateCalls int
}

func (m *MockCardRegistrationAPI) Create(ctx context.Context, req adapter.CardRegistrationCreate) (*model.CardRegistration, error) {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return &model.CardRegistration{
		ID:                  "reg-1",
		UserID:              req.UserID,
		Currency:            req.Currency,
		CardType:            req.CardType,
		AccessKey:           "access-key",
		PreregistrationData: "prereg-data",
		CardRegistrationURL: "https://pay.example.test/form",
		Status:              model.RegistrationStatusCreated,
	}, nil
}

func (m *MockCardRegistrationAPI) Get(ctx context.Context, id string) (*model.CardRegistration, error) {
	m.GetCalls++
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return &model.CardRegistration{ID: id, Status: model.RegistrationStatusCreated}, nil
}

func (m *MockCardRegistrationAPI) Update(ctx context.Context, reg *model.CardRegistration) (*model.CardRegistration, error) {
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, reg)
	}
	cp := *reg
	return &cp, nil
}

// MockDispatcher records every dispatched event.
type MockDispatcher struct {
	mu     sync.Mutex
	Events []adapter.RegistrationEvent
}

func (m *MockDispatcher) Dispatch(ctx context.Context, event adapter.RegistrationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

func (m *MockDispatcher) Named(name string) []adapter.RegistrationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []adapter.RegistrationEvent
	for _, e := range m.Events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// MockLocker hands out locks unconditionally unless Err is set.
type MockLocker struct {
	Err         error
	LockCalls   int
	UnlockCalls int
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.LockCalls++
	if m.Err != nil {
		return "", m.Err
	}
	return "token", nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.UnlockCalls++
	return nil
}

// MockRegistrationLog collects audit entries.
type MockRegistrationLog struct {
	mu      sync.Mutex
	Entries []*repository.RegistrationLogEntry
	Err     error
}

func (m *MockRegistrationLog) Append(ctx context.Context, e *repository.RegistrationLogEntry) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, e)
	return nil
}
