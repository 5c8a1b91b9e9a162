package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mangopay-card-gateway/internal/domain"
	"mangopay-card-gateway/internal/domain/model"
	"mangopay-card-gateway/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

// Ensure the adapter implements the port interface.
var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps registration sessions in Redis as JSON under the
// coordinator's namespaced keys. Expiry of abandoned sessions is handled
// here through the key TTL; the protocol never deletes explicitly.
type SessionStore struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionStore(client RedisClient, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute // enough to finish the card form round-trip
	}
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Has(ctx context.Context, key string) (bool, error) {
	return s.client.Exists(ctx, key)
}

func (s *SessionStore) Get(ctx context.Context, key string) (*model.RegistrationSession, error) {
	data, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.RegistrationSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Set(ctx context.Context, key string, session *model.RegistrationSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl)
}

// Finalize re-writes the session in a terminal state, keeping the key's
// remaining TTL. Callers hold the per-session lock, so the read-modify-write
// does not race with another callback for the same session.
func (s *SessionStore) Finalize(ctx context.Context, key string, state model.SessionState) error {
	session, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if session.State.Terminal() {
		return domain.ErrSessionAlreadyFinalized
	}
	session.State = state

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl, err := s.client.TTL(ctx, key)
	if err != nil || ttl <= 0 {
		ttl = s.ttl
	}
	return s.client.Set(ctx, key, data, ttl)
}
