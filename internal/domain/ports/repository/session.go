package repository

import (
	"context"

	"mangopay-card-gateway/internal/domain/model"
)

// SessionStore is the port for the key/value backend holding registration
// sessions. Keys arrive already namespaced by the coordinator; the store owns
// lifecycle (TTL/eviction) of everything written through Set.
type SessionStore interface {
	Has(ctx context.Context, key string) (bool, error)
	// Get returns the stored session or domain.ErrSessionNotFound when the
	// key is absent or expired.
	Get(ctx context.Context, key string) (*model.RegistrationSession, error)
	Set(ctx context.Context, key string, session *model.RegistrationSession) error
	// Finalize moves the stored session into a terminal state. It fails with
	// domain.ErrSessionAlreadyFinalized when the session is already terminal,
	// so a replayed callback cannot re-finalize.
	Finalize(ctx context.Context, key string, state model.SessionState) error
}
