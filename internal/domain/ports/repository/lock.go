package repository

import (
	"context"
	"time"
)

// SessionLocker serializes callback processing per session id. TryLock
// returns a token to be handed back to Unlock, or domain.ErrSessionLocked
// when another request holds the lock.
type SessionLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
