package repository

import (
	"context"
	"time"
)

// RegistrationLogEntry is one audit row recording a protocol outcome.
type RegistrationLogEntry struct {
	ID                 string
	SessionID          string
	CardRegistrationID string
	MangoUserID        string
	Outcome            string // prepared | validated | error_in_validating | error
	ErrorCode          string
	CreatedAt          time.Time
}

// RegistrationLog is an append-only audit trail of registration outcomes.
// Writes are best-effort from the coordinator's point of view.
type RegistrationLog interface {
	Append(ctx context.Context, entry *RegistrationLogEntry) error
}
