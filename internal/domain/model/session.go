package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SessionState string

const (
	SessionStateCreated           SessionState = "created"             // session built, no remote request yet
	SessionStateAwaitingCallback  SessionState = "awaiting_callback"   // remote registration created; user redirected
	SessionStateValidated         SessionState = "validated"           // terminal
	SessionStateErrorInValidating SessionState = "error_in_validating" // terminal
	SessionStateError             SessionState = "error"               // terminal
)

// Terminal reports whether the state ends the session's active protocol.
func (s SessionState) Terminal() bool {
	switch s {
	case SessionStateValidated, SessionStateErrorInValidating, SessionStateError:
		return true
	}
	return false
}

// PayerRef identifies the user who started a card registration. The session
// only correlates; it never owns the user record.
type PayerRef struct {
	ID      string `json:"id"`       // internal user id
	MangoID string `json:"mango_id"` // provider-assigned id, required for any remote call
}

// RegistrationSession correlates one user with one outstanding remote card
// registration across the redirect round-trip. SessionID is fixed at
// construction; CardRegistrationID is stamped once during prepare.
type RegistrationSession struct {
	SessionID          string          `json:"session_id"`
	CardRegistrationID string          `json:"card_registration_id"`
	Payer              PayerRef        `json:"payer"`
	BusinessData       json.RawMessage `json:"business_data,omitempty"` // caller-defined, never inspected
	State              SessionState    `json:"state"`
	CreatedAt          time.Time       `json:"created_at"`
}

func NewRegistrationSession() *RegistrationSession {
	return &RegistrationSession{
		SessionID: uuid.NewString(),
		State:     SessionStateCreated,
		CreatedAt: time.Now(),
	}
}

// RegistrationResult carries what the view layer needs to render the card
// form and redirect the user. Produced by prepare, never persisted.
type RegistrationResult struct {
	ID                  string `json:"id"`
	AccessKey           string `json:"access_key"`
	PreregistrationData string `json:"preregistration_data"`
	CardRegistrationURL string `json:"card_registration_url"`
	ReturnURL           string `json:"return_url"`
}
