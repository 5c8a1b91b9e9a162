package adapter

import (
	"context"

	"mangopay-card-gateway/internal/domain/model"
)

// Event names for the card registration protocol. The three terminal kinds
// acknowledge the provider callback; requested fires at prepare time.
const (
	EventRegistrationRequested         = "card_registration.requested"
	EventRegistrationValidated         = "card_registration.validated"
	EventRegistrationErrorInValidating = "card_registration.error_in_validating"
	EventRegistrationError             = "card_registration.error"
)

// RegistrationEvent is the payload handed to listeners. ResponseContext
// carries request-scoped data (request id, remote addr) threaded through by
// the web layer for the listener's own use.
type RegistrationEvent struct {
	Name            string
	Session         *model.RegistrationSession
	Registration    *model.CardRegistration
	ResponseContext map[string]string
}

// EventDispatcher is the hex port for event delivery. Dispatch must not fail
// the calling protocol; listener errors stay on the listener's side.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event RegistrationEvent)
}
