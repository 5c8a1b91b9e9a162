package adapter

import (
	"context"

	"mangopay-card-gateway/internal/domain/model"
)

// CardRegistrationCreate is the request sent to the provider when a new
// card registration is opened for a user.
type CardRegistrationCreate struct {
	UserID   string // provider-assigned user id
	Currency string
	CardType string
}

// CardRegistrationAPI is the hex port for the remote MangoPay card
// registration API. Timeouts and retries belong to the implementation.
type CardRegistrationAPI interface {
	// Create opens a new card registration on the provider side and returns
	// the record carrying the access key, preregistration token and form URL.
	Create(ctx context.Context, req CardRegistrationCreate) (*model.CardRegistration, error)
	// Get fetches the current provider-side record by id.
	Get(ctx context.Context, id string) (*model.CardRegistration, error)
	// Update pushes the mutated record (RegistrationData) back to the
	// provider and returns the record as the provider now sees it.
	Update(ctx context.Context, reg *model.CardRegistration) (*model.CardRegistration, error)
}
