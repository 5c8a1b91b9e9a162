package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"mangopay-card-gateway/internal/domain"
	"mangopay-card-gateway/internal/domain/model"
	"mangopay-card-gateway/internal/domain/ports/adapter"
	"mangopay-card-gateway/internal/domain/ports/repository"
	"mangopay-card-gateway/internal/infra/metrics"
)

const (
	// SessionPrefix namespaces session keys so the backing store can be
	// shared with unrelated data.
	SessionPrefix = "MANGO_CARD_REGISTRATION"

	// DefaultCardType is used when the caller does not pick one.
	DefaultCardType = "CB_VISA_MASTERCARD"

	defaultCurrency = "EUR"
	lockTTL         = 30 * time.Second
)

// Compile-time check
var _ RegistrationUseCase = (*registrationUC)(nil)

// RegistrationUseCase orchestrates the card registration protocol: prepare
// the remote registration, persist the correlation session, and reconcile
// the provider's asynchronous callback against it.
type RegistrationUseCase interface {
	// Prepare opens a remote card registration for the payer, persists the
	// session and returns the data needed to render the card form.
	Prepare(ctx context.Context, payer model.PayerRef, session *model.RegistrationSession, cardType string) (*model.RegistrationResult, error)
	// SessionByID resolves a stored session from a callback's session id.
	SessionByID(ctx context.Context, sessionID string) (*model.RegistrationSession, error)
	// RemoteRegistration fetches the provider-side record by id.
	RemoteRegistration(ctx context.Context, cardRegistrationID string) (*model.CardRegistration, error)
	// ProcessSuccessCallback reconciles a success redirect from the provider.
	ProcessSuccessCallback(ctx context.Context, sessionID, data string, respCtx map[string]string) error
	// ProcessErrorCallback reconciles an error redirect from the provider.
	ProcessErrorCallback(ctx context.Context, sessionID, errorCode string, respCtx map[string]string) error
}

type registrationUC struct {
	api       adapter.CardRegistrationAPI
	store     repository.SessionStore
	locker    repository.SessionLocker
	events    adapter.EventDispatcher
	auditLog  repository.RegistrationLog // optional; nil disables auditing
	returnURL string                     // absolute URL of the callback endpoint
	log       *zerolog.Logger
}

func NewRegistrationUseCase(
	api adapter.CardRegistrationAPI,
	store repository.SessionStore,
	locker repository.SessionLocker,
	events adapter.EventDispatcher,
	auditLog repository.RegistrationLog,
	returnURL string,
	logger *zerolog.Logger,
) *registrationUC {
	return &registrationUC{
		api:       api,
		store:     store,
		locker:    locker,
		events:    events,
		auditLog:  auditLog,
		returnURL: returnURL,
		log:       logger,
	}
}

func sessionKey(sessionID string) string { return SessionPrefix + sessionID }
func lockKey(sessionID string) string    { return SessionPrefix + "_LOCK:" + sessionID }

func (u *registrationUC) Prepare(ctx context.Context, payer model.PayerRef, session *model.RegistrationSession, cardType string) (*model.RegistrationResult, error) {
	if payer.MangoID == "" {
		return nil, domain.ErrInvalidMangoEntity
	}
	if cardType == "" {
		cardType = DefaultCardType
	}

	reg, err := u.api.Create(ctx, adapter.CardRegistrationCreate{
		UserID:   payer.MangoID,
		Currency: defaultCurrency,
		CardType: cardType,
	})
	if err != nil {
		return nil, fmt.Errorf("create card registration: %w", err)
	}
	if reg == nil || reg.ID == "" {
		return nil, domain.ErrBadMangoReturn
	}

	session.CardRegistrationID = reg.ID
	session.Payer = payer
	session.State = model.SessionStateAwaitingCallback
	if err := u.store.Set(ctx, sessionKey(session.SessionID), session); err != nil {
		return nil, fmt.Errorf("store registration session: %w", err)
	}

	result := &model.RegistrationResult{
		ID:                  reg.ID,
		AccessKey:           reg.AccessKey,
		PreregistrationData: reg.PreregistrationData,
		CardRegistrationURL: reg.CardRegistrationURL,
		ReturnURL:           u.buildReturnURL(session.SessionID),
	}

	u.events.Dispatch(ctx, adapter.RegistrationEvent{
		Name:         adapter.EventRegistrationRequested,
		Session:      session,
		Registration: reg,
	})
	u.audit(ctx, session, "prepared", "")
	metrics.IncPrepared()

	u.log.Info().
		Str("session_id", session.SessionID).
		Str("registration_id", reg.ID).
		Msg("card registration prepared")
	return result, nil
}

// buildReturnURL embeds the session id as a query parameter so the provider
// round-trips it back unmodified.
func (u *registrationUC) buildReturnURL(sessionID string) string {
	sep := "?"
	if ret, err := url.Parse(u.returnURL); err == nil && ret.RawQuery != "" {
		sep = "&"
	}
	return u.returnURL + sep + "registrationSessionId=" + url.QueryEscape(sessionID)
}

func (u *registrationUC) SessionByID(ctx context.Context, sessionID string) (*model.RegistrationSession, error) {
	key := sessionKey(sessionID)
	ok, err := u.store.Has(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("probe registration session: %w", err)
	}
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return u.store.Get(ctx, key)
}

func (u *registrationUC) RemoteRegistration(ctx context.Context, cardRegistrationID string) (*model.CardRegistration, error) {
	reg, err := u.api.Get(ctx, cardRegistrationID)
	if err != nil {
		return nil, fmt.Errorf("fetch card registration %s: %w", cardRegistrationID, err)
	}
	if reg == nil || reg.ID == "" {
		return nil, domain.ErrBadMangoReturn
	}
	return reg, nil
}

// resolveCallback is the shared front half of both callback paths: lock the
// session, load it, refuse replays, and fetch the remote record.
func (u *registrationUC) resolveCallback(ctx context.Context, sessionID string) (*model.RegistrationSession, *model.CardRegistration, func(), error) {
	token, err := u.locker.TryLock(ctx, lockKey(sessionID), lockTTL)
	if err != nil {
		return nil, nil, nil, err
	}
	unlock := func() {
		if err := u.locker.Unlock(context.WithoutCancel(ctx), lockKey(sessionID), token); err != nil {
			u.log.Warn().Err(err).Str("session_id", sessionID).Msg("session unlock failed")
		}
	}

	session, err := u.SessionByID(ctx, sessionID)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}
	if session.State.Terminal() {
		unlock()
		return nil, nil, nil, domain.ErrSessionAlreadyFinalized
	}
	if session.CardRegistrationID == "" {
		unlock()
		return nil, nil, nil, domain.ErrInvalidMangoEntity
	}

	reg, err := u.RemoteRegistration(ctx, session.CardRegistrationID)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}
	return session, reg, unlock, nil
}

func (u *registrationUC) ProcessSuccessCallback(ctx context.Context, sessionID, data string, respCtx map[string]string) error {
	session, reg, unlock, err := u.resolveCallback(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	reg.RegistrationData = "data=" + data
	updated, upErr := u.api.Update(ctx, reg)
	if upErr == nil && updated != nil {
		reg = updated
	}

	if upErr == nil && reg.Validated() {
		u.finalize(ctx, session, model.SessionStateValidated)
		u.events.Dispatch(ctx, adapter.RegistrationEvent{
			Name:            adapter.EventRegistrationValidated,
			Session:         session,
			Registration:    reg,
			ResponseContext: respCtx,
		})
		u.audit(ctx, session, "validated", "")
		metrics.IncCallback("validated")
		return nil
	}

	// The HTTP turnaround with the provider is already done, so an update
	// failure becomes a terminal event instead of a caller-visible error.
	if upErr != nil {
		u.log.Warn().Err(upErr).
			Str("session_id", session.SessionID).
			Str("registration_id", session.CardRegistrationID).
			Msg("card registration update failed")
	}
	u.finalize(ctx, session, model.SessionStateErrorInValidating)
	u.events.Dispatch(ctx, adapter.RegistrationEvent{
		Name:            adapter.EventRegistrationErrorInValidating,
		Session:         session,
		Registration:    reg,
		ResponseContext: respCtx,
	})
	u.audit(ctx, session, "error_in_validating", reg.ResultCode)
	metrics.IncCallback("error_in_validating")
	return nil
}

func (u *registrationUC) ProcessErrorCallback(ctx context.Context, sessionID, errorCode string, respCtx map[string]string) error {
	session, reg, unlock, err := u.resolveCallback(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	reg.RegistrationData = "errorCode=" + errorCode
	updated, upErr := u.api.Update(ctx, reg)
	if upErr == nil && updated != nil {
		// Event payload carries the post-update record on success, the
		// pre-update snapshot otherwise.
		reg = updated
	} else if upErr != nil {
		u.log.Warn().Err(upErr).
			Str("session_id", session.SessionID).
			Str("registration_id", session.CardRegistrationID).
			Msg("card registration error update failed")
	}

	u.finalize(ctx, session, model.SessionStateError)
	u.events.Dispatch(ctx, adapter.RegistrationEvent{
		Name:            adapter.EventRegistrationError,
		Session:         session,
		Registration:    reg,
		ResponseContext: respCtx,
	})
	u.audit(ctx, session, "error", errorCode)
	metrics.IncCallback("error")
	return nil
}

func (u *registrationUC) finalize(ctx context.Context, session *model.RegistrationSession, state model.SessionState) {
	session.State = state
	if err := u.store.Finalize(ctx, sessionKey(session.SessionID), state); err != nil {
		u.log.Warn().Err(err).
			Str("session_id", session.SessionID).
			Str("state", string(state)).
			Msg("session finalize failed")
	}
}

func (u *registrationUC) audit(ctx context.Context, session *model.RegistrationSession, outcome, errorCode string) {
	if u.auditLog == nil {
		return
	}
	entry := &repository.RegistrationLogEntry{
		ID:                 ulid.Make().String(),
		SessionID:          session.SessionID,
		CardRegistrationID: session.CardRegistrationID,
		MangoUserID:        session.Payer.MangoID,
		Outcome:            outcome,
		ErrorCode:          errorCode,
		CreatedAt:          time.Now(),
	}
	if err := u.auditLog.Append(ctx, entry); err != nil {
		u.log.Warn().Err(err).Str("session_id", session.SessionID).Msg("audit append failed")
	}
}
