package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"mangopay-card-gateway/internal/domain"
	"mangopay-card-gateway/internal/domain/ports/repository"
)

var _ repository.RegistrationLog = (*registrationLogRepo)(nil)

type registrationLogRepo struct{ pool *pgxpool.Pool }

func NewRegistrationLogRepo(pool *pgxpool.Pool) *registrationLogRepo {
	return &registrationLogRepo{pool: pool}
}

func (r *registrationLogRepo) Append(ctx context.Context, e *repository.RegistrationLogEntry) error {
	const q = `
INSERT INTO card_registration_log (
  id, session_id, card_registration_id, mango_user_id, outcome, error_code, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7);`

	_, err := r.pool.Exec(ctx, q, e.ID, e.SessionID, e.CardRegistrationID, e.MangoUserID, e.Outcome, e.ErrorCode, e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Duplicate append of the same entry id is harmless.
			return nil
		}
		return domain.ErrOperationFailed
	}
	return nil
}
