package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.RefreshTokenRepository = (*RefreshTokenRepo)(nil)

// RefreshTokenRepo guarda solo el hash del token; el valor en claro nunca llega a la base.
type RefreshTokenRepo struct {
	q Querier
}

func NewRefreshTokenRepository(q Querier) *RefreshTokenRepo {
	return &RefreshTokenRepo{q: q}
}

func (r *RefreshTokenRepo) Create(ctx context.Context, t *entity.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked_at, replaced_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.RevokedAt, t.ReplacedByID, t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: refresh token", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// GetByHashForUpdate bloquea la fila: dos rotaciones concurrentes del mismo token se serializan.
func (r *RefreshTokenRepo) GetByHashForUpdate(ctx context.Context, hash string) (*entity.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by_id::text, created_at
		FROM refresh_tokens WHERE token_hash = $1 FOR UPDATE`
	var t entity.RefreshToken
	err := r.q.QueryRow(ctx, query, hash).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.ReplacedByID, &t.CreatedAt,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

// Revoke marca el token como revocado; falla si ya lo estaba.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, id string, replacedByID *string, at time.Time) error {
	query := `
		UPDATE refresh_tokens SET revoked_at = $1, replaced_by_id = $2
		WHERE id = $3 AND revoked_at IS NULL`
	tag, err := r.q.Exec(ctx, query, at, replacedByID, id)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidToken
	}
	return nil
}
