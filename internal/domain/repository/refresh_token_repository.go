package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RefreshTokenRepository ledger de refresh tokens (solo se agregan y se revocan).
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	// GetByHashForUpdate bloquea el token hasta el fin de la transacción; nil, nil si no existe.
	GetByHashForUpdate(ctx context.Context, hash string) (*entity.RefreshToken, error)
	// Revoke marca el token revocado solo si seguía activo; ErrInvalidToken si ya estaba revocado.
	Revoke(ctx context.Context, id string, replacedByID *string, at time.Time) error
}
