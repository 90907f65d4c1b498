package entity

import "time"

// Estados derivados de un refresh token.
const (
	TokenActive  = "ACTIVE"
	TokenRotated = "ROTATED" // revocado y reemplazado por un sucesor
	TokenRevoked = "REVOKED" // revocado explícitamente (logout)
	TokenExpired = "EXPIRED"
)

// RefreshToken token de un solo uso; se guarda solo el hash del valor entregado al cliente.
// Usarlo = revocarlo y crear su sucesor en la misma unidad atómica.
type RefreshToken struct {
	ID           string
	UserID       string
	TokenHash    string
	ExpiresAt    time.Time
	RevokedAt    *time.Time
	ReplacedByID *string
	CreatedAt    time.Time
}

// State calcula el estado del token en el instante now.
func (t *RefreshToken) State(now time.Time) string {
	switch {
	case t.RevokedAt != nil && t.ReplacedByID != nil:
		return TokenRotated
	case t.RevokedAt != nil:
		return TokenRevoked
	case !now.Before(t.ExpiresAt):
		return TokenExpired
	}
	return TokenActive
}

// Clone copia el token.
func (t *RefreshToken) Clone() *RefreshToken {
	c := *t
	if t.RevokedAt != nil {
		v := *t.RevokedAt
		c.RevokedAt = &v
	}
	if t.ReplacedByID != nil {
		v := *t.ReplacedByID
		c.ReplacedByID = &v
	}
	return &c
}
