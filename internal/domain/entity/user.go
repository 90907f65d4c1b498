package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema (asignado a una tienda).
type User struct {
	ID           string
	StoreID      string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor es la identidad que ejecuta una operación (la provee la capa de autenticación).
type Actor struct {
	ID      string
	Role    string
	StoreID string
}

// IsPrivileged indica si el rol puede saltarse restricciones de tienda y ventana de anulación.
func (a Actor) IsPrivileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}
