package entity

import "time"

// Store representa una tienda/sucursal que mantiene inventario propio.
type Store struct {
	ID        string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
