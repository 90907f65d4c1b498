package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. ACTIVE -> VOIDED (terminal).
const (
	SaleStatusActive = "ACTIVE"
	SaleStatusVoided = "VOIDED"
)

// Sale agrega una o más líneas; Total es la suma de los totales de línea.
// Al anularse conserva el total original y guarda quién, cuándo y por qué.
type Sale struct {
	ID         string
	StoreID    string
	ActorID    string
	Status     string
	Total      decimal.Decimal
	Items      []SaleItem
	VoidedAt   *time.Time
	VoidedBy   string
	VoidReason string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaleItem línea de venta.
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   string
	InventoryID string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// IsVoided indica si la venta ya fue anulada.
func (s *Sale) IsVoided() bool { return s.Status == SaleStatusVoided }

// Clone copia la venta y sus líneas.
func (s *Sale) Clone() *Sale {
	c := *s
	c.Items = append([]SaleItem(nil), s.Items...)
	if s.VoidedAt != nil {
		v := *s.VoidedAt
		c.VoidedAt = &v
	}
	return &c
}
