package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta. Price omitido = precio de tienda o precio base.
type SaleItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"min=1"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// RecordSaleRequest body para POST /api/sales. StoreID vacío = tienda del usuario.
type RecordSaleRequest struct {
	StoreID string            `json:"store_id,omitempty"`
	Items   []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// VoidSaleRequest body para POST /api/sales/:id/void.
type VoidSaleRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// SaleItemResponse salida de una línea.
type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	InventoryID string          `json:"inventory_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID         string             `json:"id"`
	StoreID    string             `json:"store_id"`
	ActorID    string             `json:"actor_id"`
	Status     string             `json:"status"`
	Total      decimal.Decimal    `json:"total"`
	Items      []SaleItemResponse `json:"items"`
	VoidedAt   *time.Time         `json:"voided_at,omitempty"`
	VoidedBy   string             `json:"voided_by,omitempty"`
	VoidReason string             `json:"void_reason,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// RestoredItemResponse stock devuelto por una anulación.
type RestoredItemResponse struct {
	ProductID   string `json:"product_id"`
	InventoryID string `json:"inventory_id"`
	Quantity    int    `json:"quantity"`
	NewQuantity int    `json:"new_quantity"`
}

// VoidSaleResponse salida de POST /api/sales/:id/void.
type VoidSaleResponse struct {
	SaleID        string                 `json:"sale_id"`
	OriginalTotal decimal.Decimal        `json:"original_total"`
	RestoredItems []RestoredItemResponse `json:"restored_items"`
	VoidedAt      time.Time              `json:"voided_at"`
	VoidedBy      string                 `json:"voided_by"`
	Reason        string                 `json:"reason"`
	EntryIDs      []string               `json:"entry_ids"`
}
