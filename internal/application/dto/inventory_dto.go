package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenInventoryRequest body para POST /api/inventory.
type OpenInventoryRequest struct {
	ProductID       string           `json:"product_id" validate:"required"`
	StoreID         string           `json:"store_id" validate:"required"`
	InitialQuantity int              `json:"initial_quantity" validate:"min=0"`
	ReorderLevel    *int             `json:"reorder_level,omitempty" validate:"omitempty,min=0"`
	OptimalLevel    *int             `json:"optimal_level,omitempty" validate:"omitempty,min=0"`
	PriceOverride   *decimal.Decimal `json:"price_override,omitempty"`
}

// ThresholdsRequest body para PATCH /api/inventory/:id/thresholds. Campos nil = sin cambio.
type ThresholdsRequest struct {
	ReorderLevel       *int             `json:"reorder_level,omitempty" validate:"omitempty,min=0"`
	OptimalLevel       *int             `json:"optimal_level,omitempty" validate:"omitempty,min=0"`
	PriceOverride      *decimal.Decimal `json:"price_override,omitempty"`
	ClearPriceOverride bool             `json:"clear_price_override,omitempty"`
}

// AdjustmentRequest body para POST /api/inventory/:id/adjustments.
type AdjustmentRequest struct {
	Delta      int    `json:"delta" validate:"required"`
	ChangeType string `json:"change_type" validate:"required,oneof=PURCHASE RETURN DAMAGE ADJUSTMENT"`
	Notes      string `json:"notes,omitempty"`
}

// MovementRequest body para POST /api/inventory/movements (mutación genérica).
type MovementRequest struct {
	ProductID     string `json:"product_id" validate:"required"`
	StoreID       string `json:"store_id" validate:"required"`
	Delta         int    `json:"delta" validate:"required"`
	ChangeType    string `json:"change_type" validate:"required"`
	ReferenceID   string `json:"reference_id,omitempty"`
	ReferenceType string `json:"reference_type,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// InventoryRecordResponse salida de un registro de inventario.
type InventoryRecordResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	StoreID       string           `json:"store_id"`
	Quantity      int              `json:"quantity"`
	ReorderLevel  *int             `json:"reorder_level,omitempty"`
	OptimalLevel  *int             `json:"optimal_level,omitempty"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
	BelowReorder  bool             `json:"below_reorder"`
	Version       int64            `json:"version"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// HistoryEntryResponse salida de una entrada del ledger.
type HistoryEntryResponse struct {
	ID               string    `json:"id"`
	Sequence         int64     `json:"sequence"`
	InventoryID      string    `json:"inventory_id"`
	ProductID        string    `json:"product_id"`
	StoreID          string    `json:"store_id"`
	ChangeType       string    `json:"change_type"`
	QuantityChange   int       `json:"quantity_change"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	ReferenceID      string    `json:"reference_id,omitempty"`
	ReferenceType    string    `json:"reference_type,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	ActorID          string    `json:"actor_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// MutationResponse registro resultante y entrada creada.
type MutationResponse struct {
	Record         InventoryRecordResponse `json:"record"`
	HistoryEntryID string                  `json:"history_entry_id,omitempty"`
}

// InventoryListResponse lista paginada de registros.
type InventoryListResponse struct {
	Items []InventoryRecordResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un registro en o bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	InventoryID         string          `json:"inventory_id"`
	ProductID           string          `json:"product_id"`
	StoreID             string          `json:"store_id"`
	SKU                 string          `json:"sku"`
	ProductName         string          `json:"product_name"`
	CurrentStock        int             `json:"current_stock"`
	ReorderLevel        int             `json:"reorder_level"`
	TargetLevel         int             `json:"target_level"`          // OptimalLevel o 2 x ReorderLevel
	SuggestedOrderQty   int             `json:"suggested_order_qty"`   // TargetLevel - CurrentStock
	UnitPrice           decimal.Decimal `json:"unit_price"`            // precio de tienda o base
	EstimatedOrderValue decimal.Decimal `json:"estimated_order_value"` // SuggestedOrderQty * UnitPrice
	Priority            int             `json:"priority"`              // 1 = más urgente
}
