package dto

import "time"

// TransferRequest body para POST /api/transfers y POST /api/transfers/requests.
type TransferRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	FromStoreID string `json:"from_store_id" validate:"required"`
	ToStoreID   string `json:"to_store_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=1"`
	Notes       string `json:"notes,omitempty"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID          string     `json:"id"`
	ProductID   string     `json:"product_id"`
	FromStoreID string     `json:"from_store_id"`
	ToStoreID   string     `json:"to_store_id"`
	Quantity    int        `json:"quantity"`
	Status      string     `json:"status"`
	ReferenceID string     `json:"reference_id"`
	RequestedBy string     `json:"requested_by"`
	ResolvedBy  string     `json:"resolved_by,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
