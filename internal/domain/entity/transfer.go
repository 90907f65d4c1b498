package entity

import "time"

// Estados de un traslado entre tiendas.
// PENDING -> COMPLETED | CANCELLED | REJECTED (todos terminales).
const (
	TransferPending   = "PENDING"
	TransferCompleted = "COMPLETED"
	TransferCancelled = "CANCELLED"
	TransferRejected  = "REJECTED"
)

// ProductTransfer registra el movimiento de un producto entre dos tiendas.
// ReferenceID enlaza las entradas TRANSFER_OUT y TRANSFER_IN del ledger.
type ProductTransfer struct {
	ID          string
	ProductID   string
	FromStoreID string
	ToStoreID   string
	Quantity    int
	Status      string
	ReferenceID string
	RequestedBy string
	ResolvedBy  string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// CanTransition indica si el traslado puede pasar al estado indicado.
func (t *ProductTransfer) CanTransition(to string) bool {
	if t.Status != TransferPending {
		return false
	}
	switch to {
	case TransferCompleted, TransferCancelled, TransferRejected:
		return true
	}
	return false
}

// Clone copia el traslado.
func (t *ProductTransfer) Clone() *ProductTransfer {
	c := *t
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		c.CompletedAt = &v
	}
	return &c
}
