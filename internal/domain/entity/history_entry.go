package entity

import "time"

// ChangeType tipo de cambio registrado en el ledger de inventario.
type ChangeType string

const (
	ChangePurchase    ChangeType = "PURCHASE"
	ChangeSale        ChangeType = "SALE"
	ChangeTransferOut ChangeType = "TRANSFER_OUT"
	ChangeTransferIn  ChangeType = "TRANSFER_IN"
	ChangeAdjustment  ChangeType = "ADJUSTMENT"
	ChangeReturn      ChangeType = "RETURN"
	ChangeDamage      ChangeType = "DAMAGE"
)

// Valid indica si el tipo pertenece al enum.
func (c ChangeType) Valid() bool {
	switch c {
	case ChangePurchase, ChangeSale, ChangeTransferOut, ChangeTransferIn,
		ChangeAdjustment, ChangeReturn, ChangeDamage:
		return true
	}
	return false
}

// Tipos de referencia que enlazan entradas relacionadas.
const (
	RefTypeSale     = "SALE"
	RefTypeSaleVoid = "SALE_VOID"
	RefTypeTransfer = "TRANSFER"
	RefTypeManual   = "MANUAL"
)

// HistoryEntry es una entrada inmutable del ledger: describe exactamente una mutación
// de un InventoryRecord. NewQuantity = PreviousQuantity + QuantityChange.
type HistoryEntry struct {
	ID               string
	Sequence         int64 // orden de aplicación, monotónico; define el orden del ledger
	InventoryID      string
	ProductID        string
	StoreID          string
	ChangeType       ChangeType
	QuantityChange   int
	PreviousQuantity int
	NewQuantity      int
	ReferenceID      string
	ReferenceType    string
	Notes            string
	ActorID          string
	CreatedAt        time.Time
}

// Consistent verifica la aritmética interna de la entrada.
func (e *HistoryEntry) Consistent() bool {
	return e.NewQuantity == e.PreviousQuantity+e.QuantityChange
}
