package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// EntryMeta datos descriptivos de una mutación (quién, por qué, con qué referencia).
type EntryMeta struct {
	ChangeType    entity.ChangeType
	ActorID       string
	ReferenceID   string
	ReferenceType string
	Notes         string
}

// NextEntry calcula la entrada del ledger para aplicar delta al registro (servicio de dominio puro).
// No modifica rec. Falla si delta es cero o si el resultado sería negativo:
// ErrInsufficientStock para SALE/TRANSFER_OUT, ErrInvalidOperation para el resto.
func NextEntry(rec *entity.InventoryRecord, delta int, meta EntryMeta, now time.Time) (*entity.HistoryEntry, error) {
	if rec == nil {
		return nil, domain.ErrInventoryNotFound
	}
	if delta == 0 || !meta.ChangeType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	newQty := rec.Quantity + delta
	if newQty < 0 {
		if meta.ChangeType == entity.ChangeSale || meta.ChangeType == entity.ChangeTransferOut {
			return nil, fmt.Errorf("%w: producto %s en tienda %s (disponible %d, solicitado %d)",
				domain.ErrInsufficientStock, rec.ProductID, rec.StoreID, rec.Quantity, -delta)
		}
		return nil, fmt.Errorf("%w: %d%+d", domain.ErrInvalidOperation, rec.Quantity, delta)
	}
	return &entity.HistoryEntry{
		InventoryID:      rec.ID,
		ProductID:        rec.ProductID,
		StoreID:          rec.StoreID,
		ChangeType:       meta.ChangeType,
		QuantityChange:   delta,
		PreviousQuantity: rec.Quantity,
		NewQuantity:      newQty,
		ReferenceID:      meta.ReferenceID,
		ReferenceType:    meta.ReferenceType,
		Notes:            meta.Notes,
		ActorID:          meta.ActorID,
		CreatedAt:        now,
	}, nil
}

// ExpectedSign indica el signo que exige cada tipo de ajuste manual:
// +1 entradas (PURCHASE, RETURN), -1 DAMAGE, 0 cualquiera distinto de cero (ADJUSTMENT).
// ok=false si el tipo no es un ajuste manual.
func ExpectedSign(c entity.ChangeType) (sign int, ok bool) {
	switch c {
	case entity.ChangePurchase, entity.ChangeReturn:
		return 1, true
	case entity.ChangeDamage:
		return -1, true
	case entity.ChangeAdjustment:
		return 0, true
	}
	return 0, false
}
