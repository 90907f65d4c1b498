package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	dominv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// LedgerWriter aplica una mutación de cantidad y agrega su entrada del ledger en la misma unidad de trabajo.
// Exactamente una entrada por mutación; PreviousQuantity/NewQuantity son la cantidad justo
// antes y justo después. Nunca modifica ni borra entradas existentes.
type LedgerWriter struct{}

// Apply aplica delta a rec (que debe estar bloqueado en uow) y agrega la entrada.
// En éxito rec queda con la nueva cantidad y versión.
func (w *LedgerWriter) Apply(
	ctx context.Context,
	uow repository.UnitOfWork,
	rec *entity.InventoryRecord,
	delta int,
	meta dominv.EntryMeta,
	now time.Time,
) (*entity.HistoryEntry, error) {
	entry, err := dominv.NextEntry(rec, delta, meta, now)
	if err != nil {
		return nil, err
	}

	prevQty, prevUpdated := rec.Quantity, rec.UpdatedAt
	rec.Quantity = entry.NewQuantity
	rec.UpdatedAt = now
	if err := uow.Inventory.UpdateQuantity(ctx, rec); err != nil {
		rec.Quantity, rec.UpdatedAt = prevQty, prevUpdated
		return nil, err
	}
	if err := uow.History.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	return entry, nil
}
