package inventory

import (
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SortEntries ordena las entradas por orden de aplicación (Sequence). CreatedAt es informativo:
// viene del reloj de quien escribe y puede quedar desordenado respecto de la secuencia.
func SortEntries(entries []*entity.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Sequence < entries[j].Sequence
	})
}

// Replay reproduce el historial de un registro y lo compara con su stock vivo.
// Punto de partida: PreviousQuantity de la primera entrada (0 si no hay entradas).
// Las entradas deben venir ordenadas ascendentemente.
func Replay(rec *entity.InventoryRecord, entries []*entity.HistoryEntry) entity.ReconciliationResult {
	calculated := 0
	breaks := 0
	if len(entries) > 0 {
		calculated = entries[0].PreviousQuantity
	}
	for i, e := range entries {
		if !e.Consistent() || (i > 0 && e.PreviousQuantity != entries[i-1].NewQuantity) {
			breaks++
		}
		calculated += e.QuantityChange
	}
	discrepancy := rec.Quantity - calculated
	return entity.ReconciliationResult{
		InventoryID:        rec.ID,
		ProductID:          rec.ProductID,
		StoreID:            rec.StoreID,
		CurrentQuantity:    rec.Quantity,
		CalculatedQuantity: calculated,
		Discrepancy:        discrepancy,
		IsValid:            discrepancy == 0,
		EntryCount:         len(entries),
		ChainBreaks:        breaks,
	}
}
