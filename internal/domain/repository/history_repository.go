package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// HistoryFilter filtros para leer el ledger (todas las listas van en orden ascendente).
// El rango de fechas es [From, To).
type HistoryFilter struct {
	StoreIDs   []string
	ProductIDs []string
	From       *time.Time
	To         *time.Time
}

// HistoryRepository define el puerto del ledger de inventario: solo agrega y lee.
// No existe operación de actualización ni borrado.
type HistoryRepository interface {
	// Append persiste la entrada; asigna ID y Sequence si vienen vacíos.
	Append(ctx context.Context, entry *entity.HistoryEntry) error
	ListByInventory(ctx context.Context, inventoryID string) ([]*entity.HistoryEntry, error)
	ListByReference(ctx context.Context, referenceID string) ([]*entity.HistoryEntry, error)
	List(ctx context.Context, filter HistoryFilter) ([]*entity.HistoryEntry, error)
}
