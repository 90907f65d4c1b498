package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

const historyColumns = `id, seq, inventory_id, product_id, store_id, change_type, quantity_change,
	previous_quantity, new_quantity, reference_id, reference_type, notes, actor_id, created_at`

// HistoryRepo ledger append-only sobre inventory_history. Un trigger rechaza UPDATE y DELETE.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador.
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

// Append inserta la entrada y asigna la secuencia generada por la base.
func (r *HistoryRepo) Append(ctx context.Context, e *entity.HistoryEntry) error {
	if !e.Consistent() {
		return fmt.Errorf("%w: entrada inconsistente", domain.ErrInvalidOperation)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_history (id, inventory_id, product_id, store_id, change_type, quantity_change,
			previous_quantity, new_quantity, reference_id, reference_type, notes, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.InventoryID, e.ProductID, e.StoreID, string(e.ChangeType), e.QuantityChange,
		e.PreviousQuantity, e.NewQuantity, e.ReferenceID, e.ReferenceType, e.Notes, e.ActorID, e.CreatedAt,
	).Scan(&e.Sequence)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// ListByInventory devuelve la historia del registro en orden de aplicación.
func (r *HistoryRepo) ListByInventory(ctx context.Context, inventoryID string) ([]*entity.HistoryEntry, error) {
	return r.list(ctx, `SELECT `+historyColumns+` FROM inventory_history
		WHERE inventory_id = $1 ORDER BY seq`, inventoryID)
}

// ListByReference entradas de una venta, anulación o traslado.
func (r *HistoryRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.HistoryEntry, error) {
	return r.list(ctx, `SELECT `+historyColumns+` FROM inventory_history
		WHERE reference_id = $1 ORDER BY seq`, referenceID)
}

// List filtra por tiendas, productos y rango [From, To).
func (r *HistoryRepo) List(ctx context.Context, f repository.HistoryFilter) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM inventory_history
		WHERE ($1::text[] IS NULL OR store_id::text = ANY($1::text[]))
		  AND ($2::text[] IS NULL OR product_id::text = ANY($2::text[]))
		  AND ($3::timestamptz IS NULL OR created_at >= $3::timestamptz)
		  AND ($4::timestamptz IS NULL OR created_at < $4::timestamptz)
		ORDER BY seq`
	return r.list(ctx, query, nilIfEmpty(f.StoreIDs), nilIfEmpty(f.ProductIDs), f.From, f.To)
}

func (r *HistoryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.HistoryEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.HistoryEntry, 0)
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanHistory(row pgx.Row) (*entity.HistoryEntry, error) {
	var (
		e          entity.HistoryEntry
		changeType string
	)
	err := row.Scan(
		&e.ID, &e.Sequence, &e.InventoryID, &e.ProductID, &e.StoreID, &changeType, &e.QuantityChange,
		&e.PreviousQuantity, &e.NewQuantity, &e.ReferenceID, &e.ReferenceType, &e.Notes, &e.ActorID, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.ChangeType = entity.ChangeType(changeType)
	return &e, nil
}

// nilIfEmpty convierte un slice vacío en NULL para los filtros opcionales.
func nilIfEmpty(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	return ids
}
