package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

const inventoryColumns = `id, product_id, store_id, quantity, reorder_level, optimal_level,
	price_override, version, created_at, updated_at`

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

func scanInventory(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.StoreID, &rec.Quantity, &rec.ReorderLevel, &rec.OptimalLevel,
		&rec.PriceOverride, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *InventoryRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.InventoryRecord, error) {
	rec, err := scanInventory(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// GetByID obtiene un registro por ID.
func (r *InventoryRepo) GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.getOne(ctx, "get inventory", `SELECT `+inventoryColumns+` FROM inventory_records WHERE id = $1`, id)
}

// GetByKey obtiene un registro por producto y tienda.
func (r *InventoryRepo) GetByKey(ctx context.Context, productID, storeID string) (*entity.InventoryRecord, error) {
	return r.getOne(ctx, "get inventory by key",
		`SELECT `+inventoryColumns+` FROM inventory_records WHERE product_id = $1 AND store_id = $2`,
		productID, storeID)
}

// GetByIDForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.getOne(ctx, "get inventory for update",
		`SELECT `+inventoryColumns+` FROM inventory_records WHERE id = $1 FOR UPDATE`, id)
}

// GetByKeyForUpdate obtiene el registro por producto y tienda y bloquea la fila.
func (r *InventoryRepo) GetByKeyForUpdate(ctx context.Context, productID, storeID string) (*entity.InventoryRecord, error) {
	return r.getOne(ctx, "get inventory by key for update",
		`SELECT `+inventoryColumns+` FROM inventory_records WHERE product_id = $1 AND store_id = $2 FOR UPDATE`,
		productID, storeID)
}

// Create inserta un registro nuevo con versión 1.
func (r *InventoryRepo) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (id, product_id, store_id, quantity, reorder_level, optimal_level,
			price_override, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.ProductID, rec.StoreID, rec.Quantity, rec.ReorderLevel, rec.OptimalLevel,
		rec.PriceOverride, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: producto %s en tienda %s", domain.ErrDuplicate, rec.ProductID, rec.StoreID)
		}
		return fmt.Errorf("insert inventory: %w", err)
	}
	rec.Version = 1
	return nil
}

// UpdateQuantity guarda la cantidad solo si la versión no cambió desde la lectura.
func (r *InventoryRepo) UpdateQuantity(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		UPDATE inventory_records
		SET quantity = $1, updated_at = $2, version = version + 1
		WHERE id = $3 AND version = $4`
	tag, err := r.q.Exec(ctx, query, rec.Quantity, rec.UpdatedAt, rec.ID, rec.Version)
	if err != nil {
		return fmt.Errorf("update inventory quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: registro %s versión %d", domain.ErrConcurrentUpdate, rec.ID, rec.Version)
	}
	rec.Version++
	return nil
}

// UpdateAttributes guarda umbrales y precio de tienda.
func (r *InventoryRepo) UpdateAttributes(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		UPDATE inventory_records
		SET reorder_level = $1, optimal_level = $2, price_override = $3, updated_at = $4, version = version + 1
		WHERE id = $5
		RETURNING version`
	err := r.q.QueryRow(ctx, query, rec.ReorderLevel, rec.OptimalLevel, rec.PriceOverride, rec.UpdatedAt, rec.ID).
		Scan(&rec.Version)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", domain.ErrInventoryNotFound, rec.ID)
		}
		return fmt.Errorf("update inventory attributes: %w", err)
	}
	return nil
}

// List lista registros con filtros opcionales; Limit 0 = sin límite.
func (r *InventoryRepo) List(ctx context.Context, f repository.InventoryFilter) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory_records
		` + inventoryFilterWhere + `
		ORDER BY store_id, product_id
		LIMIT NULLIF($4::int, 0) OFFSET $5::int`
	rows, err := r.q.Query(ctx, query, f.StoreID, f.ProductID, f.BelowReorder, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.InventoryRecord, 0)
	for rows.Next() {
		rec, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// inventoryFilterWhere usa $1 store_id, $2 product_id y $3 below_reorder.
const inventoryFilterWhere = `WHERE ($1::text = '' OR store_id::text = $1::text)
		  AND ($2::text = '' OR product_id::text = $2::text)
		  AND (NOT $3::boolean OR (reorder_level IS NOT NULL AND quantity <= reorder_level))`

// Count total de registros para el filtro, sin paginar.
func (r *InventoryRepo) Count(ctx context.Context, f repository.InventoryFilter) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_records `+inventoryFilterWhere,
		f.StoreID, f.ProductID, f.BelowReorder).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count inventory: %w", err)
	}
	return n, nil
}

// ListIDs devuelve todos los IDs ordenados (para la conciliación completa).
func (r *InventoryRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id::text FROM inventory_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list inventory ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
