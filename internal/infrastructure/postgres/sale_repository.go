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

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, store_id, actor_id, status, total, voided_at, voided_by, void_reason, created_at, updated_at`

// SaleRepo ventas y sus líneas (sale_items ordenadas por line_no).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera y las líneas. Debe ejecutarse dentro de la tx del coordinador.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, store_id, actor_id, status, total, voided_at, voided_by, void_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.StoreID, s.ActorID, s.Status, s.Total, s.VoidedAt, s.VoidedBy, s.VoidReason, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: venta %s", domain.ErrDuplicate, s.ID)
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	itemQuery := `
		INSERT INTO sale_items (id, sale_id, line_no, product_id, inventory_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i := range s.Items {
		it := &s.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.SaleID = s.ID
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, s.ID, i+1, it.ProductID, it.InventoryID, it.Quantity, it.UnitPrice, it.LineTotal,
		); err != nil {
			return fmt.Errorf("insert sale item %d: %w", i+1, err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea la cabecera; dos anulaciones concurrentes se serializan aquí.
func (r *SaleRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.StoreID, &s.ActorID, &s.Status, &s.Total, &s.VoidedAt, &s.VoidedBy, &s.VoidReason,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, inventory_id, quantity, unit_price, line_total
		FROM sale_items WHERE sale_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.SaleItem, error) {
		var it entity.SaleItem
		err := row.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.InventoryID, &it.Quantity, &it.UnitPrice, &it.LineTotal)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan sale items: %w", err)
	}
	s.Items = items
	return &s, nil
}

// MarkVoided pasa la venta a VOIDED solo si sigue ACTIVE.
func (r *SaleRepo) MarkVoided(ctx context.Context, s *entity.Sale) error {
	query := `
		UPDATE sales
		SET status = $1, voided_at = $2, voided_by = $3, void_reason = $4, updated_at = $5
		WHERE id = $6 AND status = $7`
	tag, err := r.q.Exec(ctx, query,
		entity.SaleStatusVoided, s.VoidedAt, s.VoidedBy, s.VoidReason, s.UpdatedAt, s.ID, entity.SaleStatusActive,
	)
	if err != nil {
		return fmt.Errorf("void sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: venta %s", domain.ErrAlreadyVoided, s.ID)
	}
	return nil
}
