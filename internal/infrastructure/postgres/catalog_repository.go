package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo lectura de productos y tiendas. El alta del catálogo vive fuera de este servicio.
type CatalogRepo struct {
	q Querier
}

func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// GetProduct carga el producto y arma la variante según kind.
func (r *CatalogRepo) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, sku, name, brand, base_price, kind,
			tire_width, tire_aspect_ratio, tire_rim_diameter, tire_load_index, tire_speed_rating,
			bale_grade, bale_weight_kg, bale_origin, created_at, updated_at
		FROM products WHERE id = $1`
	var (
		p                        entity.Product
		kind                     string
		width, aspect, rim, load *int
		speed, grade, origin     *string
		weight                   *decimal.Decimal
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Brand, &p.BasePrice, &kind,
		&width, &aspect, &rim, &load, &speed,
		&grade, &weight, &origin, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	switch entity.ProductKind(kind) {
	case entity.KindTire:
		p.Variant = entity.TireSpec{
			Width:       deref(width),
			AspectRatio: deref(aspect),
			RimDiameter: deref(rim),
			LoadIndex:   deref(load),
			SpeedRating: deref(speed),
		}
	case entity.KindBale:
		bale := entity.BaleSpec{Grade: deref(grade), Origin: deref(origin)}
		if weight != nil {
			bale.WeightKg = *weight
		}
		p.Variant = bale
	default:
		p.Variant = entity.GenericSpec{}
	}
	return &p, nil
}

func (r *CatalogRepo) GetStore(ctx context.Context, id string) (*entity.Store, error) {
	var s entity.Store
	err := r.q.QueryRow(ctx,
		`SELECT id, name, address, active, created_at, updated_at FROM stores WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Address, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

// CreateStore alta de tienda (usado por el seed de stockctl).
func (r *CatalogRepo) CreateStore(ctx context.Context, s *entity.Store) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stores (id, name, address, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Name, s.Address, s.Active, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tienda %s", domain.ErrDuplicate, s.ID)
		}
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
