package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CatalogRepository consultas de solo lectura sobre productos y tiendas.
// Devuelve nil, nil si el recurso no existe.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	GetStore(ctx context.Context, id string) (*entity.Store, error)
}
