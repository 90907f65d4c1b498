package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferRepository define el puerto de persistencia para traslados entre tiendas.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.ProductTransfer) error
	GetByID(ctx context.Context, id string) (*entity.ProductTransfer, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.ProductTransfer, error)
	// UpdateStatus guarda Status, ResolvedBy, CompletedAt y UpdatedAt.
	UpdateStatus(ctx context.Context, transfer *entity.ProductTransfer) error
}
