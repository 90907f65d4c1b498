package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// MarkVoided pasa la venta a VOIDED con VoidedAt/VoidedBy/VoidReason; ErrAlreadyVoided si ya lo estaba.
	MarkVoided(ctx context.Context, sale *entity.Sale) error
}
