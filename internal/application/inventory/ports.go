package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace rollback y nada de lo escrito queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error
}

// SnapshotRunner ejecuta lecturas sobre una vista consistente (point-in-time) del almacén.
type SnapshotRunner interface {
	RunSnapshot(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error
}

// Metrics recibe eventos del motor de inventario (implementado con Prometheus en infraestructura).
type Metrics interface {
	EntryCommitted(changeType entity.ChangeType)
	OperationFinished(operation string, err error)
	ReconciliationFinished(checked, invalid int)
}

type nopMetrics struct{}

func (nopMetrics) EntryCommitted(entity.ChangeType) {}
func (nopMetrics) OperationFinished(string, error)  {}
func (nopMetrics) ReconciliationFinished(int, int)  {}
