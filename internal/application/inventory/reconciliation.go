package inventory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	dominv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ReconciliationEngine reproduce el ledger de cada registro y lo compara con su cantidad viva.
// Solo lectura: reporta discrepancias pero nunca corrige.
type ReconciliationEngine struct {
	snap    SnapshotRunner
	workers int
	log     *logger.Logger
	metrics Metrics
}

// NewReconciliationEngine construye el motor. workers acota cuántos registros se revisan en paralelo.
func NewReconciliationEngine(snap SnapshotRunner, workers int, log *logger.Logger, metrics Metrics) *ReconciliationEngine {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ReconciliationEngine{snap: snap, workers: workers, log: log, metrics: metrics}
}

// ValidateIntegrity concilia un registro (inventoryID) o todos (inventoryID vacío).
// Cada registro se lee junto con sus entradas en una vista consistente.
func (e *ReconciliationEngine) ValidateIntegrity(ctx context.Context, inventoryID string) ([]entity.ReconciliationResult, error) {
	var ids []string
	if inventoryID != "" {
		ids = []string{inventoryID}
	} else {
		err := e.snap.RunSnapshot(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
			var err error
			ids, err = uow.Inventory.ListIDs(ctx)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list inventory ids: %w", err)
		}
	}

	results := make([]entity.ReconciliationResult, len(ids))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, id := range ids {
		g.Go(func() error {
			res, err := e.reconcileOne(gCtx, id)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	invalid := 0
	for _, r := range results {
		if r.IsValid {
			continue
		}
		invalid++
		e.log.Warn().
			Str("inventory_id", r.InventoryID).
			Int("current_quantity", r.CurrentQuantity).
			Int("calculated_quantity", r.CalculatedQuantity).
			Int("discrepancy", r.Discrepancy).
			Int("chain_breaks", r.ChainBreaks).
			Msg("discrepancia entre ledger y stock")
	}
	e.metrics.ReconciliationFinished(len(results), invalid)
	e.log.Info().Int("checked", len(results)).Int("invalid", invalid).Msg("conciliación terminada")
	return results, nil
}

// Check igual que ValidateIntegrity pero devuelve ErrIntegrity (junto con los resultados)
// si algún registro no cuadra.
func (e *ReconciliationEngine) Check(ctx context.Context, inventoryID string) ([]entity.ReconciliationResult, error) {
	results, err := e.ValidateIntegrity(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	invalid := 0
	for _, r := range results {
		if !r.IsValid {
			invalid++
		}
	}
	if invalid > 0 {
		return results, fmt.Errorf("%w: %d de %d registros", domain.ErrIntegrity, invalid, len(results))
	}
	return results, nil
}

func (e *ReconciliationEngine) reconcileOne(ctx context.Context, inventoryID string) (entity.ReconciliationResult, error) {
	var res entity.ReconciliationResult
	err := e.snap.RunSnapshot(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		rec, err := uow.Inventory.GetByID(ctx, inventoryID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%w: %s", domain.ErrInventoryNotFound, inventoryID)
		}
		entries, err := uow.History.ListByInventory(ctx, inventoryID)
		if err != nil {
			return err
		}
		dominv.SortEntries(entries)
		res = dominv.Replay(rec, entries)
		return nil
	})
	return res, err
}
