package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	dominv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReportFilter filtros del reporte de movimientos. Listas vacías = sin filtro.
type ReportFilter struct {
	StoreIDs   []string
	ProductIDs []string
	From       *time.Time
	To         *time.Time
}

// QueryUseCase lecturas del inventario: registros, ventas, traslados, ledger y reportes.
// Nunca escribe.
type QueryUseCase struct {
	snap SnapshotRunner
	now  func() time.Time
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(snap SnapshotRunner) *QueryUseCase {
	return &QueryUseCase{snap: snap, now: time.Now}
}

// GetRecord devuelve un registro por ID.
func (uc *QueryUseCase) GetRecord(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	var rec *entity.InventoryRecord
	err := uc.snap.RunSnapshot(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		rec, err = uow.Inventory.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInventoryNotFound, id)
	}
	return rec, nil
}

// ListRecords lista la página pedida y el total de registros que cumplen el filtro,
// ambos leídos de la misma instantánea.
func (uc *QueryUseCase) ListRecords(ctx context.Context, filter repository.InventoryFilter) ([]*entity.InventoryRecord, int, error) {
	var (
		out   []*entity.InventoryRecord
		total int
	)
	err := uc.snap.RunSnapshot(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		if out, err = uow.Inventory.List(ctx, filter); err != nil {
			return err
		}
		total, err = uow.Inventory.Count(ctx, filter)
		return err
	})
	return out, total, err
}

// History devuelve el ledger de un registro en orden ascendente.
func (uc *QueryUseCase) History(ctx context.Context, inventoryID string) ([]*entity.HistoryEntry, error) {
	var entries []*entity.HistoryEntry
	err := uc.snap.RunSnapshot(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		rec, err := uow.Inventory.GetByID(ctx, inventoryID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%w: %s", domain.ErrInventoryNotFound, inventoryID)
		}
		entries, err = uow.History.ListByInventory(ctx, inventoryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	dominv.SortEntries(entries)
	return entries, nil
}

// GetSale devuelve una venta con sus líneas.
func (uc *QueryUseCase) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	var sale *entity.Sale
	err := uc.snap.RunSnapshot(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		sale, err = uow.Sales.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSaleNotFound, id)
	}
	return sale, nil
}

// GetTransfer devuelve un traslado.
func (uc *QueryUseCase) GetTransfer(ctx context.Context, id string) (*entity.ProductTransfer, error) {
	var t *entity.ProductTransfer
	err := uc.snap.RunSnapshot(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		t, err = uow.Transfers.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
	}
	return t, nil
}

// MovementReport agrupa el ledger por (producto, tienda) y clasifica cada entrada:
// recibido (PURCHASE, RETURN), vendido, trasladado salida/entrada y ajustado (ADJUSTMENT, DAMAGE).
// Apertura = PreviousQuantity de la primera entrada del rango; cierre = NewQuantity de la última.
func (uc *QueryUseCase) MovementReport(ctx context.Context, f ReportFilter) (*dto.MovementReport, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	var entries []*entity.HistoryEntry
	products := map[string]*entity.Product{}
	err := uc.snap.RunSnapshot(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		entries, err = uow.History.List(ctx, repository.HistoryFilter{
			StoreIDs:   f.StoreIDs,
			ProductIDs: f.ProductIDs,
			From:       f.From,
			To:         f.To,
		})
		if err != nil {
			return err
		}
		for _, e := range entries {
			if _, ok := products[e.ProductID]; ok {
				continue
			}
			p, err := uow.Catalog.GetProduct(ctx, e.ProductID)
			if err != nil {
				return err
			}
			products[e.ProductID] = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dominv.SortEntries(entries)

	rows := make(map[string]*dto.MovementReportRow)
	var order []string
	for _, e := range entries {
		key := entity.StockKey(e.ProductID, e.StoreID)
		row, ok := rows[key]
		if !ok {
			row = &dto.MovementReportRow{
				ProductID:    e.ProductID,
				StoreID:      e.StoreID,
				OpeningStock: e.PreviousQuantity,
			}
			if p := products[e.ProductID]; p != nil {
				row.SKU, row.ProductName = p.SKU, p.Name
			}
			rows[key] = row
			order = append(order, key)
		}
		switch e.ChangeType {
		case entity.ChangePurchase, entity.ChangeReturn:
			row.Received += e.QuantityChange
		case entity.ChangeSale:
			row.Sold -= e.QuantityChange
		case entity.ChangeTransferOut:
			row.TransferredOut -= e.QuantityChange
		case entity.ChangeTransferIn:
			row.TransferredIn += e.QuantityChange
		case entity.ChangeAdjustment, entity.ChangeDamage:
			row.Adjusted += e.QuantityChange
		}
		row.ClosingStock = e.NewQuantity
		row.EntryCount++
	}

	out := &dto.MovementReport{
		StoreIDs:    f.StoreIDs,
		ProductIDs:  f.ProductIDs,
		From:        f.From,
		To:          f.To,
		GeneratedAt: uc.now(),
		Rows:        make([]dto.MovementReportRow, 0, len(order)),
	}
	sort.Strings(order)
	for _, k := range order {
		out.Rows = append(out.Rows, *rows[k])
	}
	return out, nil
}
