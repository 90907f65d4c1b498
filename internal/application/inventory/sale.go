package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	dominv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// SaleItemInput línea solicitada. Price nil = precio de tienda o precio base del catálogo.
type SaleItemInput struct {
	ProductID string
	Quantity  int
	Price     *decimal.Decimal
}

// RecordSaleInput entrada de RecordSale.
type RecordSaleInput struct {
	StoreID string
	ActorID string
	Items   []SaleItemInput
}

// RestoredItem stock devuelto a un registro al anular una venta.
type RestoredItem struct {
	ProductID   string
	InventoryID string
	Quantity    int
	NewQuantity int
}

// VoidResult resultado de anular una venta.
type VoidResult struct {
	SaleID        string
	OriginalTotal decimal.Decimal
	RestoredItems []RestoredItem
	VoidedAt      time.Time
	VoidedBy      string
	Reason        string
	EntryIDs      []string
}

func validateSaleInput(in RecordSaleInput) error {
	if in.StoreID == "" || in.ActorID == "" {
		return fmt.Errorf("%w: tienda y actor son obligatorios", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: la venta debe tener al menos una línea", domain.ErrInvalidInput)
	}
	for i, it := range in.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidInput, i+1)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrInvalidInput, i+1, it.Quantity)
		}
		if it.Price != nil && it.Price.IsNegative() {
			return fmt.Errorf("%w: línea %d con precio negativo", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}

// RecordSale registra una venta: verifica disponibilidad de todas las líneas antes de escribir,
// descuenta stock con una entrada SALE por línea y persiste la venta, todo en una unidad.
func (c *Coordinator) RecordSale(ctx context.Context, in RecordSaleInput) (*entity.Sale, error) {
	if err := validateSaleInput(in); err != nil {
		return nil, err
	}
	now := c.now()
	saleID := uuid.New().String()

	var sale *entity.Sale
	err := c.run(ctx, "record_sale", func(ctx context.Context, uow repository.UnitOfWork) ([]*entity.HistoryEntry, error) {
		if _, err := requireStore(ctx, uow, in.StoreID); err != nil {
			return nil, err
		}

		requested := make(map[string]int, len(in.Items))
		for _, it := range in.Items {
			requested[it.ProductID] += it.Quantity
		}
		productIDs := make([]string, 0, len(requested))
		for id := range requested {
			productIDs = append(productIDs, id)
		}
		sort.Strings(productIDs)

		// Bloqueo en orden de producto y verificación completa antes de la primera escritura.
		records := make(map[string]*entity.InventoryRecord, len(productIDs))
		for _, pid := range productIDs {
			rec, err := uow.Inventory.GetByKeyForUpdate(ctx, pid, in.StoreID)
			if err != nil {
				return nil, err
			}
			if rec == nil {
				return nil, fmt.Errorf("%w: producto %s en tienda %s", domain.ErrInventoryNotFound, pid, in.StoreID)
			}
			if rec.Quantity < requested[pid] {
				return nil, fmt.Errorf("%w: producto %s en tienda %s (disponible %d, solicitado %d)",
					domain.ErrInsufficientStock, pid, in.StoreID, rec.Quantity, requested[pid])
			}
			records[pid] = rec
		}

		sale = &entity.Sale{
			ID:        saleID,
			StoreID:   in.StoreID,
			ActorID:   in.ActorID,
			Status:    entity.SaleStatusActive,
			Total:     decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}
		entries := make([]*entity.HistoryEntry, 0, len(in.Items))
		for _, it := range in.Items {
			rec := records[it.ProductID]
			price, err := resolvePrice(ctx, uow, it, rec)
			if err != nil {
				return nil, err
			}
			entry, err := c.ledger.Apply(ctx, uow, rec, -it.Quantity, dominv.EntryMeta{
				ChangeType:    entity.ChangeSale,
				ActorID:       in.ActorID,
				ReferenceID:   saleID,
				ReferenceType: entity.RefTypeSale,
			}, now)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)

			line := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			sale.Items = append(sale.Items, entity.SaleItem{
				ID:          uuid.New().String(),
				SaleID:      saleID,
				ProductID:   it.ProductID,
				InventoryID: rec.ID,
				Quantity:    it.Quantity,
				UnitPrice:   price,
				LineTotal:   line,
			})
			sale.Total = sale.Total.Add(line)
		}
		if err := uow.Sales.Create(ctx, sale); err != nil {
			return nil, err
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// resolvePrice precio de la línea: explícito, precio de tienda o precio base del catálogo.
func resolvePrice(ctx context.Context, uow repository.UnitOfWork, it SaleItemInput, rec *entity.InventoryRecord) (decimal.Decimal, error) {
	if it.Price != nil {
		return *it.Price, nil
	}
	if rec.PriceOverride != nil {
		return *rec.PriceOverride, nil
	}
	product, err := uow.Catalog.GetProduct(ctx, it.ProductID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
	}
	return product.BasePrice, nil
}

// VoidSale anula una venta activa: devuelve al stock exactamente lo vendido (entradas RETURN
// con referencia SALE_VOID) y la marca VOIDED. Roles no privilegiados solo pueden anular ventas
// de su tienda dentro de la ventana configurada.
func (c *Coordinator) VoidSale(ctx context.Context, saleID string, actor entity.Actor, reason string) (*VoidResult, error) {
	reason = normalizeText(reason)
	if saleID == "" || actor.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	if runeLen(reason) < c.policy.VoidReasonMin {
		return nil, fmt.Errorf("%w: el motivo debe tener al menos %d caracteres", domain.ErrInvalidInput, c.policy.VoidReasonMin)
	}
	now := c.now()

	var res *VoidResult
	err := c.run(ctx, "void_sale", func(ctx context.Context, uow repository.UnitOfWork) ([]*entity.HistoryEntry, error) {
		sale, err := uow.Sales.GetByIDForUpdate(ctx, saleID)
		if err != nil {
			return nil, err
		}
		if sale == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrSaleNotFound, saleID)
		}
		if sale.IsVoided() {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyVoided, saleID)
		}
		if !actor.IsPrivileged() {
			if actor.StoreID != sale.StoreID {
				return nil, fmt.Errorf("%w: la venta pertenece a otra tienda", domain.ErrForbidden)
			}
			if now.Sub(sale.CreatedAt) > c.policy.VoidWindow {
				return nil, fmt.Errorf("%w: venta %s creada %s", domain.ErrWindowExpired, saleID, sale.CreatedAt.Format(time.RFC3339))
			}
		}

		ids := make([]string, 0, len(sale.Items))
		seen := make(map[string]bool, len(sale.Items))
		for _, it := range sale.Items {
			if !seen[it.InventoryID] {
				seen[it.InventoryID] = true
				ids = append(ids, it.InventoryID)
			}
		}
		sort.Strings(ids)
		records := make(map[string]*entity.InventoryRecord, len(ids))
		for _, id := range ids {
			rec, err := uow.Inventory.GetByIDForUpdate(ctx, id)
			if err != nil {
				return nil, err
			}
			if rec == nil {
				return nil, fmt.Errorf("%w: %s", domain.ErrInventoryNotFound, id)
			}
			records[id] = rec
		}

		res = &VoidResult{
			SaleID:        sale.ID,
			OriginalTotal: sale.Total,
			VoidedAt:      now,
			VoidedBy:      actor.ID,
			Reason:        reason,
		}
		entries := make([]*entity.HistoryEntry, 0, len(sale.Items))
		for _, it := range sale.Items {
			rec := records[it.InventoryID]
			entry, err := c.ledger.Apply(ctx, uow, rec, it.Quantity, dominv.EntryMeta{
				ChangeType:    entity.ChangeReturn,
				ActorID:       actor.ID,
				ReferenceID:   sale.ID,
				ReferenceType: entity.RefTypeSaleVoid,
				Notes:         reason,
			}, now)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
			res.EntryIDs = append(res.EntryIDs, entry.ID)
			res.RestoredItems = append(res.RestoredItems, RestoredItem{
				ProductID:   it.ProductID,
				InventoryID: rec.ID,
				Quantity:    it.Quantity,
				NewQuantity: entry.NewQuantity,
			})
		}

		voidedAt := now
		sale.Status = entity.SaleStatusVoided
		sale.VoidedAt = &voidedAt
		sale.VoidedBy = actor.ID
		sale.VoidReason = reason
		sale.UpdatedAt = now
		if err := uow.Sales.MarkVoided(ctx, sale); err != nil {
			return nil, err
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
