package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	dominv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Policy reglas configurables del coordinador.
type Policy struct {
	VoidWindow    time.Duration // ventana de anulación para roles no privilegiados
	VoidReasonMin int           // runas mínimas del motivo de anulación
}

// DefaultPolicy 24 horas y motivo de al menos 10 caracteres.
func DefaultPolicy() Policy {
	return Policy{VoidWindow: 24 * time.Hour, VoidReasonMin: 10}
}

// Coordinator es el coordinador de transacciones de inventario: ventas, traslados, anulaciones
// y ajustes. Cada operación valida, bloquea los registros involucrados y confirma la mutación
// de cantidad junto con su entrada del ledger en una sola transacción. No reintenta.
type Coordinator struct {
	tx      TxRunner
	ledger  *LedgerWriter
	policy  Policy
	now     func() time.Time
	log     *logger.Logger
	metrics Metrics
}

// Option configura el coordinador.
type Option func(*Coordinator)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option { return func(c *Coordinator) { c.now = now } }

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option { return func(c *Coordinator) { c.log = l } }

// WithMetrics inyecta el receptor de métricas.
func WithMetrics(m Metrics) Option { return func(c *Coordinator) { c.metrics = m } }

// WithPolicy reemplaza las reglas de anulación.
func WithPolicy(p Policy) Option { return func(c *Coordinator) { c.policy = p } }

// NewCoordinator construye el coordinador sobre un TxRunner.
func NewCoordinator(tx TxRunner, opts ...Option) *Coordinator {
	c := &Coordinator{
		tx:      tx,
		ledger:  &LedgerWriter{},
		policy:  DefaultPolicy(),
		now:     time.Now,
		log:     logger.Nop(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run ejecuta fn en una transacción y registra el resultado; las entradas solo se reportan tras el commit.
func (c *Coordinator) run(ctx context.Context, op string, fn func(ctx context.Context, uow repository.UnitOfWork) ([]*entity.HistoryEntry, error)) error {
	var entries []*entity.HistoryEntry
	err := c.tx.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		entries, err = fn(ctx, uow)
		return err
	})
	c.metrics.OperationFinished(op, err)
	if err != nil {
		c.log.Warn().Err(err).
			Str("operation", op).
			Str("code", domain.CodeOf(err)).
			Msg("operación de inventario rechazada")
		return err
	}
	for _, e := range entries {
		c.metrics.EntryCommitted(e.ChangeType)
		c.log.Info().
			Str("operation", op).
			Str("inventory_id", e.InventoryID).
			Str("change_type", string(e.ChangeType)).
			Int("quantity_change", e.QuantityChange).
			Int("new_quantity", e.NewQuantity).
			Str("reference_id", e.ReferenceID).
			Msg("movimiento registrado")
	}
	return nil
}

// MutateStockInput entrada genérica para mutar el stock de un producto en una tienda.
type MutateStockInput struct {
	ProductID     string
	StoreID       string
	Delta         int
	ChangeType    entity.ChangeType
	ActorID       string
	ReferenceID   string
	ReferenceType string
	Notes         string
}

// MutationResult registro resultante y entrada del ledger creada.
type MutationResult struct {
	Record         *entity.InventoryRecord
	HistoryEntryID string
	Entry          *entity.HistoryEntry
}

// MutateStock aplica delta al registro (producto, tienda) y agrega la entrada correspondiente.
// ErrInventoryNotFound si el registro no existe; stock negativo -> ErrInsufficientStock
// (SALE, TRANSFER_OUT) o ErrInvalidOperation (resto).
func (c *Coordinator) MutateStock(ctx context.Context, in MutateStockInput) (*MutationResult, error) {
	if in.ProductID == "" || in.StoreID == "" || in.ActorID == "" || in.Delta == 0 || !in.ChangeType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	now := c.now()
	var res *MutationResult
	err := c.run(ctx, "mutate_stock", func(ctx context.Context, uow repository.UnitOfWork) ([]*entity.HistoryEntry, error) {
		rec, err := uow.Inventory.GetByKeyForUpdate(ctx, in.ProductID, in.StoreID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: producto %s en tienda %s", domain.ErrInventoryNotFound, in.ProductID, in.StoreID)
		}
		entry, err := c.ledger.Apply(ctx, uow, rec, in.Delta, dominv.EntryMeta{
			ChangeType:    in.ChangeType,
			ActorID:       in.ActorID,
			ReferenceID:   in.ReferenceID,
			ReferenceType: in.ReferenceType,
			Notes:         normalizeText(in.Notes),
		}, now)
		if err != nil {
			return nil, err
		}
		res = &MutationResult{Record: rec, HistoryEntryID: entry.ID, Entry: entry}
		return []*entity.HistoryEntry{entry}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AdjustInput ajuste manual sobre un registro existente (PURCHASE, RETURN, DAMAGE, ADJUSTMENT).
type AdjustInput struct {
	InventoryID string
	Delta       int
	ChangeType  entity.ChangeType
	ActorID     string
	Notes       string
}

// AdjustInventory aplica un ajuste manual. PURCHASE/RETURN exigen delta positivo, DAMAGE negativo
// y ADJUSTMENT distinto de cero. ErrInvalidOperation si el stock quedaría negativo.
func (c *Coordinator) AdjustInventory(ctx context.Context, in AdjustInput) (*MutationResult, error) {
	sign, ok := dominv.ExpectedSign(in.ChangeType)
	if !ok || in.InventoryID == "" || in.ActorID == "" || in.Delta == 0 {
		return nil, domain.ErrInvalidInput
	}
	if (sign > 0 && in.Delta < 0) || (sign < 0 && in.Delta > 0) {
		return nil, fmt.Errorf("%w: signo de cantidad incompatible con %s", domain.ErrInvalidInput, in.ChangeType)
	}
	now := c.now()
	var res *MutationResult
	err := c.run(ctx, "adjust_inventory", func(ctx context.Context, uow repository.UnitOfWork) ([]*entity.HistoryEntry, error) {
		rec, err := uow.Inventory.GetByIDForUpdate(ctx, in.InventoryID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInventoryNotFound, in.InventoryID)
		}
		entry, err := c.ledger.Apply(ctx, uow, rec, in.Delta, dominv.EntryMeta{
			ChangeType:    in.ChangeType,
			ActorID:       in.ActorID,
			ReferenceType: entity.RefTypeManual,
			Notes:         normalizeText(in.Notes),
		}, now)
		if err != nil {
			return nil, err
		}
		res = &MutationResult{Record: rec, HistoryEntryID: entry.ID, Entry: entry}
		return []*entity.HistoryEntry{entry}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// OpenInventoryInput alta de un producto en una tienda.
type OpenInventoryInput struct {
	ProductID       string
	StoreID         string
	InitialQuantity int
	ReorderLevel    *int
	OptimalLevel    *int
	PriceOverride   *decimal.Decimal
	ActorID         string
}

// OpenInventory crea el registro (producto, tienda) con cantidad 0 y, si hay stock inicial,
// lo ingresa con una entrada PURCHASE para que el ledger parta de cero.
func (c *Coordinator) OpenInventory(ctx context.Context, in OpenInventoryInput) (*MutationResult, error) {
	if in.ProductID == "" || in.StoreID == "" || in.ActorID == "" || in.InitialQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := validateThresholds(in.ReorderLevel, in.OptimalLevel, in.PriceOverride); err != nil {
		return nil, err
	}
	now := c.now()
	var res *MutationResult
	err := c.run(ctx, "open_inventory", func(ctx context.Context, uow repository.UnitOfWork) ([]*entity.HistoryEntry, error) {
		product, err := uow.Catalog.GetProduct(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		if _, err := requireStore(ctx, uow, in.StoreID); err != nil {
			return nil, err
		}
		existing, err := uow.Inventory.GetByKey(ctx, in.ProductID, in.StoreID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: producto %s ya existe en tienda %s", domain.ErrDuplicate, in.ProductID, in.StoreID)
		}
		rec := &entity.InventoryRecord{
			ID:            uuid.New().String(),
			ProductID:     in.ProductID,
			StoreID:       in.StoreID,
			ReorderLevel:  in.ReorderLevel,
			OptimalLevel:  in.OptimalLevel,
			PriceOverride: in.PriceOverride,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := uow.Inventory.Create(ctx, rec); err != nil {
			return nil, err
		}
		res = &MutationResult{Record: rec}
		if in.InitialQuantity == 0 {
			return nil, nil
		}
		entry, err := c.ledger.Apply(ctx, uow, rec, in.InitialQuantity, dominv.EntryMeta{
			ChangeType:    entity.ChangePurchase,
			ActorID:       in.ActorID,
			ReferenceType: entity.RefTypeManual,
			Notes:         "stock inicial",
		}, now)
		if err != nil {
			return nil, err
		}
		res.HistoryEntryID, res.Entry = entry.ID, entry
		return []*entity.HistoryEntry{entry}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ThresholdsInput atributos no cuantitativos del registro. nil = sin cambio.
type ThresholdsInput struct {
	ReorderLevel       *int
	OptimalLevel       *int
	PriceOverride      *decimal.Decimal
	ClearPriceOverride bool
}

// UpdateThresholds cambia umbrales y precio de tienda. No toca la cantidad ni el ledger.
func (c *Coordinator) UpdateThresholds(ctx context.Context, inventoryID string, in ThresholdsInput) (*entity.InventoryRecord, error) {
	if inventoryID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := c.now()
	var out *entity.InventoryRecord
	err := c.run(ctx, "update_thresholds", func(ctx context.Context, uow repository.UnitOfWork) ([]*entity.HistoryEntry, error) {
		rec, err := uow.Inventory.GetByIDForUpdate(ctx, inventoryID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInventoryNotFound, inventoryID)
		}
		if in.ReorderLevel != nil {
			rec.ReorderLevel = in.ReorderLevel
		}
		if in.OptimalLevel != nil {
			rec.OptimalLevel = in.OptimalLevel
		}
		if in.PriceOverride != nil {
			rec.PriceOverride = in.PriceOverride
		}
		if in.ClearPriceOverride {
			rec.PriceOverride = nil
		}
		if err := validateThresholds(rec.ReorderLevel, rec.OptimalLevel, rec.PriceOverride); err != nil {
			return nil, err
		}
		rec.UpdatedAt = now
		if err := uow.Inventory.UpdateAttributes(ctx, rec); err != nil {
			return nil, err
		}
		out = rec
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func validateThresholds(reorder, optimal *int, price *decimal.Decimal) error {
	if reorder != nil && *reorder < 0 {
		return fmt.Errorf("%w: punto de reorden negativo", domain.ErrInvalidInput)
	}
	if optimal != nil && *optimal < 0 {
		return fmt.Errorf("%w: nivel óptimo negativo", domain.ErrInvalidInput)
	}
	if reorder != nil && optimal != nil && *optimal < *reorder {
		return fmt.Errorf("%w: el nivel óptimo debe ser mayor o igual al punto de reorden", domain.ErrInvalidInput)
	}
	if price != nil && price.IsNegative() {
		return fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	}
	return nil
}

func requireStore(ctx context.Context, uow repository.UnitOfWork, storeID string) (*entity.Store, error) {
	store, err := uow.Catalog.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: tienda %s", domain.ErrNotFound, storeID)
	}
	if !store.Active {
		return nil, fmt.Errorf("%w: tienda %s inactiva", domain.ErrInvalidInput, storeID)
	}
	return store, nil
}
