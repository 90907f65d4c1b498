package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

const (
	storeA   = "store-a"
	storeB   = "store-b"
	prodTire = "prod-tire"
	prodBale = "prod-bale"
	admin    = "user-admin"
	cashier  = "user-cashier"
)

// fakeClock reloj controlable para probar la ventana de anulación.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store *memory.Store
	coord *appinv.Coordinator
	query *appinv.QueryUseCase
	clock *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	st.PutStore(entity.Store{ID: storeA, Name: "Centro", Active: true})
	st.PutStore(entity.Store{ID: storeB, Name: "Norte", Active: true})
	st.PutProduct(entity.Product{
		ID: prodTire, SKU: "LL-205-55-16", Name: "Llanta 205/55 R16", BasePrice: decimal.NewFromInt(100),
		Variant: entity.TireSpec{Width: 205, AspectRatio: 55, RimDiameter: 16, LoadIndex: 91, SpeedRating: "V"},
	})
	st.PutProduct(entity.Product{
		ID: prodBale, SKU: "PACA-A", Name: "Paca primera", BasePrice: decimal.NewFromInt(40),
		Variant: entity.BaleSpec{Grade: "A", WeightKg: decimal.NewFromInt(45), Origin: "USA"},
	})

	clock := &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	return &fixture{
		store: st,
		coord: appinv.NewCoordinator(st, appinv.WithClock(clock.Now)),
		query: appinv.NewQueryUseCase(st),
		clock: clock,
	}
}

// open crea el registro con stock inicial (entrada PURCHASE desde 0).
func (f *fixture) open(t *testing.T, productID, storeID string, qty int) *entity.InventoryRecord {
	t.Helper()
	res, err := f.coord.OpenInventory(context.Background(), appinv.OpenInventoryInput{
		ProductID: productID, StoreID: storeID, InitialQuantity: qty, ActorID: admin,
	})
	require.NoError(t, err)
	return res.Record
}

func (f *fixture) quantity(t *testing.T, productID, storeID string) int {
	t.Helper()
	var qty int
	err := f.store.RunSnapshot(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		rec, err := uow.Inventory.GetByKey(ctx, productID, storeID)
		require.NoError(t, err)
		require.NotNil(t, rec, "registro %s/%s", productID, storeID)
		qty = rec.Quantity
		return nil
	})
	require.NoError(t, err)
	return qty
}

func (f *fixture) entries(t *testing.T, inventoryID string) []*entity.HistoryEntry {
	t.Helper()
	entries, err := f.query.History(context.Background(), inventoryID)
	require.NoError(t, err)
	return entries
}

func (f *fixture) byReference(t *testing.T, referenceID string) []*entity.HistoryEntry {
	t.Helper()
	var out []*entity.HistoryEntry
	err := f.store.RunSnapshot(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		out, err = uow.History.ListByReference(ctx, referenceID)
		return err
	})
	require.NoError(t, err)
	return out
}

func sale(productID string, qty int) appinv.RecordSaleInput {
	return appinv.RecordSaleInput{
		StoreID: storeA,
		ActorID: cashier,
		Items:   []appinv.SaleItemInput{{ProductID: productID, Quantity: qty}},
	}
}

func intPtr(v int) *int { return &v }
