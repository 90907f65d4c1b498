package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordSale_DescuentaYRegistraEntrada(t *testing.T) {
	f := newFixture(t)
	rec := f.open(t, prodTire, storeA, 10)

	s, err := f.coord.RecordSale(context.Background(), sale(prodTire, 3))
	require.NoError(t, err)

	assert.Equal(t, 7, f.quantity(t, prodTire, storeA))
	assert.Equal(t, entity.SaleStatusActive, s.Status)
	assert.True(t, decimal.NewFromInt(300).Equal(s.Total), "total = 3 x precio base")

	entries := f.byReference(t, s.ID)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, entity.ChangeSale, e.ChangeType)
	assert.Equal(t, 10, e.PreviousQuantity)
	assert.Equal(t, 7, e.NewQuantity)
	assert.Equal(t, -3, e.QuantityChange)
	assert.Equal(t, rec.ID, e.InventoryID)
	assert.Equal(t, entity.RefTypeSale, e.ReferenceType)
}

func TestRecordSale_SobreventaNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	rec := f.open(t, prodTire, storeA, 5)

	_, err := f.coord.RecordSale(context.Background(), sale(prodTire, 6))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, 5, f.quantity(t, prodTire, storeA))
	assert.Len(t, f.entries(t, rec.ID), 1, "solo la entrada de apertura")
}

func TestRecordSale_AtomicaEntreLineas(t *testing.T) {
	f := newFixture(t)
	tire := f.open(t, prodTire, storeA, 10)
	f.open(t, prodBale, storeA, 1)

	_, err := f.coord.RecordSale(context.Background(), appinv.RecordSaleInput{
		StoreID: storeA,
		ActorID: cashier,
		Items: []appinv.SaleItemInput{
			{ProductID: prodTire, Quantity: 3},
			{ProductID: prodBale, Quantity: 2},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, f.quantity(t, prodTire, storeA))
	assert.Equal(t, 1, f.quantity(t, prodBale, storeA))
	assert.Len(t, f.entries(t, tire.ID), 1)
}

func TestRecordSale_LineasRepetidasSeSumanAntesDeVerificar(t *testing.T) {
	f := newFixture(t)
	f.open(t, prodTire, storeA, 5)

	_, err := f.coord.RecordSale(context.Background(), appinv.RecordSaleInput{
		StoreID: storeA,
		ActorID: cashier,
		Items: []appinv.SaleItemInput{
			{ProductID: prodTire, Quantity: 3},
			{ProductID: prodTire, Quantity: 3},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, f.quantity(t, prodTire, storeA))
}

func TestRecordSale_ResolucionDePrecio(t *testing.T) {
	f := newFixture(t)
	f.open(t, prodTire, storeA, 10)
	bale := f.open(t, prodBale, storeA, 10)

	override := decimal.NewFromInt(55)
	_, err := f.coord.UpdateThresholds(context.Background(), bale.ID, appinv.ThresholdsInput{PriceOverride: &override})
	require.NoError(t, err)

	explicit := decimal.RequireFromString("99.50")
	s, err := f.coord.RecordSale(context.Background(), appinv.RecordSaleInput{
		StoreID: storeA,
		ActorID: cashier,
		Items: []appinv.SaleItemInput{
			{ProductID: prodTire, Quantity: 2, Price: &explicit},
			{ProductID: prodBale, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, s.Items, 2)

	assert.True(t, explicit.Equal(s.Items[0].UnitPrice))
	assert.True(t, override.Equal(s.Items[1].UnitPrice), "precio de tienda antes que precio base")
	assert.True(t, decimal.RequireFromString("309").Equal(s.Total))
}

func TestRecordSale_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.open(t, prodTire, storeA, 10)
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		in   appinv.RecordSaleInput
		want error
	}{
		{"sin líneas", appinv.RecordSaleInput{StoreID: storeA, ActorID: cashier}, domain.ErrInvalidInput},
		{"cantidad cero", sale(prodTire, 0), domain.ErrInvalidInput},
		{"precio negativo", appinv.RecordSaleInput{StoreID: storeA, ActorID: cashier,
			Items: []appinv.SaleItemInput{{ProductID: prodTire, Quantity: 1, Price: &negative}}}, domain.ErrInvalidInput},
		{"tienda desconocida", appinv.RecordSaleInput{StoreID: "nope", ActorID: cashier,
			Items: []appinv.SaleItemInput{{ProductID: prodTire, Quantity: 1}}}, domain.ErrNotFound},
		{"producto sin registro", sale(prodBale, 1), domain.ErrInventoryNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.coord.RecordSale(context.Background(), c.in)
			assert.ErrorIs(t, err, c.want)
		})
	}
	assert.Equal(t, 10, f.quantity(t, prodTire, storeA))
}

// Dos ventas de 6 sobre 10 unidades: exactamente una gana.
func TestRecordSale_CarreraConcurrente(t *testing.T) {
	f := newFixture(t)
	rec := f.open(t, prodTire, storeA, 10)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.coord.RecordSale(context.Background(), sale(prodTire, 6))
		}(i)
	}
	close(start)
	wg.Wait()

	ok, short := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 4, f.quantity(t, prodTire, storeA))
	assert.Len(t, f.entries(t, rec.ID), 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulaciones
// ──────────────────────────────────────────────────────────────────────────────

const reason = "cliente devolvió la llanta"

func TestVoidSale_RestauraExactamente(t *testing.T) {
	f := newFixture(t)
	rec := f.open(t, prodTire, storeA, 8)
	s, err := f.coord.RecordSale(context.Background(), sale(prodTire, 2))
	require.NoError(t, err)
	require.Equal(t, 6, f.quantity(t, prodTire, storeA))

	res, err := f.coord.VoidSale(context.Background(), s.ID, entity.Actor{ID: cashier, Role: entity.RoleCashier, StoreID: storeA}, reason)
	require.NoError(t, err)

	assert.Equal(t, 8, f.quantity(t, prodTire, storeA))
	assert.True(t, s.Total.Equal(res.OriginalTotal))
	require.Len(t, res.RestoredItems, 1)
	assert.Equal(t, 8, res.RestoredItems[0].NewQuantity)
	require.Len(t, res.EntryIDs, 1)

	entries := f.entries(t, rec.ID)
	last := entries[len(entries)-1]
	assert.Equal(t, entity.ChangeReturn, last.ChangeType)
	assert.Equal(t, entity.RefTypeSaleVoid, last.ReferenceType)
	assert.Equal(t, s.ID, last.ReferenceID)
	assert.Equal(t, 2, last.QuantityChange)

	got, err := f.query.GetSale(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVoided())
	assert.Equal(t, reason, got.VoidReason)
	assert.True(t, s.Total.Equal(got.Total), "la venta anulada conserva su total")

	_, err = f.coord.VoidSale(context.Background(), s.ID, entity.Actor{ID: admin, Role: entity.RoleAdmin}, reason)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoided)
	assert.Equal(t, 8, f.quantity(t, prodTire, storeA))
}

func TestVoidSale_MotivoCorto(t *testing.T) {
	f := newFixture(t)
	f.open(t, prodTire, storeA, 8)
	s, err := f.coord.RecordSale(context.Background(), sale(prodTire, 2))
	require.NoError(t, err)

	_, err = f.coord.VoidSale(context.Background(), s.ID, entity.Actor{ID: admin, Role: entity.RoleAdmin}, "   error   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, 6, f.quantity(t, prodTire, storeA))
}

func TestVoidSale_ReglasDeAutorizacion(t *testing.T) {
	f := newFixture(t)
	f.open(t, prodTire, storeA, 20)

	cases := []struct {
		name    string
		actor   entity.Actor
		elapsed time.Duration
		want    error
	}{
		{"cajero dentro de la ventana", entity.Actor{ID: cashier, Role: entity.RoleCashier, StoreID: storeA}, time.Hour, nil},
		{"cajero fuera de la ventana", entity.Actor{ID: cashier, Role: entity.RoleCashier, StoreID: storeA}, 25 * time.Hour, domain.ErrWindowExpired},
		{"cajero de otra tienda", entity.Actor{ID: "otro", Role: entity.RoleCashier, StoreID: storeB}, time.Hour, domain.ErrForbidden},
		{"gerente fuera de la ventana", entity.Actor{ID: "gerente", Role: entity.RoleManager, StoreID: storeB}, 72 * time.Hour, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := f.coord.RecordSale(context.Background(), sale(prodTire, 1))
			require.NoError(t, err)
			f.clock.Advance(c.elapsed)

			_, err = f.coord.VoidSale(context.Background(), s.ID, c.actor, reason)
			if c.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, c.want)
			assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))
		})
	}
}

func TestVoidSale_VentaInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.coord.VoidSale(context.Background(), "no-existe", entity.Actor{ID: admin, Role: entity.RoleAdmin}, reason)
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordTransfer_ConservaCantidad(t *testing.T) {
	f := newFixture(t)
	src := f.open(t, prodTire, storeA, 10)
	_, err := f.coord.UpdateThresholds(context.Background(), src.ID, appinv.ThresholdsInput{
		ReorderLevel: intPtr(2), OptimalLevel: intPtr(12), PriceOverride: ptrDec(decimal.NewFromInt(90)),
	})
	require.NoError(t, err)

	tr, err := f.coord.RecordTransfer(context.Background(), appinv.RecordTransferInput{
		ProductID: prodTire, FromStoreID: storeA, ToStoreID: storeB, Quantity: 4, ActorID: admin,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, tr.Status)
	assert.NotNil(t, tr.CompletedAt)

	a, b := f.quantity(t, prodTire, storeA), f.quantity(t, prodTire, storeB)
	assert.Equal(t, 6, a)
	assert.Equal(t, 4, b)
	assert.Equal(t, 10, a+b)

	entries := f.byReference(t, tr.ReferenceID)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.ChangeTransferOut, entries[0].ChangeType)
	assert.Equal(t, entity.ChangeTransferIn, entries[1].ChangeType)
	assert.Equal(t, 0, entries[1].PreviousQuantity, "el destino nace en cero")
	assert.Equal(t, 4, entries[1].NewQuantity)

	dst, err := f.query.GetRecord(context.Background(), entries[1].InventoryID)
	require.NoError(t, err)
	require.NotNil(t, dst.ReorderLevel)
	assert.Equal(t, 2, *dst.ReorderLevel)
	assert.Equal(t, 12, *dst.OptimalLevel)
	assert.Nil(t, dst.PriceOverride, "el precio de tienda no se copia")
}

func TestRecordTransfer_DestinoExistenteSeIncrementa(t *testing.T) {
	f := newFixture(t)
	f.open(t, prodTire, storeA, 10)
	f.open(t, prodTire, storeB, 3)

	_, err := f.coord.RecordTransfer(context.Background(), appinv.RecordTransferInput{
		ProductID: prodTire, FromStoreID: storeA, ToStoreID: storeB, Quantity: 5, ActorID: admin,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, f.quantity(t, prodTire, storeA))
	assert.Equal(t, 8, f.quantity(t, prodTire, storeB))
}

func TestRecordTransfer_Errores(t *testing.T) {
	f := newFixture(t)
	f.open(t, prodTire, storeA, 3)

	_, err := f.coord.RecordTransfer(context.Background(), appinv.RecordTransferInput{
		ProductID: prodTire, FromStoreID: storeA, ToStoreID: storeA, Quantity: 1, ActorID: admin,
	})
	assert.ErrorIs(t, err, domain.ErrSameStore)

	_, err = f.coord.RecordTransfer(context.Background(), appinv.RecordTransferInput{
		ProductID: prodTire, FromStoreID: storeA, ToStoreID: storeB, Quantity: 4, ActorID: admin,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.coord.RecordTransfer(context.Background(), appinv.RecordTransferInput{
		ProductID: prodTire, FromStoreID: storeA, ToStoreID: "desconocida", Quantity: 1, ActorID: admin,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, 3, f.quantity(t, prodTire, storeA))
}

func TestTransferLifecycle(t *testing.T) {
	f := newFixture(t)
	f.open(t, prodTire, storeA, 10)
	in := appinv.RecordTransferInput{ProductID: prodTire, FromStoreID: storeA, ToStoreID: storeB, Quantity: 4, ActorID: cashier}
	receiver := entity.Actor{ID: "user-b", Role: entity.RoleCashier, StoreID: storeB}

	tr, err := f.coord.RequestTransfer(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPending, tr.Status)
	assert.Equal(t, 10, f.quantity(t, prodTire, storeA), "la solicitud no mueve stock")

	_, err = f.coord.CancelTransfer(context.Background(), tr.ID, receiver)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	done, err := f.coord.CompleteTransfer(context.Background(), tr.ID, receiver)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, done.Status)
	assert.Equal(t, 6, f.quantity(t, prodTire, storeA))
	assert.Equal(t, 4, f.quantity(t, prodTire, storeB))

	_, err = f.coord.CompleteTransfer(context.Background(), tr.ID, entity.Actor{ID: admin, Role: entity.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	other, err := f.coord.RequestTransfer(context.Background(), in)
	require.NoError(t, err)
	rejected, err := f.coord.RejectTransfer(context.Background(), other.ID, entity.Actor{ID: admin, Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferRejected, rejected.Status)
	assert.Equal(t, 6, f.quantity(t, prodTire, storeA))
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes y mutación genérica
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustInventory(t *testing.T) {
	f := newFixture(t)
	rec := f.open(t, prodBale, storeA, 5)

	cases := []struct {
		name  string
		delta int
		typ   entity.ChangeType
		want  error
		qty   int
	}{
		{"compra", 10, entity.ChangePurchase, nil, 15},
		{"daño", -3, entity.ChangeDamage, nil, 12},
		{"conteo físico", -2, entity.ChangeAdjustment, nil, 10},
		{"daño con signo positivo", 3, entity.ChangeDamage, domain.ErrInvalidInput, 10},
		{"compra negativa", -1, entity.ChangePurchase, domain.ErrInvalidInput, 10},
		{"daño mayor al stock", -11, entity.ChangeDamage, domain.ErrInvalidOperation, 10},
		{"venta no es ajuste", -1, entity.ChangeSale, domain.ErrInvalidInput, 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.coord.AdjustInventory(context.Background(), appinv.AdjustInput{
				InventoryID: rec.ID, Delta: c.delta, ChangeType: c.typ, ActorID: admin, Notes: c.name,
			})
			if c.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, c.want)
			}
			assert.Equal(t, c.qty, f.quantity(t, prodBale, storeA))
		})
	}
}

func TestMutateStock(t *testing.T) {
	f := newFixture(t)
	f.open(t, prodTire, storeA, 2)

	res, err := f.coord.MutateStock(context.Background(), appinv.MutateStockInput{
		ProductID: prodTire, StoreID: storeA, Delta: 5, ChangeType: entity.ChangeReturn, ActorID: admin, ReferenceID: "rma-7",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Record.Quantity)
	assert.NotEmpty(t, res.HistoryEntryID)

	_, err = f.coord.MutateStock(context.Background(), appinv.MutateStockInput{
		ProductID: prodTire, StoreID: storeA, Delta: -8, ChangeType: entity.ChangeSale, ActorID: admin,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.coord.MutateStock(context.Background(), appinv.MutateStockInput{
		ProductID: prodTire, StoreID: storeA, Delta: -8, ChangeType: entity.ChangeAdjustment, ActorID: admin,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	_, err = f.coord.MutateStock(context.Background(), appinv.MutateStockInput{
		ProductID: prodTire, StoreID: storeB, Delta: 1, ChangeType: entity.ChangePurchase, ActorID: admin,
	})
	assert.ErrorIs(t, err, domain.ErrInventoryNotFound)

	assert.Equal(t, 7, f.quantity(t, prodTire, storeA))
}

func TestOpenInventory(t *testing.T) {
	f := newFixture(t)
	f.open(t, prodTire, storeA, 0)

	_, err := f.coord.OpenInventory(context.Background(), appinv.OpenInventoryInput{
		ProductID: prodTire, StoreID: storeA, ActorID: admin,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.coord.OpenInventory(context.Background(), appinv.OpenInventoryInput{
		ProductID: "desconocido", StoreID: storeA, ActorID: admin,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.coord.OpenInventory(context.Background(), appinv.OpenInventoryInput{
		ProductID: prodBale, StoreID: storeA, ActorID: admin, ReorderLevel: intPtr(10), OptimalLevel: intPtr(5),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func ptrDec(d decimal.Decimal) *decimal.Decimal { return &d }
