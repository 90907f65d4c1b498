package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func createRecord(t *testing.T, st *memory.Store, qty int) *entity.InventoryRecord {
	t.Helper()
	rec := &entity.InventoryRecord{ProductID: "prod-1", StoreID: "store-a", Quantity: qty}
	err := st.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		return uow.Inventory.Create(ctx, rec)
	})
	require.NoError(t, err)
	return rec
}

func TestUpdateQuantity_VersionVieja(t *testing.T) {
	st := memory.NewStore()
	stale := createRecord(t, st, 10)
	require.Equal(t, int64(1), stale.Version)

	// Otro escritor confirma primero y sube la versión.
	err := st.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		rec, err := uow.Inventory.GetByIDForUpdate(ctx, stale.ID)
		require.NoError(t, err)
		rec.Quantity = 8
		return uow.Inventory.UpdateQuantity(ctx, rec)
	})
	require.NoError(t, err)

	err = st.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		next := stale.Clone()
		next.Quantity = 5
		return uow.Inventory.UpdateQuantity(ctx, next)
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)

	err = st.RunSnapshot(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		rec, err := uow.Inventory.GetByID(ctx, stale.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, rec.Quantity, "la escritura perdedora no se aplica")
		assert.Equal(t, int64(2), rec.Version)
		return nil
	})
	require.NoError(t, err)
}

func TestUnidadFallidaNoConfirma(t *testing.T) {
	st := memory.NewStore()
	rec := createRecord(t, st, 10)

	err := st.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		cur, err := uow.Inventory.GetByIDForUpdate(ctx, rec.ID)
		require.NoError(t, err)
		cur.Quantity = 0
		require.NoError(t, uow.Inventory.UpdateQuantity(ctx, cur))
		return domain.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	err = st.RunSnapshot(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		cur, err := uow.Inventory.GetByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, cur.Quantity)
		return nil
	})
	require.NoError(t, err)
}

func TestHistory_OrdenPorSecuenciaNoPorReloj(t *testing.T) {
	st := memory.NewStore()
	rec := createRecord(t, st, 0)
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	entries := []*entity.HistoryEntry{
		{InventoryID: rec.ID, ChangeType: entity.ChangePurchase, PreviousQuantity: 0, QuantityChange: 10, NewQuantity: 10, CreatedAt: t0.Add(time.Millisecond)},
		{InventoryID: rec.ID, ChangeType: entity.ChangeSale, PreviousQuantity: 10, QuantityChange: -3, NewQuantity: 7, CreatedAt: t0},
	}
	err := st.Run(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		for _, e := range entries {
			if err := uow.History.Append(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = st.RunSnapshot(context.Background(), func(ctx context.Context, uow repository.UnitOfWork) error {
		got, err := uow.History.ListByInventory(ctx, rec.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, entity.ChangePurchase, got[0].ChangeType)
		assert.Less(t, got[0].Sequence, got[1].Sequence)
		return nil
	})
	require.NoError(t, err)
}

func TestInventory_CountIgnoraPaginacion(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()
	reorder := 5
	err := st.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		for _, rec := range []*entity.InventoryRecord{
			{ProductID: "prod-1", StoreID: "store-a", Quantity: 10},
			{ProductID: "prod-2", StoreID: "store-a", Quantity: 3, ReorderLevel: &reorder},
			{ProductID: "prod-1", StoreID: "store-b", Quantity: 1},
		} {
			if err := uow.Inventory.Create(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = st.RunSnapshot(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		f := repository.InventoryFilter{StoreID: "store-a", Limit: 1}
		page, err := uow.Inventory.List(ctx, f)
		require.NoError(t, err)
		assert.Len(t, page, 1)

		n, err := uow.Inventory.Count(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = uow.Inventory.Count(ctx, repository.InventoryFilter{BelowReorder: true})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = uow.Inventory.Count(ctx, repository.InventoryFilter{Offset: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		return nil
	})
	require.NoError(t, err)
}
