package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	dominv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// RecordTransferInput entrada de RecordTransfer y RequestTransfer.
type RecordTransferInput struct {
	ProductID   string
	FromStoreID string
	ToStoreID   string
	Quantity    int
	ActorID     string
	Notes       string
}

func validateTransferInput(in RecordTransferInput) error {
	if in.ProductID == "" || in.FromStoreID == "" || in.ToStoreID == "" || in.ActorID == "" {
		return fmt.Errorf("%w: producto, tiendas y actor son obligatorios", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: cantidad %d", domain.ErrInvalidInput, in.Quantity)
	}
	if in.FromStoreID == in.ToStoreID {
		return domain.ErrSameStore
	}
	return nil
}

func newTransfer(in RecordTransferInput, now time.Time) *entity.ProductTransfer {
	id := uuid.New().String()
	return &entity.ProductTransfer{
		ID:          id,
		ProductID:   in.ProductID,
		FromStoreID: in.FromStoreID,
		ToStoreID:   in.ToStoreID,
		Quantity:    in.Quantity,
		Status:      entity.TransferPending,
		ReferenceID: id,
		RequestedBy: in.ActorID,
		Notes:       normalizeText(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RecordTransfer mueve stock entre dos tiendas en una sola unidad: TRANSFER_OUT en origen,
// TRANSFER_IN en destino (creando el registro si no existe) y el traslado queda COMPLETED.
func (c *Coordinator) RecordTransfer(ctx context.Context, in RecordTransferInput) (*entity.ProductTransfer, error) {
	if err := validateTransferInput(in); err != nil {
		return nil, err
	}
	now := c.now()
	t := newTransfer(in, now)

	err := c.run(ctx, "record_transfer", func(ctx context.Context, uow repository.UnitOfWork) ([]*entity.HistoryEntry, error) {
		if err := requireStores(ctx, uow, in.FromStoreID, in.ToStoreID); err != nil {
			return nil, err
		}
		entries, err := c.moveStock(ctx, uow, t, in.ActorID, now)
		if err != nil {
			return nil, err
		}
		t.Status = entity.TransferCompleted
		t.ResolvedBy = in.ActorID
		t.CompletedAt = &now
		if err := uow.Transfers.Create(ctx, t); err != nil {
			return nil, err
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// RequestTransfer crea un traslado PENDING sin mover stock. Verifica que hoy haya disponibilidad;
// la verificación definitiva ocurre al completarlo.
func (c *Coordinator) RequestTransfer(ctx context.Context, in RecordTransferInput) (*entity.ProductTransfer, error) {
	if err := validateTransferInput(in); err != nil {
		return nil, err
	}
	now := c.now()
	t := newTransfer(in, now)

	err := c.run(ctx, "request_transfer", func(ctx context.Context, uow repository.UnitOfWork) ([]*entity.HistoryEntry, error) {
		if err := requireStores(ctx, uow, in.FromStoreID, in.ToStoreID); err != nil {
			return nil, err
		}
		src, err := uow.Inventory.GetByKey(ctx, in.ProductID, in.FromStoreID)
		if err != nil {
			return nil, err
		}
		if src == nil {
			return nil, fmt.Errorf("%w: producto %s en tienda %s", domain.ErrInventoryNotFound, in.ProductID, in.FromStoreID)
		}
		if src.Quantity < in.Quantity {
			return nil, fmt.Errorf("%w: producto %s en tienda %s (disponible %d, solicitado %d)",
				domain.ErrInsufficientStock, in.ProductID, in.FromStoreID, src.Quantity, in.Quantity)
		}
		return nil, uow.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CompleteTransfer PENDING -> COMPLETED moviendo el stock. Lo puede completar un rol privilegiado
// o personal de la tienda destino.
func (c *Coordinator) CompleteTransfer(ctx context.Context, transferID string, actor entity.Actor) (*entity.ProductTransfer, error) {
	return c.resolveTransfer(ctx, "complete_transfer", transferID, actor, entity.TransferCompleted,
		func(t *entity.ProductTransfer) bool { return actor.IsPrivileged() || actor.StoreID == t.ToStoreID })
}

// CancelTransfer PENDING -> CANCELLED; solo quien lo pidió o un rol privilegiado.
func (c *Coordinator) CancelTransfer(ctx context.Context, transferID string, actor entity.Actor) (*entity.ProductTransfer, error) {
	return c.resolveTransfer(ctx, "cancel_transfer", transferID, actor, entity.TransferCancelled,
		func(t *entity.ProductTransfer) bool { return actor.IsPrivileged() || actor.ID == t.RequestedBy })
}

// RejectTransfer PENDING -> REJECTED; solo roles privilegiados.
func (c *Coordinator) RejectTransfer(ctx context.Context, transferID string, actor entity.Actor) (*entity.ProductTransfer, error) {
	return c.resolveTransfer(ctx, "reject_transfer", transferID, actor, entity.TransferRejected,
		func(*entity.ProductTransfer) bool { return actor.IsPrivileged() })
}

func (c *Coordinator) resolveTransfer(
	ctx context.Context,
	op, transferID string,
	actor entity.Actor,
	to string,
	allowed func(*entity.ProductTransfer) bool,
) (*entity.ProductTransfer, error) {
	if transferID == "" || actor.ID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := c.now()
	var out *entity.ProductTransfer
	err := c.run(ctx, op, func(ctx context.Context, uow repository.UnitOfWork) ([]*entity.HistoryEntry, error) {
		t, err := uow.Transfers.GetByIDForUpdate(ctx, transferID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, transferID)
		}
		if !allowed(t) {
			return nil, domain.ErrForbidden
		}
		if !t.CanTransition(to) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, t.Status, to)
		}
		var entries []*entity.HistoryEntry
		if to == entity.TransferCompleted {
			entries, err = c.moveStock(ctx, uow, t, actor.ID, now)
			if err != nil {
				return nil, err
			}
			t.CompletedAt = &now
		}
		t.Status = to
		t.ResolvedBy = actor.ID
		t.UpdatedAt = now
		if err := uow.Transfers.UpdateStatus(ctx, t); err != nil {
			return nil, err
		}
		out = t
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// moveStock bloquea origen y destino en orden de clave, verifica disponibilidad y escribe
// las dos entradas enlazadas por ReferenceID.
func (c *Coordinator) moveStock(ctx context.Context, uow repository.UnitOfWork, t *entity.ProductTransfer, actorID string, now time.Time) ([]*entity.HistoryEntry, error) {
	srcKey := entity.StockKey(t.ProductID, t.FromStoreID)
	dstKey := entity.StockKey(t.ProductID, t.ToStoreID)

	var src, dst *entity.InventoryRecord
	lockSrc := func() error {
		var err error
		src, err = uow.Inventory.GetByKeyForUpdate(ctx, t.ProductID, t.FromStoreID)
		return err
	}
	lockDst := func() error {
		var err error
		dst, err = uow.Inventory.GetByKeyForUpdate(ctx, t.ProductID, t.ToStoreID)
		return err
	}
	first, second := lockSrc, lockDst
	if dstKey < srcKey {
		first, second = lockDst, lockSrc
	}
	if err := first(); err != nil {
		return nil, err
	}
	if err := second(); err != nil {
		return nil, err
	}

	if src == nil {
		return nil, fmt.Errorf("%w: producto %s en tienda %s", domain.ErrInventoryNotFound, t.ProductID, t.FromStoreID)
	}
	if src.Quantity < t.Quantity {
		return nil, fmt.Errorf("%w: producto %s en tienda %s (disponible %d, solicitado %d)",
			domain.ErrInsufficientStock, t.ProductID, t.FromStoreID, src.Quantity, t.Quantity)
	}
	if dst == nil {
		dst = &entity.InventoryRecord{
			ID:        uuid.New().String(),
			ProductID: t.ProductID,
			StoreID:   t.ToStoreID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if src.ReorderLevel != nil {
			v := *src.ReorderLevel
			dst.ReorderLevel = &v
		}
		if src.OptimalLevel != nil {
			v := *src.OptimalLevel
			dst.OptimalLevel = &v
		}
		if err := uow.Inventory.Create(ctx, dst); err != nil {
			return nil, err
		}
	}

	out, err := c.ledger.Apply(ctx, uow, src, -t.Quantity, dominv.EntryMeta{
		ChangeType:    entity.ChangeTransferOut,
		ActorID:       actorID,
		ReferenceID:   t.ReferenceID,
		ReferenceType: entity.RefTypeTransfer,
		Notes:         t.Notes,
	}, now)
	if err != nil {
		return nil, err
	}
	in, err := c.ledger.Apply(ctx, uow, dst, t.Quantity, dominv.EntryMeta{
		ChangeType:    entity.ChangeTransferIn,
		ActorID:       actorID,
		ReferenceID:   t.ReferenceID,
		ReferenceType: entity.RefTypeTransfer,
		Notes:         t.Notes,
	}, now)
	if err != nil {
		return nil, err
	}
	return []*entity.HistoryEntry{out, in}, nil
}

func requireStores(ctx context.Context, uow repository.UnitOfWork, ids ...string) error {
	for _, id := range ids {
		if _, err := requireStore(ctx, uow, id); err != nil {
			return err
		}
	}
	return nil
}
