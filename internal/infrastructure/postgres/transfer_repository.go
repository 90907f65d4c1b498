package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

const transferColumns = `id, product_id, from_store_id, to_store_id, quantity, status, reference_id,
	requested_by, resolved_by, notes, created_at, updated_at, completed_at`

type TransferRepo struct {
	q Querier
}

func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

func (r *TransferRepo) Create(ctx context.Context, t *entity.ProductTransfer) error {
	query := `
		INSERT INTO product_transfers (id, product_id, from_store_id, to_store_id, quantity, status, reference_id,
			requested_by, resolved_by, notes, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProductID, t.FromStoreID, t.ToStoreID, t.Quantity, t.Status, t.ReferenceID,
		t.RequestedBy, t.ResolvedBy, t.Notes, t.CreatedAt, t.UpdatedAt, t.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, t.ID)
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.ProductTransfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM product_transfers WHERE id = $1`, id)
}

func (r *TransferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.ProductTransfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM product_transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) get(ctx context.Context, query, id string) (*entity.ProductTransfer, error) {
	var t entity.ProductTransfer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.ProductID, &t.FromStoreID, &t.ToStoreID, &t.Quantity, &t.Status, &t.ReferenceID,
		&t.RequestedBy, &t.ResolvedBy, &t.Notes, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return &t, nil
}

// UpdateStatus resuelve un traslado pendiente; la transición se valida en el caso de uso.
func (r *TransferRepo) UpdateStatus(ctx context.Context, t *entity.ProductTransfer) error {
	query := `
		UPDATE product_transfers
		SET status = $1, resolved_by = $2, completed_at = $3, updated_at = $4
		WHERE id = $5`
	tag, err := r.q.Exec(ctx, query, t.Status, t.ResolvedBy, t.CompletedAt, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
	}
	return nil
}
