package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ inventory.TxRunner       = (*TxRunner)(nil)
	_ inventory.SnapshotRunner = (*TxRunner)(nil)
	_ auth.TxRunner            = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func unitOfWork(q Querier) repository.UnitOfWork {
	return repository.UnitOfWork{
		Inventory: NewInventoryRepository(q),
		History:   NewHistoryRepository(q),
		Sales:     NewSaleRepository(q),
		Transfers: NewTransferRepository(q),
		Catalog:   NewCatalogRepository(q),
	}
}

// Run inicia una transacción (READ COMMITTED + bloqueos de fila), ejecuta fn con repos
// atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	return r.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(ctx, unitOfWork(tx))
	})
}

// RunSnapshot ejecuta fn en una transacción REPEATABLE READ de solo lectura (vista consistente).
func (r *TxRunner) RunSnapshot(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return r.inTx(ctx, opts, func(tx pgx.Tx) error {
		return fn(ctx, unitOfWork(tx))
	})
}

// RunAuth inicia una transacción con los repos de autenticación (rotación de refresh tokens).
func (r *TxRunner) RunAuth(ctx context.Context, fn func(ctx context.Context, uow repository.AuthUnitOfWork) error) error {
	return r.inTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(ctx, repository.AuthUnitOfWork{
			Tokens: NewRefreshTokenRepository(tx),
			Users:  NewUserRepository(tx),
		})
	})
}

func (r *TxRunner) inTx(ctx context.Context, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
