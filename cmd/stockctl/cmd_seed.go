package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
)

func runSeed(cmd *cobra.Command, _ []string) error {
	if !cfg.Seed.Enabled() {
		return errors.New("defina SEED_ADMIN_EMAIL y SEED_ADMIN_PASSWORD")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	now := time.Now().UTC()
	admin, err := auth.NewAdmin(cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, now)
	if err != nil {
		return err
	}
	store := &entity.Store{ID: uuid.New().String(), Name: cfg.Seed.StoreName, Active: true, CreatedAt: now, UpdatedAt: now}

	db := postgres.New(cfg.DB)
	if err := db.Init(ctx); err != nil {
		return err
	}
	defer db.Close()

	err = pgx.BeginFunc(ctx, db.Pool(), func(tx pgx.Tx) error {
		if err := postgres.NewCatalogRepository(tx).CreateStore(ctx, store); err != nil {
			return err
		}
		return postgres.NewUserRepository(tx).Create(ctx, admin)
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Info().Str("store_id", store.ID).Str("email", admin.Email).Msg("tienda y administrador creados")
	return nil
}
