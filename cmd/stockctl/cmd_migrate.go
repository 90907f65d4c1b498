package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
)

func withMigrator(fn func(*postgres.Migrator) error) error {
	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()
	return fn(m)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	return withMigrator(func(m *postgres.Migrator) error { return m.Up() })
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	if downSteps <= 0 {
		return fmt.Errorf("--steps debe ser mayor que cero")
	}
	return withMigrator(func(m *postgres.Migrator) error { return m.Down(downSteps) })
}

func runMigrateVersion(cmd *cobra.Command, _ []string) error {
	return withMigrator(func(m *postgres.Migrator) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "versión %d", v)
		if dirty {
			fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	})
}
