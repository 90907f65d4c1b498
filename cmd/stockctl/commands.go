package main

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var (
	cfg *config.Config
	log *logger.Logger

	downSteps   int
	inventoryID string
	showAll     bool

	rootCmd = &cobra.Command{
		Use:           "stockctl",
		Short:         "Herramientas de operación del ledger de inventario",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Component("stockctl")
			return nil
		},
	}

	// --- Migraciones ---
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Aplica o revierte las migraciones SQL embebidas",
	}
	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Aplica todas las migraciones pendientes",
		Args:  cobra.NoArgs,
		RunE:  runMigrateUp,
	}
	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Revierte las últimas N migraciones",
		Args:  cobra.NoArgs,
		RunE:  runMigrateDown,
	}
	migrateVersionCmd = &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión de esquema aplicada",
		Args:  cobra.NoArgs,
		RunE:  runMigrateVersion,
	}

	// --- Conciliación ---
	reconcileCmd = &cobra.Command{
		Use:   "reconcile",
		Short: "Reproduce el ledger y compara contra las cantidades guardadas",
		Long: `Recorre el historial de cada registro de inventario (o de uno solo con --id)
y verifica que la cadena de entradas cuadre con la cantidad actual.
Termina con código 2 si algún registro no cuadra. No corrige nada.`,
		Args: cobra.NoArgs,
		RunE: runReconcile,
	}

	// --- Datos iniciales ---
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Crea la tienda y el administrador iniciales (SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD)",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
)

func init() {
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "migraciones a revertir")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)

	reconcileCmd.Flags().StringVar(&inventoryID, "id", "", "conciliar solo este registro de inventario")
	reconcileCmd.Flags().BoolVar(&showAll, "all", false, "listar también los registros que cuadran")

	rootCmd.AddCommand(migrateCmd, reconcileCmd, seedCmd)
}
