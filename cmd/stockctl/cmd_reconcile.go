package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

func runReconcile(cmd *cobra.Command, _ []string) error {
	if cfg.App.Storage != config.StoragePostgres {
		return fmt.Errorf("reconcile requiere STORAGE_DRIVER=postgres")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db := postgres.New(cfg.DB)
	if err := db.Init(ctx); err != nil {
		return err
	}
	defer db.Close()

	engine := appinv.NewReconciliationEngine(postgres.NewTxRunner(db.Pool()), cfg.Ledger.ReconcileWorkers, log, nil)
	results, err := engine.Check(ctx, inventoryID)
	if results != nil {
		printResults(cmd.OutOrStdout(), results, showAll)
	}
	return err
}

// printResults escribe una tabla con los registros que no cuadran (o todos con all) y un resumen.
func printResults(w io.Writer, results []entity.ReconciliationResult, all bool) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INVENTARIO\tPRODUCTO\tTIENDA\tACTUAL\tCALCULADO\tDIFERENCIA\tENTRADAS\tCORTES")
	invalid := 0
	for _, r := range results {
		if !r.IsValid {
			invalid++
		} else if !all {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%+d\t%d\t%d\n",
			r.InventoryID, r.ProductID, r.StoreID,
			r.CurrentQuantity, r.CalculatedQuantity, r.Discrepancy, r.EntryCount, r.ChainBreaks)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d registros revisados, %d con descuadre\n", len(results), invalid)
}
