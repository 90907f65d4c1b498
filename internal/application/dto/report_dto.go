package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementReportRow movimientos agregados de un producto en una tienda dentro del rango.
type MovementReportRow struct {
	ProductID      string `json:"product_id"`
	SKU            string `json:"sku,omitempty"`
	ProductName    string `json:"product_name,omitempty"`
	StoreID        string `json:"store_id"`
	OpeningStock   int    `json:"opening_stock"`   // PreviousQuantity de la primera entrada
	Received       int    `json:"received"`        // PURCHASE + RETURN
	Sold           int    `json:"sold"`            // SALE (positivo)
	TransferredOut int    `json:"transferred_out"` // TRANSFER_OUT (positivo)
	TransferredIn  int    `json:"transferred_in"`
	Adjusted       int    `json:"adjusted"`      // ADJUSTMENT + DAMAGE con signo
	ClosingStock   int    `json:"closing_stock"` // NewQuantity de la última entrada
	EntryCount     int    `json:"entry_count"`
}

// MovementReport reporte de movimientos de stock.
type MovementReport struct {
	StoreIDs    []string            `json:"store_ids,omitempty"`
	ProductIDs  []string            `json:"product_ids,omitempty"`
	From        *time.Time          `json:"from,omitempty"`
	To          *time.Time          `json:"to,omitempty"`
	GeneratedAt time.Time           `json:"generated_at"`
	Rows        []MovementReportRow `json:"rows"`
}

// ReconciliationResponse salida de GET /api/inventory/reconciliation.
type ReconciliationResponse struct {
	Checked int                           `json:"checked"`
	Invalid int                           `json:"invalid"`
	Results []entity.ReconciliationResult `json:"results"`
}
