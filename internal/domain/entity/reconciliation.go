package entity

// ReconciliationResult resultado de reproducir el ledger de un registro contra su stock vivo.
type ReconciliationResult struct {
	InventoryID        string `json:"inventory_id"`
	ProductID          string `json:"product_id"`
	StoreID            string `json:"store_id"`
	CurrentQuantity    int    `json:"current_quantity"`
	CalculatedQuantity int    `json:"calculated_quantity"`
	Discrepancy        int    `json:"discrepancy"` // current - calculated
	IsValid            bool   `json:"is_valid"`
	EntryCount         int    `json:"entry_count"`
	ChainBreaks        int    `json:"chain_breaks"` // entradas que no encadenan con la anterior
}
