package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord representa el stock actual de un producto en una tienda ("SKU en tienda").
// Clave compuesta (ProductID, StoreID). Quantity solo la modifica el coordinador de
// transacciones, en la misma unidad atómica que agrega la entrada del ledger.
type InventoryRecord struct {
	ID            string
	ProductID     string
	StoreID       string
	Quantity      int
	ReorderLevel  *int             // punto de reorden (alertas de stock bajo)
	OptimalLevel  *int             // nivel ideal tras reponer
	PriceOverride *decimal.Decimal // precio específico de la tienda; nil = precio base del catálogo
	Version       int64            // se incrementa en cada escritura (compare-and-set)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Key devuelve la clave compuesta producto+tienda.
func (r *InventoryRecord) Key() string {
	return StockKey(r.ProductID, r.StoreID)
}

// StockKey construye la clave compuesta usada para ordenar bloqueos e indexar en memoria.
func StockKey(productID, storeID string) string {
	return productID + "|" + storeID
}

// BelowReorder indica si el stock está en o por debajo del punto de reorden.
func (r *InventoryRecord) BelowReorder() bool {
	return r.ReorderLevel != nil && r.Quantity <= *r.ReorderLevel
}

// Clone copia el registro (incluidos los punteros) para trabajar sin aliasing.
func (r *InventoryRecord) Clone() *InventoryRecord {
	c := *r
	if r.ReorderLevel != nil {
		v := *r.ReorderLevel
		c.ReorderLevel = &v
	}
	if r.OptimalLevel != nil {
		v := *r.OptimalLevel
		c.OptimalLevel = &v
	}
	if r.PriceOverride != nil {
		v := *r.PriceOverride
		c.PriceOverride = &v
	}
	return &c
}
