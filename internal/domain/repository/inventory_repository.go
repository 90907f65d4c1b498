package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryFilter filtros para listar registros de inventario.
type InventoryFilter struct {
	StoreID      string
	ProductID    string
	BelowReorder bool
	Limit        int
	Offset       int
}

// InventoryRepository define el puerto del almacén de registros de inventario (producto+tienda).
// Los métodos *ForUpdate bloquean la fila hasta el fin de la transacción (SELECT FOR UPDATE)
// y devuelven nil, nil si el registro no existe.
type InventoryRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryRecord, error)
	GetByKey(ctx context.Context, productID, storeID string) (*entity.InventoryRecord, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error)
	GetByKeyForUpdate(ctx context.Context, productID, storeID string) (*entity.InventoryRecord, error)
	// Create inserta un registro nuevo; ErrDuplicate si la clave compuesta ya existe.
	Create(ctx context.Context, rec *entity.InventoryRecord) error
	// UpdateQuantity guarda rec.Quantity solo si la versión persistida sigue siendo rec.Version
	// (compare-and-set); en éxito incrementa rec.Version. ErrConcurrentUpdate si perdió la carrera.
	UpdateQuantity(ctx context.Context, rec *entity.InventoryRecord) error
	// UpdateAttributes guarda umbrales y precio de tienda; nunca toca Quantity.
	UpdateAttributes(ctx context.Context, rec *entity.InventoryRecord) error
	List(ctx context.Context, filter InventoryFilter) ([]*entity.InventoryRecord, error)
	// Count cuenta los registros que cumplen el filtro, ignorando Limit y Offset.
	Count(ctx context.Context, filter InventoryFilter) (int, error)
	ListIDs(ctx context.Context) ([]string, error)
}
