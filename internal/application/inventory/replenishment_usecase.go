package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de una tienda a partir de los umbrales
// de cada registro (lo consume el alertamiento de stock bajo).
type ReplenishmentUseCase struct {
	snap SnapshotRunner
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(snap SnapshotRunner) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{snap: snap}
}

// LowStock devuelve los registros en o bajo su punto de reorden con la cantidad sugerida de pedido.
// storeID vacío considera todas las tiendas.
func (uc *ReplenishmentUseCase) LowStock(ctx context.Context, storeID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	suggestions := []dto.ReplenishmentSuggestionDTO{}
	err := uc.snap.RunSnapshot(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		// 1. Registros bajo el punto de reorden
		records, err := uow.Inventory.List(ctx, repository.InventoryFilter{StoreID: storeID, BelowReorder: true})
		if err != nil {
			return err
		}

		// 2. Enriquecer con catálogo y calcular pedido sugerido
		for _, rec := range records {
			if !rec.BelowReorder() {
				continue
			}
			reorder := *rec.ReorderLevel
			target := 2 * reorder
			if rec.OptimalLevel != nil && *rec.OptimalLevel > reorder {
				target = *rec.OptimalLevel
			}
			suggested := target - rec.Quantity
			if suggested < 0 {
				suggested = 0
			}

			s := dto.ReplenishmentSuggestionDTO{
				InventoryID:       rec.ID,
				ProductID:         rec.ProductID,
				StoreID:           rec.StoreID,
				CurrentStock:      rec.Quantity,
				ReorderLevel:      reorder,
				TargetLevel:       target,
				SuggestedOrderQty: suggested,
				UnitPrice:         decimal.Zero,
			}
			product, err := uow.Catalog.GetProduct(ctx, rec.ProductID)
			if err != nil {
				return err
			}
			if product != nil {
				s.SKU, s.ProductName, s.UnitPrice = product.SKU, product.Name, product.BasePrice
			}
			if rec.PriceOverride != nil {
				s.UnitPrice = *rec.PriceOverride
			}
			s.EstimatedOrderValue = s.UnitPrice.Mul(decimal.NewFromInt(int64(suggested)))
			suggestions = append(suggestions, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 3. Ordenar: mayor déficit bajo el reorden, luego mayor pedido sugerido
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.ReorderLevel - a.CurrentStock
		defB := b.ReorderLevel - b.CurrentStock
		if defA != defB {
			return defA > defB
		}
		if a.SuggestedOrderQty != b.SuggestedOrderQty {
			return a.SuggestedOrderQty > b.SuggestedOrderQty
		}
		return a.InventoryID < b.InventoryID
	})

	// 4. Asignar prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
