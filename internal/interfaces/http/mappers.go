package http

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func toRecordResponse(r *entity.InventoryRecord) dto.InventoryRecordResponse {
	return dto.InventoryRecordResponse{
		ID:            r.ID,
		ProductID:     r.ProductID,
		StoreID:       r.StoreID,
		Quantity:      r.Quantity,
		ReorderLevel:  r.ReorderLevel,
		OptimalLevel:  r.OptimalLevel,
		PriceOverride: r.PriceOverride,
		BelowReorder:  r.BelowReorder(),
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toMutationResponse(res *appinv.MutationResult) dto.MutationResponse {
	return dto.MutationResponse{Record: toRecordResponse(res.Record), HistoryEntryID: res.HistoryEntryID}
}

func toHistoryResponses(entries []*entity.HistoryEntry) []dto.HistoryEntryResponse {
	out := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.HistoryEntryResponse{
			ID:               e.ID,
			Sequence:         e.Sequence,
			InventoryID:      e.InventoryID,
			ProductID:        e.ProductID,
			StoreID:          e.StoreID,
			ChangeType:       string(e.ChangeType),
			QuantityChange:   e.QuantityChange,
			PreviousQuantity: e.PreviousQuantity,
			NewQuantity:      e.NewQuantity,
			ReferenceID:      e.ReferenceID,
			ReferenceType:    e.ReferenceType,
			Notes:            e.Notes,
			ActorID:          e.ActorID,
			CreatedAt:        e.CreatedAt,
		})
	}
	return out
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			InventoryID: it.InventoryID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return dto.SaleResponse{
		ID:         s.ID,
		StoreID:    s.StoreID,
		ActorID:    s.ActorID,
		Status:     s.Status,
		Total:      s.Total,
		Items:      items,
		VoidedAt:   s.VoidedAt,
		VoidedBy:   s.VoidedBy,
		VoidReason: s.VoidReason,
		CreatedAt:  s.CreatedAt,
	}
}

func toVoidResponse(v *appinv.VoidResult) dto.VoidSaleResponse {
	restored := make([]dto.RestoredItemResponse, 0, len(v.RestoredItems))
	for _, r := range v.RestoredItems {
		restored = append(restored, dto.RestoredItemResponse{
			ProductID:   r.ProductID,
			InventoryID: r.InventoryID,
			Quantity:    r.Quantity,
			NewQuantity: r.NewQuantity,
		})
	}
	return dto.VoidSaleResponse{
		SaleID:        v.SaleID,
		OriginalTotal: v.OriginalTotal,
		RestoredItems: restored,
		VoidedAt:      v.VoidedAt,
		VoidedBy:      v.VoidedBy,
		Reason:        v.Reason,
		EntryIDs:      v.EntryIDs,
	}
}

func toTransferResponse(t *entity.ProductTransfer) dto.TransferResponse {
	return dto.TransferResponse{
		ID:          t.ID,
		ProductID:   t.ProductID,
		FromStoreID: t.FromStoreID,
		ToStoreID:   t.ToStoreID,
		Quantity:    t.Quantity,
		Status:      t.Status,
		ReferenceID: t.ReferenceID,
		RequestedBy: t.RequestedBy,
		ResolvedBy:  t.ResolvedBy,
		Notes:       t.Notes,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}
