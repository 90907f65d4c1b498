package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	dominv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ── Inventario ───────────────────────────────────────────────────────────────

type inventoryRepo struct {
	st *state
	ro bool
}

func (r *inventoryRepo) GetByID(_ context.Context, id string) (*entity.InventoryRecord, error) {
	rec, ok := r.st.records[id]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (r *inventoryRepo) GetByKey(ctx context.Context, productID, storeID string) (*entity.InventoryRecord, error) {
	id, ok := r.st.byKey[entity.StockKey(productID, storeID)]
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// El mutex del Store ya serializa la unidad completa; el bloqueo de fila es implícito.
func (r *inventoryRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *inventoryRepo) GetByKeyForUpdate(ctx context.Context, productID, storeID string) (*entity.InventoryRecord, error) {
	return r.GetByKey(ctx, productID, storeID)
}

func (r *inventoryRepo) Create(_ context.Context, rec *entity.InventoryRecord) error {
	if r.ro {
		return errReadOnly
	}
	if rec.Quantity < 0 {
		return domain.ErrInvalidOperation
	}
	if _, ok := r.st.byKey[rec.Key()]; ok {
		return fmt.Errorf("%w: producto %s en tienda %s", domain.ErrDuplicate, rec.ProductID, rec.StoreID)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Version = 1
	r.st.records[rec.ID] = rec.Clone()
	r.st.byKey[rec.Key()] = rec.ID
	return nil
}

func (r *inventoryRepo) UpdateQuantity(_ context.Context, rec *entity.InventoryRecord) error {
	if r.ro {
		return errReadOnly
	}
	stored, ok := r.st.records[rec.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrInventoryNotFound, rec.ID)
	}
	if stored.Version != rec.Version {
		return domain.ErrConcurrentUpdate
	}
	if rec.Quantity < 0 {
		return domain.ErrInvalidOperation
	}
	next := stored.Clone()
	next.Quantity = rec.Quantity
	next.UpdatedAt = rec.UpdatedAt
	next.Version++
	r.st.records[rec.ID] = next
	rec.Version = next.Version
	return nil
}

func (r *inventoryRepo) UpdateAttributes(_ context.Context, rec *entity.InventoryRecord) error {
	if r.ro {
		return errReadOnly
	}
	stored, ok := r.st.records[rec.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrInventoryNotFound, rec.ID)
	}
	next := rec.Clone()
	next.Quantity = stored.Quantity
	next.Version = stored.Version + 1
	r.st.records[rec.ID] = next
	rec.Version = next.Version
	return nil
}

func matchesInventory(rec *entity.InventoryRecord, f repository.InventoryFilter) bool {
	if f.StoreID != "" && rec.StoreID != f.StoreID {
		return false
	}
	if f.ProductID != "" && rec.ProductID != f.ProductID {
		return false
	}
	return !f.BelowReorder || rec.BelowReorder()
}

func (r *inventoryRepo) List(_ context.Context, f repository.InventoryFilter) ([]*entity.InventoryRecord, error) {
	out := make([]*entity.InventoryRecord, 0)
	for _, rec := range r.st.records {
		if matchesInventory(rec, f) {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StoreID != out[j].StoreID {
			return out[i].StoreID < out[j].StoreID
		}
		return out[i].ProductID < out[j].ProductID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*entity.InventoryRecord{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *inventoryRepo) Count(_ context.Context, f repository.InventoryFilter) (int, error) {
	n := 0
	for _, rec := range r.st.records {
		if matchesInventory(rec, f) {
			n++
		}
	}
	return n, nil
}

func (r *inventoryRepo) ListIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.st.records))
	for id := range r.st.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ── Ledger ───────────────────────────────────────────────────────────────────

type historyRepo struct {
	st *state
	ro bool
}

func (r *historyRepo) Append(_ context.Context, e *entity.HistoryEntry) error {
	if r.ro {
		return errReadOnly
	}
	if !e.Consistent() {
		return fmt.Errorf("%w: entrada inconsistente", domain.ErrInvalidOperation)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.st.seq++
	e.Sequence = r.st.seq
	c := *e
	r.st.history = append(r.st.history, &c)
	return nil
}

func (r *historyRepo) collect(keep func(*entity.HistoryEntry) bool) []*entity.HistoryEntry {
	out := make([]*entity.HistoryEntry, 0)
	for _, e := range r.st.history {
		if keep(e) {
			c := *e
			out = append(out, &c)
		}
	}
	dominv.SortEntries(out)
	return out
}

func (r *historyRepo) ListByInventory(_ context.Context, inventoryID string) ([]*entity.HistoryEntry, error) {
	return r.collect(func(e *entity.HistoryEntry) bool { return e.InventoryID == inventoryID }), nil
}

func (r *historyRepo) ListByReference(_ context.Context, referenceID string) ([]*entity.HistoryEntry, error) {
	return r.collect(func(e *entity.HistoryEntry) bool { return e.ReferenceID == referenceID }), nil
}

func (r *historyRepo) List(_ context.Context, f repository.HistoryFilter) ([]*entity.HistoryEntry, error) {
	stores := toSet(f.StoreIDs)
	products := toSet(f.ProductIDs)
	return r.collect(func(e *entity.HistoryEntry) bool {
		if len(stores) > 0 && !stores[e.StoreID] {
			return false
		}
		if len(products) > 0 && !products[e.ProductID] {
			return false
		}
		return inRange(e.CreatedAt, f.From, f.To)
	}), nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

// ── Ventas ───────────────────────────────────────────────────────────────────

type saleRepo struct {
	st *state
	ro bool
}

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	if r.ro {
		return errReadOnly
	}
	if _, ok := r.st.sales[sale.ID]; ok {
		return fmt.Errorf("%w: venta %s", domain.ErrDuplicate, sale.ID)
	}
	r.st.sales[sale.ID] = sale.Clone()
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	s, ok := r.st.sales[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (r *saleRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) MarkVoided(_ context.Context, sale *entity.Sale) error {
	if r.ro {
		return errReadOnly
	}
	stored, ok := r.st.sales[sale.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSaleNotFound, sale.ID)
	}
	if stored.IsVoided() {
		return domain.ErrAlreadyVoided
	}
	next := stored.Clone()
	next.Status = entity.SaleStatusVoided
	next.VoidedAt = sale.VoidedAt
	next.VoidedBy = sale.VoidedBy
	next.VoidReason = sale.VoidReason
	next.UpdatedAt = sale.UpdatedAt
	r.st.sales[sale.ID] = next.Clone()
	return nil
}

// ── Traslados ────────────────────────────────────────────────────────────────

type transferRepo struct {
	st *state
	ro bool
}

func (r *transferRepo) Create(_ context.Context, t *entity.ProductTransfer) error {
	if r.ro {
		return errReadOnly
	}
	if _, ok := r.st.transfers[t.ID]; ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, t.ID)
	}
	r.st.transfers[t.ID] = t.Clone()
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.ProductTransfer, error) {
	t, ok := r.st.transfers[id]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

func (r *transferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.ProductTransfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) UpdateStatus(_ context.Context, t *entity.ProductTransfer) error {
	if r.ro {
		return errReadOnly
	}
	stored, ok := r.st.transfers[t.ID]
	if !ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
	}
	next := stored.Clone()
	next.Status = t.Status
	next.ResolvedBy = t.ResolvedBy
	next.CompletedAt = t.CompletedAt
	next.UpdatedAt = t.UpdatedAt
	r.st.transfers[t.ID] = next.Clone()
	return nil
}

// ── Catálogo ─────────────────────────────────────────────────────────────────

type catalogRepo struct {
	st *state
}

func (r *catalogRepo) GetProduct(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *catalogRepo) GetStore(_ context.Context, id string) (*entity.Store, error) {
	s, ok := r.st.stores[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

// ── Autenticación ────────────────────────────────────────────────────────────

type userRepo struct {
	st *state
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.st.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(email)
	for _, u := range r.st.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

type tokenRepo struct {
	st *state
}

func (r *tokenRepo) Create(_ context.Context, t *entity.RefreshToken) error {
	if _, ok := r.st.tokens[t.ID]; ok {
		return fmt.Errorf("%w: token %s", domain.ErrDuplicate, t.ID)
	}
	r.st.tokens[t.ID] = t.Clone()
	return nil
}

func (r *tokenRepo) GetByHashForUpdate(_ context.Context, hash string) (*entity.RefreshToken, error) {
	for _, t := range r.st.tokens {
		if t.TokenHash == hash {
			return t.Clone(), nil
		}
	}
	return nil, nil
}

func (r *tokenRepo) Revoke(_ context.Context, id string, replacedByID *string, at time.Time) error {
	stored, ok := r.st.tokens[id]
	if !ok || stored.RevokedAt != nil {
		return domain.ErrInvalidToken
	}
	next := stored.Clone()
	next.RevokedAt = &at
	if replacedByID != nil {
		v := *replacedByID
		next.ReplacedByID = &v
	}
	r.st.tokens[id] = next
	return nil
}
