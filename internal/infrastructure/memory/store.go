// Package memory implementa los repositorios y las unidades de trabajo sobre estado en memoria.
// Un único mutex serializa las transacciones; cada unidad trabaja sobre una copia del estado
// que reemplaza al confirmado solo si fn termina sin error. Las lecturas snapshot usan el
// último estado confirmado sin bloquear a los escritores.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var errReadOnly = errors.New("memory: escritura en una lectura snapshot")

// state es inmutable una vez confirmado; Run trabaja sobre un clone.
type state struct {
	records   map[string]*entity.InventoryRecord
	byKey     map[string]string
	history   []*entity.HistoryEntry
	seq       int64
	sales     map[string]*entity.Sale
	transfers map[string]*entity.ProductTransfer
	products  map[string]*entity.Product
	stores    map[string]*entity.Store
	users     map[string]*entity.User
	tokens    map[string]*entity.RefreshToken
}

func newState() *state {
	return &state{
		records:   map[string]*entity.InventoryRecord{},
		byKey:     map[string]string{},
		sales:     map[string]*entity.Sale{},
		transfers: map[string]*entity.ProductTransfer{},
		products:  map[string]*entity.Product{},
		stores:    map[string]*entity.Store{},
		users:     map[string]*entity.User{},
		tokens:    map[string]*entity.RefreshToken{},
	}
}

// clone copia los índices; los valores se tratan como inmutables (se reemplazan, nunca se mutan).
func (s *state) clone() *state {
	c := &state{
		records:   make(map[string]*entity.InventoryRecord, len(s.records)),
		byKey:     make(map[string]string, len(s.byKey)),
		history:   append([]*entity.HistoryEntry(nil), s.history...),
		seq:       s.seq,
		sales:     make(map[string]*entity.Sale, len(s.sales)),
		transfers: make(map[string]*entity.ProductTransfer, len(s.transfers)),
		products:  s.products,
		stores:    s.stores,
		users:     s.users,
		tokens:    make(map[string]*entity.RefreshToken, len(s.tokens)),
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.byKey {
		c.byKey[k] = v
	}
	for k, v := range s.sales {
		c.sales[k] = v
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	return c
}

// Store almacén en memoria (tests y STORAGE_DRIVER=memory).
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) unitOfWork(st *state, ro bool) repository.UnitOfWork {
	return repository.UnitOfWork{
		Inventory: &inventoryRepo{st: st, ro: ro},
		History:   &historyRepo{st: st, ro: ro},
		Sales:     &saleRepo{st: st, ro: ro},
		Transfers: &transferRepo{st: st, ro: ro},
		Catalog:   &catalogRepo{st: st},
	}
}

// Run ejecuta fn de forma serializada sobre una copia del estado; la confirma si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, s.unitOfWork(work, false)); err != nil {
		return err
	}
	s.st = work
	return nil
}

// RunSnapshot ejecuta fn sobre el último estado confirmado; los repositorios son de solo lectura.
func (s *Store) RunSnapshot(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	snap := s.st
	s.mu.Unlock()
	return fn(ctx, s.unitOfWork(snap, true))
}

// RunAuth igual que Run para los repositorios de autenticación.
func (s *Store) RunAuth(ctx context.Context, fn func(ctx context.Context, uow repository.AuthUnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	uow := repository.AuthUnitOfWork{
		Tokens: &tokenRepo{st: work},
		Users:  &userRepo{st: work},
	}
	if err := fn(ctx, uow); err != nil {
		return err
	}
	s.st = work
	return nil
}

// PutStore registra o reemplaza una tienda del catálogo.
func (s *Store) PutStore(store entity.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	next.stores = copyMap(s.st.stores)
	next.stores[store.ID] = &store
	s.st = next
}

// PutProduct registra o reemplaza un producto del catálogo.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	next.products = copyMap(s.st.products)
	next.products[p.ID] = &p
	s.st = next
}

// PutUser registra o reemplaza un usuario.
func (s *Store) PutUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	next.users = copyMap(s.st.users)
	u.Email = strings.ToLower(u.Email)
	next.users[u.ID] = &u
	s.st = next
}

func copyMap[V any](m map[string]V) map[string]V {
	c := make(map[string]V, len(m)+1)
	for k, v := range m {
		c[k] = v
	}
	return c
}
