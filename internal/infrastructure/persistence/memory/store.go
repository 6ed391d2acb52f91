// Package memory is a transactional in-process implementation of the
// repositories. A unit of work holds the store lock for its whole duration
// and works on a copy of the state that is swapped in on commit.
package memory

import (
	"context"
	"sync"

	"order_backend/internal/domain/customer"
	"order_backend/internal/domain/order"
	"order_backend/internal/domain/product"
	"order_backend/internal/domain/repository"
)

type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	customers   map[int64]customer.Customer
	products    map[int64]product.Product
	orders      []*order.Order
	orderIndex  map[int64]int
	nextOrderID int64
	nextLineID  int64
}

func NewStore() *Store {
	return &Store{state: &state{
		customers:  make(map[int64]customer.Customer),
		products:   make(map[int64]product.Product),
		orderIndex: make(map[int64]int),
	}}
}

func (s *state) clone() *state {
	cp := &state{
		customers:   make(map[int64]customer.Customer, len(s.customers)),
		products:    make(map[int64]product.Product, len(s.products)),
		orders:      make([]*order.Order, len(s.orders)),
		orderIndex:  make(map[int64]int, len(s.orderIndex)),
		nextOrderID: s.nextOrderID,
		nextLineID:  s.nextLineID,
	}
	for id, c := range s.customers {
		cp.customers[id] = c
	}
	for id, p := range s.products {
		cp.products[id] = p
	}
	for i, o := range s.orders {
		cp.orders[i] = o.Clone()
	}
	for id, i := range s.orderIndex {
		cp.orderIndex[id] = i
	}
	return cp
}

// Do serializes units of work. fn sees a private copy of the state which
// replaces the live state only when fn succeeds.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.state.clone()
	if err := fn(ctx, repositoriesFor(&view{tx: tx})); err != nil {
		return err
	}
	s.state = tx
	return nil
}

func (s *Store) Repositories() repository.Repositories {
	return repositoriesFor(&view{store: s})
}

// PutCustomer inserts or replaces a customer. Used for seeding.
func (s *Store) PutCustomer(c customer.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.customers[c.ID] = c
}

// PutProduct inserts or replaces a product. Used for seeding.
func (s *Store) PutProduct(p product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID] = p
}

// view resolves either a transaction's private state or the live state
// under the store lock.
type view struct {
	store *Store
	tx    *state
}

func (v *view) with(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

func repositoriesFor(v *view) repository.Repositories {
	return repository.Repositories{
		Customers: &customerRepository{v: v},
		Inventory: &inventoryLedger{v: v},
		Orders:    &orderRepository{v: v},
	}
}
