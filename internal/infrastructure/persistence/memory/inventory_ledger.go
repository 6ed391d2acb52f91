package memory

import (
	"context"
	"fmt"

	"order_backend/internal/domain/order"
	"order_backend/internal/domain/product"
)

type inventoryLedger struct {
	v *view
}

func (l *inventoryLedger) GetProduct(_ context.Context, id int64) (*product.Product, error) {
	var found *product.Product
	_ = l.v.with(func(st *state) error {
		if p, ok := st.products[id]; ok {
			found = &p
		}
		return nil
	})
	return found, nil
}

// LockProducts needs no extra locking here: a unit of work already owns the
// whole store.
func (l *inventoryLedger) LockProducts(_ context.Context, ids []int64) (map[int64]*product.Product, error) {
	out := make(map[int64]*product.Product, len(ids))
	_ = l.v.with(func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				p := p
				out[id] = &p
			}
		}
		return nil
	})
	return out, nil
}

func (l *inventoryLedger) AdjustStock(_ context.Context, id int64, delta int) error {
	return l.v.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("%w: %d", order.ErrProductNotFound, id)
		}
		p.Stock += delta
		st.products[id] = p
		return nil
	})
}

func (l *inventoryLedger) DecrementIfAvailable(_ context.Context, id int64, quantity int) (bool, error) {
	var done bool
	err := l.v.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return fmt.Errorf("%w: %d", order.ErrProductNotFound, id)
		}
		if p.Stock < quantity {
			return nil
		}
		p.Stock -= quantity
		st.products[id] = p
		done = true
		return nil
	})
	return done, err
}
