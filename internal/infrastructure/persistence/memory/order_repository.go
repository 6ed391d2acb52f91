package memory

import (
	"context"
	"fmt"

	"order_backend/internal/domain/order"
)

type orderRepository struct {
	v *view
}

func (r *orderRepository) Create(_ context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	return r.v.with(func(st *state) error {
		st.nextOrderID++
		o.ID = st.nextOrderID
		for i := range o.Lines {
			st.nextLineID++
			o.Lines[i].ID = st.nextLineID
			o.Lines[i].OrderID = o.ID
		}
		st.orderIndex[o.ID] = len(st.orders)
		st.orders = append(st.orders, o.Clone())
		return nil
	})
}

func (r *orderRepository) FindByID(_ context.Context, id int64) (*order.Order, error) {
	var found *order.Order
	_ = r.v.with(func(st *state) error {
		if i, ok := st.orderIndex[id]; ok {
			found = st.orders[i].Clone()
		}
		return nil
	})
	return found, nil
}

func (r *orderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepository) List(_ context.Context, skip, limit int) ([]*order.Order, error) {
	out := make([]*order.Order, 0)
	_ = r.v.with(func(st *state) error {
		if skip < 0 {
			skip = 0
		}
		if skip >= len(st.orders) || limit <= 0 {
			return nil
		}
		end := len(st.orders)
		if limit < end-skip {
			end = skip + limit
		}
		for _, o := range st.orders[skip:end] {
			out = append(out, o.Clone())
		}
		return nil
	})
	return out, nil
}

func (r *orderRepository) UpdateStatus(_ context.Context, id int64, status order.Status) error {
	return r.v.with(func(st *state) error {
		i, ok := st.orderIndex[id]
		if !ok {
			return fmt.Errorf("%w: %d", order.ErrOrderNotFound, id)
		}
		st.orders[i].ChangeStatus(status)
		return nil
	})
}
