package memory

import (
	"context"
	"strings"

	"order_backend/internal/domain/customer"
)

type customerRepository struct {
	v *view
}

func (r *customerRepository) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	var found *customer.Customer
	_ = r.v.with(func(st *state) error {
		if c, ok := st.customers[id]; ok {
			found = &c
		}
		return nil
	})
	return found, nil
}

func (r *customerRepository) FindByHandle(_ context.Context, handle string) (*customer.Customer, error) {
	var found *customer.Customer
	_ = r.v.with(func(st *state) error {
		for _, c := range st.customers {
			if strings.EqualFold(c.Handle, handle) {
				c := c
				found = &c
				return nil
			}
		}
		return nil
	})
	return found, nil
}
