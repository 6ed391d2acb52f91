package repository

import (
	"context"

	"order_backend/internal/domain/customer"
	"order_backend/internal/domain/order"
)

// OrderRepository returns (nil, nil) when an order does not exist.
type OrderRepository interface {
	// Create persists the order and its lines and assigns their ids.
	Create(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id int64) (*order.Order, error)
	// FindByIDForUpdate also locks the order until the unit of work ends.
	FindByIDForUpdate(ctx context.Context, id int64) (*order.Order, error)
	// List returns a page in creation order with lines loaded.
	List(ctx context.Context, skip, limit int) ([]*order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) error
}

type CustomerRepository interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
	FindByHandle(ctx context.Context, handle string) (*customer.Customer, error)
}

// AuditRepository stores committed order events. Append reports false when
// the event id was already recorded.
type AuditRepository interface {
	Append(ctx context.Context, e order.Event) (bool, error)
}
