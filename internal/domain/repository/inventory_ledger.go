package repository

import (
	"context"

	"order_backend/internal/domain/product"
)

// InventoryLedger owns the authoritative stock count of every product.
type InventoryLedger interface {
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
	// LockProducts loads the given products, keyed by id, and holds them
	// until the unit of work ends. Missing ids are absent from the map.
	LockProducts(ctx context.Context, ids []int64) (map[int64]*product.Product, error)
	// AdjustStock adds delta to the stock without any lower bound check.
	AdjustStock(ctx context.Context, id int64, delta int) error
	// DecrementIfAvailable subtracts quantity only when the result stays
	// non-negative and reports whether it did.
	DecrementIfAvailable(ctx context.Context, id int64, quantity int) (bool, error)
}
