package repository

import "context"

type Repositories struct {
	Customers CustomerRepository
	Inventory InventoryLedger
	Orders    OrderRepository
}

// UnitOfWork runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	// Repositories returns non-transactional repositories for plain reads.
	Repositories() Repositories
}
