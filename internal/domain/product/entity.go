package product

import "github.com/shopspring/decimal"

// Product stock is only changed through the inventory ledger.
type Product struct {
	ID             int64
	Name           string
	Price          decimal.Decimal
	Stock          int
	CollaboratorID *int64
}

func (p Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}
