package order

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

var (
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("price must not be negative")
	ErrNoItems           = errors.New("order must contain at least one item")
	ErrMissingField      = errors.New("required field is missing")
)

// StockError names the line that could not be served.
type StockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
