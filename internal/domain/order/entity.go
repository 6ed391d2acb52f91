package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID                   int64
	CustomerID           int64
	PaymentMethod        string
	Status               Status
	TotalAmount          decimal.Decimal
	DeliveryAddress      *string
	DeliveryInstructions *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Lines                []Line
}

// Line is one product within an order. UnitPrice and CollaboratorID are
// snapshots taken when the order was placed and never change afterwards.
type Line struct {
	ID                 int64
	OrderID            int64
	ProductID          int64
	Quantity           int
	UnitPrice          decimal.Decimal
	CollaboratorID     *int64
	CustomizationNotes *string
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func NewOrder(customerID int64, paymentMethod string, lines []Line, address, instructions *string) (*Order, error) {
	if customerID <= 0 || strings.TrimSpace(paymentMethod) == "" {
		return nil, ErrMissingField
	}
	if len(lines) == 0 {
		return nil, ErrNoItems
	}

	total := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if l.UnitPrice.IsNegative() {
			return nil, ErrInvalidPrice
		}
		total = total.Add(l.Subtotal())
	}

	now := time.Now().UTC()
	return &Order{
		CustomerID:           customerID,
		PaymentMethod:        strings.TrimSpace(paymentMethod),
		Status:               StatusPendingPayment,
		TotalAmount:          total,
		DeliveryAddress:      address,
		DeliveryInstructions: instructions,
		CreatedAt:            now,
		UpdatedAt:            now,
		Lines:                lines,
	}, nil
}

// ChangeStatus moves the order to next and reports whether the caller must
// return the reserved stock. That is only the case when the order enters
// CANCELLED, so cancelling twice never restores twice.
func (o *Order) ChangeStatus(next Status) (restoreStock bool) {
	restoreStock = next == StatusCancelled && o.Status != StatusCancelled
	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	return restoreStock
}

// LinesTotal recomputes the sum of line subtotals.
func (o *Order) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Clone returns a deep copy so stores can hand out orders without sharing
// the line slice.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Lines = append([]Line(nil), o.Lines...)
	return &cp
}
