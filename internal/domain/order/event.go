package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
)

// Event is emitted after an order change has been committed.
type Event struct {
	ID             string
	Type           EventType
	OrderID        int64
	CustomerID     int64
	Status         Status
	PreviousStatus Status
	TotalAmount    decimal.Decimal
	StockRestored  bool
	OccurredAt     time.Time
}

func NewCreatedEvent(o *Order) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        EventOrderCreated,
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}

func NewStatusChangedEvent(o *Order, previous Status, stockRestored bool) Event {
	return Event{
		ID:             uuid.NewString(),
		Type:           EventOrderStatusChanged,
		OrderID:        o.ID,
		CustomerID:     o.CustomerID,
		Status:         o.Status,
		PreviousStatus: previous,
		TotalAmount:    o.TotalAmount,
		StockRestored:  stockRestored,
		OccurredAt:     time.Now().UTC(),
	}
}
