package avro

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domain "order_backend/internal/domain/order"
)

// OrderEventCodec maps domain events to and from the OrderEvent record.
type OrderEventCodec struct {
	enc *Encoder
}

func NewOrderEventCodec() (*OrderEventCodec, error) {
	enc, err := NewEncoder(OrderEventSchema)
	if err != nil {
		return nil, err
	}
	return &OrderEventCodec{enc: enc}, nil
}

func (c *OrderEventCodec) Encode(e domain.Event) ([]byte, error) {
	var previous interface{}
	if e.PreviousStatus != "" {
		previous = goavroUnion("string", string(e.PreviousStatus))
	}

	return c.enc.EncodeNative(map[string]interface{}{
		"event_id":        e.ID,
		"event_type":      string(e.Type),
		"order_id":        e.OrderID,
		"customer_id":     e.CustomerID,
		"status":          string(e.Status),
		"previous_status": previous,
		"total_amount":    e.TotalAmount.String(),
		"stock_restored":  e.StockRestored,
		"occurred_at":     e.OccurredAt.UnixMilli(),
	})
}

func (c *OrderEventCodec) Decode(binary []byte) (domain.Event, error) {
	native, err := c.enc.DecodeNative(binary)
	if err != nil {
		return domain.Event{}, err
	}
	rec, ok := native.(map[string]interface{})
	if !ok {
		return domain.Event{}, fmt.Errorf("order event is not a record")
	}

	var e domain.Event
	var errs []error
	e.ID = stringField(rec, "event_id", &errs)
	e.Type = domain.EventType(stringField(rec, "event_type", &errs))
	e.OrderID = longField(rec, "order_id", &errs)
	e.CustomerID = longField(rec, "customer_id", &errs)
	e.Status = domain.Status(stringField(rec, "status", &errs))
	e.OccurredAt = time.UnixMilli(longField(rec, "occurred_at", &errs)).UTC()
	if restored, ok := rec["stock_restored"].(bool); ok {
		e.StockRestored = restored
	}
	if union, ok := rec["previous_status"].(map[string]interface{}); ok {
		if s, ok := union["string"].(string); ok {
			e.PreviousStatus = domain.Status(s)
		}
	}
	if len(errs) > 0 {
		return domain.Event{}, errs[0]
	}

	total, err := decimal.NewFromString(stringField(rec, "total_amount", &errs))
	if err != nil {
		return domain.Event{}, fmt.Errorf("decode total_amount: %w", err)
	}
	e.TotalAmount = total
	return e, nil
}

func goavroUnion(name string, value interface{}) map[string]interface{} {
	return map[string]interface{}{name: value}
}

func stringField(rec map[string]interface{}, key string, errs *[]error) string {
	v, ok := rec[key].(string)
	if !ok {
		*errs = append(*errs, fmt.Errorf("field %s is not a string", key))
	}
	return v
}

func longField(rec map[string]interface{}, key string, errs *[]error) int64 {
	v, ok := rec[key].(int64)
	if !ok {
		*errs = append(*errs, fmt.Errorf("field %s is not a long", key))
	}
	return v
}
