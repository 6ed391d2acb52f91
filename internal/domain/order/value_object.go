package order

import (
	"fmt"
	"strings"
)

// Status is the lifecycle label of an order, always stored uppercase.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

var knownStatuses = map[Status]struct{}{
	StatusPendingPayment: {},
	StatusPaid:           {},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// Labels used by the first version of the store front.
var legacyStatusAliases = map[string]Status{
	"POR_PAGAR": StatusPendingPayment,
	"PAGADO":    StatusPaid,
	"ENTREGADO": StatusDelivered,
	"CANCELADO": StatusCancelled,
}

// NormalizeStatus trims and uppercases raw, joins words with underscores and
// resolves legacy aliases. Unknown values are returned normalized as-is.
func NormalizeStatus(raw string) Status {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
	if canonical, ok := legacyStatusAliases[s]; ok {
		return canonical
	}
	return Status(s)
}

func (s Status) IsKnown() bool {
	_, ok := knownStatuses[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus normalizes raw. In strict mode only the known lifecycle labels
// are accepted; otherwise any non-empty value passes.
func ParseStatus(raw string, strict bool) (Status, error) {
	s := NormalizeStatus(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty value", ErrInvalidStatus)
	}
	if strict && !s.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}
