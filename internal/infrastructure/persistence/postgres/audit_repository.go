package postgres

import (
	"context"

	domain "order_backend/internal/domain/order"
)

type AuditRepository struct {
	db querier
}

func NewAuditRepository(db querier) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, e domain.Event) (bool, error) {
	const stmt = `
		INSERT INTO order_events (event_id, event_type, order_id, customer_id, status,
			previous_status, total_amount, stock_restored, occurred_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		ON CONFLICT (event_id) DO NOTHING;
	`
	tag, err := r.db.Exec(ctx, stmt,
		e.ID,
		string(e.Type),
		e.OrderID,
		e.CustomerID,
		string(e.Status),
		string(e.PreviousStatus),
		e.TotalAmount,
		e.StockRestored,
		e.OccurredAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
