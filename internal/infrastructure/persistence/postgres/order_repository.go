package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domain "order_backend/internal/domain/order"
)

type OrderRepository struct {
	db querier
}

func NewOrderRepository(db querier) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, customer_id, payment_method, status, total_amount,
	delivery_address, delivery_instructions, created_at, updated_at`

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}

	const insertOrder = `
		INSERT INTO orders (customer_id, payment_method, status, total_amount,
			delivery_address, delivery_instructions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
	`
	err := r.db.QueryRow(ctx, insertOrder,
		o.CustomerID,
		o.PaymentMethod,
		string(o.Status),
		o.TotalAmount,
		o.DeliveryAddress,
		o.DeliveryInstructions,
		o.CreatedAt,
		o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const insertLine = `
		INSERT INTO order_lines (order_id, product_id, quantity, unit_price,
			collaborator_id, customization_notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
	`
	for i := range o.Lines {
		l := &o.Lines[i]
		l.OrderID = o.ID
		err := r.db.QueryRow(ctx, insertLine,
			l.OrderID,
			l.ProductID,
			l.Quantity,
			l.UnitPrice,
			l.CollaboratorID,
			l.CustomizationNotes,
		).Scan(&l.ID)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1;`, id)
}

func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE;`, id)
}

func (r *OrderRepository) findOne(ctx context.Context, query string, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines, err := r.linesByOrder(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return o, nil
}

func (r *OrderRepository) List(ctx context.Context, skip, limit int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY id OFFSET $1 LIMIT $2;`

	rows, err := r.db.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	capHint := limit
	if capHint > 256 {
		capHint = 256
	}
	orders := make([]*domain.Order, 0, capHint)
	ids := make([]int64, 0, capHint)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lines, err := r.linesByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Lines = lines[o.ID]
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	const stmt = `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1;`

	tag, err := r.db.Exec(ctx, stmt, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", domain.ErrOrderNotFound, id)
	}
	return nil
}

// linesByOrder loads the lines of all given orders with one query.
func (r *OrderRepository) linesByOrder(ctx context.Context, orderIDs []int64) (map[int64][]domain.Line, error) {
	const query = `
		SELECT id, order_id, product_id, quantity, unit_price, collaborator_id, customization_notes
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, id;
	`
	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.Line, len(orderIDs))
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice,
			&l.CollaboratorID, &l.CustomizationNotes); err != nil {
			return nil, err
		}
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.PaymentMethod,
		&status,
		&o.TotalAmount,
		&o.DeliveryAddress,
		&o.DeliveryInstructions,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = domain.Status(status)
	return &o, nil
}
