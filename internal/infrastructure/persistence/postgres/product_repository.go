package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"order_backend/internal/domain/order"
	"order_backend/internal/domain/product"
)

// ProductRepository is the Postgres inventory ledger.
type ProductRepository struct {
	db querier
}

func NewProductRepository(db querier) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	const query = `
		SELECT id, name, price, stock, collaborator_id
		FROM products
		WHERE id = $1;
	`
	var p product.Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CollaboratorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LockProducts takes row locks in id order. Callers pass ids sorted and
// distinct; the ORDER BY keeps the lock order stable regardless.
func (r *ProductRepository) LockProducts(ctx context.Context, ids []int64) (map[int64]*product.Product, error) {
	const query = `
		SELECT id, name, price, stock, collaborator_id
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE;
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]*product.Product, len(ids))
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CollaboratorID); err != nil {
			return nil, err
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}

func (r *ProductRepository) AdjustStock(ctx context.Context, id int64, delta int) error {
	const stmt = `UPDATE products SET stock = stock + $2 WHERE id = $1;`

	tag, err := r.db.Exec(ctx, stmt, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", order.ErrProductNotFound, id)
	}
	return nil
}

func (r *ProductRepository) DecrementIfAvailable(ctx context.Context, id int64, quantity int) (bool, error) {
	const stmt = `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2;`

	tag, err := r.db.Exec(ctx, stmt, id, quantity)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1);`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("%w: %d", order.ErrProductNotFound, id)
	}
	return false, nil
}
