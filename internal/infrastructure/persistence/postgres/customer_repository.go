package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"order_backend/internal/domain/customer"
)

type CustomerRepository struct {
	db querier
}

func NewCustomerRepository(db querier) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	const query = `
		SELECT id, handle, name, is_admin
		FROM customers
		WHERE id = $1;
	`
	return scanCustomer(r.db.QueryRow(ctx, query, id))
}

func (r *CustomerRepository) FindByHandle(ctx context.Context, handle string) (*customer.Customer, error) {
	const query = `
		SELECT id, handle, name, is_admin
		FROM customers
		WHERE lower(handle) = lower($1);
	`
	return scanCustomer(r.db.QueryRow(ctx, query, handle))
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Handle, &c.Name, &c.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
