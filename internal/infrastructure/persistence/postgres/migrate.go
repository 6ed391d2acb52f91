package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		handle TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		is_admin BOOLEAN NOT NULL DEFAULT false
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL CHECK (stock >= 0),
		collaborator_id BIGINT
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		payment_method TEXT NOT NULL,
		status TEXT NOT NULL,
		total_amount NUMERIC(14,2) NOT NULL,
		delivery_address TEXT,
		delivery_instructions TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)`,

	`CREATE TABLE IF NOT EXISTS order_lines (
		id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(12,2) NOT NULL,
		collaborator_id BIGINT,
		customization_notes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines(order_id)`,

	`CREATE TABLE IF NOT EXISTS order_events (
		event_id UUID PRIMARY KEY,
		event_type TEXT NOT NULL,
		order_id BIGINT NOT NULL,
		customer_id BIGINT NOT NULL,
		status TEXT NOT NULL,
		previous_status TEXT,
		total_amount NUMERIC(14,2) NOT NULL,
		stock_restored BOOLEAN NOT NULL DEFAULT false,
		occurred_at TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_events_order_id ON order_events(order_id)`,
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}
