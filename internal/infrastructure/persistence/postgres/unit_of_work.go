package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"order_backend/internal/domain/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UnitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

// Do runs fn in a read-committed transaction. Rows locked with FOR UPDATE
// inside fn stay locked until commit or rollback.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, repositoriesFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (u *UnitOfWork) Repositories() repository.Repositories {
	return repositoriesFor(u.pool)
}

func repositoriesFor(q querier) repository.Repositories {
	return repository.Repositories{
		Customers: &CustomerRepository{db: q},
		Inventory: &ProductRepository{db: q},
		Orders:    &OrderRepository{db: q},
	}
}
