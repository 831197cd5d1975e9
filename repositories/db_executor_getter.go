package repositories

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoicebox/backend/models"
)

// ExecutorGetter hands out executors on the shared pool and opens the transactions
type ExecutorGetter struct {
	pool *pgxpool.Pool
}

func NewExecutorGetter(pool *pgxpool.Pool) ExecutorGetter {
	return ExecutorGetter{pool: pool}
}

func (g ExecutorGetter) GetExecutor() Executor {
	return &PgExecutor{exec: g.pool}
}

// Transaction commits when fn returns nil and rolls back otherwise. Returning
// models.ErrIgnoreRollBackError rolls back and reports success, for dry runs.
func (g ExecutorGetter) Transaction(ctx context.Context, fn func(tx Transaction) error) error {
	err := pgx.BeginFunc(ctx, g.pool, func(tx pgx.Tx) error {
		return fn(&PgTx{tx: tx})
	})
	switch {
	case err == nil, errors.Is(err, models.ErrIgnoreRollBackError):
		return nil
	default:
		return errors.Wrap(err, "transaction rolled back")
	}
}
