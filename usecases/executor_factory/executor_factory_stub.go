package executor_factory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/invoicebox/backend/repositories"
)

// ExecutorFactoryStub runs the queries on a pgxmock pool. Transactions go through the mock's
// Begin/Commit/Rollback, so tests declare them with ExpectBegin and ExpectCommit.
type ExecutorFactoryStub struct {
	Mock pgxmock.PgxPoolIface
}

func NewExecutorFactoryStub() ExecutorFactoryStub {
	pool, _ := pgxmock.NewPool()

	return ExecutorFactoryStub{
		Mock: pool,
	}
}

type PgExecutorStub struct {
	pgxmock.PgxPoolIface
}

func (stub ExecutorFactoryStub) NewExecutor() repositories.Executor {
	return PgExecutorStub{
		stub.Mock,
	}
}

type TransactionFactoryStub struct {
	ExecutorFactory ExecutorFactoryStub
}

func NewTransactionFactoryStub(executorFactory ExecutorFactoryStub) TransactionFactoryStub {
	return TransactionFactoryStub{
		ExecutorFactory: executorFactory,
	}
}

type PgTxStub struct {
	pgx.Tx
}

func (tx PgTxStub) RawTx() pgx.Tx {
	return tx.Tx
}

func (stub TransactionFactoryStub) Transaction(ctx context.Context, fn func(tx repositories.Transaction) error) error {
	tx, err := stub.ExecutorFactory.Mock.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(PgTxStub{tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
