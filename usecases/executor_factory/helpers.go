package executor_factory

import (
	"context"

	"github.com/invoicebox/backend/repositories"
)

// TransactionReturnValue runs fn in a transaction and returns its result once committed. The zero
// value is returned when the transaction fails, even if fn produced a value.
func TransactionReturnValue[T any](
	ctx context.Context,
	factory TransactionFactory,
	fn func(tx repositories.Transaction) (T, error),
) (T, error) {
	var result T
	err := factory.Transaction(ctx, func(tx repositories.Transaction) (err error) {
		result, err = fn(tx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
