package repositories

import "context"

// Ping runs a trivial query, the pool alone would not notice a database that stopped answering
func (repo *DbRepository) Ping(ctx context.Context, exec Executor) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	var one int
	return exec.QueryRow(ctx, "SELECT 1").Scan(&one)
}
