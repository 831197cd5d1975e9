package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/utils"
)

// long enough for an index build on the invoices table, short enough to fail a stuck deploy
const migrationsTimeout = 10 * time.Minute

// RunMigrations applies the schema migrations, then the task queue ones
func RunMigrations() error {
	logger := utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", "text"))
	ctx, cancel := context.WithTimeout(
		utils.StoreLoggerInContext(context.Background(), logger), migrationsTimeout)
	defer cancel()

	start := time.Now()
	if err := repositories.NewMigrater(pgConfigFromEnv()).Run(ctx); err != nil {
		logger.ErrorContext(ctx, "migrations failed", slog.String("error", err.Error()))
		return err
	}
	logger.InfoContext(ctx, "migrations applied", slog.Duration("duration", time.Since(start)))
	return nil
}
