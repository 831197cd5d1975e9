package tokens

import (
	"context"
	"time"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/usecases/executor_factory"
)

type usedTokenRepository interface {
	MarkTokenUsed(ctx context.Context, exec repositories.Executor, purpose models.TokenPurpose,
		tokenHash string, expiresAt time.Time) (bool, error)
	PurgeExpiredUsedTokens(ctx context.Context, exec repositories.Executor) (int64, error)
}

// PostgresReplayGuard is used when no redis is configured. Expired rows are purged by the
// scheduler.
type PostgresReplayGuard struct {
	executorFactory executor_factory.ExecutorFactory
	repository      usedTokenRepository
}

func NewPostgresReplayGuard(executorFactory executor_factory.ExecutorFactory, repository usedTokenRepository) PostgresReplayGuard {
	return PostgresReplayGuard{
		executorFactory: executorFactory,
		repository:      repository,
	}
}

func (g PostgresReplayGuard) MarkUsed(ctx context.Context, purpose models.TokenPurpose, tokenHash string, expiresAt time.Time) (bool, error) {
	return g.repository.MarkTokenUsed(ctx, g.executorFactory.NewExecutor(), purpose, tokenHash, expiresAt)
}

// PurgeExpired deletes the rows of tokens that can no longer be presented anyway
func (g PostgresReplayGuard) PurgeExpired(ctx context.Context) (int64, error) {
	return g.repository.PurgeExpiredUsedTokens(ctx, g.executorFactory.NewExecutor())
}
