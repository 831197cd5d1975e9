package jobs

import (
	"context"

	"github.com/adhocore/gronx/pkg/tasker"

	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

const PURGE_USED_TOKENS_CRON = "17 * * * *"

func errToReturnCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

// RunScheduler runs the cron tasks that do not go through the task queue. It blocks until
// the context is done.
func RunScheduler(ctx context.Context, uc usecases.Usecases) {
	taskr := tasker.New(tasker.Option{
		Verbose: true,
		Tz:      "UTC",
	}).WithContext(ctx)

	// with redis, entries expire on their own
	if uc.Repositories.RedisReplayGuard == nil {
		taskr.Task(PURGE_USED_TOKENS_CRON, func(ctx context.Context) (int, error) {
			logger := utils.LoggerFromContext(ctx).With("job", "purge_used_tokens")
			ctx = utils.StoreLoggerInContext(ctx, logger)
			err := PurgeUsedTokens(ctx, uc)
			return errToReturnCode(err), err
		}, false)
	}

	taskr.Run()
}

func PurgeUsedTokens(ctx context.Context, uc usecases.Usecases) error {
	return executeWithMonitoring(ctx, "purge_used_tokens", func(ctx context.Context) error {
		purged, err := uc.NewPostgresReplayGuard().PurgeExpired(ctx)
		if err != nil {
			return err
		}
		utils.LoggerFromContext(ctx).InfoContext(ctx, "purged expired used tokens", "count", purged)
		return nil
	})
}
