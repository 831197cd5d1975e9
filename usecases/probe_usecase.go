package usecases

import (
	"context"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/repositories/clock"
	"github.com/invoicebox/backend/usecases/executor_factory"
)

type databasePinger interface {
	Ping(ctx context.Context, exec repositories.Executor) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// ProbeUsecase backs the liveness and health endpoints. Liveness only needs the database,
// health also reports the optional dependencies.
type ProbeUsecase struct {
	executorFactory executor_factory.ExecutorFactory
	database        databasePinger
	redis           redisPinger // nil when the replay guard runs on postgres
	clock           clock.Clock
}

func (u ProbeUsecase) Liveness(ctx context.Context) error {
	return u.database.Ping(ctx, u.executorFactory.NewExecutor())
}

func (u ProbeUsecase) Health(ctx context.Context) models.HealthReport {
	report := models.HealthReport{CheckedAt: u.clock.Now()}

	report.Checks = append(report.Checks, u.check(models.HealthComponentDatabase, func() error {
		return u.database.Ping(ctx, u.executorFactory.NewExecutor())
	}))
	if u.redis != nil {
		report.Checks = append(report.Checks, u.check(models.HealthComponentRedis, func() error {
			return u.redis.Ping(ctx)
		}))
	}
	return report
}

func (u ProbeUsecase) check(component string, ping func() error) models.HealthCheck {
	start := u.clock.Now()
	err := ping()

	check := models.HealthCheck{
		Component: component,
		Healthy:   err == nil,
		Latency:   u.clock.Now().Sub(start),
	}
	if err != nil {
		check.Error = err.Error()
	}
	return check
}

