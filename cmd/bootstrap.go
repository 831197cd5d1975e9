package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoicebox/backend/infra"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/utils"
)

// process holds what the api server and the worker both start with: logging, error reporting,
// tracing and the database. Close releases it in reverse order.
type process struct {
	ctx             context.Context
	logger          *slog.Logger
	env             string
	telemetry       infra.TelemetryRessources
	telemetryConfig infra.TelemetryConfiguration
	pool            *pgxpool.Pool
	redis           *repositories.RedisClient
}

func startProcess(version string) (*process, error) {
	p := &process{
		env:    utils.GetEnv("ENV", "development"),
		logger: utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", "text")),
	}
	p.ctx = utils.StoreLoggerInContext(context.Background(), p.logger)

	infra.SetupSentry(utils.GetEnv("SENTRY_DSN", ""), p.env, version)

	p.telemetryConfig = telemetryConfigFromEnv(p.ctx)
	telemetry, err := infra.InitTelemetry(p.telemetryConfig, version)
	if err != nil {
		// tracing is not worth failing the startup
		utils.LogAndReportSentryError(p.ctx, err)
		telemetry = infra.NoopTelemetry()
	}
	p.telemetry = telemetry
	p.ctx = utils.StoreOpenTelemetryTracerInContext(p.ctx, telemetry.Tracer)

	pgConfig := pgConfigFromEnv()
	p.pool, err = infra.NewPostgresConnectionPool(p.ctx, pgConfig.GetConnectionString(),
		telemetry.TracerProvider, pgConfig.MaxPoolConnections)
	if err != nil {
		return p, err
	}

	if redisConfig := redisConfigFromEnv(); redisConfig.Enabled() {
		if p.redis, err = repositories.NewRedisClient(p.ctx, redisConfig); err != nil {
			return p, err
		}
	}
	return p, nil
}

// repositoryOptions are the options common to both processes, the caller appends its own
func (p *process) repositoryOptions() []repositories.Option {
	opts := []repositories.Option{
		repositories.WithTokenConfiguration(tokenConfigurationFromEnv()),
		repositories.WithMailer(mailerConfigFromEnv()),
		repositories.WithGoogleApplicationCredentials(utils.GetEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
	}
	if p.redis != nil {
		opts = append(opts, repositories.WithRedis(p.redis))
	}
	return opts
}

// fail reports a startup error, then releases what was started
func (p *process) fail(err error) error {
	utils.LogAndReportSentryError(p.ctx, err)
	p.Close()
	return err
}

func (p *process) Close() {
	if p.redis != nil {
		if err := p.redis.Close(); err != nil {
			p.logger.WarnContext(p.ctx, "failed to close the redis client", "error", err.Error())
		}
	}
	if p.pool != nil {
		p.pool.Close()
	}
	sentry.Flush(3 * time.Second)
}
