package infra

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"
)

const (
	DEFAULT_MAX_CONNECTIONS = 50
	// Cloud SQL closes idle connections after 10 minutes
	maxConnectionIdleTime = 5 * time.Minute
)

// NewPostgresConnectionPool traces every query with the given provider. A maxConnections of
// zero or less uses the default.
func NewPostgresConnectionPool(
	ctx context.Context,
	connectionString string,
	tp trace.TracerProvider,
	maxConnections int,
) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "invalid postgres connection string")
	}

	// query parameters stay out of the spans, they carry password hashes and token ids
	cfg.ConnConfig.Tracer = otelpgx.NewTracer(otelpgx.WithTracerProvider(tp))
	cfg.MaxConns = int32(DEFAULT_MAX_CONNECTIONS)
	if maxConnections > 0 {
		cfg.MaxConns = int32(maxConnections)
	}
	cfg.MaxConnIdleTime = maxConnectionIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	return pool, errors.Wrap(err, "failed to create the postgres connection pool")
}
