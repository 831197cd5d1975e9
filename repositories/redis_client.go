package repositories

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/invoicebox/backend/infra"
)

// redisCommander is the part of the redis client in use, narrowed for tests
type redisCommander interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

type RedisClient struct {
	client redisCommander
}

func NewRedisClient(ctx context.Context, cfg infra.RedisConfig) (*RedisClient, error) {
	var tlsConfig *tls.Config

	if cfg.Tls {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.TlsSkipVerify,
		}
	}

	client := &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:      cfg.Address,
			Password:  cfg.Key,
			TLSConfig: tlsConfig,
		}),
	}

	if err := client.Ping(ctx); err != nil {
		return nil, errors.Wrap(err, "could not check redis connectivity")
	}

	return client, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}
