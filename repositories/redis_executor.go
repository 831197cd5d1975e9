package repositories

import (
	"context"
	"strings"
	"time"
)

// RedisExecutor namespaces the keys it writes, so that several features can share one redis
// database.
type RedisExecutor struct {
	client    *RedisClient
	namespace string
}

func (c *RedisClient) NewExecutor(namespace string) *RedisExecutor {
	return &RedisExecutor{
		client:    c,
		namespace: namespace,
	}
}

func (exec *RedisExecutor) Key(keys ...string) string {
	key := strings.Join(keys, ":")

	if exec.namespace == "" {
		return key
	}
	return exec.namespace + ":" + key
}

// SetIfAbsent atomically creates the key with a ttl. It returns false if the key already exists.
func (exec *RedisExecutor) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return exec.client.client.SetNX(ctx, key, 1, ttl).Result()
}
