package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/dbmodels"
)

const usedTokensRedisNamespace = "used_tokens"

// minimal ttl, so that a token redeemed in its last millisecond still gets a key
const minReplayGuardTtl = time.Second

// RedisReplayGuard records redeemed tokens in redis, the entries expire with the tokens
type RedisReplayGuard struct {
	exec  *RedisExecutor
	clock func() time.Time
}

func NewRedisReplayGuard(client *RedisClient) *RedisReplayGuard {
	return &RedisReplayGuard{
		exec:  client.NewExecutor(usedTokensRedisNamespace),
		clock: time.Now,
	}
}

func (g *RedisReplayGuard) MarkUsed(ctx context.Context, purpose models.TokenPurpose, tokenHash string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(g.clock())
	if ttl < minReplayGuardTtl {
		ttl = minReplayGuardTtl
	}

	firstUse, err := g.exec.SetIfAbsent(ctx, g.exec.Key(string(purpose), tokenHash), ttl)
	if err != nil {
		return false, errors.Wrap(err, "error writing used token to redis")
	}
	return firstUse, nil
}

// MarkTokenUsed is the postgres version of the replay guard. It returns false if the token
// hash was already recorded for this purpose.
func (repo *DbRepository) MarkTokenUsed(ctx context.Context, exec Executor,
	purpose models.TokenPurpose, tokenHash string, expiresAt time.Time,
) (bool, error) {
	if err := validateDbExecutor(exec); err != nil {
		return false, err
	}

	rowsAffected, err := ExecBuilderRowsAffected(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_USED_TOKENS).
			Columns("purpose", "token_hash", "expires_at").
			Values(purpose, tokenHash, expiresAt).
			Suffix("ON CONFLICT (purpose, token_hash) DO NOTHING"),
	)
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (repo *DbRepository) PurgeExpiredUsedTokens(ctx context.Context, exec Executor) (int64, error) {
	if err := validateDbExecutor(exec); err != nil {
		return 0, err
	}

	return ExecBuilderRowsAffected(
		ctx,
		exec,
		NewQueryBuilder().Delete(dbmodels.TABLE_USED_TOKENS).
			Where(squirrel.Lt{"expires_at": repo.clock.Now()}),
	)
}
