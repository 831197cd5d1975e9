package tokens

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/repositories/clock"
	"github.com/invoicebox/backend/usecases/executor_factory"
)

type memoryReplayGuard struct {
	used sync.Map
}

func (g *memoryReplayGuard) MarkUsed(_ context.Context, purpose models.TokenPurpose, tokenHash string, _ time.Time) (bool, error) {
	_, loaded := g.used.LoadOrStore(string(purpose)+":"+tokenHash, struct{}{})
	return !loaded, nil
}

var testTokenConfig = models.TokenConfiguration{
	Issuer: "invoicebox-test",
	Policies: map[models.TokenPurpose]models.TokenPolicy{
		models.TokenPurposeInvite:        {Secret: []byte("invite-secret"), Lifetime: 24 * time.Hour},
		models.TokenPurposePasswordReset: {Secret: []byte("reset-secret"), Lifetime: time.Hour},
		models.TokenPurposeRefresh:       {Secret: []byte("refresh-secret"), Lifetime: 30 * 24 * time.Hour},
		models.TokenPurposeAccess:        {Secret: []byte("access-secret"), Lifetime: 15 * time.Minute},
	},
}

func newTestLedger() *TokenLedger {
	signer := repositories.NewJwtRepository(testTokenConfig, clock.New())
	return NewTokenLedger(signer, &memoryReplayGuard{})
}

func TestRedeem_ExactlyOnce(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger()
	payload := models.TokenPayload{Email: "jane@example.com", WorkspaceId: "ws-1"}

	token, err := ledger.Issue(ctx, models.TokenPurposeInvite, payload)
	require.NoError(t, err)

	redeemed, err := ledger.Redeem(ctx, models.TokenPurposeInvite, token)
	require.NoError(t, err)
	assert.Equal(t, payload, redeemed)

	_, err = ledger.Redeem(ctx, models.TokenPurposeInvite, token)
	assert.ErrorIs(t, err, models.ErrTokenAlreadyUsed)
}

func TestRedeem_Concurrent(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger()

	token, err := ledger.Issue(ctx, models.TokenPurposePasswordReset, models.TokenPayload{UserId: "user-1"})
	require.NoError(t, err)

	var successes atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Redeem(ctx, models.TokenPurposePasswordReset, token); err == nil {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}

func TestRedeem_WrongPurpose(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger()

	token, err := ledger.Issue(ctx, models.TokenPurposeInvite, models.TokenPayload{Email: "jane@example.com"})
	require.NoError(t, err)

	_, err = ledger.Redeem(ctx, models.TokenPurposePasswordReset, token)
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	// the failed attempt did not consume the token
	_, err = ledger.Redeem(ctx, models.TokenPurposeInvite, token)
	assert.NoError(t, err)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger()

	token, err := ledger.Issue(ctx, models.TokenPurposeRefresh, models.TokenPayload{UserId: "user-1"})
	require.NoError(t, err)

	require.NoError(t, ledger.Invalidate(ctx, models.TokenPurposeRefresh, token))
	_, err = ledger.Redeem(ctx, models.TokenPurposeRefresh, token)
	assert.ErrorIs(t, err, models.ErrTokenAlreadyUsed)

	assert.NoError(t, ledger.Invalidate(ctx, models.TokenPurposeRefresh, "not-a-token"))
}

func TestAccessTokensAreReusable(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger()

	token, err := ledger.Issue(ctx, models.TokenPurposeAccess, models.TokenPayload{UserId: "user-1"})
	require.NoError(t, err)

	for range 2 {
		payload, err := ledger.Verify(ctx, models.TokenPurposeAccess, token)
		assert.NoError(t, err)
		assert.Equal(t, models.UserId("user-1"), payload.UserId)
	}
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}

func TestPostgresReplayGuard(t *testing.T) {
	ctx := context.Background()
	exec := executor_factory.NewExecutorFactoryStub()
	guard := NewPostgresReplayGuard(exec, repositories.NewDbRepository(nil))
	expiresAt := time.Now().Add(time.Hour)

	exec.Mock.ExpectExec("INSERT INTO used_tokens").
		WithArgs(models.TokenPurposeInvite, "hash", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	exec.Mock.ExpectExec("INSERT INTO used_tokens").
		WithArgs(models.TokenPurposeInvite, "hash", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	first, err := guard.MarkUsed(ctx, models.TokenPurposeInvite, "hash", expiresAt)
	assert.NoError(t, err)
	assert.True(t, first)

	second, err := guard.MarkUsed(ctx, models.TokenPurposeInvite, "hash", expiresAt)
	assert.NoError(t, err)
	assert.False(t, second)

	assert.NoError(t, exec.Mock.ExpectationsWereMet())
}

func TestPostgresReplayGuard_PurgeExpired(t *testing.T) {
	exec := executor_factory.NewExecutorFactoryStub()
	guard := NewPostgresReplayGuard(exec, repositories.NewDbRepository(nil))

	exec.Mock.ExpectExec("DELETE FROM used_tokens WHERE expires_at < \\$1").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	purged, err := guard.PurgeExpired(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	assert.NoError(t, exec.Mock.ExpectationsWereMet())
}
