package tokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

type tokenSigner interface {
	Encode(purpose models.TokenPurpose, payload models.TokenPayload) (string, error)
	Decode(purpose models.TokenPurpose, token string) (models.RedeemedToken, error)
}

// ReplayGuard records the redeemed tokens. MarkUsed must be an atomic insert-if-absent: it
// returns true for the first caller only.
type ReplayGuard interface {
	MarkUsed(ctx context.Context, purpose models.TokenPurpose, tokenHash string, expiresAt time.Time) (bool, error)
}

// TokenLedger issues signed tokens and makes the single use ones redeemable once only.
type TokenLedger struct {
	signer tokenSigner
	guard  ReplayGuard
}

func NewTokenLedger(signer tokenSigner, guard ReplayGuard) *TokenLedger {
	return &TokenLedger{
		signer: signer,
		guard:  guard,
	}
}

// HashToken is the key of a token in the replay guard
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (l *TokenLedger) Issue(ctx context.Context, purpose models.TokenPurpose, payload models.TokenPayload) (string, error) {
	token, err := l.signer.Encode(purpose, payload)
	if err != nil {
		return "", errors.Wrapf(err, "could not issue %s token", purpose)
	}
	return token, nil
}

// Verify checks a token without consuming it. It is meant for the access tokens, which are
// not single use.
func (l *TokenLedger) Verify(ctx context.Context, purpose models.TokenPurpose, token string) (models.TokenPayload, error) {
	redeemed, err := l.signer.Decode(purpose, token)
	if err != nil {
		return models.TokenPayload{}, err
	}
	return redeemed.Payload, nil
}

// Redeem verifies the token, then records it as used before returning its payload. Of two
// concurrent redemptions, only one gets past the replay guard.
func (l *TokenLedger) Redeem(ctx context.Context, purpose models.TokenPurpose, token string) (models.TokenPayload, error) {
	redeemed, err := l.signer.Decode(purpose, token)
	if err != nil {
		recordRedemption(purpose, "invalid")
		return models.TokenPayload{}, err
	}

	if !purpose.IsSingleUse() {
		recordRedemption(purpose, "success")
		return redeemed.Payload, nil
	}

	firstUse, err := l.guard.MarkUsed(ctx, purpose, HashToken(token), redeemed.ExpiresAt)
	if err != nil {
		recordRedemption(purpose, "error")
		return models.TokenPayload{}, err
	}
	if !firstUse {
		recordRedemption(purpose, "replayed")
		utils.LoggerFromContext(ctx).WarnContext(ctx, "rejected an already used token",
			"purpose", purpose, "token_id", redeemed.Id)
		return models.TokenPayload{}, errors.Wrapf(models.ErrTokenAlreadyUsed, "%s token", purpose)
	}

	recordRedemption(purpose, "success")
	return redeemed.Payload, nil
}

// Invalidate marks a token as used without redeeming it. Invalid or expired tokens are
// ignored, as they cannot be redeemed anyway.
func (l *TokenLedger) Invalidate(ctx context.Context, purpose models.TokenPurpose, token string) error {
	redeemed, err := l.signer.Decode(purpose, token)
	if errors.Is(err, models.ErrInvalidToken) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = l.guard.MarkUsed(ctx, purpose, HashToken(token), redeemed.ExpiresAt)
	return err
}

func recordRedemption(purpose models.TokenPurpose, outcome string) {
	utils.MetricTokenRedemptions.With(prometheus.Labels{
		"purpose": string(purpose),
		"outcome": outcome,
	}).Inc()
}
