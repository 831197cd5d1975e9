package repositories

import (
	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/clock"
)

// JwtRepository signs and verifies the tokens of every purpose. Each purpose has its own
// secret, so that a token can never be replayed for another purpose.
type JwtRepository struct {
	config models.TokenConfiguration
	clock  clock.Clock
}

// We add jwt.RegisteredClaims as an embedded type, to provide fields like expiry time
type Claims struct {
	Payload models.TokenPayload `json:"payload"`
	Purpose models.TokenPurpose `json:"typ"`
	jwt.RegisteredClaims
}

var ValidationAlgo = jwt.SigningMethodHS256

func NewJwtRepository(config models.TokenConfiguration, c clock.Clock) *JwtRepository {
	if c == nil {
		c = clock.New()
	}
	return &JwtRepository{config: config, clock: c}
}

func (repo *JwtRepository) policy(purpose models.TokenPurpose) (models.TokenPolicy, error) {
	policy, ok := repo.config.Policies[purpose]
	if !ok || len(policy.Secret) == 0 {
		return models.TokenPolicy{}, errors.Newf("no token policy configured for purpose %s", purpose)
	}
	return policy, nil
}

func (repo *JwtRepository) Encode(purpose models.TokenPurpose, payload models.TokenPayload) (string, error) {
	policy, err := repo.policy(purpose)
	if err != nil {
		return "", err
	}

	now := repo.clock.Now()
	claims := &Claims{
		Payload: payload,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    repo.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(policy.Lifetime)),
		},
	}

	token := jwt.NewWithClaims(ValidationAlgo, claims)
	return token.SignedString(policy.Secret)
}

// Decode verifies the signature, algorithm, issuer, expiry and purpose of a token. Any failure
// is reported as ErrInvalidToken.
func (repo *JwtRepository) Decode(purpose models.TokenPurpose, tokenString string) (models.RedeemedToken, error) {
	policy, err := repo.policy(purpose)
	if err != nil {
		return models.RedeemedToken{}, err
	}

	keyFunc := func(token *jwt.Token) (any, error) {
		method, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok || method != ValidationAlgo {
			return nil, errors.Newf("unexpected signing method: %v", token.Header["alg"])
		}
		return policy.Secret, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFunc,
		jwt.WithValidMethods([]string{ValidationAlgo.Alg()}),
		jwt.WithIssuer(repo.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(repo.clock.Now),
	)
	if err != nil {
		return models.RedeemedToken{}, errors.Join(
			models.ErrInvalidToken,
			errors.Wrap(err, "error parsing jwt token claims"),
		)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.RedeemedToken{}, errors.Wrap(models.ErrInvalidToken, "invalid token claims")
	}
	if claims.Purpose != purpose {
		return models.RedeemedToken{}, errors.Wrapf(models.ErrInvalidToken,
			"token purpose %s, expected %s", claims.Purpose, purpose)
	}

	return models.RedeemedToken{
		Payload:   claims.Payload,
		Id:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
