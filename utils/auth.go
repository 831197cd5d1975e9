package utils

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/invoicebox/backend/models"
)

func identityAttr(identity models.Identity) (attr slog.Attr, ok bool) {
	if identity.Email != "" {
		return slog.String("Email", identity.Email), true
	}
	if identity.UserId != "" {
		return slog.String("UserId", string(identity.UserId)), true
	}
	return slog.Attr{}, false
}

type validator interface {
	Verify(ctx context.Context, accessToken string) (models.Credentials, error)
}

type Authentication struct {
	Validator validator
}

// Middleware rejects the request unless it carries a valid access token, and stores the
// credentials and an enriched logger in the request context.
func (a *Authentication) Middleware(c *gin.Context) {
	ctx := c.Request.Context()
	accessToken, err := ParseAuthorizationBearerHeader(c.Request.Header)
	if err != nil {
		_ = c.Error(errors.Wrap(err, "could not parse authorization header"))
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	if accessToken == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	credentials, err := a.Validator.Verify(ctx, accessToken)
	if err != nil {
		if errors.Is(err, models.UnAuthorizedError) || errors.Is(err, models.NotFoundError) ||
			errors.Is(err, models.ForbiddenError) {
			_ = c.Error(errors.Wrap(err, "could not verify access token"))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		LogAndReportSentryError(ctx, err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	newContext := StoreCredentialsInContext(ctx, credentials)
	if attr, ok := identityAttr(credentials.ActorIdentity); ok {
		logger := LoggerFromContext(newContext).
			With(attr).
			With(slog.String("Role", string(credentials.Role)))
		newContext = StoreLoggerInContext(newContext, logger)
	}
	c.Request = c.Request.WithContext(newContext)
	c.Next()
}

func NewAuthentication(validator validator) Authentication {
	return Authentication{
		Validator: validator,
	}
}

// ParseAuthorizationBearerHeader extracts the token of an "Authorization: Bearer <token>" header.
// A missing header is not an error and returns an empty token.
func ParseAuthorizationBearerHeader(header http.Header) (string, error) {
	authorization := header.Get("Authorization")
	if authorization == "" {
		return "", nil
	}

	scheme, token, found := strings.Cut(authorization, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errors.Wrap(models.UnAuthorizedError, "malformed Authorization header, expected 'Bearer <token>'")
	}
	return strings.TrimSpace(token), nil
}
