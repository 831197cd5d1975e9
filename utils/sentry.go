package utils

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
)

// LogAndReportSentryError logs an unexpected error and sends it to sentry, tagged with the
// authenticated user when there is one. Cancelled requests are only logged.
func LogAndReportSentryError(ctx context.Context, err error) {
	logger := LoggerFromContext(ctx)
	logger.ErrorContext(ctx, fmt.Sprintf("%+v", err))

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		logger.DebugContext(ctx, "context canceled or deadline exceeded, not reported", "error", err.Error())
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if creds, found := CredentialsFromCtx(ctx); found {
			scope.SetUser(sentry.User{
				ID:    string(creds.ActorIdentity.UserId),
				Email: creds.ActorIdentity.Email,
			})
		}
		hub.CaptureException(err)
	})
}
