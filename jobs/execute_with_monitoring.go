package jobs

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"

	"github.com/invoicebox/backend/utils"
)

// executeWithMonitoring runs a cron task inside a sentry cron monitor named after the task
func executeWithMonitoring(ctx context.Context, jobName string, fn func(context.Context) error) error {
	logger := utils.LoggerFromContext(ctx)
	logger.DebugContext(ctx, fmt.Sprintf("Start job %s", jobName))

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	checkInId := hub.CaptureCheckIn(&sentry.CheckIn{
		MonitorSlug: jobName,
		Status:      sentry.CheckInStatusInProgress,
	}, nil)

	checkIn := func(status sentry.CheckInStatus) {
		if checkInId == nil {
			return
		}
		hub.CaptureCheckIn(&sentry.CheckIn{ID: *checkInId, MonitorSlug: jobName, Status: status}, nil)
	}

	if err := fn(ctx); err != nil {
		checkIn(sentry.CheckInStatusError)
		utils.LogAndReportSentryError(ctx, err)
		return errors.Wrapf(err, "error executing job %s", jobName)
	}

	checkIn(sentry.CheckInStatusOK)
	logger.DebugContext(ctx, fmt.Sprintf("Done executing job %s", jobName))
	return nil
}
