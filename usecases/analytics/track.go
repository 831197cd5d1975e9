package analytics

import (
	"context"

	"github.com/segmentio/analytics-go/v3"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

// TrackEvent sends a product event to segment, on behalf of the authenticated user. It does
// nothing when no segment client is set up or when the context carries no user.
func TrackEvent(ctx context.Context, event models.AnalyticsEvent, properties map[string]interface{}) {
	client, found := utils.SegmentClientFromContext(ctx)
	if !found || client == nil {
		return
	}

	creds, found := utils.CredentialsFromCtx(ctx)
	if !found || creds.ActorIdentity.UserId == "" {
		return
	}

	p := analytics.NewProperties()
	for k, v := range properties {
		p.Set(k, v)
	}

	err := client.Enqueue(analytics.Track{
		Event:      string(event),
		UserId:     string(creds.ActorIdentity.UserId),
		Properties: p,
	})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
	}
}
