package notifications

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

type mailSender interface {
	IsConfigured() bool
	SendMail(ctx context.Context, notification models.Notification) error
}

// Notifier delivers transactional mail on a best effort basis: a failed delivery is logged and
// reported, never returned to the caller.
type Notifier struct {
	mailer mailSender
	appUrl string
}

func NewNotifier(mailer mailSender, appUrl string) *Notifier {
	return &Notifier{
		mailer: mailer,
		appUrl: appUrl,
	}
}

// AppUrl is the base url of the links put in the mails
func (n *Notifier) AppUrl() string {
	return n.appUrl
}

func (n *Notifier) Send(ctx context.Context, notification models.Notification) {
	logger := utils.LoggerFromContext(ctx).With("purpose", notification.Purpose)

	if !n.mailer.IsConfigured() {
		logger.WarnContext(ctx, "mail provider is not configured, notification dropped")
		recordNotification(notification.Purpose, "skipped")
		return
	}

	if err := n.mailer.SendMail(ctx, notification); err != nil {
		recordNotification(notification.Purpose, "failure")
		utils.LogAndReportSentryError(ctx, err)
		return
	}

	recordNotification(notification.Purpose, "success")
	logger.DebugContext(ctx, "notification sent")
}

// SendToAll sends the same notification to each recipient
func (n *Notifier) SendToAll(ctx context.Context, purpose models.NotificationPurpose,
	recipients []string, templateData map[string]any,
) {
	for _, to := range recipients {
		if to == "" {
			continue
		}
		n.Send(ctx, models.Notification{
			Purpose:      purpose,
			To:           to,
			TemplateData: templateData,
		})
	}
}

func recordNotification(purpose models.NotificationPurpose, outcome string) {
	utils.MetricNotificationsSent.With(prometheus.Labels{
		"purpose": string(purpose),
		"outcome": outcome,
	}).Inc()
}
