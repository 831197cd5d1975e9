package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/httpmodels"
)

const mailRequestTimeout = 10 * time.Second

var mailSubjects = map[models.NotificationPurpose]string{
	models.NotificationInvite:            "You have been invited to a workspace",
	models.NotificationEmailVerification: "Verify your email address",
	models.NotificationPasswordReset:     "Reset your password",
	models.NotificationPasswordChanged:   "Your password has been changed",
	models.NotificationMemberJoined:      "A new member joined your workspace",
	models.NotificationWeeklyReport:      "Your weekly workspace report",
}

// errNonRetryableMail is returned for 4xx answers of the mail provider, which would fail again
var errNonRetryableMail = errors.New("mail provider rejected the message")

// MailRepository sends templated transactional mail through the provider's HTTP API. The
// provider renders the template from its alias and the template data.
type MailRepository struct {
	config models.MailerConfiguration
	client *http.Client
}

func NewMailRepository(config models.MailerConfiguration) *MailRepository {
	return &MailRepository{
		config: config,
		client: &http.Client{
			Timeout:   mailRequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (repo *MailRepository) IsConfigured() bool {
	return repo.config.ApiUrl != "" && repo.config.ApiKey != ""
}

func (repo *MailRepository) SendMail(ctx context.Context, notification models.Notification) error {
	if !repo.IsConfigured() {
		return errors.New("mail provider is not configured")
	}

	body, err := json.Marshal(httpmodels.HTTPMailRequest{
		From:    repo.config.SenderEmail,
		To:      []string{notification.To},
		Subject: mailSubjects[notification.Purpose],
		Template: httpmodels.HTTPMailTemplate{
			Alias: string(notification.Purpose),
			Data:  notification.TemplateData,
		},
	})
	if err != nil {
		return errors.Wrap(err, "could not marshal mail request")
	}

	return retry.Do(
		func() error {
			return repo.post(ctx, body)
		},
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, errNonRetryableMail)
		}),
		retry.Context(ctx),
	)
}

func (repo *MailRepository) post(ctx context.Context, body []byte) error {
	url := fmt.Sprintf("%s/emails", strings.TrimSuffix(repo.config.ApiUrl, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+repo.config.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := repo.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "could not reach mail provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := errors.Newf("unexpected status code from mail provider: %d: %s", resp.StatusCode, detail)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return errors.Mark(err, errNonRetryableMail)
		}
		return err
	}

	var response httpmodels.HTTPMailResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "could not decode mail provider response")
	}
	return nil
}
