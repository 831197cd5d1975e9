package repositories

import (
	"context"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"

	"github.com/invoicebox/backend/models"
)

var testMailerConfig = models.MailerConfiguration{
	ApiUrl:      "https://mail.example.com",
	ApiKey:      "mail-key",
	SenderEmail: "noreply@example.com",
}

func TestMailRepository_SendMail(t *testing.T) {
	defer gock.Off()
	gock.New("https://mail.example.com").
		Post("/emails").
		MatchHeader("Authorization", "Bearer mail-key").
		JSON(map[string]any{
			"from":    "noreply@example.com",
			"to":      []string{"jane@example.com"},
			"subject": "Reset your password",
			"template": map[string]any{
				"alias": "password_reset",
				"data":  map[string]any{"link": "https://app.example.com/reset"},
			},
		}).
		Reply(http.StatusOK).
		JSON(map[string]string{"id": "msg-1"})

	repo := NewMailRepository(testMailerConfig)
	err := repo.SendMail(context.Background(), models.Notification{
		Purpose:      models.NotificationPasswordReset,
		To:           "jane@example.com",
		TemplateData: map[string]any{"link": "https://app.example.com/reset"},
	})

	assert.NoError(t, err)
	assert.True(t, gock.IsDone())
}

func TestMailRepository_SendMail_RetriesServerErrors(t *testing.T) {
	defer gock.Off()
	gock.New("https://mail.example.com").Post("/emails").Times(2).Reply(http.StatusBadGateway)
	gock.New("https://mail.example.com").Post("/emails").Reply(http.StatusOK).JSON(map[string]string{"id": "msg-1"})

	repo := NewMailRepository(testMailerConfig)
	err := repo.SendMail(context.Background(), models.Notification{
		Purpose: models.NotificationInvite,
		To:      "jane@example.com",
	})

	assert.NoError(t, err)
	assert.True(t, gock.IsDone())
}

func TestMailRepository_SendMail_DoesNotRetryClientErrors(t *testing.T) {
	defer gock.Off()
	gock.New("https://mail.example.com").Post("/emails").Reply(http.StatusUnprocessableEntity)
	gock.New("https://mail.example.com").Post("/emails").Reply(http.StatusOK)

	repo := NewMailRepository(testMailerConfig)
	err := repo.SendMail(context.Background(), models.Notification{
		Purpose: models.NotificationInvite,
		To:      "jane@example.com",
	})

	assert.Error(t, err)
	assert.False(t, gock.IsDone())
}

func TestMailRepository_NotConfigured(t *testing.T) {
	repo := NewMailRepository(models.MailerConfiguration{})
	assert.False(t, repo.IsConfigured())
	assert.Error(t, repo.SendMail(context.Background(), models.Notification{To: "jane@example.com"}))
}
