package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
)

type Notifier struct {
	mock.Mock
}

func (n *Notifier) Send(ctx context.Context, notification models.Notification) {
	n.Called(ctx, notification)
}

func (n *Notifier) SendToAll(ctx context.Context, purpose models.NotificationPurpose, recipients []string, templateData map[string]any) {
	n.Called(ctx, purpose, recipients, templateData)
}

func (n *Notifier) AppUrl() string {
	return n.Called().String(0)
}
