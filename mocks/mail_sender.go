package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
)

type MailSender struct {
	mock.Mock
}

func (m *MailSender) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *MailSender) SendMail(ctx context.Context, notification models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}
