package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
)

type EmailRepository struct {
	mock.Mock
}

func (r *EmailRepository) CreateEmail(ctx context.Context, exec repositories.Executor, newEmailId string, input models.CreateEmailInput) error {
	args := r.Called(ctx, exec, newEmailId, input)
	return args.Error(0)
}

func (r *EmailRepository) GetActiveEmailById(ctx context.Context, exec repositories.Executor, toAddress, emailId string) (models.Email, error) {
	args := r.Called(ctx, exec, toAddress, emailId)
	return args.Get(0).(models.Email), args.Error(1)
}

func (r *EmailRepository) ReassociateEmails(ctx context.Context, exec repositories.Executor, oldAddress, newAddress string) (int64, error) {
	args := r.Called(ctx, exec, oldAddress, newAddress)
	return args.Get(0).(int64), args.Error(1)
}

func (r *EmailRepository) FlagEmailsInactive(ctx context.Context, exec repositories.Executor, address string) (int64, error) {
	args := r.Called(ctx, exec, address)
	return args.Get(0).(int64), args.Error(1)
}

func (r *EmailRepository) ListActiveEmails(ctx context.Context, exec repositories.Executor, toAddress string,
	filters models.EmailFilters, pagination models.PaginationAndSorting[models.EmailSortField],
) ([]models.Email, error) {
	args := r.Called(ctx, exec, toAddress, filters, pagination)
	return args.Get(0).([]models.Email), args.Error(1)
}

func (r *EmailRepository) CountActiveEmails(ctx context.Context, exec repositories.Executor, toAddress string,
	filters models.EmailFilters,
) (int, error) {
	args := r.Called(ctx, exec, toAddress, filters)
	return args.Int(0), args.Error(1)
}
