package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
)

type InvoiceRepository struct {
	mock.Mock
}

func (r *InvoiceRepository) GetWorkspaceById(ctx context.Context, exec repositories.Executor, workspaceId string) (models.Workspace, error) {
	args := r.Called(ctx, exec, workspaceId)
	return args.Get(0).(models.Workspace), args.Error(1)
}

func (r *InvoiceRepository) GetWorkspaceMemberByUserId(ctx context.Context, exec repositories.Executor,
	workspaceId string, userId models.UserId,
) (models.WorkspaceMemberWithRole, error) {
	args := r.Called(ctx, exec, workspaceId, userId)
	return args.Get(0).(models.WorkspaceMemberWithRole), args.Error(1)
}

func (r *InvoiceRepository) GetActiveEmailById(ctx context.Context, exec repositories.Executor, toAddress, emailId string) (models.Email, error) {
	args := r.Called(ctx, exec, toAddress, emailId)
	return args.Get(0).(models.Email), args.Error(1)
}

func (r *InvoiceRepository) ListActiveEmails(ctx context.Context, exec repositories.Executor, toAddress string,
	filters models.EmailFilters, pagination models.PaginationAndSorting[models.EmailSortField],
) ([]models.Email, error) {
	args := r.Called(ctx, exec, toAddress, filters, pagination)
	return args.Get(0).([]models.Email), args.Error(1)
}

func (r *InvoiceRepository) CountActiveEmails(ctx context.Context, exec repositories.Executor, toAddress string,
	filters models.EmailFilters,
) (int, error) {
	args := r.Called(ctx, exec, toAddress, filters)
	return args.Int(0), args.Error(1)
}
