package emails

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/usecases/security"
)

type InvoiceRepository interface {
	GetWorkspaceById(ctx context.Context, exec repositories.Executor, workspaceId string) (models.Workspace, error)
	GetWorkspaceMemberByUserId(ctx context.Context, exec repositories.Executor, workspaceId string,
		userId models.UserId) (models.WorkspaceMemberWithRole, error)
	GetActiveEmailById(ctx context.Context, exec repositories.Executor, toAddress, emailId string) (models.Email, error)
	ListActiveEmails(ctx context.Context, exec repositories.Executor, toAddress string, filters models.EmailFilters,
		pagination models.PaginationAndSorting[models.EmailSortField]) ([]models.Email, error)
	CountActiveEmails(ctx context.Context, exec repositories.Executor, toAddress string, filters models.EmailFilters) (int, error)
}

// InvoiceUsecase lets the members of a workspace browse the mails received on its address
type InvoiceUsecase struct {
	enforceSecurity      security.EnforceSecurityWorkspace
	executorFactory      executor_factory.ExecutorFactory
	repository           InvoiceRepository
	blobRepository       repositories.BlobRepository
	attachmentsBucketUrl string
}

func NewInvoiceUsecase(
	enforceSecurity security.EnforceSecurityWorkspace,
	executorFactory executor_factory.ExecutorFactory,
	repository InvoiceRepository,
	blobRepository repositories.BlobRepository,
	attachmentsBucketUrl string,
) InvoiceUsecase {
	return InvoiceUsecase{
		enforceSecurity:      enforceSecurity,
		executorFactory:      executorFactory,
		repository:           repository,
		blobRepository:       blobRepository,
		attachmentsBucketUrl: attachmentsBucketUrl,
	}
}

func (usecase InvoiceUsecase) readableWorkspace(ctx context.Context, exec repositories.Executor, workspaceId string) (models.Workspace, error) {
	membership, err := security.ActorMembership(ctx, exec, usecase.repository, workspaceId, usecase.enforceSecurity.UserId())
	if err != nil {
		return models.Workspace{}, err
	}
	if err := usecase.enforceSecurity.ReadWorkspace(membership); err != nil {
		return models.Workspace{}, err
	}
	return usecase.repository.GetWorkspaceById(ctx, exec, workspaceId)
}

func (usecase InvoiceUsecase) ListInvoices(
	ctx context.Context,
	workspaceId string,
	filters models.EmailFilters,
	pagination models.PaginationAndSorting[models.EmailSortField],
) (models.Paginated[models.Email], error) {
	if filters.StartDate.Valid && filters.EndDate.Valid && filters.EndDate.Time.Before(filters.StartDate.Time) {
		return models.Paginated[models.Email]{}, models.FieldValidationError{"end_date": "must not be before start_date"}
	}
	pagination = pagination.Normalized()

	exec := usecase.executorFactory.NewExecutor()
	workspace, err := usecase.readableWorkspace(ctx, exec, workspaceId)
	if err != nil {
		return models.Paginated[models.Email]{}, err
	}

	emails, err := usecase.repository.ListActiveEmails(ctx, exec, workspace.Email, filters, pagination)
	if err != nil {
		return models.Paginated[models.Email]{}, err
	}
	total, err := usecase.repository.CountActiveEmails(ctx, exec, workspace.Email, filters)
	if err != nil {
		return models.Paginated[models.Email]{}, err
	}

	return models.Paginated[models.Email]{
		Data:        emails,
		CurrentPage: pagination.Page,
		PageSize:    pagination.PageSize,
		Total:       total,
	}, nil
}

// AttachmentUrl returns a short lived download url for an attachment of an active email
func (usecase InvoiceUsecase) AttachmentUrl(ctx context.Context, workspaceId, emailId, key string) (string, error) {
	exec := usecase.executorFactory.NewExecutor()
	workspace, err := usecase.readableWorkspace(ctx, exec, workspaceId)
	if err != nil {
		return "", err
	}

	email, err := usecase.repository.GetActiveEmailById(ctx, exec, workspace.Email, emailId)
	if err != nil {
		return "", err
	}
	if !slices.Contains(email.AttachmentKeys, key) {
		return "", errors.Wrapf(models.NotFoundError, "attachment %s", key)
	}
	return usecase.blobRepository.GenerateSignedUrl(ctx, usecase.attachmentsBucketUrl, key)
}
