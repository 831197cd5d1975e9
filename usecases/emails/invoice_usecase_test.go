package emails

import (
	"context"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/guregu/null/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/invoicebox/backend/mocks"
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/usecases/security"
)

type InvoiceUsecaseTestSuite struct {
	suite.Suite
	ctx        context.Context
	repository *mocks.InvoiceRepository
	blobs      *mocks.BlobRepository
	usecase    InvoiceUsecase
	userId     models.UserId
	workspace  models.Workspace
}

func (suite *InvoiceUsecaseTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.repository = new(mocks.InvoiceRepository)
	suite.blobs = new(mocks.BlobRepository)
	suite.userId = models.UserId(faker.UUIDHyphenated())
	suite.workspace = models.Workspace{Id: faker.UUIDHyphenated(), Name: "Acme", Email: "acme@invoices.test"}

	creds := models.Credentials{ActorIdentity: models.Identity{UserId: suite.userId}}
	suite.usecase = NewInvoiceUsecase(security.NewEnforceSecurityWorkspace(creds),
		executor_factory.NewExecutorFactoryStub(), suite.repository, suite.blobs, "mem://attachments")
}

func (suite *InvoiceUsecaseTestSuite) AfterTest(_, _ string) {
	suite.repository.AssertExpectations(suite.T())
	suite.blobs.AssertExpectations(suite.T())
}

func (suite *InvoiceUsecaseTestSuite) memberOfWorkspace() {
	suite.repository.On("GetWorkspaceMemberByUserId", mock.Anything, mock.Anything, suite.workspace.Id, suite.userId).
		Return(models.WorkspaceMemberWithRole{
			WorkspaceMember: models.WorkspaceMember{WorkspaceId: suite.workspace.Id, UserId: suite.userId},
			Role:            models.DefaultRole(models.RoleTypeGuest),
		}, nil)
	suite.repository.On("GetWorkspaceById", mock.Anything, mock.Anything, suite.workspace.Id).Return(suite.workspace, nil)
}

func (suite *InvoiceUsecaseTestSuite) TestListInvoices_NormalizesPagination() {
	suite.memberOfWorkspace()
	filters := models.EmailFilters{Search: "invoice"}
	expectedPagination := models.PaginationAndSorting[models.EmailSortField]{
		Page:     1,
		PageSize: models.DEFAULT_PAGE_SIZE,
		Sorting:  models.EmailSortSubject,
		Order:    models.SortingOrderDesc,
	}
	emails := []models.Email{{Id: "email-1", To: suite.workspace.Email, Subject: "Invoice 1"}}
	suite.repository.On("ListActiveEmails", mock.Anything, mock.Anything, suite.workspace.Email, filters, expectedPagination).
		Return(emails, nil)
	suite.repository.On("CountActiveEmails", mock.Anything, mock.Anything, suite.workspace.Email, filters).Return(11, nil)

	page, err := suite.usecase.ListInvoices(suite.ctx, suite.workspace.Id, filters,
		models.PaginationAndSorting[models.EmailSortField]{Sorting: models.EmailSortSubject})

	suite.Require().NoError(err)
	suite.Equal(models.Paginated[models.Email]{Data: emails, CurrentPage: 1, PageSize: 10, Total: 11}, page)
}

func (suite *InvoiceUsecaseTestSuite) TestListInvoices_InvertedDates() {
	filters := models.EmailFilters{
		StartDate: null.TimeFrom(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)),
		EndDate:   null.TimeFrom(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)),
	}

	_, err := suite.usecase.ListInvoices(suite.ctx, suite.workspace.Id, filters,
		models.PaginationAndSorting[models.EmailSortField]{})

	suite.ErrorIs(err, models.BadParameterError)
}

func (suite *InvoiceUsecaseTestSuite) TestAttachmentUrl() {
	suite.memberOfWorkspace()
	key := "emails/acme/msg-1/invoice.pdf"
	suite.repository.On("GetActiveEmailById", mock.Anything, mock.Anything, suite.workspace.Email, "email-1").
		Return(models.Email{Id: "email-1", AttachmentKeys: []string{key}}, nil)
	suite.blobs.On("GenerateSignedUrl", mock.Anything, "mem://attachments", key).
		Return("https://storage.test/signed", nil)

	url, err := suite.usecase.AttachmentUrl(suite.ctx, suite.workspace.Id, "email-1", key)

	suite.Require().NoError(err)
	suite.Equal("https://storage.test/signed", url)
}

func (suite *InvoiceUsecaseTestSuite) TestAttachmentUrl_KeyOfAnotherEmail() {
	suite.memberOfWorkspace()
	suite.repository.On("GetActiveEmailById", mock.Anything, mock.Anything, suite.workspace.Email, "email-1").
		Return(models.Email{Id: "email-1", AttachmentKeys: []string{"emails/acme/msg-1/invoice.pdf"}}, nil)

	_, err := suite.usecase.AttachmentUrl(suite.ctx, suite.workspace.Id, "email-1", "emails/other/msg-9/secret.pdf")

	suite.ErrorIs(err, models.NotFoundError)
}

func TestInvoiceUsecase(t *testing.T) {
	suite.Run(t, new(InvoiceUsecaseTestSuite))
}
