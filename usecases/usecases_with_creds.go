package usecases

import (
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/usecases/emails"
	"github.com/invoicebox/backend/usecases/membership"
	"github.com/invoicebox/backend/usecases/reports"
	"github.com/invoicebox/backend/usecases/roles"
	"github.com/invoicebox/backend/usecases/security"
	"github.com/invoicebox/backend/usecases/users"
	"github.com/invoicebox/backend/usecases/workspaces"
)

// UsecasesWithCreds builds the usecases that act on behalf of an authenticated user
type UsecasesWithCreds struct {
	Usecases
	Credentials models.Credentials
}

func (usecases *Usecases) WithCredentials(creds models.Credentials) *UsecasesWithCreds {
	return &UsecasesWithCreds{Usecases: *usecases, Credentials: creds}
}

func (usecases *UsecasesWithCreds) NewEnforceWorkspaceSecurity() security.EnforceSecurityWorkspace {
	return security.NewEnforceSecurityWorkspace(usecases.Credentials)
}

func (usecases *UsecasesWithCreds) NewRoleUsecase() roles.RoleUsecase {
	return roles.NewRoleUsecase(
		usecases.NewEnforceWorkspaceSecurity(),
		usecases.NewExecutorFactory(),
		usecases.Repositories.DbRepository,
		usecases.NewRoleRegistry(),
	)
}

func (usecases *UsecasesWithCreds) NewMembershipEngine() membership.MembershipEngine {
	return membership.NewMembershipEngine(
		usecases.NewEnforceWorkspaceSecurity(),
		usecases.NewExecutorFactory(),
		usecases.NewTransactionFactory(),
		usecases.Repositories.DbRepository,
		usecases.NewRoleRegistry(),
		usecases.NewTokenLedger(),
		usecases.NewNotifier(),
	)
}

func (usecases *UsecasesWithCreds) NewWorkspaceLifecycle() workspaces.WorkspaceLifecycle {
	return workspaces.NewWorkspaceLifecycle(
		usecases.NewEnforceWorkspaceSecurity(),
		usecases.NewExecutorFactory(),
		usecases.NewTransactionFactory(),
		usecases.Repositories.DbRepository,
		usecases.Repositories.DbRepository,
		usecases.NewRoleRegistry(),
		usecases.inboundMail.MailDomain,
	)
}

func (usecases *UsecasesWithCreds) NewStatisticsUsecase() reports.StatisticsUsecase {
	return reports.NewStatisticsUsecase(
		usecases.NewEnforceWorkspaceSecurity(),
		usecases.NewExecutorFactory(),
		usecases.Repositories.DbRepository,
		usecases.Repositories.DbRepository,
		usecases.NewReportAggregator(),
	)
}

func (usecases *UsecasesWithCreds) NewInvoiceUsecase() emails.InvoiceUsecase {
	return emails.NewInvoiceUsecase(
		usecases.NewEnforceWorkspaceSecurity(),
		usecases.NewExecutorFactory(),
		usecases.Repositories.DbRepository,
		usecases.Repositories.BlobRepository,
		usecases.inboundMail.AttachmentsBucketUrl,
	)
}

func (usecases *UsecasesWithCreds) NewUserUsecase() users.UserUsecase {
	return users.NewUserUsecase(
		usecases.Credentials,
		usecases.NewExecutorFactory(),
		usecases.NewTransactionFactory(),
		usecases.Repositories.DbRepository,
	)
}
