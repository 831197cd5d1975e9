package workspaces

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/usecases/analytics"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/usecases/security"
	"github.com/invoicebox/backend/utils"
)

type WorkspaceRepository interface {
	CreateWorkspace(ctx context.Context, exec repositories.Executor, newWorkspaceId string, input models.CreateWorkspaceInput) error
	GetWorkspaceById(ctx context.Context, exec repositories.Executor, workspaceId string) (models.Workspace, error)
	LockWorkspace(ctx context.Context, tx repositories.Transaction, workspaceId string) (models.Workspace, error)
	GetWorkspaceByEmail(ctx context.Context, exec repositories.Executor, email string) (*models.Workspace, error)
	ListWorkspacesOfUser(ctx context.Context, exec repositories.Executor, userId models.UserId) ([]models.Workspace, error)
	UpdateWorkspace(ctx context.Context, exec repositories.Executor, workspaceId string, input models.UpdateWorkspaceInput) error
	SoftDeleteWorkspace(ctx context.Context, exec repositories.Executor, workspaceId string) error

	GetWorkspaceMemberByUserId(ctx context.Context, exec repositories.Executor, workspaceId string,
		userId models.UserId) (models.WorkspaceMemberWithRole, error)
	CreateWorkspaceMember(ctx context.Context, exec repositories.Executor, newMemberId string,
		input models.CreateWorkspaceMemberInput) error
	DeleteAllWorkspaceMembers(ctx context.Context, exec repositories.Executor, workspaceId string) error
	DeleteAllCustomRoles(ctx context.Context, exec repositories.Executor, workspaceId string) error
}

// emailAssociation follows the inbound emails of a workspace when its address changes
type emailAssociation interface {
	ReassociateEmails(ctx context.Context, exec repositories.Executor, oldAddress, newAddress string) (int64, error)
	FlagEmailsInactive(ctx context.Context, exec repositories.Executor, address string) (int64, error)
}

type defaultRoleReader interface {
	GetDefaultRole(ctx context.Context, exec repositories.Executor, roleType models.RoleType) (models.WorkspaceRole, error)
}

// WorkspaceLifecycle creates, edits and tears down workspaces. The inbound address of a
// workspace always belongs to the mail domain.
type WorkspaceLifecycle struct {
	enforceSecurity    security.EnforceSecurityWorkspace
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         WorkspaceRepository
	emails             emailAssociation
	roles              defaultRoleReader
	mailDomain         string
}

func NewWorkspaceLifecycle(
	enforceSecurity security.EnforceSecurityWorkspace,
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	repository WorkspaceRepository,
	emails emailAssociation,
	roles defaultRoleReader,
	mailDomain string,
) WorkspaceLifecycle {
	return WorkspaceLifecycle{
		enforceSecurity:    enforceSecurity,
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		repository:         repository,
		emails:             emails,
		roles:              roles,
		mailDomain:         mailDomain,
	}
}

func (usecase WorkspaceLifecycle) validateEmail(email string) error {
	if !models.IsWorkspaceDomainEmail(email, usecase.mailDomain) {
		return models.FieldValidationError{"email": "must be an address of the domain " + usecase.mailDomain}
	}
	return nil
}

// Create makes the authenticated user the owner of a new workspace
func (usecase WorkspaceLifecycle) Create(ctx context.Context, input models.CreateWorkspaceInput) (models.Workspace, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" {
		return models.Workspace{}, models.FieldValidationError{"name": "must not be empty"}
	}

	newWorkspaceId := uuid.NewString()
	if input.Email == "" {
		input.Email = models.DefaultWorkspaceEmail(newWorkspaceId, usecase.mailDomain)
	} else if err := usecase.validateEmail(input.Email); err != nil {
		return models.Workspace{}, err
	}

	workspace, err := executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory, func(
		tx repositories.Transaction,
	) (models.Workspace, error) {
		if err := usecase.repository.CreateWorkspace(ctx, tx, newWorkspaceId, input); err != nil {
			return models.Workspace{}, err
		}

		owner, err := usecase.roles.GetDefaultRole(ctx, tx, models.RoleTypeOwner)
		if err != nil {
			return models.Workspace{}, err
		}
		err = usecase.repository.CreateWorkspaceMember(ctx, tx, uuid.NewString(), models.CreateWorkspaceMemberInput{
			WorkspaceId: newWorkspaceId,
			UserId:      usecase.enforceSecurity.UserId(),
			RoleId:      owner.Id,
		})
		if err != nil {
			return models.Workspace{}, err
		}
		return usecase.repository.GetWorkspaceById(ctx, tx, newWorkspaceId)
	})
	if err != nil {
		return models.Workspace{}, err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "workspace created", "workspace_id", workspace.Id)
	analytics.TrackEvent(ctx, models.AnalyticsWorkspaceCreated, map[string]interface{}{"workspace_id": workspace.Id})
	return workspace, nil
}

// Update moves the active emails to the new address before the address itself is changed,
// in the same transaction.
func (usecase WorkspaceLifecycle) Update(ctx context.Context, workspaceId string,
	input models.UpdateWorkspaceInput,
) (models.Workspace, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.About = strings.TrimSpace(input.About)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email != "" {
		if err := usecase.validateEmail(input.Email); err != nil {
			return models.Workspace{}, err
		}
	}

	return executor_factory.TransactionReturnValue(ctx, usecase.transactionFactory, func(
		tx repositories.Transaction,
	) (models.Workspace, error) {
		workspace, err := usecase.repository.LockWorkspace(ctx, tx, workspaceId)
		if err != nil {
			return models.Workspace{}, err
		}
		membership, err := security.ActorMembership(ctx, tx, usecase.repository, workspaceId, usecase.enforceSecurity.UserId())
		if err != nil {
			return models.Workspace{}, err
		}
		if err := usecase.enforceSecurity.WorkspacePermission(membership, models.PermissionEditWorkspace); err != nil {
			return models.Workspace{}, err
		}

		if input.Email == workspace.Email {
			input.Email = ""
		}
		if input.Email != "" {
			existing, err := usecase.repository.GetWorkspaceByEmail(ctx, tx, input.Email)
			if err != nil {
				return models.Workspace{}, err
			}
			if existing != nil {
				return models.Workspace{}, errors.Wrapf(models.ErrWorkspaceEmailExists, "email %s", input.Email)
			}

			moved, err := usecase.emails.ReassociateEmails(ctx, tx, workspace.Email, input.Email)
			if err != nil {
				return models.Workspace{}, errors.Wrap(err, "could not reassociate the workspace emails")
			}
			utils.LoggerFromContext(ctx).InfoContext(ctx, "workspace emails reassociated",
				"workspace_id", workspaceId, "count", moved)
		}

		if err := usecase.repository.UpdateWorkspace(ctx, tx, workspaceId, input); err != nil {
			return models.Workspace{}, err
		}
		return usecase.repository.GetWorkspaceById(ctx, tx, workspaceId)
	})
}

// Delete removes the members and custom roles, then soft deletes the workspace and
// deactivates its emails
func (usecase WorkspaceLifecycle) Delete(ctx context.Context, workspaceId string) error {
	err := usecase.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		workspace, err := usecase.repository.LockWorkspace(ctx, tx, workspaceId)
		if err != nil {
			return err
		}
		membership, err := security.ActorMembership(ctx, tx, usecase.repository, workspaceId, usecase.enforceSecurity.UserId())
		if err != nil {
			return err
		}
		if err := usecase.enforceSecurity.WorkspacePermission(membership, models.PermissionDeleteWorkspace); err != nil {
			return err
		}

		if err := usecase.repository.DeleteAllWorkspaceMembers(ctx, tx, workspaceId); err != nil {
			return err
		}
		if err := usecase.repository.DeleteAllCustomRoles(ctx, tx, workspaceId); err != nil {
			return err
		}
		if err := usecase.repository.SoftDeleteWorkspace(ctx, tx, workspaceId); err != nil {
			return err
		}
		_, err = usecase.emails.FlagEmailsInactive(ctx, tx, workspace.Email)
		return err
	})
	if err != nil {
		return err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "workspace deleted", "workspace_id", workspaceId)
	analytics.TrackEvent(ctx, models.AnalyticsWorkspaceDeleted, map[string]interface{}{"workspace_id": workspaceId})
	return nil
}

func (usecase WorkspaceLifecycle) Get(ctx context.Context, workspaceId string) (models.Workspace, error) {
	exec := usecase.executorFactory.NewExecutor()
	membership, err := security.ActorMembership(ctx, exec, usecase.repository, workspaceId, usecase.enforceSecurity.UserId())
	if err != nil {
		return models.Workspace{}, err
	}
	if err := usecase.enforceSecurity.ReadWorkspace(membership); err != nil {
		return models.Workspace{}, err
	}
	return usecase.repository.GetWorkspaceById(ctx, exec, workspaceId)
}

func (usecase WorkspaceLifecycle) ListMine(ctx context.Context) ([]models.Workspace, error) {
	return usecase.repository.ListWorkspacesOfUser(ctx, usecase.executorFactory.NewExecutor(),
		usecase.enforceSecurity.UserId())
}
