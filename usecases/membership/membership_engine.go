package membership

import (
	"context"
	"fmt"
	"net/url"
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

type MembershipRepository interface {
	LockWorkspace(ctx context.Context, tx repositories.Transaction, workspaceId string) (models.Workspace, error)
	GetWorkspaceById(ctx context.Context, exec repositories.Executor, workspaceId string) (models.Workspace, error)
	GetWorkspaceMemberById(ctx context.Context, exec repositories.Executor, workspaceId, memberId string) (models.WorkspaceMemberWithRole, error)
	GetWorkspaceMemberByUserId(ctx context.Context, exec repositories.Executor, workspaceId string,
		userId models.UserId) (models.WorkspaceMemberWithRole, error)
	ListWorkspaceMembers(ctx context.Context, exec repositories.Executor, workspaceId string,
		roleTypes ...models.RoleType) ([]models.WorkspaceMemberWithUser, error)
	CountWorkspaceMembersWithRoleType(ctx context.Context, exec repositories.Executor, workspaceId string,
		roleType models.RoleType) (int, error)
	CreateWorkspaceMember(ctx context.Context, exec repositories.Executor, newMemberId string,
		input models.CreateWorkspaceMemberInput) error
	UpdateWorkspaceMemberRole(ctx context.Context, exec repositories.Executor, memberId, roleId string) error
	DeleteWorkspaceMember(ctx context.Context, exec repositories.Executor, workspaceId, memberId string) error
	GetUserByEmail(ctx context.Context, exec repositories.Executor, email string) (models.User, error)
}

type roleRegistry interface {
	GetDefaultRole(ctx context.Context, exec repositories.Executor, roleType models.RoleType) (models.WorkspaceRole, error)
	GetRoleById(ctx context.Context, exec repositories.Executor, roleId string) (models.WorkspaceRole, bool, error)
}

type tokenLedger interface {
	Issue(ctx context.Context, purpose models.TokenPurpose, payload models.TokenPayload) (string, error)
	Verify(ctx context.Context, purpose models.TokenPurpose, token string) (models.TokenPayload, error)
	Redeem(ctx context.Context, purpose models.TokenPurpose, token string) (models.TokenPayload, error)
}

type notifier interface {
	Send(ctx context.Context, notification models.Notification)
	SendToAll(ctx context.Context, purpose models.NotificationPurpose, recipients []string, templateData map[string]any)
	AppUrl() string
}

// MembershipEngine runs the membership lifecycle of a workspace: invite, accept, role
// changes and removals. Every change that could affect the owners of a workspace runs in a
// transaction holding a lock on the workspace row, and rereads the members inside it.
type MembershipEngine struct {
	enforceSecurity    security.EnforceSecurityWorkspace
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         MembershipRepository
	roles              roleRegistry
	tokens             tokenLedger
	notifier           notifier
}

func NewMembershipEngine(
	enforceSecurity security.EnforceSecurityWorkspace,
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	repository MembershipRepository,
	roles roleRegistry,
	tokens tokenLedger,
	notifier notifier,
) MembershipEngine {
	return MembershipEngine{
		enforceSecurity:    enforceSecurity,
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		repository:         repository,
		roles:              roles,
		tokens:             tokens,
		notifier:           notifier,
	}
}

func (engine MembershipEngine) actorMembership(ctx context.Context, exec repositories.Executor,
	workspaceId string,
) (*models.WorkspaceMemberWithRole, error) {
	return security.ActorMembership(ctx, exec, engine.repository, workspaceId, engine.enforceSecurity.UserId())
}

// Invite sends an invitation to join the workspace. Nothing is written: the invitation only
// lives in the signed token.
func (engine MembershipEngine) Invite(ctx context.Context, workspaceId, email string) error {
	exec := engine.executorFactory.NewExecutor()
	membership, err := engine.actorMembership(ctx, exec, workspaceId)
	if err != nil {
		return err
	}
	if err := engine.enforceSecurity.WorkspacePermission(membership, models.PermissionAddEmployee); err != nil {
		return err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.FieldValidationError{"email": "must not be empty"}
	}

	workspace, err := engine.repository.GetWorkspaceById(ctx, exec, workspaceId)
	if err != nil {
		return err
	}

	token, err := engine.tokens.Issue(ctx, models.TokenPurposeInvite, models.TokenPayload{
		Email:       email,
		WorkspaceId: workspaceId,
	})
	if err != nil {
		return err
	}

	engine.notifier.Send(ctx, models.Notification{
		Purpose: models.NotificationInvite,
		To:      email,
		TemplateData: map[string]any{
			"workspace_name": workspace.Name,
			"link":           fmt.Sprintf("%s/workspaces/join?token=%s", engine.notifier.AppUrl(), url.QueryEscape(token)),
		},
	})

	analytics.TrackEvent(ctx, models.AnalyticsMemberInvited, map[string]interface{}{"workspace_id": workspaceId})
	return nil
}

// AcceptInvite makes the authenticated user a guest of the workspace they were invited to.
// The token is only consumed once the user can actually join.
func (engine MembershipEngine) AcceptInvite(ctx context.Context, token string) (models.WorkspaceMemberWithRole, error) {
	logger := utils.LoggerFromContext(ctx)

	invite, err := engine.tokens.Verify(ctx, models.TokenPurposeInvite, token)
	if err != nil {
		return models.WorkspaceMemberWithRole{}, err
	}
	if err := engine.enforceSecurity.AcceptInvite(invite.Email); err != nil {
		return models.WorkspaceMemberWithRole{}, err
	}

	user, err := engine.repository.GetUserByEmail(ctx, engine.executorFactory.NewExecutor(), invite.Email)
	if err != nil {
		return models.WorkspaceMemberWithRole{}, errors.Wrap(err, "invited user")
	}

	member, err := executor_factory.TransactionReturnValue(ctx, engine.transactionFactory, func(
		tx repositories.Transaction,
	) (models.WorkspaceMemberWithRole, error) {
		if _, err := engine.repository.LockWorkspace(ctx, tx, invite.WorkspaceId); err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}

		existing, err := security.ActorMembership(ctx, tx, engine.repository, invite.WorkspaceId, user.UserId)
		if err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}
		if existing != nil {
			return models.WorkspaceMemberWithRole{}, models.ErrAlreadyMember
		}
		if _, err := engine.tokens.Redeem(ctx, models.TokenPurposeInvite, token); err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}

		guest, err := engine.roles.GetDefaultRole(ctx, tx, models.RoleTypeGuest)
		if err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}

		newMemberId := uuid.NewString()
		err = engine.repository.CreateWorkspaceMember(ctx, tx, newMemberId, models.CreateWorkspaceMemberInput{
			WorkspaceId: invite.WorkspaceId,
			UserId:      user.UserId,
			RoleId:      guest.Id,
		})
		if err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}
		return engine.repository.GetWorkspaceMemberById(ctx, tx, invite.WorkspaceId, newMemberId)
	})
	if err != nil {
		return models.WorkspaceMemberWithRole{}, err
	}

	logger.InfoContext(ctx, "user joined a workspace", "workspace_id", invite.WorkspaceId, "member_id", member.Id)
	engine.notifyMemberJoined(ctx, invite.WorkspaceId, user)
	analytics.TrackEvent(ctx, models.AnalyticsMemberJoined, map[string]interface{}{"workspace_id": invite.WorkspaceId})

	return member, nil
}

// notifyMemberJoined is best effort, the membership is already committed
func (engine MembershipEngine) notifyMemberJoined(ctx context.Context, workspaceId string, newUser models.User) {
	exec := engine.executorFactory.NewExecutor()
	workspace, err := engine.repository.GetWorkspaceById(ctx, exec, workspaceId)
	if err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrap(err, "could not read workspace to notify its managers"))
		return
	}
	managers, err := engine.repository.ListWorkspaceMembers(ctx, exec, workspaceId,
		models.RoleTypeOwner, models.RoleTypeAdmin)
	if err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrap(err, "could not list workspace managers to notify"))
		return
	}

	recipients := utils.Map(managers, func(m models.WorkspaceMemberWithUser) string { return m.User.Email })
	engine.notifier.SendToAll(ctx, models.NotificationMemberJoined, recipients, map[string]any{
		"workspace_name": workspace.Name,
		"member_name":    newUser.Name,
		"member_email":   newUser.Email,
	})
}

// AssignRole is reserved to owners. An owner cannot be demoted if they are the last one.
func (engine MembershipEngine) AssignRole(ctx context.Context, workspaceId string,
	input models.AssignRoleInput,
) (models.WorkspaceMemberWithRole, error) {
	return executor_factory.TransactionReturnValue(ctx, engine.transactionFactory, func(
		tx repositories.Transaction,
	) (models.WorkspaceMemberWithRole, error) {
		if _, err := engine.repository.LockWorkspace(ctx, tx, workspaceId); err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}

		actor, err := engine.actorMembership(ctx, tx, workspaceId)
		if err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}
		if err := engine.enforceSecurity.OwnerOnly(actor); err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}

		target, err := engine.repository.GetWorkspaceMemberById(ctx, tx, workspaceId, input.MemberId)
		if err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}

		role, found, err := engine.roles.GetRoleById(ctx, tx, input.RoleId)
		if err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}
		if !found || !role.BelongsTo(workspaceId) {
			return models.WorkspaceMemberWithRole{}, errors.Wrapf(models.NotFoundError, "role %s", input.RoleId)
		}

		if target.Role.RoleType == models.RoleTypeOwner && role.RoleType != models.RoleTypeOwner {
			if err := engine.checkNotLastOwner(ctx, tx, workspaceId); err != nil {
				return models.WorkspaceMemberWithRole{}, err
			}
		}

		if err := engine.repository.UpdateWorkspaceMemberRole(ctx, tx, target.Id, role.Id); err != nil {
			return models.WorkspaceMemberWithRole{}, err
		}
		return engine.repository.GetWorkspaceMemberById(ctx, tx, workspaceId, target.Id)
	})
}

func (engine MembershipEngine) RemoveMember(ctx context.Context, workspaceId, targetMemberId string) error {
	err := engine.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		if _, err := engine.repository.LockWorkspace(ctx, tx, workspaceId); err != nil {
			return err
		}

		actor, err := engine.actorMembership(ctx, tx, workspaceId)
		if err != nil {
			return err
		}
		if err := engine.enforceSecurity.WorkspacePermission(actor, models.PermissionDeleteEmployee); err != nil {
			return err
		}

		target, err := engine.repository.GetWorkspaceMemberById(ctx, tx, workspaceId, targetMemberId)
		if err != nil {
			return err
		}
		return engine.removeMember(ctx, tx, *actor, target)
	})
	if err != nil {
		return err
	}

	analytics.TrackEvent(ctx, models.AnalyticsMemberRemoved, map[string]interface{}{"workspace_id": workspaceId})
	return nil
}

// Leave removes the authenticated user from the workspace, unless they are its last owner
func (engine MembershipEngine) Leave(ctx context.Context, workspaceId string) error {
	return engine.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		if _, err := engine.repository.LockWorkspace(ctx, tx, workspaceId); err != nil {
			return err
		}

		actor, err := engine.actorMembership(ctx, tx, workspaceId)
		if err != nil {
			return err
		}
		if err := engine.enforceSecurity.ReadWorkspace(actor); err != nil {
			return err
		}
		return engine.removeMember(ctx, tx, *actor, *actor)
	})
}

// removeMember must run in a transaction holding the workspace lock
func (engine MembershipEngine) removeMember(ctx context.Context, tx repositories.Transaction,
	actor, target models.WorkspaceMemberWithRole,
) error {
	if err := engine.enforceSecurity.ActOnMember(actor, target); err != nil {
		return err
	}
	if target.Role.RoleType == models.RoleTypeOwner {
		if err := engine.checkNotLastOwner(ctx, tx, target.WorkspaceId); err != nil {
			return err
		}
	}
	return engine.repository.DeleteWorkspaceMember(ctx, tx, target.WorkspaceId, target.Id)
}

func (engine MembershipEngine) checkNotLastOwner(ctx context.Context, tx repositories.Transaction, workspaceId string) error {
	owners, err := engine.repository.CountWorkspaceMembersWithRoleType(ctx, tx, workspaceId, models.RoleTypeOwner)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return models.ErrLastOwner
	}
	return nil
}

func (engine MembershipEngine) GetMyMembership(ctx context.Context, workspaceId string) (models.WorkspaceMemberWithRole, error) {
	membership, err := engine.actorMembership(ctx, engine.executorFactory.NewExecutor(), workspaceId)
	if err != nil {
		return models.WorkspaceMemberWithRole{}, err
	}
	if err := engine.enforceSecurity.ReadWorkspace(membership); err != nil {
		return models.WorkspaceMemberWithRole{}, err
	}
	return *membership, nil
}

func (engine MembershipEngine) ListMembers(ctx context.Context, workspaceId string) ([]models.WorkspaceMemberWithUser, error) {
	exec := engine.executorFactory.NewExecutor()
	membership, err := engine.actorMembership(ctx, exec, workspaceId)
	if err != nil {
		return nil, err
	}
	if err := engine.enforceSecurity.ReadWorkspace(membership); err != nil {
		return nil, err
	}
	return engine.repository.ListWorkspaceMembers(ctx, exec, workspaceId)
}
