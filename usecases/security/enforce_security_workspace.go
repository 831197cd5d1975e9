package security

import (
	"github.com/cockroachdb/errors"

	"github.com/invoicebox/backend/models"
)

// EnforceSecurityWorkspace decides what the authenticated user may do in a workspace. The
// membership passed in must have been read from the current rows, nil meaning "not a member".
type EnforceSecurityWorkspace interface {
	UserId() models.UserId
	ReadWorkspace(membership *models.WorkspaceMemberWithRole) error
	WorkspacePermission(membership *models.WorkspaceMemberWithRole, permission models.Permission) error
	OwnerOnly(membership *models.WorkspaceMemberWithRole) error
	ActOnMember(actor, target models.WorkspaceMemberWithRole) error
	AcceptInvite(invitedEmail string) error
}

type EnforceSecurityWorkspaceImpl struct {
	Credentials models.Credentials
}

func NewEnforceSecurityWorkspace(credentials models.Credentials) *EnforceSecurityWorkspaceImpl {
	return &EnforceSecurityWorkspaceImpl{Credentials: credentials}
}

func (e *EnforceSecurityWorkspaceImpl) UserId() models.UserId {
	return e.Credentials.ActorIdentity.UserId
}

func (e *EnforceSecurityWorkspaceImpl) ReadWorkspace(membership *models.WorkspaceMemberWithRole) error {
	if membership == nil || membership.UserId != e.UserId() {
		return errors.Wrap(models.ForbiddenError, "user is not a member of the workspace")
	}
	return nil
}

func (e *EnforceSecurityWorkspaceImpl) WorkspacePermission(
	membership *models.WorkspaceMemberWithRole,
	permission models.Permission,
) error {
	if err := e.ReadWorkspace(membership); err != nil {
		return err
	}
	if !membership.HasPermission(permission) {
		return errors.Wrapf(models.ForbiddenError, "missing permission %s", permission)
	}
	return nil
}

func (e *EnforceSecurityWorkspaceImpl) OwnerOnly(membership *models.WorkspaceMemberWithRole) error {
	if err := e.ReadWorkspace(membership); err != nil {
		return err
	}
	if membership.Role.RoleType != models.RoleTypeOwner {
		return errors.Wrap(models.ForbiddenError, "only owners can do this")
	}
	return nil
}

// ActOnMember applies the seniority rule: a member can act on a member of the same or a lower
// rank only.
func (e *EnforceSecurityWorkspaceImpl) ActOnMember(actor, target models.WorkspaceMemberWithRole) error {
	if !models.HasHigherOrEqualRank(actor.Role.RoleType, target.Role.RoleType) {
		return errors.Wrapf(models.ErrInsufficientRank, "a %s cannot act on a %s",
			actor.Role.RoleType, target.Role.RoleType)
	}
	return nil
}

// AcceptInvite checks the invite was addressed to the authenticated user. The comparison is exact.
func (e *EnforceSecurityWorkspaceImpl) AcceptInvite(invitedEmail string) error {
	if invitedEmail == "" || invitedEmail != e.Credentials.ActorIdentity.Email {
		return models.ErrInviteEmailMismatch
	}
	return nil
}
