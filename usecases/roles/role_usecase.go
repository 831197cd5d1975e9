package roles

import (
	"context"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/usecases/analytics"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/usecases/security"
)

// RoleUsecase exposes the role management of a workspace to its members. Editing roles
// needs the editRole permission, listing them only needs to be a member.
type RoleUsecase struct {
	enforceSecurity security.EnforceSecurityWorkspace
	executorFactory executor_factory.ExecutorFactory
	memberReader    security.WorkspaceMemberReader
	registry        *RoleRegistry
}

func NewRoleUsecase(
	enforceSecurity security.EnforceSecurityWorkspace,
	executorFactory executor_factory.ExecutorFactory,
	memberReader security.WorkspaceMemberReader,
	registry *RoleRegistry,
) RoleUsecase {
	return RoleUsecase{
		enforceSecurity: enforceSecurity,
		executorFactory: executorFactory,
		memberReader:    memberReader,
		registry:        registry,
	}
}

func (usecase RoleUsecase) actorMembership(ctx context.Context, workspaceId string) (*models.WorkspaceMemberWithRole, error) {
	return security.ActorMembership(ctx, usecase.executorFactory.NewExecutor(),
		usecase.memberReader, workspaceId, usecase.enforceSecurity.UserId())
}

func (usecase RoleUsecase) ListWorkspaceRoles(ctx context.Context, workspaceId string) ([]models.WorkspaceRoleWithUsage, error) {
	membership, err := usecase.actorMembership(ctx, workspaceId)
	if err != nil {
		return nil, err
	}
	if err := usecase.enforceSecurity.ReadWorkspace(membership); err != nil {
		return nil, err
	}
	return usecase.registry.ListWorkspaceRoles(ctx, workspaceId)
}

func (usecase RoleUsecase) CreateCustomRole(ctx context.Context, workspaceId string,
	input models.CreateWorkspaceRoleInput,
) (models.WorkspaceRole, error) {
	membership, err := usecase.actorMembership(ctx, workspaceId)
	if err != nil {
		return models.WorkspaceRole{}, err
	}
	if err := usecase.enforceSecurity.WorkspacePermission(membership, models.PermissionEditRole); err != nil {
		return models.WorkspaceRole{}, err
	}

	role, err := usecase.registry.CreateCustomRole(ctx, workspaceId, input)
	if err != nil {
		return models.WorkspaceRole{}, err
	}

	analytics.TrackEvent(ctx, models.AnalyticsCustomRoleCreated, map[string]interface{}{
		"workspace_id": workspaceId,
		"role_id":      role.Id,
	})
	return role, nil
}

func (usecase RoleUsecase) UpdateCustomRole(ctx context.Context, workspaceId, roleId string,
	patch models.UpdateWorkspaceRoleInput,
) (models.WorkspaceRole, error) {
	membership, err := usecase.actorMembership(ctx, workspaceId)
	if err != nil {
		return models.WorkspaceRole{}, err
	}
	if err := usecase.enforceSecurity.WorkspacePermission(membership, models.PermissionEditRole); err != nil {
		return models.WorkspaceRole{}, err
	}
	return usecase.registry.UpdateCustomRole(ctx, workspaceId, roleId, patch)
}

func (usecase RoleUsecase) DeleteCustomRole(ctx context.Context, workspaceId, roleId string) error {
	membership, err := usecase.actorMembership(ctx, workspaceId)
	if err != nil {
		return err
	}
	if err := usecase.enforceSecurity.WorkspacePermission(membership, models.PermissionEditRole); err != nil {
		return err
	}
	return usecase.registry.DeleteCustomRole(ctx, workspaceId, roleId)
}

func (usecase RoleUsecase) AssignablePermissions() []models.Permission {
	return usecase.registry.AssignablePermissions()
}
