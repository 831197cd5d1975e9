package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
)

type RoleRepository struct {
	mock.Mock
}

func (r *RoleRepository) CreateSystemRole(ctx context.Context, exec repositories.Executor, newRoleId string, role models.WorkspaceRole) error {
	args := r.Called(ctx, exec, newRoleId, role)
	return args.Error(0)
}

func (r *RoleRepository) GetSystemRole(ctx context.Context, exec repositories.Executor, roleType models.RoleType) (models.WorkspaceRole, error) {
	args := r.Called(ctx, exec, roleType)
	return args.Get(0).(models.WorkspaceRole), args.Error(1)
}

func (r *RoleRepository) GetWorkspaceRoleById(ctx context.Context, exec repositories.Executor, roleId string) (*models.WorkspaceRole, error) {
	args := r.Called(ctx, exec, roleId)
	return args.Get(0).(*models.WorkspaceRole), args.Error(1)
}

func (r *RoleRepository) GetCustomRoleByName(ctx context.Context, exec repositories.Executor, workspaceId, roleName string) (*models.WorkspaceRole, error) {
	args := r.Called(ctx, exec, workspaceId, roleName)
	return args.Get(0).(*models.WorkspaceRole), args.Error(1)
}

func (r *RoleRepository) CreateCustomRole(ctx context.Context, exec repositories.Executor, newRoleId, workspaceId string,
	input models.CreateWorkspaceRoleInput,
) error {
	args := r.Called(ctx, exec, newRoleId, workspaceId, input)
	return args.Error(0)
}

func (r *RoleRepository) UpdateCustomRole(ctx context.Context, exec repositories.Executor, roleId string, input models.UpdateWorkspaceRoleInput) error {
	args := r.Called(ctx, exec, roleId, input)
	return args.Error(0)
}

func (r *RoleRepository) DeleteCustomRole(ctx context.Context, exec repositories.Executor, roleId string) error {
	args := r.Called(ctx, exec, roleId)
	return args.Error(0)
}

func (r *RoleRepository) CountMembersWithRole(ctx context.Context, exec repositories.Executor, roleId string) (int, error) {
	args := r.Called(ctx, exec, roleId)
	return args.Int(0), args.Error(1)
}

func (r *RoleRepository) ListWorkspaceRolesWithUsage(ctx context.Context, exec repositories.Executor, workspaceId string) ([]models.WorkspaceRoleWithUsage, error) {
	args := r.Called(ctx, exec, workspaceId)
	return args.Get(0).([]models.WorkspaceRoleWithUsage), args.Error(1)
}
