package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
)

type WorkspaceRepository struct {
	mock.Mock
}

func (r *WorkspaceRepository) CreateWorkspace(ctx context.Context, exec repositories.Executor,
	newWorkspaceId string, input models.CreateWorkspaceInput,
) error {
	args := r.Called(ctx, exec, newWorkspaceId, input)
	return args.Error(0)
}

func (r *WorkspaceRepository) GetWorkspaceById(ctx context.Context, exec repositories.Executor, workspaceId string) (models.Workspace, error) {
	args := r.Called(ctx, exec, workspaceId)
	return args.Get(0).(models.Workspace), args.Error(1)
}

func (r *WorkspaceRepository) LockWorkspace(ctx context.Context, tx repositories.Transaction, workspaceId string) (models.Workspace, error) {
	args := r.Called(ctx, tx, workspaceId)
	return args.Get(0).(models.Workspace), args.Error(1)
}

func (r *WorkspaceRepository) GetWorkspaceByEmail(ctx context.Context, exec repositories.Executor, email string) (*models.Workspace, error) {
	args := r.Called(ctx, exec, email)
	return args.Get(0).(*models.Workspace), args.Error(1)
}

func (r *WorkspaceRepository) ListWorkspacesOfUser(ctx context.Context, exec repositories.Executor, userId models.UserId) ([]models.Workspace, error) {
	args := r.Called(ctx, exec, userId)
	return args.Get(0).([]models.Workspace), args.Error(1)
}

func (r *WorkspaceRepository) ListLiveWorkspaces(ctx context.Context, exec repositories.Executor) ([]models.Workspace, error) {
	args := r.Called(ctx, exec)
	return args.Get(0).([]models.Workspace), args.Error(1)
}

func (r *WorkspaceRepository) UpdateWorkspace(ctx context.Context, exec repositories.Executor,
	workspaceId string, input models.UpdateWorkspaceInput,
) error {
	args := r.Called(ctx, exec, workspaceId, input)
	return args.Error(0)
}

func (r *WorkspaceRepository) SoftDeleteWorkspace(ctx context.Context, exec repositories.Executor, workspaceId string) error {
	args := r.Called(ctx, exec, workspaceId)
	return args.Error(0)
}

func (r *WorkspaceRepository) GetWorkspaceMemberByUserId(ctx context.Context, exec repositories.Executor,
	workspaceId string, userId models.UserId,
) (models.WorkspaceMemberWithRole, error) {
	args := r.Called(ctx, exec, workspaceId, userId)
	return args.Get(0).(models.WorkspaceMemberWithRole), args.Error(1)
}

func (r *WorkspaceRepository) CreateWorkspaceMember(ctx context.Context, exec repositories.Executor,
	newMemberId string, input models.CreateWorkspaceMemberInput,
) error {
	args := r.Called(ctx, exec, newMemberId, input)
	return args.Error(0)
}

func (r *WorkspaceRepository) DeleteAllWorkspaceMembers(ctx context.Context, exec repositories.Executor, workspaceId string) error {
	args := r.Called(ctx, exec, workspaceId)
	return args.Error(0)
}

func (r *WorkspaceRepository) DeleteAllCustomRoles(ctx context.Context, exec repositories.Executor, workspaceId string) error {
	args := r.Called(ctx, exec, workspaceId)
	return args.Error(0)
}

func (r *WorkspaceRepository) ListWorkspaceMembers(ctx context.Context, exec repositories.Executor,
	workspaceId string, roleTypes ...models.RoleType,
) ([]models.WorkspaceMemberWithUser, error) {
	args := r.Called(ctx, exec, workspaceId, roleTypes)
	return args.Get(0).([]models.WorkspaceMemberWithUser), args.Error(1)
}
