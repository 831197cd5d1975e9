package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
)

type StatisticsRepository struct {
	mock.Mock
}

func (r *StatisticsRepository) GetWorkspaceById(ctx context.Context, exec repositories.Executor, workspaceId string) (models.Workspace, error) {
	args := r.Called(ctx, exec, workspaceId)
	return args.Get(0).(models.Workspace), args.Error(1)
}

func (r *StatisticsRepository) ListLiveWorkspaces(ctx context.Context, exec repositories.Executor) ([]models.Workspace, error) {
	args := r.Called(ctx, exec)
	return args.Get(0).([]models.Workspace), args.Error(1)
}

func (r *StatisticsRepository) ListWorkspaceMembers(ctx context.Context, exec repositories.Executor,
	workspaceId string, roleTypes ...models.RoleType,
) ([]models.WorkspaceMemberWithUser, error) {
	args := r.Called(ctx, exec, workspaceId, roleTypes)
	return args.Get(0).([]models.WorkspaceMemberWithUser), args.Error(1)
}

func (r *StatisticsRepository) EmailStatistics(ctx context.Context, exec repositories.Executor,
	toAddress string, period models.Period,
) (models.EmailStatistics, error) {
	args := r.Called(ctx, exec, toAddress, period)
	return args.Get(0).(models.EmailStatistics), args.Error(1)
}

func (r *StatisticsRepository) MonthlyEmailStatistics(ctx context.Context, exec repositories.Executor,
	toAddress string, period models.Period,
) (map[time.Month]models.EmailStatistics, error) {
	args := r.Called(ctx, exec, toAddress, period)
	return args.Get(0).(map[time.Month]models.EmailStatistics), args.Error(1)
}

func (r *StatisticsRepository) CountWorkspaceMembers(ctx context.Context, exec repositories.Executor,
	workspaceId string, period models.Period,
) (int, error) {
	args := r.Called(ctx, exec, workspaceId, period)
	return args.Int(0), args.Error(1)
}

func (r *StatisticsRepository) GetWorkspaceMemberByUserId(ctx context.Context, exec repositories.Executor,
	workspaceId string, userId models.UserId,
) (models.WorkspaceMemberWithRole, error) {
	args := r.Called(ctx, exec, workspaceId, userId)
	return args.Get(0).(models.WorkspaceMemberWithRole), args.Error(1)
}
