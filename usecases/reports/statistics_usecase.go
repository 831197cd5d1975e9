package reports

import (
	"context"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/pure_utils"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/usecases/security"
)

// StatisticsUsecase serves the dashboard statistics of a workspace to its members
type StatisticsUsecase struct {
	enforceSecurity security.EnforceSecurityWorkspace
	executorFactory executor_factory.ExecutorFactory
	memberReader    security.WorkspaceMemberReader
	repository      StatisticsRepository
	aggregator      ReportAggregator
}

func NewStatisticsUsecase(
	enforceSecurity security.EnforceSecurityWorkspace,
	executorFactory executor_factory.ExecutorFactory,
	memberReader security.WorkspaceMemberReader,
	repository StatisticsRepository,
	aggregator ReportAggregator,
) StatisticsUsecase {
	return StatisticsUsecase{
		enforceSecurity: enforceSecurity,
		executorFactory: executorFactory,
		memberReader:    memberReader,
		repository:      repository,
		aggregator:      aggregator,
	}
}

func (usecase StatisticsUsecase) WorkspaceStatistics(ctx context.Context, workspaceId string) (models.WorkspaceStatistics, error) {
	exec := usecase.executorFactory.NewExecutor()
	membership, err := security.ActorMembership(ctx, exec, usecase.memberReader, workspaceId, usecase.enforceSecurity.UserId())
	if err != nil {
		return models.WorkspaceStatistics{}, err
	}
	if err := usecase.enforceSecurity.ReadWorkspace(membership); err != nil {
		return models.WorkspaceStatistics{}, err
	}

	workspace, err := usecase.repository.GetWorkspaceById(ctx, exec, workspaceId)
	if err != nil {
		return models.WorkspaceStatistics{}, err
	}
	now := usecase.aggregator.clock.Now()

	yearly, err := usecase.aggregator.YearlyStatistics(ctx, exec, workspace.Email, now)
	if err != nil {
		return models.WorkspaceStatistics{}, err
	}
	month := pure_utils.MonthContaining(now)
	currentMonth, err := usecase.repository.EmailStatistics(ctx, exec, workspace.Email, periodOf(month))
	if err != nil {
		return models.WorkspaceStatistics{}, err
	}
	total, err := usecase.repository.EmailStatistics(ctx, exec, workspace.Email, models.Period{})
	if err != nil {
		return models.WorkspaceStatistics{}, err
	}
	members, err := usecase.repository.CountWorkspaceMembers(ctx, exec, workspaceId, models.Period{})
	if err != nil {
		return models.WorkspaceStatistics{}, err
	}

	return models.WorkspaceStatistics{
		CurrentYear:      yearly,
		CurrentMonth:     currentMonth,
		Total:            total,
		WorkspaceMembers: members,
	}, nil
}
