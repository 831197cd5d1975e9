package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

const (
	QUEUE_REPORTS = "reports"

	nbRetriesWorkspaceWeeklyReport = 5 // at 1sec*attempt^4, the 5th attempt runs about 10min later
	priorityWorkspaceWeeklyReport  = 3 // nb: higher number is lower priority (between 1 and 4)
)

type TaskQueueRepository interface {
	EnqueueWorkspaceWeeklyReports(ctx context.Context, workspaceIds []string, referenceTime time.Time) error
}

type riverRepository struct {
	client *river.Client[pgx.Tx]
}

func NewTaskQueueRepository(client *river.Client[pgx.Tx]) TaskQueueRepository {
	return riverRepository{client: client}
}

func (r riverRepository) EnqueueWorkspaceWeeklyReports(ctx context.Context, workspaceIds []string, referenceTime time.Time) error {
	if len(workspaceIds) == 0 {
		return nil
	}

	params := make([]river.InsertManyParams, len(workspaceIds))
	for i, workspaceId := range workspaceIds {
		params[i] = river.InsertManyParams{
			Args: models.WorkspaceWeeklyReportJobArgs{
				WorkspaceId:   workspaceId,
				ReferenceTime: referenceTime,
			},
			InsertOpts: &river.InsertOpts{
				MaxAttempts: nbRetriesWorkspaceWeeklyReport,
				Priority:    priorityWorkspaceWeeklyReport,
				Queue:       QUEUE_REPORTS,
				UniqueOpts: river.UniqueOpts{
					ByArgs: true,
				},
			},
		}
	}

	res, err := r.client.InsertMany(ctx, params)
	if err != nil {
		return err
	}
	utils.LoggerFromContext(ctx).DebugContext(ctx, "Enqueued workspace weekly report tasks", "count", len(res))
	return nil
}
