package worker_jobs

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riverqueue/river"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/utils"
)

const (
	// Sunday 23:30 UTC, right before the reported week ends
	WEEKLY_REPORT_CRON    = "30 23 * * 0"
	WEEKLY_REPORT_TIMEOUT = 30 * time.Minute

	WORKSPACE_WEEKLY_REPORT_TIMEOUT = 2 * time.Minute
)

func NewWeeklyReportPeriodicJob(schedule river.PeriodicSchedule) *river.PeriodicJob {
	return river.NewPeriodicJob(
		schedule,
		func() (river.JobArgs, *river.InsertOpts) {
			return models.WeeklyReportJobArgs{},
				&river.InsertOpts{
					Queue:       repositories.QUEUE_REPORTS,
					MaxAttempts: 1,
					UniqueOpts: river.UniqueOpts{
						ByQueue:  true,
						ByPeriod: time.Hour,
					},
				}
		},
		&river.PeriodicJobOpts{RunOnStart: false},
	)
}

type weeklyReporter interface {
	SendWeeklyReports(ctx context.Context, now time.Time) ([]string, error)
	SendWorkspaceWeeklyReport(ctx context.Context, workspaceId string, now time.Time) error
}

type weeklyReportRetryQueue interface {
	EnqueueWorkspaceWeeklyReports(ctx context.Context, workspaceIds []string, referenceTime time.Time) error
}

// WeeklyReportWorker fans the weekly report out to every workspace. The fan-out job itself
// is not retried: the workspaces that failed get a retryable job of their own.
type WeeklyReportWorker struct {
	river.WorkerDefaults[models.WeeklyReportJobArgs]

	reporter   weeklyReporter
	retryQueue weeklyReportRetryQueue
}

func NewWeeklyReportWorker(reporter weeklyReporter, retryQueue weeklyReportRetryQueue) *WeeklyReportWorker {
	return &WeeklyReportWorker{
		reporter:   reporter,
		retryQueue: retryQueue,
	}
}

func (w *WeeklyReportWorker) Timeout(job *river.Job[models.WeeklyReportJobArgs]) time.Duration {
	return WEEKLY_REPORT_TIMEOUT
}

func (w *WeeklyReportWorker) Work(ctx context.Context, job *river.Job[models.WeeklyReportJobArgs]) error {
	// the slot the job was scheduled for decides the week, not the time it happens to run
	referenceTime := job.ScheduledAt

	failed, err := w.reporter.SendWeeklyReports(ctx, referenceTime)
	if err != nil {
		return err
	}
	if len(failed) == 0 {
		return nil
	}

	utils.LoggerFromContext(ctx).WarnContext(ctx, "some weekly reports failed, scheduling retries",
		"failed_workspaces", len(failed))
	if err := w.retryQueue.EnqueueWorkspaceWeeklyReports(ctx, failed, referenceTime); err != nil {
		return errors.Wrap(err, "could not enqueue the weekly report retries")
	}
	return nil
}

type WorkspaceWeeklyReportWorker struct {
	river.WorkerDefaults[models.WorkspaceWeeklyReportJobArgs]

	reporter weeklyReporter
}

func NewWorkspaceWeeklyReportWorker(reporter weeklyReporter) *WorkspaceWeeklyReportWorker {
	return &WorkspaceWeeklyReportWorker{reporter: reporter}
}

func (w *WorkspaceWeeklyReportWorker) Timeout(job *river.Job[models.WorkspaceWeeklyReportJobArgs]) time.Duration {
	return WORKSPACE_WEEKLY_REPORT_TIMEOUT
}

func (w *WorkspaceWeeklyReportWorker) Work(ctx context.Context, job *river.Job[models.WorkspaceWeeklyReportJobArgs]) error {
	return w.reporter.SendWorkspaceWeeklyReport(ctx, job.Args.WorkspaceId, job.Args.ReferenceTime)
}
