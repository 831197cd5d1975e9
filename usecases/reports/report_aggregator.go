package reports

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/pure_utils"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/repositories/clock"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/utils"
)

// number of workspaces reported on at the same time
const weeklyReportConcurrency = 8

type StatisticsRepository interface {
	GetWorkspaceById(ctx context.Context, exec repositories.Executor, workspaceId string) (models.Workspace, error)
	ListLiveWorkspaces(ctx context.Context, exec repositories.Executor) ([]models.Workspace, error)
	ListWorkspaceMembers(ctx context.Context, exec repositories.Executor, workspaceId string,
		roleTypes ...models.RoleType) ([]models.WorkspaceMemberWithUser, error)
	EmailStatistics(ctx context.Context, exec repositories.Executor, toAddress string, period models.Period) (models.EmailStatistics, error)
	MonthlyEmailStatistics(ctx context.Context, exec repositories.Executor, toAddress string,
		period models.Period) (map[time.Month]models.EmailStatistics, error)
	CountWorkspaceMembers(ctx context.Context, exec repositories.Executor, workspaceId string, period models.Period) (int, error)
}

type notifier interface {
	SendToAll(ctx context.Context, purpose models.NotificationPurpose, recipients []string, templateData map[string]any)
}

// ReportAggregator computes the email and member statistics of workspaces. Statistics are
// read without locks.
type ReportAggregator struct {
	executorFactory executor_factory.ExecutorFactory
	repository      StatisticsRepository
	notifier        notifier
	clock           clock.Clock
}

func NewReportAggregator(
	executorFactory executor_factory.ExecutorFactory,
	repository StatisticsRepository,
	notifier notifier,
	c clock.Clock,
) ReportAggregator {
	return ReportAggregator{
		executorFactory: executorFactory,
		repository:      repository,
		notifier:        notifier,
		clock:           c,
	}
}

func periodOf(r pure_utils.TimeRange) models.Period {
	return models.Period{Start: r.From, End: r.To}
}

// WeeklyStatistics covers the UTC week, from Monday 00:00, that contains now
func (aggregator ReportAggregator) WeeklyStatistics(ctx context.Context, exec repositories.Executor,
	workspaceId string, now time.Time,
) (models.WeeklyStatistics, error) {
	if exec == nil {
		exec = aggregator.executorFactory.NewExecutor()
	}
	workspace, err := aggregator.repository.GetWorkspaceById(ctx, exec, workspaceId)
	if err != nil {
		return models.WeeklyStatistics{}, err
	}
	week := periodOf(pure_utils.WeekContaining(now))

	newMembers, err := aggregator.repository.CountWorkspaceMembers(ctx, exec, workspaceId, week)
	if err != nil {
		return models.WeeklyStatistics{}, err
	}
	thisWeek, err := aggregator.repository.EmailStatistics(ctx, exec, workspace.Email, week)
	if err != nil {
		return models.WeeklyStatistics{}, err
	}
	total, err := aggregator.repository.EmailStatistics(ctx, exec, workspace.Email, models.Period{})
	if err != nil {
		return models.WeeklyStatistics{}, err
	}

	return models.WeeklyStatistics{
		WorkspaceName:   workspace.Name,
		NewMembers:      newMembers,
		EmailsReceived:  thisWeek.Emails,
		InvoicesHandled: thisWeek.Attachments,
		EmailsTotal:     total.Emails,
		InvoicesTotal:   total.Attachments,
	}, nil
}

// YearlyStatistics always returns the 12 months of the year of now, January first
func (aggregator ReportAggregator) YearlyStatistics(ctx context.Context, exec repositories.Executor,
	workspaceEmail string, now time.Time,
) ([]models.MonthStatistics, error) {
	if exec == nil {
		exec = aggregator.executorFactory.NewExecutor()
	}
	byMonth, err := aggregator.repository.MonthlyEmailStatistics(ctx, exec, workspaceEmail,
		periodOf(pure_utils.YearContaining(now)))
	if err != nil {
		return nil, err
	}

	months := make([]models.MonthStatistics, 0, 12)
	for month := time.January; month <= time.December; month++ {
		stats := byMonth[month]
		months = append(months, models.MonthStatistics{
			Month:    month.String(),
			Emails:   stats.Emails,
			Invoices: stats.Attachments,
		})
	}
	return months, nil
}

// SendWorkspaceWeeklyReport mails the weekly digest of a workspace to its owners and admins
func (aggregator ReportAggregator) SendWorkspaceWeeklyReport(ctx context.Context, workspaceId string, now time.Time) error {
	timer := prometheus.NewTimer(utils.MetricWeeklyReportLatency)
	defer timer.ObserveDuration()

	exec := aggregator.executorFactory.NewExecutor()
	stats, err := aggregator.WeeklyStatistics(ctx, exec, workspaceId, now)
	if err != nil {
		return errors.Wrapf(err, "could not compute the weekly statistics of workspace %s", workspaceId)
	}
	managers, err := aggregator.repository.ListWorkspaceMembers(ctx, exec, workspaceId,
		models.RoleTypeOwner, models.RoleTypeAdmin)
	if err != nil {
		return errors.Wrapf(err, "could not list the managers of workspace %s", workspaceId)
	}

	recipients := utils.Map(managers, func(m models.WorkspaceMemberWithUser) string { return m.User.Email })
	aggregator.notifier.SendToAll(ctx, models.NotificationWeeklyReport, recipients, map[string]any{
		"workspace_name":   stats.WorkspaceName,
		"week_start":       pure_utils.WeekContaining(now).From.Format(time.DateOnly),
		"new_members":      stats.NewMembers,
		"emails_received":  stats.EmailsReceived,
		"invoices_handled": stats.InvoicesHandled,
		"emails_total":     stats.EmailsTotal,
		"invoices_total":   stats.InvoicesTotal,
	})
	return nil
}

// SendWeeklyReports sends the digest of the week containing now to every live workspace. A
// failing workspace does not stop the others: its id is returned so that the report can be
// retried on its own.
func (aggregator ReportAggregator) SendWeeklyReports(ctx context.Context, now time.Time) ([]string, error) {
	logger := utils.LoggerFromContext(ctx)

	workspaces, err := aggregator.repository.ListLiveWorkspaces(ctx, aggregator.executorFactory.NewExecutor())
	if err != nil {
		return nil, errors.Wrap(err, "could not list workspaces for the weekly report")
	}

	failed := make([]string, len(workspaces))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(weeklyReportConcurrency)
	for i, workspace := range workspaces {
		group.Go(func() error {
			if err := aggregator.SendWorkspaceWeeklyReport(groupCtx, workspace.Id, now); err != nil {
				logger.ErrorContext(groupCtx, "weekly report failed", "workspace_id", workspace.Id, "error", err.Error())
				failed[i] = workspace.Id
			}
			return nil
		})
	}
	_ = group.Wait()

	failed = utils.Filter(failed, func(id string) bool { return id != "" })
	logger.InfoContext(ctx, "weekly reports sent", "workspaces", len(workspaces), "failures", len(failed))
	return failed, nil
}
