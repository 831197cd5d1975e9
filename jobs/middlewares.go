package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/invoicebox/backend/utils"
)

const (
	// identical failures of a job kind within this window are reported once
	sentryErrorGroupingTime = 30 * time.Second
	sdkIdentifier           = "sentry.go.river.invoicebox"
)

// workspaceOf reads the workspace a job is about from its arguments, if any
func workspaceOf(job *rivertype.JobRow) string {
	return gjson.GetBytes(job.EncodedArgs, "workspace_id").String()
}

type LoggerMiddleware struct {
	river.MiddlewareDefaults

	l              *slog.Logger
	errorCount     map[string]int
	errorCountLock *sync.Mutex
}

func NewLoggerMiddleware(l *slog.Logger) *LoggerMiddleware {
	return &LoggerMiddleware{l: l, errorCount: make(map[string]int), errorCountLock: &sync.Mutex{}}
}

func (m *LoggerMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	logger := m.l.With(
		"job_id", job.ID,
		"job_kind", job.Kind,
		"job_attempt", job.Attempt,
		"queue", job.Queue,
		"scheduled_at", job.ScheduledAt,
	)
	if workspaceId := workspaceOf(job); workspaceId != "" {
		logger = logger.With("workspace_id", workspaceId)
	}
	ctx = utils.StoreLoggerInContext(ctx, logger)

	start := time.Now()
	logger.InfoContext(ctx, fmt.Sprintf("Starting %s job %d, attempt %d", job.Kind, job.ID, job.Attempt))

	err := doInner(ctx)
	var snoozeErr *river.JobSnoozeError
	switch {
	case err != nil && errors.As(err, &snoozeErr):
		logger.InfoContext(ctx, fmt.Sprintf("%s job %d snoozed after %s", job.Kind, job.ID, time.Since(start)))
	case err != nil:
		logger.ErrorContext(ctx, fmt.Sprintf("%s job %d failed after %s", job.Kind, job.ID, time.Since(start)),
			"error", err.Error())
		m.reportOnce(ctx, job, err)
	default:
		logger.InfoContext(ctx, fmt.Sprintf("%s job %d succeeded after %s", job.Kind, job.ID, time.Since(start)))
	}
	return err
}

// reportOnce sends the first occurrence of an error to sentry, once the grouping window is over
func (m *LoggerMiddleware) reportOnce(ctx context.Context, job *rivertype.JobRow, err error) {
	m.errorCountLock.Lock()
	defer m.errorCountLock.Unlock()

	errorKey := job.Kind + ":" + err.Error()
	m.errorCount[errorKey]++
	if m.errorCount[errorKey] > 1 {
		return
	}

	go func() {
		time.Sleep(sentryErrorGroupingTime)
		m.errorCountLock.Lock()
		delete(m.errorCount, errorKey)
		m.errorCountLock.Unlock()

		utils.LogAndReportSentryError(context.WithoutCancel(ctx), err)
	}()
}

type RecovererMiddleware struct {
	river.MiddlewareDefaults
}

func NewRecoveredMiddleware() *RecovererMiddleware {
	return &RecovererMiddleware{}
}

func (m *RecovererMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("panic in %s job %d: %v", job.Kind, job.ID, r)
		}
	}()
	return doInner(ctx)
}

type TracingMiddleware struct {
	river.MiddlewareDefaults

	tracer trace.Tracer
}

func NewTracingMiddleware(tracer trace.Tracer) *TracingMiddleware {
	return &TracingMiddleware{tracer: tracer}
}

func (m *TracingMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	ctx, span := m.tracer.Start(
		ctx,
		job.Kind,
		trace.WithAttributes(
			attribute.Int64("job_id", job.ID),
			attribute.String("job_kind", job.Kind),
			attribute.Int("job_attempt", job.Attempt),
			attribute.String("queue", job.Queue),
			attribute.String("workspace_id", workspaceOf(job)),
		),
	)
	defer span.End()

	return doInner(ctx)
}

type SentryMiddleware struct {
	river.MiddlewareDefaults
}

func NewSentryMiddleware() *SentryMiddleware {
	return &SentryMiddleware{}
}

func (m *SentryMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
		ctx = sentry.SetHubOnContext(ctx, hub)
	}
	if client := hub.Client(); client != nil {
		client.SetSDKIdentifier(sdkIdentifier)
	}

	scope := hub.PushScope()
	defer hub.PopScope()
	scope.SetTag("job_id", strconv.FormatInt(job.ID, 10))
	scope.SetTag("job_kind", job.Kind)
	scope.SetTag("job_attempt", strconv.Itoa(job.Attempt))
	scope.SetTag("queue", job.Queue)
	if workspaceId := workspaceOf(job); workspaceId != "" {
		scope.SetTag("workspace_id", workspaceId)
	}

	transaction := sentry.StartTransaction(ctx,
		fmt.Sprintf("river task %s", job.Kind),
		sentry.WithOpName("river.task"),
		sentry.WithTransactionSource(sentry.SourceTask),
	)
	defer transaction.Finish()

	return doInner(transaction.Context())
}
