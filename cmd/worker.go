package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/invoicebox/backend/jobs"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/usecases/worker_jobs"
	"github.com/invoicebox/backend/utils"
)

const (
	// running jobs get this long to finish after the first signal
	workerSoftStopTimeout = 5 * time.Second
	// then their contexts are cancelled and they get this long to return
	workerHardStopTimeout = 10 * time.Second
)

// RunTaskQueue runs the weekly report jobs and the housekeeping scheduler until SIGINT or SIGTERM
func RunTaskQueue(config CompiledConfig) error {
	appUrl := utils.GetEnv("APP_URL", "http://localhost:3000")
	probePort := utils.GetEnv("CLOUD_RUN_PROBE_PORT", "")
	reportWorkers := utils.GetEnv("REPORT_QUEUE_MAX_WORKERS", 5)

	p, err := startProcess(config.Version)
	if err != nil {
		return p.fail(err)
	}
	defer p.Close()
	ctx := p.ctx

	schedule, err := worker_jobs.NewCronSchedule(
		utils.GetEnv("WEEKLY_REPORT_CRON", worker_jobs.WEEKLY_REPORT_CRON), time.UTC)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	// The workers need the usecases, which need the repositories, which enqueue jobs. The
	// repositories get an insert-only client, the workers run on a second one.
	insertClient, err := river.NewClient(riverpgxv5.New(p.pool), &river.Config{})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	repos := repositories.NewRepositories(p.pool,
		append(p.repositoryOptions(), repositories.WithRiverClient(insertClient))...)
	uc := usecases.NewUsecases(repos,
		usecases.WithApiVersion(config.Version),
		usecases.WithAppUrl(appUrl),
	)

	workers := river.NewWorkers()
	river.AddWorker(workers, uc.NewWeeklyReportWorker())
	river.AddWorker(workers, uc.NewWorkspaceWeeklyReportWorker())

	riverClient, err := river.NewClient(riverpgxv5.New(p.pool), &river.Config{
		FetchPollInterval: 100 * time.Millisecond,
		Queues: map[string]river.QueueConfig{
			repositories.QUEUE_REPORTS: {MaxWorkers: reportWorkers},
		},
		PeriodicJobs: []*river.PeriodicJob{worker_jobs.NewWeeklyReportPeriodicJob(schedule)},
		// a job still running after this is considered lost and retried
		RescueStuckJobsAfter: worker_jobs.WEEKLY_REPORT_TIMEOUT + time.Minute,
		Middleware: []rivertype.Middleware{
			jobs.NewTracingMiddleware(p.telemetry.Tracer),
			jobs.NewSentryMiddleware(),
			jobs.NewLoggerMiddleware(p.logger),
			jobs.NewRecoveredMiddleware(),
		},
		Workers: workers,
	})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	if err := riverClient.Start(ctx); err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	if probePort != "" {
		go serveCloudRunProbe(ctx, probePort)
	}
	go jobs.RunScheduler(ctx, uc)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go stopWorker(ctx, signals, riverClient)

	<-riverClient.Stopped()
	p.logger.InfoContext(ctx, "task queue stopped")
	return nil
}

// Cloud Run only keeps a container that answers on its port
func serveCloudRunProbe(ctx context.Context, port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := server.ListenAndServe(); err != nil {
		utils.LogAndReportSentryError(ctx, errors.Wrap(err, "cloud run probe server stopped"))
	}
}

// stopWorker lets the running jobs finish on the first signal. A second signal, or the soft
// stop timeout, cancels them.
func stopWorker(ctx context.Context, signals <-chan os.Signal, client *river.Client[pgx.Tx]) {
	logger := utils.LoggerFromContext(ctx)
	<-signals
	logger.InfoContext(ctx, "stopping the task queue, waiting for the running jobs")

	softCtx, cancelSoft := context.WithTimeout(ctx, workerSoftStopTimeout)
	defer cancelSoft()
	go func() {
		select {
		case <-signals:
			cancelSoft()
		case <-softCtx.Done():
		}
	}()

	err := client.Stop(softCtx)
	if err == nil {
		return
	}
	if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "task queue stop failed", "error", err.Error())
	}

	logger.InfoContext(ctx, "cancelling the running jobs")
	hardCtx, cancelHard := context.WithTimeout(ctx, workerHardStopTimeout)
	defer cancelHard()
	if err := client.StopAndCancel(hardCtx); err != nil {
		// a job ignoring its context: exit anyway, river rescues it on the next start
		logger.ErrorContext(ctx, "jobs did not stop in time", "error", err.Error())
		os.Exit(1)
	}
}
