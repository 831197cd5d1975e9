package usecases

import (
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/repositories/clock"
	"github.com/invoicebox/backend/usecases/auth"
	"github.com/invoicebox/backend/usecases/emails"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/usecases/notifications"
	"github.com/invoicebox/backend/usecases/reports"
	"github.com/invoicebox/backend/usecases/roles"
	"github.com/invoicebox/backend/usecases/tokens"
	"github.com/invoicebox/backend/usecases/worker_jobs"
)

type Usecases struct {
	Repositories repositories.Repositories
	apiVersion   string
	appUrl       string
	inboundMail  models.InboundMailConfiguration
	clock        clock.Clock

	// the registry caches the system roles, it is shared by every request
	roleRegistry *roles.RoleRegistry
}

type Option func(*options)

func WithApiVersion(apiVersion string) Option {
	return func(o *options) {
		o.apiVersion = apiVersion
	}
}

// WithAppUrl sets the frontend url used to build the links sent by email
func WithAppUrl(appUrl string) Option {
	return func(o *options) {
		o.appUrl = appUrl
	}
}

func WithInboundMail(cfg models.InboundMailConfiguration) Option {
	return func(o *options) {
		o.inboundMail = cfg
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

type options struct {
	apiVersion  string
	appUrl      string
	inboundMail models.InboundMailConfiguration
	clock       clock.Clock
}

func newUsecasesWithOptions(repos repositories.Repositories, o *options) Usecases {
	if o.clock == nil {
		o.clock = clock.New()
	}
	usecases := Usecases{
		Repositories: repos,
		apiVersion:   o.apiVersion,
		appUrl:       o.appUrl,
		inboundMail:  o.inboundMail,
		clock:        o.clock,
	}
	usecases.roleRegistry = roles.NewRoleRegistry(
		usecases.NewExecutorFactory(),
		usecases.NewTransactionFactory(),
		repos.DbRepository,
	)
	return usecases
}

func NewUsecases(repositories repositories.Repositories, opts ...Option) Usecases {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return newUsecasesWithOptions(repositories, o)
}

func (usecases *Usecases) ApiVersion() string {
	return usecases.apiVersion
}

func (usecases *Usecases) NewExecutorFactory() executor_factory.ExecutorFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases *Usecases) NewTransactionFactory() executor_factory.TransactionFactory {
	return executor_factory.NewDbExecutorFactory(usecases.Repositories.ExecutorGetter)
}

func (usecases *Usecases) NewProbeUsecase() ProbeUsecase {
	probe := ProbeUsecase{
		executorFactory: usecases.NewExecutorFactory(),
		database:        usecases.Repositories.DbRepository,
		clock:           usecases.clock,
	}
	// a nil *RedisClient must not end up in the interface
	if usecases.Repositories.RedisClient != nil {
		probe.redis = usecases.Repositories.RedisClient
	}
	return probe
}

func (usecases *Usecases) NewRoleRegistry() *roles.RoleRegistry {
	return usecases.roleRegistry
}

func (usecases *Usecases) NewPostgresReplayGuard() tokens.PostgresReplayGuard {
	return tokens.NewPostgresReplayGuard(usecases.NewExecutorFactory(), usecases.Repositories.DbRepository)
}

// NewTokenLedger records the redeemed tokens in redis when it is configured, in postgres otherwise
func (usecases *Usecases) NewTokenLedger() *tokens.TokenLedger {
	var guard tokens.ReplayGuard = usecases.NewPostgresReplayGuard()
	if usecases.Repositories.RedisReplayGuard != nil {
		guard = usecases.Repositories.RedisReplayGuard
	}
	return tokens.NewTokenLedger(usecases.Repositories.JwtRepository, guard)
}

func (usecases *Usecases) NewNotifier() *notifications.Notifier {
	return notifications.NewNotifier(usecases.Repositories.MailRepository, usecases.appUrl)
}

func (usecases *Usecases) NewVerifier() auth.Verifier {
	return auth.NewVerifier(
		usecases.NewExecutorFactory(),
		usecases.NewTokenLedger(),
		usecases.Repositories.DbRepository,
	)
}

func (usecases *Usecases) NewAccountUsecase() auth.AccountUsecase {
	return auth.NewAccountUsecase(
		usecases.NewExecutorFactory(),
		usecases.Repositories.DbRepository,
		usecases.NewTokenLedger(),
		usecases.NewNotifier(),
	)
}

func (usecases *Usecases) NewInboundMailUsecase() emails.InboundMailUsecase {
	return emails.NewInboundMailUsecase(
		usecases.NewExecutorFactory(),
		usecases.Repositories.DbRepository,
		usecases.Repositories.BlobRepository,
		usecases.NewTokenLedger(),
		usecases.inboundMail,
	)
}

func (usecases *Usecases) NewReportAggregator() reports.ReportAggregator {
	return reports.NewReportAggregator(
		usecases.NewExecutorFactory(),
		usecases.Repositories.DbRepository,
		usecases.NewNotifier(),
		usecases.clock,
	)
}

func (usecases *Usecases) NewWeeklyReportWorker() *worker_jobs.WeeklyReportWorker {
	return worker_jobs.NewWeeklyReportWorker(usecases.NewReportAggregator(), usecases.Repositories.TaskQueue)
}

func (usecases *Usecases) NewWorkspaceWeeklyReportWorker() *worker_jobs.WorkspaceWeeklyReportWorker {
	return worker_jobs.NewWorkspaceWeeklyReportWorker(usecases.NewReportAggregator())
}
