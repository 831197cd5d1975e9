package repositories

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/clock"
)

type options struct {
	clock                        clock.Clock
	redisClient                  *RedisClient
	riverClient                  *river.Client[pgx.Tx]
	tokenConfiguration           models.TokenConfiguration
	mailerConfiguration          models.MailerConfiguration
	googleApplicationCredentials string
}

type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithRedis makes redis the store of the token replay guard. Without it, postgres is used.
func WithRedis(client *RedisClient) Option {
	return func(o *options) {
		o.redisClient = client
	}
}

// WithRiverClient gives the repositories an insert-only client to enqueue jobs
func WithRiverClient(client *river.Client[pgx.Tx]) Option {
	return func(o *options) {
		o.riverClient = client
	}
}

func WithTokenConfiguration(cfg models.TokenConfiguration) Option {
	return func(o *options) {
		o.tokenConfiguration = cfg
	}
}

func WithMailer(cfg models.MailerConfiguration) Option {
	return func(o *options) {
		o.mailerConfiguration = cfg
	}
}

func WithGoogleApplicationCredentials(path string) Option {
	return func(o *options) {
		o.googleApplicationCredentials = path
	}
}

type Repositories struct {
	ExecutorGetter   ExecutorGetter
	DbRepository     *DbRepository
	BlobRepository   BlobRepository
	JwtRepository    *JwtRepository
	MailRepository   *MailRepository
	RedisClient      *RedisClient
	RedisReplayGuard *RedisReplayGuard
	TaskQueue        TaskQueueRepository
}

func NewRepositories(pool *pgxpool.Pool, opts ...Option) Repositories {
	o := &options{
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(o)
	}

	repos := Repositories{
		ExecutorGetter: NewExecutorGetter(pool),
		DbRepository:   NewDbRepository(o.clock),
		BlobRepository: NewBlobRepository(o.googleApplicationCredentials),
		JwtRepository:  NewJwtRepository(o.tokenConfiguration, o.clock),
		MailRepository: NewMailRepository(o.mailerConfiguration),
		RedisClient:    o.redisClient,
	}

	if o.riverClient != nil {
		repos.TaskQueue = NewTaskQueueRepository(o.riverClient)
	}
	if o.redisClient != nil {
		repos.RedisReplayGuard = NewRedisReplayGuard(o.redisClient)
	}

	return repos
}
