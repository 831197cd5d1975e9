package repositories

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/invoicebox/backend/infra"
	"github.com/invoicebox/backend/utils"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsFolder = "migrations"

type Migrater struct {
	pgConfig infra.PgConfig
}

func NewMigrater(pgConfig infra.PgConfig) *Migrater {
	return &Migrater{pgConfig: pgConfig}
}

func (m *Migrater) Run(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)

	db, err := sql.Open("pgx", m.pgConfig.GetConnectionString())
	if err != nil {
		return errors.Wrap(err, "unable to connect to database")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "unable to ping database")
	}

	logger.InfoContext(ctx, "running migrations from folder "+migrationsFolder)
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, migrationsFolder); err != nil {
		return errors.Wrap(err, "unable to run migrations")
	}

	return m.runRiverMigrations(ctx)
}

// the task queue tables are versioned by river itself
func (m *Migrater) runRiverMigrations(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)

	pool, err := pgxpool.New(ctx, m.pgConfig.GetConnectionString())
	if err != nil {
		return errors.Wrap(err, "unable to create connection pool")
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return errors.Wrap(err, "unable to create river migrator")
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return errors.Wrap(err, "unable to run river migrations")
	}
	for _, version := range res.Versions {
		logger.InfoContext(ctx, fmt.Sprintf("applied river migration %d", version.Version))
	}
	return nil
}
