package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/dbmodels"
)

// EmailStatistics counts the active emails of an address and their attachments. A zero period
// bound means no bound.
func (repo *DbRepository) EmailStatistics(ctx context.Context, exec Executor, toAddress string, period models.Period) (models.EmailStatistics, error) {
	if err := validateDbExecutor(exec); err != nil {
		return models.EmailStatistics{}, err
	}

	query := NewQueryBuilder().
		Select("COUNT(*)", "COALESCE(SUM(cardinality(attachment_keys)), 0)").
		From(dbmodels.TABLE_EMAILS).
		Where(squirrel.Eq{"to_address": toAddress, "is_active": true})
	query = wherePeriod(query, "received_at", period)

	sql, args, err := query.ToSql()
	if err != nil {
		return models.EmailStatistics{}, errors.Wrap(err, "can't build sql query")
	}

	var stats models.EmailStatistics
	if err := exec.QueryRow(ctx, sql, args...).Scan(&stats.Emails, &stats.Attachments); err != nil {
		return models.EmailStatistics{}, errors.Wrap(err, "error reading email statistics")
	}
	return stats, nil
}

type monthlyEmailStatistics struct {
	Month       int
	Emails      int
	Attachments int
}

// MonthlyEmailStatistics groups the statistics by calendar month (UTC). Months without emails
// are absent from the result.
func (repo *DbRepository) MonthlyEmailStatistics(ctx context.Context, exec Executor,
	toAddress string, period models.Period,
) (map[time.Month]models.EmailStatistics, error) {
	if err := validateDbExecutor(exec); err != nil {
		return nil, err
	}

	query := NewQueryBuilder().
		Select(
			"EXTRACT(MONTH FROM received_at AT TIME ZONE 'UTC')::int AS month",
			"COUNT(*)",
			"COALESCE(SUM(cardinality(attachment_keys)), 0)",
		).
		From(dbmodels.TABLE_EMAILS).
		Where(squirrel.Eq{"to_address": toAddress, "is_active": true}).
		GroupBy("month")
	query = wherePeriod(query, "received_at", period)

	rows, err := SqlToListOfRow(ctx, exec, query, func(row pgx.CollectableRow) (monthlyEmailStatistics, error) {
		var m monthlyEmailStatistics
		err := row.Scan(&m.Month, &m.Emails, &m.Attachments)
		return m, err
	})
	if err != nil {
		return nil, err
	}

	out := make(map[time.Month]models.EmailStatistics, len(rows))
	for _, row := range rows {
		out[time.Month(row.Month)] = models.EmailStatistics{Emails: row.Emails, Attachments: row.Attachments}
	}
	return out, nil
}

func (repo *DbRepository) CountWorkspaceMembers(ctx context.Context, exec Executor, workspaceId string, period models.Period) (int, error) {
	if err := validateDbExecutor(exec); err != nil {
		return 0, err
	}

	query := NewQueryBuilder().
		Select("COUNT(*)").
		From(dbmodels.TABLE_WORKSPACE_MEMBERS).
		Where(squirrel.Eq{"workspace_id": workspaceId})
	return countRows(ctx, exec, wherePeriod(query, "created_at", period))
}

func wherePeriod(query squirrel.SelectBuilder, column string, period models.Period) squirrel.SelectBuilder {
	if !period.Start.IsZero() {
		query = query.Where(squirrel.GtOrEq{column: period.Start})
	}
	if !period.End.IsZero() {
		query = query.Where(squirrel.Lt{column: period.End})
	}
	return query
}
