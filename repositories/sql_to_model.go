package repositories

import (
	"context"
	"fmt"
	"reflect"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/invoicebox/backend/models"
)

func NewQueryBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ExecBuilder runs a statement that returns no rows
func ExecBuilder(ctx context.Context, exec Executor, builder squirrel.Sqlizer) error {
	_, err := ExecBuilderRowsAffected(ctx, exec, builder)
	return err
}

func ExecBuilderRowsAffected(ctx context.Context, exec Executor, builder squirrel.Sqlizer) (int64, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "can't build sql query")
	}

	tag, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrapf(err, "error executing sql query: %s", query)
	}
	return tag.RowsAffected(), nil
}

// SqlToListOfRow executes the query and maps every row with the given adapter
func SqlToListOfRow[Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(row pgx.CollectableRow) (Model, error),
) ([]Model, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "can't build sql query")
	}

	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing sql query")
	}

	return pgx.CollectRows(rows, adapter)
}

// SqlToRow executes a query expected to return exactly one row, or a NotFoundError
func SqlToRow[Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(row pgx.CollectableRow) (Model, error),
) (Model, error) {
	var zero Model
	list, err := SqlToListOfRow(ctx, exec, query, adapter)
	if err != nil {
		return zero, err
	}
	switch len(list) {
	case 0:
		return zero, errors.Wrap(models.NotFoundError, fmt.Sprintf("found no object of type %T", zero))
	case 1:
		return list[0], nil
	default:
		return zero, errors.Newf("expected 1 %v, got %d rows", reflect.TypeOf(zero), len(list))
	}
}

// SqlToListOfModels executes the query and returns a list of models using the provided adapter
func SqlToListOfModels[DBModel, Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(dbModel DBModel) (Model, error),
) ([]Model, error) {
	return SqlToListOfRow(ctx, exec, query, func(row pgx.CollectableRow) (Model, error) {
		dbModel, err := pgx.RowToStructByName[DBModel](row)
		if err != nil {
			var zeroModel Model
			return zeroModel, errors.Wrap(err, fmt.Sprintf("error scanning row to struct %T", dbModel))
		}
		return adapter(dbModel)
	})
}

// SqlToOptionalModel returns nil if the query returns no row
func SqlToOptionalModel[DBModel, Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(dbModel DBModel) (Model, error),
) (*Model, error) {
	list, err := SqlToListOfModels(ctx, exec, query, adapter)
	if err != nil {
		return nil, err
	}

	if len(list) == 0 {
		return nil, nil
	}
	model := list[0]
	if len(list) > 1 {
		return nil, errors.Newf("expected 1 or 0 %v, got %d rows", reflect.TypeOf(model), len(list))
	}
	return &model, nil
}

// SqlToModel returns a NotFoundError if the query returns no row
func SqlToModel[DBModel, Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(dbModel DBModel) (Model, error),
) (Model, error) {
	var zeroModel Model
	model, err := SqlToOptionalModel(ctx, exec, query, adapter)
	if err != nil {
		return zeroModel, err
	}
	if model == nil {
		return zeroModel, errors.Wrap(models.NotFoundError, fmt.Sprintf("found no object of type %T", zeroModel))
	}
	return *model, nil
}

func columnsNames(tablename string, fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = fmt.Sprintf("%s.%s", tablename, f)
	}
	return out
}
