package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/dbmodels"
)

func selectLiveWorkspaces() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(columnsNames("w", dbmodels.WorkspaceFields)...).
		From(dbmodels.TABLE_WORKSPACES + " AS w").
		Where("w.deleted_at IS NULL")
}

func (repo *DbRepository) CreateWorkspace(ctx context.Context, exec Executor, newWorkspaceId string, input models.CreateWorkspaceInput) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_WORKSPACES).
			Columns(
				"id",
				"name",
				"email",
				"about",
			).
			Values(
				newWorkspaceId,
				input.Name,
				input.Email,
				input.About,
			),
	)
	if IsUniqueViolationError(err) {
		return models.ErrWorkspaceEmailExists
	}
	return err
}

func (repo *DbRepository) GetWorkspaceById(ctx context.Context, exec Executor, workspaceId string) (models.Workspace, error) {
	if err := validateDbExecutor(exec); err != nil {
		return models.Workspace{}, err
	}

	return SqlToModel(
		ctx,
		exec,
		selectLiveWorkspaces().Where(squirrel.Eq{"w.id": workspaceId}),
		dbmodels.AdaptWorkspace,
	)
}

// LockWorkspace takes a row lock on the workspace until the end of the transaction. Membership
// changes that must see a consistent set of owners go through it.
func (repo *DbRepository) LockWorkspace(ctx context.Context, tx Transaction, workspaceId string) (models.Workspace, error) {
	if err := validateDbExecutor(tx); err != nil {
		return models.Workspace{}, err
	}

	return SqlToModel(
		ctx,
		tx,
		selectLiveWorkspaces().
			Where(squirrel.Eq{"w.id": workspaceId}).
			Suffix("FOR UPDATE"),
		dbmodels.AdaptWorkspace,
	)
}

func (repo *DbRepository) GetWorkspaceByEmail(ctx context.Context, exec Executor, email string) (*models.Workspace, error) {
	if err := validateDbExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToOptionalModel(
		ctx,
		exec,
		selectLiveWorkspaces().Where(squirrel.Eq{"w.email": email}),
		dbmodels.AdaptWorkspace,
	)
}

func (repo *DbRepository) ListWorkspacesOfUser(ctx context.Context, exec Executor, userId models.UserId) ([]models.Workspace, error) {
	if err := validateDbExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToListOfModels(
		ctx,
		exec,
		selectLiveWorkspaces().
			Join(dbmodels.TABLE_WORKSPACE_MEMBERS+" AS m ON m.workspace_id = w.id").
			Where(squirrel.Eq{"m.user_id": userId}).
			OrderBy("w.created_at"),
		dbmodels.AdaptWorkspace,
	)
}

func (repo *DbRepository) ListLiveWorkspaces(ctx context.Context, exec Executor) ([]models.Workspace, error) {
	if err := validateDbExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToListOfModels(
		ctx,
		exec,
		selectLiveWorkspaces().OrderBy("w.created_at"),
		dbmodels.AdaptWorkspace,
	)
}

// UpdateWorkspace only writes the non empty fields of the input
func (repo *DbRepository) UpdateWorkspace(ctx context.Context, exec Executor, workspaceId string, input models.UpdateWorkspaceInput) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	query := NewQueryBuilder().Update(dbmodels.TABLE_WORKSPACES).
		Set("updated_at", repo.clock.Now()).
		Where(squirrel.Eq{"id": workspaceId}).
		Where("deleted_at IS NULL")
	if input.Name != "" {
		query = query.Set("name", input.Name)
	}
	if input.About != "" {
		query = query.Set("about", input.About)
	}
	if input.Email != "" {
		query = query.Set("email", input.Email)
	}

	err := ExecBuilder(ctx, exec, query)
	if IsUniqueViolationError(err) {
		return errors.Wrapf(models.ErrWorkspaceEmailExists, "email %s", input.Email)
	}
	return err
}

func (repo *DbRepository) SoftDeleteWorkspace(ctx context.Context, exec Executor, workspaceId string) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Update(dbmodels.TABLE_WORKSPACES).
			Set("deleted_at", repo.clock.Now()).
			Where(squirrel.Eq{"id": workspaceId}).
			Where("deleted_at IS NULL"),
	)
}
