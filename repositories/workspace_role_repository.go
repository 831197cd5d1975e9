package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/dbmodels"
)

func selectWorkspaceRoles() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(columnsNames("r", dbmodels.WorkspaceRoleFields)...).
		From(dbmodels.TABLE_WORKSPACE_ROLES + " AS r")
}

// CreateSystemRole fails with a unique violation if the role type already exists
func (repo *DbRepository) CreateSystemRole(ctx context.Context, exec Executor, newRoleId string, role models.WorkspaceRole) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_WORKSPACE_ROLES).
			Columns(
				"id",
				"role_type",
				"role_name",
				"description",
				"critical_feature",
				"permissions",
			).
			Values(
				newRoleId,
				role.RoleType,
				role.RoleName,
				role.Description,
				role.CriticalFeature,
				dbmodels.PermissionsToDb(role.Permissions),
			),
	)
}

func (repo *DbRepository) GetSystemRole(ctx context.Context, exec Executor, roleType models.RoleType) (models.WorkspaceRole, error) {
	if err := validateDbExecutor(exec); err != nil {
		return models.WorkspaceRole{}, err
	}

	return SqlToModel(
		ctx,
		exec,
		selectWorkspaceRoles().
			Where(squirrel.Eq{"r.role_type": roleType}).
			Where(squirrel.Eq{"r.workspace_id": nil}),
		dbmodels.AdaptWorkspaceRole,
	)
}

func (repo *DbRepository) GetWorkspaceRoleById(ctx context.Context, exec Executor, roleId string) (*models.WorkspaceRole, error) {
	if err := validateDbExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToOptionalModel(
		ctx,
		exec,
		selectWorkspaceRoles().Where(squirrel.Eq{"r.id": roleId}),
		dbmodels.AdaptWorkspaceRole,
	)
}

func (repo *DbRepository) GetCustomRoleByName(ctx context.Context, exec Executor, workspaceId, roleName string) (*models.WorkspaceRole, error) {
	if err := validateDbExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToOptionalModel(
		ctx,
		exec,
		selectWorkspaceRoles().
			Where(squirrel.Eq{"r.workspace_id": workspaceId}).
			Where(squirrel.Eq{"r.role_name": roleName}),
		dbmodels.AdaptWorkspaceRole,
	)
}

func (repo *DbRepository) CreateCustomRole(ctx context.Context, exec Executor,
	newRoleId, workspaceId string, input models.CreateWorkspaceRoleInput,
) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_WORKSPACE_ROLES).
			Columns(
				"id",
				"role_type",
				"role_name",
				"description",
				"critical_feature",
				"permissions",
				"workspace_id",
			).
			Values(
				newRoleId,
				models.RoleTypeEmployee,
				input.RoleName,
				input.Description,
				input.CriticalFeature,
				dbmodels.PermissionsToDb(input.Permissions),
				workspaceId,
			),
	)
	if IsUniqueViolationError(err) {
		return models.ErrRoleNameExists
	}
	return err
}

// UpdateCustomRole writes the non empty fields of the input. Nil permissions are left untouched.
func (repo *DbRepository) UpdateCustomRole(ctx context.Context, exec Executor,
	roleId string, input models.UpdateWorkspaceRoleInput,
) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	query := NewQueryBuilder().Update(dbmodels.TABLE_WORKSPACE_ROLES).
		Set("updated_at", repo.clock.Now()).
		Where(squirrel.Eq{"id": roleId}).
		Where(squirrel.NotEq{"workspace_id": nil})
	if input.RoleName != "" {
		query = query.Set("role_name", input.RoleName)
	}
	if input.Description != "" {
		query = query.Set("description", input.Description)
	}
	if input.CriticalFeature != "" {
		query = query.Set("critical_feature", input.CriticalFeature)
	}
	if input.Permissions != nil {
		query = query.Set("permissions", dbmodels.PermissionsToDb(input.Permissions))
	}

	err := ExecBuilder(ctx, exec, query)
	if IsUniqueViolationError(err) {
		return models.ErrRoleNameExists
	}
	return err
}

func (repo *DbRepository) DeleteCustomRole(ctx context.Context, exec Executor, roleId string) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Delete(dbmodels.TABLE_WORKSPACE_ROLES).
			Where(squirrel.Eq{"id": roleId}).
			Where(squirrel.NotEq{"workspace_id": nil}),
	)
}

func (repo *DbRepository) DeleteAllCustomRoles(ctx context.Context, exec Executor, workspaceId string) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Delete(dbmodels.TABLE_WORKSPACE_ROLES).
			Where(squirrel.Eq{"workspace_id": workspaceId}),
	)
}

func (repo *DbRepository) CountMembersWithRole(ctx context.Context, exec Executor, roleId string) (int, error) {
	if err := validateDbExecutor(exec); err != nil {
		return 0, err
	}

	return countRows(
		ctx,
		exec,
		NewQueryBuilder().
			Select("COUNT(*)").
			From(dbmodels.TABLE_WORKSPACE_MEMBERS).
			Where(squirrel.Eq{"role_id": roleId}),
	)
}

// ListWorkspaceRolesWithUsage returns the custom roles of the workspace and the owner and admin
// system roles, each with the number of members of this workspace holding it.
func (repo *DbRepository) ListWorkspaceRolesWithUsage(ctx context.Context, exec Executor,
	workspaceId string,
) ([]models.WorkspaceRoleWithUsage, error) {
	if err := validateDbExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToListOfModels(
		ctx,
		exec,
		selectWorkspaceRoles().
			Column(squirrel.Expr(
				"(SELECT COUNT(*) FROM "+dbmodels.TABLE_WORKSPACE_MEMBERS+
					" AS m WHERE m.role_id = r.id AND m.workspace_id = ?) AS usage_count", workspaceId)).
			Where(squirrel.Or{
				squirrel.Eq{"r.workspace_id": workspaceId},
				squirrel.And{
					squirrel.Eq{"r.workspace_id": nil},
					squirrel.Eq{"r.role_type": []models.RoleType{models.RoleTypeOwner, models.RoleTypeAdmin}},
				},
			}).
			OrderBy("r.workspace_id NULLS FIRST", "r.created_at"),
		dbmodels.AdaptWorkspaceRoleWithUsage,
	)
}
