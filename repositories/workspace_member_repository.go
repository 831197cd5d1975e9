package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/dbmodels"
)

var memberRoleColumns = []string{
	"r.role_type",
	"r.role_name",
	"r.description AS role_description",
	"r.critical_feature AS role_critical_feature",
	"r.permissions AS role_permissions",
	"r.workspace_id AS role_workspace_id",
	"r.created_at AS role_created_at",
	"r.updated_at AS role_updated_at",
}

var memberUserColumns = []string{
	"u.name AS user_name",
	"u.email AS user_email",
	"u.about AS user_about",
	"u.profile_picture AS user_profile_picture",
}

func selectMembersWithRole() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(columnsNames("m", dbmodels.WorkspaceMemberFields)...).
		Columns(memberRoleColumns...).
		From(dbmodels.TABLE_WORKSPACE_MEMBERS + " AS m").
		Join(dbmodels.TABLE_WORKSPACE_ROLES + " AS r ON r.id = m.role_id")
}

func selectMembersWithUser() squirrel.SelectBuilder {
	return selectMembersWithRole().
		Columns(memberUserColumns...).
		Join(dbmodels.TABLE_USERS + " AS u ON u.id = m.user_id")
}

// CreateWorkspaceMember inserts the member only if the role is a system role or a custom role
// of the same workspace. Any other role id is reported as not found.
func (repo *DbRepository) CreateWorkspaceMember(ctx context.Context, exec Executor,
	newMemberId string, input models.CreateWorkspaceMemberInput,
) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	rowsAffected, err := ExecBuilderRowsAffected(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_WORKSPACE_MEMBERS).
			Columns(
				"id",
				"workspace_id",
				"user_id",
				"role_id",
				"created_at",
			).
			Select(
				squirrel.Select().
					Column("?", newMemberId).
					Column("?", input.WorkspaceId).
					Column("?", input.UserId).
					Column("r.id").
					Column("?", repo.clock.Now()).
					From(dbmodels.TABLE_WORKSPACE_ROLES+" AS r").
					Where(squirrel.Eq{"r.id": input.RoleId}).
					Where(squirrel.Or{
						squirrel.Eq{"r.workspace_id": nil},
						squirrel.Eq{"r.workspace_id": input.WorkspaceId},
					}),
			),
	)
	if IsUniqueViolationError(err) {
		return models.ErrAlreadyMember
	}
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.Wrapf(models.NotFoundError, "role %s not found in workspace %s", input.RoleId, input.WorkspaceId)
	}
	return nil
}

func (repo *DbRepository) GetWorkspaceMemberById(ctx context.Context, exec Executor,
	workspaceId, memberId string,
) (models.WorkspaceMemberWithRole, error) {
	if err := validateDbExecutor(exec); err != nil {
		return models.WorkspaceMemberWithRole{}, err
	}

	return SqlToModel(
		ctx,
		exec,
		selectMembersWithRole().
			Where(squirrel.Eq{"m.workspace_id": workspaceId}).
			Where(squirrel.Eq{"m.id": memberId}),
		dbmodels.AdaptWorkspaceMemberWithRole,
	)
}

func (repo *DbRepository) GetWorkspaceMemberByUserId(ctx context.Context, exec Executor,
	workspaceId string, userId models.UserId,
) (models.WorkspaceMemberWithRole, error) {
	if err := validateDbExecutor(exec); err != nil {
		return models.WorkspaceMemberWithRole{}, err
	}

	return SqlToModel(
		ctx,
		exec,
		selectMembersWithRole().
			Where(squirrel.Eq{"m.workspace_id": workspaceId}).
			Where(squirrel.Eq{"m.user_id": userId}),
		dbmodels.AdaptWorkspaceMemberWithRole,
	)
}

// ListWorkspaceMembers returns the members in joining order. With role types, only the
// members holding one of them are returned.
func (repo *DbRepository) ListWorkspaceMembers(ctx context.Context, exec Executor,
	workspaceId string, roleTypes ...models.RoleType,
) ([]models.WorkspaceMemberWithUser, error) {
	if err := validateDbExecutor(exec); err != nil {
		return nil, err
	}

	query := selectMembersWithUser().
		Where(squirrel.Eq{"m.workspace_id": workspaceId}).
		OrderBy("m.created_at", "m.id")
	if len(roleTypes) > 0 {
		query = query.Where(squirrel.Eq{"r.role_type": roleTypes})
	}

	return SqlToListOfModels(ctx, exec, query, dbmodels.AdaptWorkspaceMemberWithUser)
}

// CountWorkspaceMembersWithRoleType counts from the current rows, never from a cached value
func (repo *DbRepository) CountWorkspaceMembersWithRoleType(ctx context.Context, exec Executor,
	workspaceId string, roleType models.RoleType,
) (int, error) {
	if err := validateDbExecutor(exec); err != nil {
		return 0, err
	}

	return countRows(
		ctx,
		exec,
		NewQueryBuilder().
			Select("COUNT(*)").
			From(dbmodels.TABLE_WORKSPACE_MEMBERS+" AS m").
			Join(dbmodels.TABLE_WORKSPACE_ROLES+" AS r ON r.id = m.role_id").
			Where(squirrel.Eq{"m.workspace_id": workspaceId}).
			Where(squirrel.Eq{"r.role_type": roleType}),
	)
}

func (repo *DbRepository) UpdateWorkspaceMemberRole(ctx context.Context, exec Executor, memberId, roleId string) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Update(dbmodels.TABLE_WORKSPACE_MEMBERS).
			Set("role_id", roleId).
			Where(squirrel.Eq{"id": memberId}),
	)
}

func (repo *DbRepository) DeleteWorkspaceMember(ctx context.Context, exec Executor, workspaceId, memberId string) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Delete(dbmodels.TABLE_WORKSPACE_MEMBERS).
			Where(squirrel.Eq{"workspace_id": workspaceId}).
			Where(squirrel.Eq{"id": memberId}),
	)
}

func (repo *DbRepository) DeleteAllWorkspaceMembers(ctx context.Context, exec Executor, workspaceId string) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Delete(dbmodels.TABLE_WORKSPACE_MEMBERS).
			Where(squirrel.Eq{"workspace_id": workspaceId}),
	)
}

func countRows(ctx context.Context, exec Executor, query squirrel.SelectBuilder) (int, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "can't build sql query")
	}

	var count int
	if err := exec.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "error executing count query")
	}
	return count, nil
}
