package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories/dbmodels"
)

func selectUsers() squirrel.SelectBuilder {
	return NewQueryBuilder().
		Select(dbmodels.UserFields...).
		From(dbmodels.TABLE_USERS)
}

func (repo *DbRepository) GetUserById(ctx context.Context, exec Executor, userId models.UserId) (models.User, error) {
	if err := validateDbExecutor(exec); err != nil {
		return models.User{}, err
	}

	return SqlToModel(
		ctx,
		exec,
		selectUsers().Where(squirrel.Eq{"id": userId}),
		dbmodels.AdaptUser,
	)
}

// GetUserByEmail only finds live accounts, soft deleted accounts have no email
func (repo *DbRepository) GetUserByEmail(ctx context.Context, exec Executor, email string) (models.User, error) {
	if err := validateDbExecutor(exec); err != nil {
		return models.User{}, err
	}

	return SqlToModel(
		ctx,
		exec,
		selectUsers().Where(squirrel.Eq{"email": strings.ToLower(email)}),
		dbmodels.AdaptUser,
	)
}

func (repo *DbRepository) ListUsersByIds(ctx context.Context, exec Executor, userIds []models.UserId) ([]models.User, error) {
	if err := validateDbExecutor(exec); err != nil {
		return nil, err
	}

	return SqlToListOfModels(
		ctx,
		exec,
		selectUsers().Where(squirrel.Eq{"id": userIds}),
		dbmodels.AdaptUser,
	)
}

func (repo *DbRepository) CreateUser(ctx context.Context, exec Executor, newUserId models.UserId, input models.CreateUser) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Insert(dbmodels.TABLE_USERS).
			Columns(
				"id",
				"name",
				"email",
				"password_hash",
				"role",
			).
			Values(
				newUserId,
				input.Name,
				strings.ToLower(input.Email),
				input.PasswordHash,
				input.Role,
			),
	)
	if IsUniqueViolationError(err) {
		return errors.Wrap(models.ConflictError, "an account already exists with this email")
	}
	return err
}

func (repo *DbRepository) UpdateUser(ctx context.Context, exec Executor, input models.UpdateUser) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	query := NewQueryBuilder().Update(dbmodels.TABLE_USERS).
		Set("updated_at", repo.clock.Now()).
		Where(squirrel.Eq{"id": input.UserId})
	if input.Name != "" {
		query = query.Set("name", input.Name)
	}
	if input.About != "" {
		query = query.Set("about", input.About)
	}

	return ExecBuilder(ctx, exec, query)
}

func (repo *DbRepository) UpdateUserPassword(ctx context.Context, exec Executor, userId models.UserId, passwordHash string) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Update(dbmodels.TABLE_USERS).
			Set("password_hash", passwordHash).
			Set("updated_at", repo.clock.Now()).
			Where(squirrel.Eq{"id": userId}),
	)
}

func (repo *DbRepository) MarkUserEmailVerified(ctx context.Context, exec Executor, userId models.UserId) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Update(dbmodels.TABLE_USERS).
			Set("email_verified", true).
			Set("updated_at", repo.clock.Now()).
			Where(squirrel.Eq{"id": userId}),
	)
}

func (repo *DbRepository) TouchUserLastSeen(ctx context.Context, exec Executor, userId models.UserId) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Update(dbmodels.TABLE_USERS).
			Set("last_seen_at", repo.clock.Now()).
			Where(squirrel.Eq{"id": userId}),
	)
}

// SoftDeleteUser clears the email, so that it can be used again by a new account
func (repo *DbRepository) SoftDeleteUser(ctx context.Context, exec Executor, userId models.UserId) error {
	if err := validateDbExecutor(exec); err != nil {
		return err
	}

	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().Update(dbmodels.TABLE_USERS).
			Set("email", nil).
			Set("account_deleted", true).
			Set("updated_at", repo.clock.Now()).
			Where(squirrel.Eq{"id": userId}),
	)
}
