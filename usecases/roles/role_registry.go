package roles

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/utils"
)

type RoleRepository interface {
	CreateSystemRole(ctx context.Context, exec repositories.Executor, newRoleId string, role models.WorkspaceRole) error
	GetSystemRole(ctx context.Context, exec repositories.Executor, roleType models.RoleType) (models.WorkspaceRole, error)
	GetWorkspaceRoleById(ctx context.Context, exec repositories.Executor, roleId string) (*models.WorkspaceRole, error)
	GetCustomRoleByName(ctx context.Context, exec repositories.Executor, workspaceId, roleName string) (*models.WorkspaceRole, error)
	CreateCustomRole(ctx context.Context, exec repositories.Executor, newRoleId, workspaceId string,
		input models.CreateWorkspaceRoleInput) error
	UpdateCustomRole(ctx context.Context, exec repositories.Executor, roleId string, input models.UpdateWorkspaceRoleInput) error
	DeleteCustomRole(ctx context.Context, exec repositories.Executor, roleId string) error
	CountMembersWithRole(ctx context.Context, exec repositories.Executor, roleId string) (int, error)
	ListWorkspaceRolesWithUsage(ctx context.Context, exec repositories.Executor, workspaceId string) ([]models.WorkspaceRoleWithUsage, error)
}

// system roles never change once created, the expiry only bounds a manual fix in the database
const systemRoleCacheDuration = 5 * time.Minute

// RoleRegistry is the catalog of workspace roles. It does not check who calls it: authorization
// is done by RoleUsecase and the membership engine.
type RoleRegistry struct {
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         RoleRepository
	systemRoles        *expirable.LRU[models.RoleType, models.WorkspaceRole]
}

func NewRoleRegistry(
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	repository RoleRepository,
) *RoleRegistry {
	return &RoleRegistry{
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		repository:         repository,
		systemRoles: expirable.NewLRU[models.RoleType, models.WorkspaceRole](
			len(models.SystemRoleTypes), nil, systemRoleCacheDuration),
	}
}

// EnsureDefaultRoles creates the system roles. The unique index on the system role type makes
// concurrent calls safe: a violation means another process created the role first.
func (r *RoleRegistry) EnsureDefaultRoles(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)
	exec := r.executorFactory.NewExecutor()

	for _, roleType := range models.SystemRoleTypes {
		err := r.repository.CreateSystemRole(ctx, exec, uuid.NewString(), models.DefaultRole(roleType))
		if repositories.IsUniqueViolationError(err) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "could not create the %s system role", roleType)
		}
		logger.InfoContext(ctx, fmt.Sprintf("created the %s system role", roleType))
	}
	return nil
}

func (r *RoleRegistry) GetDefaultRole(ctx context.Context, exec repositories.Executor, roleType models.RoleType) (models.WorkspaceRole, error) {
	if !roleType.IsSystem() {
		return models.WorkspaceRole{}, errors.Wrapf(models.BadParameterError, "%s is not a system role", roleType)
	}
	if role, ok := r.systemRoles.Get(roleType); ok {
		return role, nil
	}

	if exec == nil {
		exec = r.executorFactory.NewExecutor()
	}
	role, err := r.repository.GetSystemRole(ctx, exec, roleType)
	if err != nil {
		return models.WorkspaceRole{}, errors.Wrapf(err, "system role %s", roleType)
	}

	r.systemRoles.Add(roleType, role)
	return role, nil
}

// GetRoleById does not treat a missing role as an error, callers decide what it means
func (r *RoleRegistry) GetRoleById(ctx context.Context, exec repositories.Executor, roleId string) (models.WorkspaceRole, bool, error) {
	if exec == nil {
		exec = r.executorFactory.NewExecutor()
	}
	role, err := r.repository.GetWorkspaceRoleById(ctx, exec, roleId)
	if err != nil {
		return models.WorkspaceRole{}, false, err
	}
	if role == nil {
		return models.WorkspaceRole{}, false, nil
	}
	return *role, true, nil
}

func (r *RoleRegistry) CreateCustomRole(ctx context.Context, workspaceId string,
	input models.CreateWorkspaceRoleInput,
) (models.WorkspaceRole, error) {
	input.RoleName = strings.TrimSpace(input.RoleName)
	if err := validateRoleName(input.RoleName); err != nil {
		return models.WorkspaceRole{}, err
	}
	if err := validatePermissions(input.Permissions); err != nil {
		return models.WorkspaceRole{}, err
	}
	if input.Permissions == nil {
		input.Permissions = []models.Permission{}
	}

	return executor_factory.TransactionReturnValue(ctx, r.transactionFactory, func(
		tx repositories.Transaction,
	) (models.WorkspaceRole, error) {
		existing, err := r.repository.GetCustomRoleByName(ctx, tx, workspaceId, input.RoleName)
		if err != nil {
			return models.WorkspaceRole{}, err
		}
		if existing != nil {
			return models.WorkspaceRole{}, errors.Wrapf(models.ErrRoleNameExists, "role %s", input.RoleName)
		}

		newRoleId := uuid.NewString()
		if err := r.repository.CreateCustomRole(ctx, tx, newRoleId, workspaceId, input); err != nil {
			return models.WorkspaceRole{}, err
		}

		role, err := r.repository.GetWorkspaceRoleById(ctx, tx, newRoleId)
		if err != nil {
			return models.WorkspaceRole{}, err
		}
		if role == nil {
			return models.WorkspaceRole{}, errors.Wrap(models.NotFoundError, "created role not found")
		}
		return *role, nil
	})
}

func (r *RoleRegistry) UpdateCustomRole(ctx context.Context, workspaceId, roleId string,
	patch models.UpdateWorkspaceRoleInput,
) (models.WorkspaceRole, error) {
	patch.RoleName = strings.TrimSpace(patch.RoleName)
	if patch.Permissions != nil {
		if err := validatePermissions(patch.Permissions); err != nil {
			return models.WorkspaceRole{}, err
		}
	}

	return executor_factory.TransactionReturnValue(ctx, r.transactionFactory, func(
		tx repositories.Transaction,
	) (models.WorkspaceRole, error) {
		role, err := r.customRoleOfWorkspace(ctx, tx, workspaceId, roleId)
		if err != nil {
			return models.WorkspaceRole{}, err
		}

		if patch.RoleName != "" && patch.RoleName != role.RoleName {
			if err := validateRoleName(patch.RoleName); err != nil {
				return models.WorkspaceRole{}, err
			}
			existing, err := r.repository.GetCustomRoleByName(ctx, tx, workspaceId, patch.RoleName)
			if err != nil {
				return models.WorkspaceRole{}, err
			}
			if existing != nil && existing.Id != role.Id {
				return models.WorkspaceRole{}, errors.Wrapf(models.ErrRoleNameExists, "role %s", patch.RoleName)
			}
		}

		if err := r.repository.UpdateCustomRole(ctx, tx, roleId, patch); err != nil {
			return models.WorkspaceRole{}, err
		}
		return r.customRoleOfWorkspace(ctx, tx, workspaceId, roleId)
	})
}

// DeleteCustomRole refuses to delete system roles and roles still held by a member
func (r *RoleRegistry) DeleteCustomRole(ctx context.Context, workspaceId, roleId string) error {
	return r.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		role, found, err := r.GetRoleById(ctx, tx, roleId)
		if err != nil {
			return err
		}
		if !found || !role.BelongsTo(workspaceId) {
			return errors.Wrapf(models.NotFoundError, "role %s", roleId)
		}
		if role.RoleType != models.RoleTypeEmployee || role.IsSystem() {
			return errors.Wrapf(models.ErrSystemRoleImmutable, "role %s", role.RoleName)
		}

		count, err := r.repository.CountMembersWithRole(ctx, tx, roleId)
		if err != nil {
			return err
		}
		if count > 0 {
			return errors.Wrapf(models.ErrRoleInUse, "role %s is held by %d members", role.RoleName, count)
		}

		return r.repository.DeleteCustomRole(ctx, tx, roleId)
	})
}

func (r *RoleRegistry) ListWorkspaceRoles(ctx context.Context, workspaceId string) ([]models.WorkspaceRoleWithUsage, error) {
	return r.repository.ListWorkspaceRolesWithUsage(ctx, r.executorFactory.NewExecutor(), workspaceId)
}

func (r *RoleRegistry) AssignablePermissions() []models.Permission {
	return models.AssignablePermissions
}

func (r *RoleRegistry) customRoleOfWorkspace(ctx context.Context, exec repositories.Executor,
	workspaceId, roleId string,
) (models.WorkspaceRole, error) {
	role, found, err := r.GetRoleById(ctx, exec, roleId)
	if err != nil {
		return models.WorkspaceRole{}, err
	}
	if !found || role.IsSystem() || !role.BelongsTo(workspaceId) {
		return models.WorkspaceRole{}, errors.Wrapf(models.NotFoundError, "role %s", roleId)
	}
	return role, nil
}

func validateRoleName(name string) error {
	if name == "" {
		return models.FieldValidationError{"roleName": "must not be empty"}
	}
	if models.IsReservedRoleName(name) {
		return models.FieldValidationError{"roleName": fmt.Sprintf("%s is a reserved role name", name)}
	}
	return nil
}

func validatePermissions(permissions []models.Permission) error {
	for _, p := range permissions {
		if !models.IsAssignablePermission(p) {
			return models.FieldValidationError{"permissions": fmt.Sprintf("%s cannot be assigned to a role", p)}
		}
	}
	return nil
}
