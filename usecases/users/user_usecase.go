package users

import (
	"context"
	"strings"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/utils"
)

type UserRepository interface {
	GetUserById(ctx context.Context, exec repositories.Executor, userId models.UserId) (models.User, error)
	UpdateUser(ctx context.Context, exec repositories.Executor, input models.UpdateUser) error
	SoftDeleteUser(ctx context.Context, exec repositories.Executor, userId models.UserId) error

	ListWorkspacesOfUser(ctx context.Context, exec repositories.Executor, userId models.UserId) ([]models.Workspace, error)
	LockWorkspace(ctx context.Context, tx repositories.Transaction, workspaceId string) (models.Workspace, error)
	GetWorkspaceMemberByUserId(ctx context.Context, exec repositories.Executor, workspaceId string,
		userId models.UserId) (models.WorkspaceMemberWithRole, error)
	CountWorkspaceMembersWithRoleType(ctx context.Context, exec repositories.Executor, workspaceId string,
		roleType models.RoleType) (int, error)
	DeleteWorkspaceMember(ctx context.Context, exec repositories.Executor, workspaceId, memberId string) error
}

// UserUsecase is the profile of the authenticated user
type UserUsecase struct {
	credentials        models.Credentials
	executorFactory    executor_factory.ExecutorFactory
	transactionFactory executor_factory.TransactionFactory
	repository         UserRepository
}

func NewUserUsecase(
	credentials models.Credentials,
	executorFactory executor_factory.ExecutorFactory,
	transactionFactory executor_factory.TransactionFactory,
	repository UserRepository,
) UserUsecase {
	return UserUsecase{
		credentials:        credentials,
		executorFactory:    executorFactory,
		transactionFactory: transactionFactory,
		repository:         repository,
	}
}

func (usecase UserUsecase) userId() models.UserId {
	return usecase.credentials.ActorIdentity.UserId
}

func (usecase UserUsecase) Me(ctx context.Context) (models.User, error) {
	return usecase.repository.GetUserById(ctx, usecase.executorFactory.NewExecutor(), usecase.userId())
}

// UpdateMe only changes the non empty fields
func (usecase UserUsecase) UpdateMe(ctx context.Context, name, about string) (models.User, error) {
	exec := usecase.executorFactory.NewExecutor()
	err := usecase.repository.UpdateUser(ctx, exec, models.UpdateUser{
		UserId: usecase.userId(),
		Name:   strings.TrimSpace(name),
		About:  strings.TrimSpace(about),
	})
	if err != nil {
		return models.User{}, err
	}
	return usecase.repository.GetUserById(ctx, exec, usecase.userId())
}

// DeleteMe leaves every workspace, then soft deletes the account. It fails if the user is
// the last owner of a workspace, which must be handed over or deleted first.
func (usecase UserUsecase) DeleteMe(ctx context.Context) error {
	workspaces, err := usecase.repository.ListWorkspacesOfUser(ctx, usecase.executorFactory.NewExecutor(), usecase.userId())
	if err != nil {
		return err
	}

	err = usecase.transactionFactory.Transaction(ctx, func(tx repositories.Transaction) error {
		for _, workspace := range workspaces {
			if _, err := usecase.repository.LockWorkspace(ctx, tx, workspace.Id); err != nil {
				return err
			}
			member, err := usecase.repository.GetWorkspaceMemberByUserId(ctx, tx, workspace.Id, usecase.userId())
			if err != nil {
				return err
			}
			if member.Role.RoleType == models.RoleTypeOwner {
				owners, err := usecase.repository.CountWorkspaceMembersWithRoleType(ctx, tx, workspace.Id, models.RoleTypeOwner)
				if err != nil {
					return err
				}
				if owners <= 1 {
					return models.ErrLastOwner
				}
			}
			if err := usecase.repository.DeleteWorkspaceMember(ctx, tx, workspace.Id, member.Id); err != nil {
				return err
			}
		}
		return usecase.repository.SoftDeleteUser(ctx, tx, usecase.userId())
	})
	if err != nil {
		return err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "account deleted", "user_id", usecase.userId(),
		"workspaces_left", len(workspaces))
	return nil
}
