package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
)

type UserRepository struct {
	mock.Mock
}

func (r *UserRepository) GetUserById(ctx context.Context, exec repositories.Executor, userId models.UserId) (models.User, error) {
	args := r.Called(ctx, exec, userId)
	return args.Get(0).(models.User), args.Error(1)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, exec repositories.Executor, email string) (models.User, error) {
	args := r.Called(ctx, exec, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (r *UserRepository) CreateUser(ctx context.Context, exec repositories.Executor, newUserId models.UserId, input models.CreateUser) error {
	args := r.Called(ctx, exec, newUserId, input)
	return args.Error(0)
}

func (r *UserRepository) UpdateUser(ctx context.Context, exec repositories.Executor, input models.UpdateUser) error {
	args := r.Called(ctx, exec, input)
	return args.Error(0)
}

func (r *UserRepository) UpdateUserPassword(ctx context.Context, exec repositories.Executor, userId models.UserId, passwordHash string) error {
	args := r.Called(ctx, exec, userId, passwordHash)
	return args.Error(0)
}

func (r *UserRepository) MarkUserEmailVerified(ctx context.Context, exec repositories.Executor, userId models.UserId) error {
	args := r.Called(ctx, exec, userId)
	return args.Error(0)
}

func (r *UserRepository) TouchUserLastSeen(ctx context.Context, exec repositories.Executor, userId models.UserId) error {
	args := r.Called(ctx, exec, userId)
	return args.Error(0)
}

func (r *UserRepository) SoftDeleteUser(ctx context.Context, exec repositories.Executor, userId models.UserId) error {
	args := r.Called(ctx, exec, userId)
	return args.Error(0)
}
