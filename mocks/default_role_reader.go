package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
)

type DefaultRoleReader struct {
	mock.Mock
}

func (r *DefaultRoleReader) GetDefaultRole(ctx context.Context, exec repositories.Executor, roleType models.RoleType) (models.WorkspaceRole, error) {
	args := r.Called(ctx, exec, roleType)
	return args.Get(0).(models.WorkspaceRole), args.Error(1)
}
