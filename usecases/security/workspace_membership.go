package security

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
)

type WorkspaceMemberReader interface {
	GetWorkspaceMemberByUserId(ctx context.Context, exec repositories.Executor,
		workspaceId string, userId models.UserId) (models.WorkspaceMemberWithRole, error)
}

// ActorMembership reads the membership of the user in the workspace from the given executor,
// nil meaning the user is not a member.
func ActorMembership(
	ctx context.Context,
	exec repositories.Executor,
	reader WorkspaceMemberReader,
	workspaceId string,
	userId models.UserId,
) (*models.WorkspaceMemberWithRole, error) {
	membership, err := reader.GetWorkspaceMemberByUserId(ctx, exec, workspaceId, userId)
	if errors.Is(err, models.NotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}
