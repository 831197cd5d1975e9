package auth

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/usecases/executor_factory"
)

type accessTokenVerifier interface {
	Verify(ctx context.Context, purpose models.TokenPurpose, token string) (models.TokenPayload, error)
}

type userReader interface {
	GetUserById(ctx context.Context, exec repositories.Executor, userId models.UserId) (models.User, error)
}

// Verifier turns the bearer access token of a request into the credentials of its user
type Verifier struct {
	executorFactory executor_factory.ExecutorFactory
	tokens          accessTokenVerifier
	repository      userReader
}

func NewVerifier(executorFactory executor_factory.ExecutorFactory, tokens accessTokenVerifier, repository userReader) Verifier {
	return Verifier{
		executorFactory: executorFactory,
		tokens:          tokens,
		repository:      repository,
	}
}

func (v Verifier) Verify(ctx context.Context, accessToken string) (models.Credentials, error) {
	payload, err := v.tokens.Verify(ctx, models.TokenPurposeAccess, accessToken)
	if err != nil {
		return models.Credentials{}, err
	}

	user, err := v.repository.GetUserById(ctx, v.executorFactory.NewExecutor(), payload.UserId)
	if errors.Is(err, models.NotFoundError) {
		return models.Credentials{}, errors.Wrap(models.ErrUnknownUser, err.Error())
	}
	if err != nil {
		return models.Credentials{}, err
	}
	if user.AccountDeleted {
		return models.Credentials{}, models.ErrAccountDeleted
	}
	return user.IntoCredentials(), nil
}
