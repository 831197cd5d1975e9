package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/repositories"
	"github.com/invoicebox/backend/usecases/analytics"
	"github.com/invoicebox/backend/usecases/executor_factory"
	"github.com/invoicebox/backend/utils"
)

type AccountRepository interface {
	GetUserById(ctx context.Context, exec repositories.Executor, userId models.UserId) (models.User, error)
	GetUserByEmail(ctx context.Context, exec repositories.Executor, email string) (models.User, error)
	CreateUser(ctx context.Context, exec repositories.Executor, newUserId models.UserId, input models.CreateUser) error
	UpdateUserPassword(ctx context.Context, exec repositories.Executor, userId models.UserId, passwordHash string) error
	MarkUserEmailVerified(ctx context.Context, exec repositories.Executor, userId models.UserId) error
	TouchUserLastSeen(ctx context.Context, exec repositories.Executor, userId models.UserId) error
}

type tokenLedger interface {
	Issue(ctx context.Context, purpose models.TokenPurpose, payload models.TokenPayload) (string, error)
	Redeem(ctx context.Context, purpose models.TokenPurpose, token string) (models.TokenPayload, error)
	Invalidate(ctx context.Context, purpose models.TokenPurpose, token string) error
}

type notifier interface {
	Send(ctx context.Context, notification models.Notification)
	AppUrl() string
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// AccountUsecase handles the unauthenticated account flows: signup, login, token refresh and
// password recovery
type AccountUsecase struct {
	executorFactory executor_factory.ExecutorFactory
	repository      AccountRepository
	tokens          tokenLedger
	notifier        notifier
}

func NewAccountUsecase(
	executorFactory executor_factory.ExecutorFactory,
	repository AccountRepository,
	tokens tokenLedger,
	notifier notifier,
) AccountUsecase {
	return AccountUsecase{
		executorFactory: executorFactory,
		repository:      repository,
		tokens:          tokens,
		notifier:        notifier,
	}
}

func (usecase AccountUsecase) link(path, token string) string {
	return fmt.Sprintf("%s%s?token=%s", usecase.notifier.AppUrl(), path, url.QueryEscape(token))
}

func (usecase AccountUsecase) Signup(ctx context.Context, input SignupInput) (models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" {
		return models.User{}, models.FieldValidationError{"name": "must not be empty"}
	}
	if err := ValidatePassword(input.Password); err != nil {
		return models.User{}, err
	}
	hash, err := HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	exec := usecase.executorFactory.NewExecutor()
	newUserId := models.UserId(uuid.NewString())
	err = usecase.repository.CreateUser(ctx, exec, newUserId, models.CreateUser{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         models.UserRoleUser,
	})
	if err != nil {
		return models.User{}, err
	}
	user, err := usecase.repository.GetUserById(ctx, exec, newUserId)
	if err != nil {
		return models.User{}, err
	}

	usecase.sendEmailVerification(ctx, user)
	analytics.TrackEvent(utils.StoreCredentialsInContext(ctx, user.IntoCredentials()),
		models.AnalyticsSignedUp, map[string]interface{}{})
	return user, nil
}

func (usecase AccountUsecase) sendEmailVerification(ctx context.Context, user models.User) {
	token, err := usecase.tokens.Issue(ctx, models.TokenPurposeEmailVerification,
		models.TokenPayload{UserId: user.UserId, Email: user.Email})
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return
	}
	usecase.notifier.Send(ctx, models.Notification{
		Purpose: models.NotificationEmailVerification,
		To:      user.Email,
		TemplateData: map[string]any{
			"name": user.Name,
			"link": usecase.link("/auth/verify-email", token),
		},
	})
}

func (usecase AccountUsecase) VerifyEmail(ctx context.Context, token string) error {
	payload, err := usecase.tokens.Redeem(ctx, models.TokenPurposeEmailVerification, token)
	if err != nil {
		return err
	}
	return usecase.repository.MarkUserEmailVerified(ctx, usecase.executorFactory.NewExecutor(), payload.UserId)
}

func (usecase AccountUsecase) issuePair(ctx context.Context, userId models.UserId) (models.TokenPair, error) {
	access, err := usecase.tokens.Issue(ctx, models.TokenPurposeAccess, models.TokenPayload{UserId: userId})
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := usecase.tokens.Issue(ctx, models.TokenPurposeRefresh, models.TokenPayload{UserId: userId})
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Login does not tell an unknown email from a wrong password
func (usecase AccountUsecase) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	exec := usecase.executorFactory.NewExecutor()
	user, err := usecase.repository.GetUserByEmail(ctx, exec, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, models.NotFoundError) {
		return models.TokenPair{}, models.ErrWrongCredentials
	}
	if err != nil {
		return models.TokenPair{}, err
	}
	if !PasswordMatches(user.PasswordHash, password) {
		return models.TokenPair{}, models.ErrWrongCredentials
	}
	if user.AccountDeleted {
		return models.TokenPair{}, models.ErrAccountDeleted
	}

	pair, err := usecase.issuePair(ctx, user.UserId)
	if err != nil {
		return models.TokenPair{}, err
	}
	if err := usecase.repository.TouchUserLastSeen(ctx, exec, user.UserId); err != nil {
		utils.LogAndReportSentryError(ctx, err)
	}
	return pair, nil
}

// Refresh rotates the refresh token: the one given is consumed
func (usecase AccountUsecase) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	payload, err := usecase.tokens.Redeem(ctx, models.TokenPurposeRefresh, refreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	user, err := usecase.repository.GetUserById(ctx, usecase.executorFactory.NewExecutor(), payload.UserId)
	if err != nil {
		return models.TokenPair{}, err
	}
	if user.AccountDeleted {
		return models.TokenPair{}, models.ErrAccountDeleted
	}
	return usecase.issuePair(ctx, user.UserId)
}

func (usecase AccountUsecase) Logout(ctx context.Context, refreshToken string) error {
	return usecase.tokens.Invalidate(ctx, models.TokenPurposeRefresh, refreshToken)
}

// RequestPasswordReset succeeds whether or not the email belongs to an account
func (usecase AccountUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := usecase.repository.GetUserByEmail(ctx, usecase.executorFactory.NewExecutor(),
		strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, models.NotFoundError) {
		utils.LoggerFromContext(ctx).InfoContext(ctx, "password reset requested for an unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := usecase.tokens.Issue(ctx, models.TokenPurposePasswordReset, models.TokenPayload{UserId: user.UserId})
	if err != nil {
		return err
	}
	usecase.notifier.Send(ctx, models.Notification{
		Purpose: models.NotificationPasswordReset,
		To:      user.Email,
		TemplateData: map[string]any{
			"name": user.Name,
			"link": usecase.link("/auth/reset-password", token),
		},
	})
	return nil
}

func (usecase AccountUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	payload, err := usecase.tokens.Redeem(ctx, models.TokenPurposePasswordReset, token)
	if err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	exec := usecase.executorFactory.NewExecutor()
	if err := usecase.repository.UpdateUserPassword(ctx, exec, payload.UserId, hash); err != nil {
		return err
	}
	user, err := usecase.repository.GetUserById(ctx, exec, payload.UserId)
	if err != nil {
		return err
	}
	usecase.notifier.Send(ctx, models.Notification{
		Purpose:      models.NotificationPasswordChanged,
		To:           user.Email,
		TemplateData: map[string]any{"name": user.Name},
	})
	return nil
}
