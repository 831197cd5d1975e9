package models

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Base errors, related to default API status codes
var (
	// BadParameterError is rendered with the http status code 400
	BadParameterError = errors.New("bad parameter")

	// UnAuthorizedError is rendered with the http status code 401
	UnAuthorizedError = errors.New("unauthorized")

	// ForbiddenError is rendered with the http status code 403
	ForbiddenError = errors.New("forbidden")

	// NotFoundError is rendered with the http status code 404
	NotFoundError = errors.New("not found")

	// MethodNotAllowedError is rendered with the http status code 405. It is used for business rules
	// that forbid an action whatever the caller's permissions (last owner, role in use...)
	MethodNotAllowedError = errors.New("method not allowed")

	// ConflictError is rendered with the http status code 409
	ConflictError = errors.New("duplicate value")
)

// Authentication related errors
var (
	ErrUnknownUser      = errors.Wrap(NotFoundError, "unknown user")
	ErrWrongCredentials = errors.Wrap(UnAuthorizedError, "wrong email or password")
	ErrAccountDeleted   = errors.Wrap(ForbiddenError, "account deleted")
)

// Token related errors
var (
	ErrInvalidToken     = errors.Wrap(UnAuthorizedError, "invalid token")
	ErrTokenAlreadyUsed = errors.Wrap(ConflictError, "token already used")
)

// DB related errors
var (
	ErrIgnoreRollBackError = errors.New("ignore rollback error")
)

// Workspace membership related errors
var (
	ErrLastOwner            = errors.Wrap(MethodNotAllowedError, "a workspace must keep at least one owner")
	ErrInsufficientRank     = errors.Wrap(MethodNotAllowedError, "cannot act on a member with a higher role")
	ErrRoleInUse            = errors.Wrap(MethodNotAllowedError, "role is assigned to at least one member")
	ErrSystemRoleImmutable  = errors.Wrap(MethodNotAllowedError, "system roles cannot be modified or deleted")
	ErrAlreadyMember        = errors.Wrap(ConflictError, "user is already a member of the workspace")
	ErrInviteEmailMismatch  = errors.Wrap(ForbiddenError, "invitation was sent to another email address")
	ErrWorkspaceEmailExists = errors.Wrap(ConflictError, "workspace email already in use")
	ErrRoleNameExists       = errors.Wrap(ConflictError, "role already exists")
)

// FieldValidationError lists the invalid fields of an input and their problem
type FieldValidationError map[string]string

func (e FieldValidationError) Error() string {
	return fmt.Sprintf("%v", map[string]string(e))
}

func (e FieldValidationError) Is(target error) bool {
	return target == BadParameterError
}
