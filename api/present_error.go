package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/invoicebox/backend/dto"
	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

// the most specific errors come first, they all wrap one of the base errors below
var errorCodes = []struct {
	err  error
	code dto.ErrorCode
}{
	{models.ErrLastOwner, dto.LastOwner},
	{models.ErrInsufficientRank, dto.InsufficientRank},
	{models.ErrAlreadyMember, dto.AlreadyMember},
	{models.ErrInviteEmailMismatch, dto.InviteEmailMismatch},
	{models.ErrWorkspaceEmailExists, dto.WorkspaceEmailExists},
	{models.ErrRoleInUse, dto.RoleInUse},
	{models.ErrSystemRoleImmutable, dto.SystemRoleImmutable},
	{models.ErrRoleNameExists, dto.RoleNameExists},
	{models.ErrInvalidToken, dto.InvalidToken},
	{models.ErrTokenAlreadyUsed, dto.TokenAlreadyUsed},
	{models.ErrUnknownUser, dto.UnknownUser},
	{models.ErrWrongCredentials, dto.WrongCredentials},
	{models.ErrAccountDeleted, dto.AccountDeleted},
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{models.BadParameterError, http.StatusBadRequest},
	{models.UnAuthorizedError, http.StatusUnauthorized},
	{models.ForbiddenError, http.StatusForbidden},
	{models.NotFoundError, http.StatusNotFound},
	{models.MethodNotAllowedError, http.StatusMethodNotAllowed},
	{models.ConflictError, http.StatusConflict},
}

func errorCodeOf(err error) dto.ErrorCode {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// presentError writes the response matching err and returns true, or returns false if err is nil
func presentError(ctx context.Context, c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var validationErrors validator.ValidationErrors
	var unmarshalTypeError *json.UnmarshalTypeError
	var fieldValidationError models.FieldValidationError
	switch {
	case errors.As(err, &validationErrors):
		c.JSON(http.StatusBadRequest, dto.APIErrorResponse{
			Message:   "invalid payload",
			ErrorCode: dto.ValidationFailed,
			Fields:    adaptValidationErrors(validationErrors),
		})
		return true
	case errors.As(err, &fieldValidationError):
		c.JSON(http.StatusBadRequest, dto.APIErrorResponse{
			Message:   "invalid payload",
			ErrorCode: dto.ValidationFailed,
			Fields:    fieldValidationError,
		})
		return true
	case errors.As(err, &unmarshalTypeError):
		c.JSON(http.StatusBadRequest, dto.APIErrorResponse{
			Message:   "invalid payload",
			ErrorCode: dto.ValidationFailed,
			Fields: map[string]string{
				unmarshalTypeError.Field: "expected type " + unmarshalTypeError.Type.String() +
					", got " + unmarshalTypeError.Value,
			},
		})
		return true
	case errors.Is(err, io.EOF):
		c.JSON(http.StatusBadRequest, dto.APIErrorResponse{Message: "empty body"})
		return true
	}

	for _, s := range errorStatuses {
		if errors.Is(err, s.err) {
			utils.LoggerFromContext(ctx).DebugContext(ctx, "request rejected", "error", err.Error())
			c.JSON(s.status, dto.APIErrorResponse{
				Message:   err.Error(),
				ErrorCode: errorCodeOf(err),
			})
			return true
		}
	}

	utils.LogAndReportSentryError(ctx, err)
	c.JSON(http.StatusInternalServerError, dto.APIErrorResponse{Message: "internal server error"})
	return true
}
