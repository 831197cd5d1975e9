package dto

type APIErrorResponse struct {
	Message   string            `json:"message"`
	ErrorCode ErrorCode         `json:"error_code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

type ErrorCode string

const (
	// membership related
	LastOwner            ErrorCode = "last_owner"
	InsufficientRank     ErrorCode = "insufficient_rank"
	AlreadyMember        ErrorCode = "already_member"
	InviteEmailMismatch  ErrorCode = "invite_email_mismatch"
	WorkspaceEmailExists ErrorCode = "workspace_email_exists"

	// roles related
	RoleInUse           ErrorCode = "role_in_use"
	SystemRoleImmutable ErrorCode = "system_role_immutable"
	RoleNameExists      ErrorCode = "role_name_exists"

	// tokens related
	InvalidToken     ErrorCode = "invalid_token"
	TokenAlreadyUsed ErrorCode = "token_already_used"

	// general
	UnknownUser      ErrorCode = "unknown_user"
	WrongCredentials ErrorCode = "wrong_credentials"
	AccountDeleted   ErrorCode = "account_deleted"
	ValidationFailed ErrorCode = "validation_failed"
	TooManyRequests  ErrorCode = "too_many_requests"
)
