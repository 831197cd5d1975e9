package models

import "time"

// TokenPurpose scopes a signed token: each purpose has its own secret, lifetime and replay guard.
type TokenPurpose string

const (
	TokenPurposeAccess            TokenPurpose = "access"
	TokenPurposeRefresh           TokenPurpose = "refresh"
	TokenPurposeInvite            TokenPurpose = "invite"
	TokenPurposeEmailVerification TokenPurpose = "email_verification"
	TokenPurposePasswordReset     TokenPurpose = "password_reset"
	TokenPurposeInboundMail       TokenPurpose = "inbound_mail"
)

// Single use purposes go through the replay guard on redemption
var SingleUseTokenPurposes = []TokenPurpose{
	TokenPurposeRefresh,
	TokenPurposeInvite,
	TokenPurposeEmailVerification,
	TokenPurposePasswordReset,
	TokenPurposeInboundMail,
}

func (p TokenPurpose) IsSingleUse() bool {
	for _, purpose := range SingleUseTokenPurposes {
		if purpose == p {
			return true
		}
	}
	return false
}

// TokenPayload is the business content of a signed token. Fields are optional depending on the purpose.
type TokenPayload struct {
	UserId      UserId `json:"user_id,omitempty"`
	Email       string `json:"email,omitempty"`
	WorkspaceId string `json:"workspace_id,omitempty"`
	Subject     string `json:"subject,omitempty"`
}

type TokenPolicy struct {
	Secret   []byte
	Lifetime time.Duration
}

type TokenConfiguration struct {
	Issuer   string
	Policies map[TokenPurpose]TokenPolicy
}

// RedeemedToken is a verified token, with its expiry used to size the replay guard entry
type RedeemedToken struct {
	Payload   TokenPayload
	Id        string
	ExpiresAt time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

const INBOUND_MAIL_TOKEN_SUBJECT = "mail-relay"
