package models

type NotificationPurpose string

const (
	NotificationInvite            NotificationPurpose = "invite"
	NotificationEmailVerification NotificationPurpose = "email_verification"
	NotificationPasswordReset     NotificationPurpose = "password_reset"
	NotificationPasswordChanged   NotificationPurpose = "password_changed"
	NotificationMemberJoined      NotificationPurpose = "member_joined"
	NotificationWeeklyReport      NotificationPurpose = "weekly_report"
)

type Notification struct {
	Purpose      NotificationPurpose
	To           string
	TemplateData map[string]any
}

type MailerConfiguration struct {
	ApiUrl      string
	ApiKey      string
	SenderEmail string
	AppUrl      string // used to build the links sent by email
}
