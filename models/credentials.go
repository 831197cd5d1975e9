package models

type Identity struct {
	UserId UserId
	Email  string
	Name   string
}

type Credentials struct {
	ActorIdentity Identity // authenticated principal, for audit logs
	Role          UserRole
}
