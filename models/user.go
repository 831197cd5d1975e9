package models

import (
	"time"

	"github.com/guregu/null/v5"
)

type UserId string

// System level role of an account, unrelated to workspace roles
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func UserRoleFromString(s string) UserRole {
	if s == string(UserRoleAdmin) {
		return UserRoleAdmin
	}
	return UserRoleUser
}

type User struct {
	UserId         UserId
	Name           string
	Email          string
	PasswordHash   string
	Role           UserRole
	About          string
	ProfilePicture string
	EmailVerified  bool
	AccountDeleted bool
	LastSeenAt     null.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (u User) IntoCredentials() Credentials {
	return Credentials{
		ActorIdentity: Identity{
			UserId: u.UserId,
			Email:  u.Email,
			Name:   u.Name,
		},
		Role: u.Role,
	}
}

type CreateUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
}

type UpdateUser struct {
	UserId UserId
	Name   string
	About  string
}
