package dto

import (
	"time"

	"github.com/invoicebox/backend/models"
)

type User struct {
	UserId         string     `json:"user_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	About          string     `json:"about"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	EmailVerified  bool       `json:"email_verified"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func AdaptUserDto(user models.User) User {
	return User{
		UserId:         string(user.UserId),
		Name:           user.Name,
		Email:          user.Email,
		Role:           string(user.Role),
		About:          user.About,
		ProfilePicture: user.ProfilePicture,
		EmailVerified:  user.EmailVerified,
		LastSeenAt:     user.LastSeenAt.Ptr(),
		CreatedAt:      user.CreatedAt,
	}
}

type UpdateMeBody struct {
	Name  string `json:"name" binding:"required,notblank,max=100"`
	About string `json:"about" binding:"max=1000"`
}
