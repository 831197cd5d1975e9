package dto

import "github.com/invoicebox/backend/models"

type SignupBody struct {
	Name     string `json:"name" binding:"required,notblank,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,password"`
}

type LoginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenBody struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenBody struct {
	Token string `json:"token" binding:"required"`
}

type ForgotPasswordBody struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordBody struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,password"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func AdaptTokenPairDto(pair models.TokenPair) TokenPair {
	return TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	}
}
