package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoicebox/backend/dto"
	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/usecases/auth"
)

func handleSignup(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.SignupBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewAccountUsecase()
		user, err := usecase.Signup(ctx, auth.SignupInput{
			Name:     body.Name,
			Email:    body.Email,
			Password: body.Password,
		})
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": dto.AdaptUserDto(user)})
	}
}

func handleVerifyEmail(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.TokenBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewAccountUsecase()
		if presentError(ctx, c, usecase.VerifyEmail(ctx, body.Token)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleLogin(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.LoginBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewAccountUsecase()
		tokens, err := usecase.Login(ctx, body.Email, body.Password)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, dto.AdaptTokenPairDto(tokens))
	}
}

func handleRefreshToken(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.RefreshTokenBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewAccountUsecase()
		tokens, err := usecase.Refresh(ctx, body.RefreshToken)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, dto.AdaptTokenPairDto(tokens))
	}
}

func handleLogout(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.RefreshTokenBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewAccountUsecase()
		if presentError(ctx, c, usecase.Logout(ctx, body.RefreshToken)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// Always answers 202, whether the email belongs to an account or not
func handleForgotPassword(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.ForgotPasswordBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewAccountUsecase()
		if presentError(ctx, c, usecase.RequestPasswordReset(ctx, body.Email)) {
			return
		}
		c.Status(http.StatusAccepted)
	}
}

func handleResetPassword(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.ResetPasswordBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewAccountUsecase()
		if presentError(ctx, c, usecase.ResetPassword(ctx, body.Token, body.Password)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}
