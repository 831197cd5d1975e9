package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoicebox/backend/dto"
	"github.com/invoicebox/backend/usecases"
)

func handleGetMe(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := usecasesWithCreds(ctx, uc).NewUserUsecase()
		user, err := usecase.Me(ctx)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": dto.AdaptUserDto(user)})
	}
}

func handlePatchMe(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.UpdateMeBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewUserUsecase()
		user, err := usecase.UpdateMe(ctx, body.Name, body.About)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": dto.AdaptUserDto(user)})
	}
}

func handleDeleteMe(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := usecasesWithCreds(ctx, uc).NewUserUsecase()
		if presentError(ctx, c, usecase.DeleteMe(ctx)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}
