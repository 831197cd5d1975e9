package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoicebox/backend/dto"
	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

type WorkspaceUriInput struct {
	WorkspaceId string `uri:"workspace_id" binding:"required,uuid"`
}

func handleListMyWorkspaces(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := usecasesWithCreds(ctx, uc).NewWorkspaceLifecycle()
		workspaces, err := usecase.ListMine(ctx)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"workspaces": utils.Map(workspaces, dto.AdaptWorkspaceDto)})
	}
}

func handleCreateWorkspace(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.CreateWorkspaceBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewWorkspaceLifecycle()
		workspace, err := usecase.Create(ctx, dto.AdaptCreateWorkspaceInput(body))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"workspace": dto.AdaptWorkspaceDto(workspace)})
	}
}

func handleGetWorkspace(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewWorkspaceLifecycle()
		workspace, err := usecase.Get(ctx, uri.WorkspaceId)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"workspace": dto.AdaptWorkspaceDto(workspace)})
	}
}

func handlePatchWorkspace(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}
		var body dto.UpdateWorkspaceBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewWorkspaceLifecycle()
		workspace, err := usecase.Update(ctx, uri.WorkspaceId, dto.AdaptUpdateWorkspaceInput(body))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"workspace": dto.AdaptWorkspaceDto(workspace)})
	}
}

func handleDeleteWorkspace(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewWorkspaceLifecycle()
		if presentError(ctx, c, usecase.Delete(ctx, uri.WorkspaceId)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleWorkspaceStatistics(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewStatisticsUsecase()
		statistics, err := usecase.WorkspaceStatistics(ctx, uri.WorkspaceId)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, dto.AdaptWorkspaceStatisticsDto(statistics))
	}
}
