package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoicebox/backend/dto"
	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

type RoleUriInput struct {
	WorkspaceId string `uri:"workspace_id" binding:"required,uuid"`
	RoleId      string `uri:"role_id" binding:"required,uuid"`
}

func handleAssignablePermissions(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		usecase := usecasesWithCreds(c.Request.Context(), uc).NewRoleUsecase()
		c.JSON(http.StatusOK, gin.H{"permissions": dto.AdaptPermissionsDto(usecase.AssignablePermissions())})
	}
}

func handleListWorkspaceRoles(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewRoleUsecase()
		roles, err := usecase.ListWorkspaceRoles(ctx, uri.WorkspaceId)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"roles": utils.Map(roles, dto.AdaptWorkspaceRoleWithUsageDto)})
	}
}

func handleCreateWorkspaceRole(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}
		var body dto.CreateRoleBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewRoleUsecase()
		role, err := usecase.CreateCustomRole(ctx, uri.WorkspaceId, dto.AdaptCreateRoleInput(body))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"role": dto.AdaptWorkspaceRoleDto(role)})
	}
}

func handlePatchWorkspaceRole(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri RoleUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}
		var body dto.UpdateRoleBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewRoleUsecase()
		role, err := usecase.UpdateCustomRole(ctx, uri.WorkspaceId, uri.RoleId, dto.AdaptUpdateRoleInput(body))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": dto.AdaptWorkspaceRoleDto(role)})
	}
}

func handleDeleteWorkspaceRole(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri RoleUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewRoleUsecase()
		if presentError(ctx, c, usecase.DeleteCustomRole(ctx, uri.WorkspaceId, uri.RoleId)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}
