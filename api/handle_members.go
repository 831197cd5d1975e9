package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoicebox/backend/dto"
	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

type MemberUriInput struct {
	WorkspaceId string `uri:"workspace_id" binding:"required,uuid"`
	MemberId    string `uri:"member_id" binding:"required,uuid"`
}

func handleListMembers(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewMembershipEngine()
		members, err := usecase.ListMembers(ctx, uri.WorkspaceId)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"members": utils.Map(members, dto.AdaptWorkspaceMemberWithUserDto)})
	}
}

func handleInviteMember(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}
		var body dto.InviteMemberBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewMembershipEngine()
		if presentError(ctx, c, usecase.Invite(ctx, uri.WorkspaceId, body.Email)) {
			return
		}
		c.Status(http.StatusAccepted)
	}
}

func handleAcceptInvite(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.TokenBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewMembershipEngine()
		member, err := usecase.AcceptInvite(ctx, body.Token)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"member": dto.AdaptWorkspaceMemberDto(member)})
	}
}

func handleAssignMemberRole(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}
		var body dto.AssignRoleBody
		if err := c.ShouldBindJSON(&body); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewMembershipEngine()
		member, err := usecase.AssignRole(ctx, uri.WorkspaceId, dto.AdaptAssignRoleInput(body))
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"member": dto.AdaptWorkspaceMemberDto(member)})
	}
}

func handleRemoveMember(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri MemberUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewMembershipEngine()
		if presentError(ctx, c, usecase.RemoveMember(ctx, uri.WorkspaceId, uri.MemberId)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleLeaveWorkspace(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewMembershipEngine()
		if presentError(ctx, c, usecase.Leave(ctx, uri.WorkspaceId)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleGetMyMembership(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri WorkspaceUriInput
		if err := c.ShouldBindUri(&uri); presentError(ctx, c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewMembershipEngine()
		member, err := usecase.GetMyMembership(ctx, uri.WorkspaceId)
		if presentError(ctx, c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"member": dto.AdaptWorkspaceMemberDto(member)})
	}
}
