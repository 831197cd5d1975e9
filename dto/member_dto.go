package dto

import (
	"time"

	"github.com/invoicebox/backend/models"
)

type WorkspaceMember struct {
	Id          string        `json:"id"`
	WorkspaceId string        `json:"workspace_id"`
	UserId      string        `json:"user_id"`
	Role        WorkspaceRole `json:"role"`
	CreatedAt   time.Time     `json:"created_at"`
}

func AdaptWorkspaceMemberDto(member models.WorkspaceMemberWithRole) WorkspaceMember {
	return WorkspaceMember{
		Id:          member.Id,
		WorkspaceId: member.WorkspaceId,
		UserId:      string(member.UserId),
		Role:        AdaptWorkspaceRoleDto(member.Role),
		CreatedAt:   member.CreatedAt,
	}
}

type WorkspaceMemberWithUser struct {
	WorkspaceMember
	Name  string `json:"name"`
	Email string `json:"email"`
}

func AdaptWorkspaceMemberWithUserDto(member models.WorkspaceMemberWithUser) WorkspaceMemberWithUser {
	return WorkspaceMemberWithUser{
		WorkspaceMember: AdaptWorkspaceMemberDto(member.WorkspaceMemberWithRole),
		Name:            member.User.Name,
		Email:           member.User.Email,
	}
}

type InviteMemberBody struct {
	Email string `json:"email" binding:"required,email"`
}

type AssignRoleBody struct {
	MemberId string `json:"member_id" binding:"required,uuid"`
	RoleId   string `json:"role_id" binding:"required,uuid"`
}

func AdaptAssignRoleInput(body AssignRoleBody) models.AssignRoleInput {
	return models.AssignRoleInput{
		MemberId: body.MemberId,
		RoleId:   body.RoleId,
	}
}
