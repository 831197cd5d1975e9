package dto

import (
	"time"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

type WorkspaceRole struct {
	Id              string    `json:"id"`
	RoleType        string    `json:"role_type"`
	RoleName        string    `json:"role_name"`
	Description     string    `json:"description"`
	CriticalFeature string    `json:"critical_feature"`
	Permissions     []string  `json:"permissions"`
	IsSystem        bool      `json:"is_system"`
	CreatedAt       time.Time `json:"created_at"`
}

// The effective permissions are rendered, not the stored ones
func AdaptWorkspaceRoleDto(role models.WorkspaceRole) WorkspaceRole {
	return WorkspaceRole{
		Id:              role.Id,
		RoleType:        string(role.RoleType),
		RoleName:        role.RoleName,
		Description:     role.Description,
		CriticalFeature: role.CriticalFeature,
		Permissions:     adaptPermissions(models.PermissionsFor(role).Slice()),
		IsSystem:        role.IsSystem(),
		CreatedAt:       role.CreatedAt,
	}
}

type WorkspaceRoleWithUsage struct {
	WorkspaceRole
	UsageCount int `json:"usage_count"`
}

func AdaptWorkspaceRoleWithUsageDto(role models.WorkspaceRoleWithUsage) WorkspaceRoleWithUsage {
	return WorkspaceRoleWithUsage{
		WorkspaceRole: AdaptWorkspaceRoleDto(role.WorkspaceRole),
		UsageCount:    role.UsageCount,
	}
}

// sorted in the declaration order of the permissions, set iteration order is random
func adaptPermissions(permissions []models.Permission) []string {
	out := make([]string, 0, len(permissions))
	for _, p := range models.AllPermissions {
		for _, held := range permissions {
			if held == p {
				out = append(out, string(p))
				break
			}
		}
	}
	return out
}

func AdaptPermissionsDto(permissions []models.Permission) []string {
	return utils.Map(permissions, func(p models.Permission) string { return string(p) })
}

type CreateRoleBody struct {
	RoleName        string   `json:"role_name" binding:"required,notblank,max=50"`
	Description     string   `json:"description" binding:"max=500"`
	CriticalFeature string   `json:"critical_feature" binding:"max=500"`
	Permissions     []string `json:"permissions" binding:"dive,permission"`
}

func AdaptCreateRoleInput(body CreateRoleBody) models.CreateWorkspaceRoleInput {
	return models.CreateWorkspaceRoleInput{
		RoleName:        body.RoleName,
		Description:     body.Description,
		CriticalFeature: body.CriticalFeature,
		Permissions:     adaptPermissionInputs(body.Permissions),
	}
}

type UpdateRoleBody struct {
	RoleName        string    `json:"role_name" binding:"omitempty,notblank,max=50"`
	Description     string    `json:"description" binding:"max=500"`
	CriticalFeature string    `json:"critical_feature" binding:"max=500"`
	Permissions     *[]string `json:"permissions" binding:"omitempty,dive,permission"`
}

func AdaptUpdateRoleInput(body UpdateRoleBody) models.UpdateWorkspaceRoleInput {
	input := models.UpdateWorkspaceRoleInput{
		RoleName:        body.RoleName,
		Description:     body.Description,
		CriticalFeature: body.CriticalFeature,
	}
	if body.Permissions != nil {
		input.Permissions = adaptPermissionInputs(*body.Permissions)
	}
	return input
}

// never nil, an empty list clears the permissions of the role
func adaptPermissionInputs(permissions []string) []models.Permission {
	out := make([]models.Permission, 0, len(permissions))
	for _, p := range permissions {
		out = append(out, models.Permission(p))
	}
	return out
}
