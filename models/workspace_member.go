package models

import "time"

// WorkspaceMember references its role by id only. Use WorkspaceMemberWithRole when the
// role itself is needed.
type WorkspaceMember struct {
	Id          string
	WorkspaceId string
	UserId      UserId
	RoleId      string
	CreatedAt   time.Time
}

type WorkspaceMemberWithRole struct {
	WorkspaceMember
	Role WorkspaceRole
}

func (m WorkspaceMemberWithRole) HasPermission(p Permission) bool {
	return m.Role.HasPermission(p)
}

type WorkspaceMemberWithUser struct {
	WorkspaceMemberWithRole
	User User
}

type CreateWorkspaceMemberInput struct {
	WorkspaceId string
	UserId      UserId
	RoleId      string
}

type AssignRoleInput struct {
	MemberId string
	RoleId   string
}
