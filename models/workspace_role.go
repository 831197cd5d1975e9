package models

import (
	"strings"
	"time"

	"github.com/guregu/null/v5"
	"github.com/hashicorp/go-set/v2"
)

// RoleType orders the kinds of workspace roles, from the most senior to the least senior.
type RoleType string

const (
	RoleTypeOwner    RoleType = "owner"
	RoleTypeAdmin    RoleType = "admin"
	RoleTypeEmployee RoleType = "employee"
	RoleTypeGuest    RoleType = "guest"
	RoleTypeUnknown  RoleType = ""
)

// System roles are shared by every workspace and exist exactly once.
var SystemRoleTypes = []RoleType{RoleTypeOwner, RoleTypeAdmin, RoleTypeGuest}

func RoleTypeFromString(s string) RoleType {
	switch RoleType(s) {
	case RoleTypeOwner, RoleTypeAdmin, RoleTypeEmployee, RoleTypeGuest:
		return RoleType(s)
	default:
		return RoleTypeUnknown
	}
}

func (r RoleType) IsSystem() bool {
	return r == RoleTypeOwner || r == RoleTypeAdmin || r == RoleTypeGuest
}

// RoleHierarchyRank returns the seniority of a role type: lower is more senior.
func RoleHierarchyRank(roleType RoleType) int {
	switch roleType {
	case RoleTypeOwner:
		return 0
	case RoleTypeAdmin:
		return 1
	case RoleTypeEmployee:
		return 2
	case RoleTypeGuest:
		return 3
	default:
		return 4
	}
}

// HasHigherOrEqualRank is true when a holder of "requestor" may act on a holder of "target".
// Peers of the same rank may act on each other.
func HasHigherOrEqualRank(requestor, target RoleType) bool {
	return RoleHierarchyRank(requestor) <= RoleHierarchyRank(target)
}

type Permission string

const (
	PermissionAddEmployee     Permission = "addEmployee"
	PermissionDeleteEmployee  Permission = "deleteEmployee"
	PermissionEditWorkspace   Permission = "editWorkspace"
	PermissionEditRole        Permission = "editRole"
	PermissionDeleteWorkspace Permission = "deleteWorkspace"
)

var (
	AllPermissions = []Permission{
		PermissionAddEmployee,
		PermissionDeleteEmployee,
		PermissionEditWorkspace,
		PermissionEditRole,
		PermissionDeleteWorkspace,
	}
	AdminPermissions = []Permission{
		PermissionAddEmployee,
		PermissionDeleteEmployee,
		PermissionEditWorkspace,
	}
	// Permissions that may be granted to a custom role. editRole and deleteWorkspace stay owner-only.
	AssignablePermissions = []Permission{
		PermissionAddEmployee,
		PermissionDeleteEmployee,
		PermissionEditWorkspace,
	}
)

func IsAssignablePermission(p Permission) bool {
	for _, assignable := range AssignablePermissions {
		if assignable == p {
			return true
		}
	}
	return false
}

type WorkspaceRole struct {
	Id              string
	RoleType        RoleType
	RoleName        string
	Description     string
	CriticalFeature string
	Permissions     []Permission
	WorkspaceId     null.String // null for system roles
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r WorkspaceRole) IsSystem() bool {
	return !r.WorkspaceId.Valid
}

// BelongsTo is true if the role can be held by a member of the given workspace
func (r WorkspaceRole) BelongsTo(workspaceId string) bool {
	return r.IsSystem() || r.WorkspaceId.String == workspaceId
}

// PermissionsFor returns the effective permissions of a role: owner and admin have fixed
// sets, other roles have what is stored on them.
func PermissionsFor(role WorkspaceRole) *set.Set[Permission] {
	switch role.RoleType {
	case RoleTypeOwner:
		return set.From(AllPermissions)
	case RoleTypeAdmin:
		return set.From(AdminPermissions)
	default:
		return set.From(role.Permissions)
	}
}

func (r WorkspaceRole) HasPermission(p Permission) bool {
	return PermissionsFor(r).Contains(p)
}

type WorkspaceRoleWithUsage struct {
	WorkspaceRole
	UsageCount int
}

type CreateWorkspaceRoleInput struct {
	RoleName        string
	Description     string
	CriticalFeature string
	Permissions     []Permission
}

type UpdateWorkspaceRoleInput struct {
	RoleName        string
	Description     string
	CriticalFeature string
	Permissions     []Permission // nil keeps the stored permissions
}

// IsReservedRoleName is true for the names of the system roles, compared case-insensitively.
func IsReservedRoleName(name string) bool {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, t := range SystemRoleTypes {
		if normalized == string(t) {
			return true
		}
	}
	return false
}

type defaultRoleDefinition struct {
	RoleName        string
	Description     string
	CriticalFeature string
}

var DefaultRoleDefinitions = map[RoleType]defaultRoleDefinition{
	RoleTypeOwner: {
		RoleName:        string(RoleTypeOwner),
		Description:     "Owner of the workspace",
		CriticalFeature: "Full access, including role edition and workspace deletion",
	},
	RoleTypeAdmin: {
		RoleName:        string(RoleTypeAdmin),
		Description:     "Administrator of the workspace",
		CriticalFeature: "Manages members and workspace settings",
	},
	RoleTypeGuest: {
		RoleName:        string(RoleTypeGuest),
		Description:     "Newly joined member",
		CriticalFeature: "Read-only access to the workspace invoices",
	},
}

// DefaultRole builds the system role of a given type, as it is created at startup
func DefaultRole(roleType RoleType) WorkspaceRole {
	def := DefaultRoleDefinitions[roleType]
	var permissions []Permission
	switch roleType {
	case RoleTypeOwner:
		permissions = AllPermissions
	case RoleTypeAdmin:
		permissions = AdminPermissions
	default:
		permissions = []Permission{}
	}
	return WorkspaceRole{
		RoleType:        roleType,
		RoleName:        def.RoleName,
		Description:     def.Description,
		CriticalFeature: def.CriticalFeature,
		Permissions:     permissions,
	}
}
