package dbmodels

import (
	"time"

	"github.com/guregu/null/v5"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

type DBWorkspaceRole struct {
	Id              string    `db:"id"`
	RoleType        string    `db:"role_type"`
	RoleName        string    `db:"role_name"`
	Description     string    `db:"description"`
	CriticalFeature string    `db:"critical_feature"`
	Permissions     []string  `db:"permissions"`
	WorkspaceId     *string   `db:"workspace_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type DBWorkspaceRoleWithUsage struct {
	DBWorkspaceRole
	UsageCount int `db:"usage_count"`
}

const TABLE_WORKSPACE_ROLES = "workspace_roles"

var WorkspaceRoleFields = utils.ColumnList[DBWorkspaceRole]()

func AdaptWorkspaceRole(db DBWorkspaceRole) (models.WorkspaceRole, error) {
	return models.WorkspaceRole{
		Id:              db.Id,
		RoleType:        models.RoleTypeFromString(db.RoleType),
		RoleName:        db.RoleName,
		Description:     db.Description,
		CriticalFeature: db.CriticalFeature,
		Permissions:     utils.Map(db.Permissions, func(p string) models.Permission { return models.Permission(p) }),
		WorkspaceId:     null.StringFromPtr(db.WorkspaceId),
		CreatedAt:       db.CreatedAt,
		UpdatedAt:       db.UpdatedAt,
	}, nil
}

func AdaptWorkspaceRoleWithUsage(db DBWorkspaceRoleWithUsage) (models.WorkspaceRoleWithUsage, error) {
	role, err := AdaptWorkspaceRole(db.DBWorkspaceRole)
	if err != nil {
		return models.WorkspaceRoleWithUsage{}, err
	}
	return models.WorkspaceRoleWithUsage{
		WorkspaceRole: role,
		UsageCount:    db.UsageCount,
	}, nil
}

// PermissionsToDb keeps an empty array rather than NULL for roles without permissions
func PermissionsToDb(permissions []models.Permission) []string {
	out := make([]string, len(permissions))
	for i, p := range permissions {
		out[i] = string(p)
	}
	return out
}
