package dbmodels

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

type DBWorkspaceMember struct {
	Id          string    `db:"id"`
	WorkspaceId string    `db:"workspace_id"`
	UserId      string    `db:"user_id"`
	RoleId      string    `db:"role_id"`
	CreatedAt   time.Time `db:"created_at"`
}

const TABLE_WORKSPACE_MEMBERS = "workspace_members"

var WorkspaceMemberFields = utils.ColumnList[DBWorkspaceMember]()

func AdaptWorkspaceMember(db DBWorkspaceMember) (models.WorkspaceMember, error) {
	return models.WorkspaceMember{
		Id:          db.Id,
		WorkspaceId: db.WorkspaceId,
		UserId:      models.UserId(db.UserId),
		RoleId:      db.RoleId,
		CreatedAt:   db.CreatedAt,
	}, nil
}

// DBWorkspaceMemberWithRole is a member joined with its role. Role columns are aliased with a
// "role_" prefix.
type DBWorkspaceMemberWithRole struct {
	DBWorkspaceMember
	RoleType            string    `db:"role_type"`
	RoleName            string    `db:"role_name"`
	RoleDescription     string    `db:"role_description"`
	RoleCriticalFeature string    `db:"role_critical_feature"`
	RolePermissions     []string  `db:"role_permissions"`
	RoleWorkspaceId     *string   `db:"role_workspace_id"`
	RoleCreatedAt       time.Time `db:"role_created_at"`
	RoleUpdatedAt       time.Time `db:"role_updated_at"`
}

type DBWorkspaceMemberWithUser struct {
	DBWorkspaceMemberWithRole
	UserName           string      `db:"user_name"`
	UserEmail          pgtype.Text `db:"user_email"`
	UserAbout          string      `db:"user_about"`
	UserProfilePicture string      `db:"user_profile_picture"`
}

func AdaptWorkspaceMemberWithRole(db DBWorkspaceMemberWithRole) (models.WorkspaceMemberWithRole, error) {
	member, err := AdaptWorkspaceMember(db.DBWorkspaceMember)
	if err != nil {
		return models.WorkspaceMemberWithRole{}, err
	}
	role, err := AdaptWorkspaceRole(DBWorkspaceRole{
		Id:              db.RoleId,
		RoleType:        db.RoleType,
		RoleName:        db.RoleName,
		Description:     db.RoleDescription,
		CriticalFeature: db.RoleCriticalFeature,
		Permissions:     db.RolePermissions,
		WorkspaceId:     db.RoleWorkspaceId,
		CreatedAt:       db.RoleCreatedAt,
		UpdatedAt:       db.RoleUpdatedAt,
	})
	if err != nil {
		return models.WorkspaceMemberWithRole{}, err
	}
	return models.WorkspaceMemberWithRole{WorkspaceMember: member, Role: role}, nil
}

func AdaptWorkspaceMemberWithUser(db DBWorkspaceMemberWithUser) (models.WorkspaceMemberWithUser, error) {
	memberWithRole, err := AdaptWorkspaceMemberWithRole(db.DBWorkspaceMemberWithRole)
	if err != nil {
		return models.WorkspaceMemberWithUser{}, err
	}
	user := models.User{
		UserId:         memberWithRole.UserId,
		Name:           db.UserName,
		About:          db.UserAbout,
		ProfilePicture: db.UserProfilePicture,
	}
	if db.UserEmail.Valid {
		user.Email = db.UserEmail.String
	}
	return models.WorkspaceMemberWithUser{WorkspaceMemberWithRole: memberWithRole, User: user}, nil
}
