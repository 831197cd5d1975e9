package dbmodels

import (
	"time"

	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

type DBWorkspace struct {
	Id        string             `db:"id"`
	Name      string             `db:"name"`
	Email     string             `db:"email"`
	About     string             `db:"about"`
	Picture   string             `db:"picture"`
	CreatedAt time.Time          `db:"created_at"`
	UpdatedAt time.Time          `db:"updated_at"`
	DeletedAt pgtype.Timestamptz `db:"deleted_at"`
}

const TABLE_WORKSPACES = "workspaces"

var WorkspaceFields = utils.ColumnList[DBWorkspace]()

func AdaptWorkspace(db DBWorkspace) (models.Workspace, error) {
	workspace := models.Workspace{
		Id:        db.Id,
		Name:      db.Name,
		Email:     db.Email,
		About:     db.About,
		Picture:   db.Picture,
		CreatedAt: db.CreatedAt,
		UpdatedAt: db.UpdatedAt,
	}
	if db.DeletedAt.Valid {
		workspace.DeletedAt = null.TimeFrom(db.DeletedAt.Time)
	}
	return workspace, nil
}
