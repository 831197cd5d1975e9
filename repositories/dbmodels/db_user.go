package dbmodels

import (
	"time"

	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

type DBUser struct {
	Id             string             `db:"id"`
	Name           string             `db:"name"`
	Email          pgtype.Text        `db:"email"`
	PasswordHash   string             `db:"password_hash"`
	Role           string             `db:"role"`
	About          string             `db:"about"`
	ProfilePicture string             `db:"profile_picture"`
	EmailVerified  bool               `db:"email_verified"`
	AccountDeleted bool               `db:"account_deleted"`
	LastSeenAt     pgtype.Timestamptz `db:"last_seen_at"`
	CreatedAt      time.Time          `db:"created_at"`
	UpdatedAt      time.Time          `db:"updated_at"`
}

const TABLE_USERS = "users"

var UserFields = utils.ColumnList[DBUser]()

func AdaptUser(db DBUser) (models.User, error) {
	user := models.User{
		UserId:         models.UserId(db.Id),
		Name:           db.Name,
		PasswordHash:   db.PasswordHash,
		Role:           models.UserRoleFromString(db.Role),
		About:          db.About,
		ProfilePicture: db.ProfilePicture,
		EmailVerified:  db.EmailVerified,
		AccountDeleted: db.AccountDeleted,
		CreatedAt:      db.CreatedAt,
		UpdatedAt:      db.UpdatedAt,
	}
	if db.Email.Valid {
		user.Email = db.Email.String
	}
	if db.LastSeenAt.Valid {
		user.LastSeenAt = null.TimeFrom(db.LastSeenAt.Time)
	}
	return user, nil
}
