package dbmodels

import (
	"time"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

type DBEmail struct {
	Id             string    `db:"id"`
	To             string    `db:"to_address"`
	From           string    `db:"from_address"`
	Subject        string    `db:"subject"`
	Text           string    `db:"text"`
	ReceivedAt     time.Time `db:"received_at"`
	AttachmentKeys []string  `db:"attachment_keys"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`
}

const TABLE_EMAILS = "emails"

var EmailFields = utils.ColumnList[DBEmail]()

func AdaptEmail(db DBEmail) (models.Email, error) {
	attachmentKeys := db.AttachmentKeys
	if attachmentKeys == nil {
		attachmentKeys = []string{}
	}
	return models.Email{
		Id:             db.Id,
		To:             db.To,
		From:           db.From,
		Subject:        db.Subject,
		Text:           db.Text,
		Date:           db.ReceivedAt,
		AttachmentKeys: attachmentKeys,
		IsActive:       db.IsActive,
		CreatedAt:      db.CreatedAt,
	}, nil
}
