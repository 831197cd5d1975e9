package dto

import (
	"strings"
	"time"

	"github.com/guregu/null/v5"
	"golang.org/x/text/unicode/norm"

	"github.com/invoicebox/backend/models"
)

type Invoice struct {
	Id             string    `json:"id"`
	To             string    `json:"to"`
	From           string    `json:"from"`
	Subject        string    `json:"subject"`
	Text           string    `json:"text"`
	Date           time.Time `json:"date"`
	AttachmentKeys []string  `json:"attachment_keys"`
}

func AdaptInvoiceDto(email models.Email) Invoice {
	keys := email.AttachmentKeys
	if keys == nil {
		keys = []string{}
	}
	return Invoice{
		Id:             email.Id,
		To:             email.To,
		From:           email.From,
		Subject:        email.Subject,
		Text:           email.Text,
		Date:           email.Date,
		AttachmentKeys: keys,
	}
}

type InvoiceFilters struct {
	StartDate time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   time.Time `form:"end_date" time_format:"2006-01-02"`
	Search    string    `form:"search" binding:"max=200"`
}

func AdaptInvoiceFilters(filters InvoiceFilters) models.EmailFilters {
	out := models.EmailFilters{Search: norm.NFC.String(strings.TrimSpace(filters.Search))}
	if !filters.StartDate.IsZero() {
		out.StartDate = null.TimeFrom(filters.StartDate)
	}
	if !filters.EndDate.IsZero() {
		out.EndDate = null.TimeFrom(filters.EndDate)
	}
	return out
}

type AttachmentQuery struct {
	Key string `form:"key" binding:"required"`
}

type AttachmentUrl struct {
	Url string `json:"url"`
}

// InboundMailBody is posted by the mail relay once the raw message is in the inbound bucket
type InboundMailBody struct {
	ObjectKey string `json:"object_key" binding:"required"`
}
