package models

import (
	"time"

	"github.com/guregu/null/v5"
)

// Email is an inbound invoice mail, linked to a workspace through its "to" address only.
type Email struct {
	Id             string
	To             string
	From           string
	Subject        string
	Text           string
	Date           time.Time
	AttachmentKeys []string
	IsActive       bool
	CreatedAt      time.Time
}

type CreateEmailInput struct {
	To             string
	From           string
	Subject        string
	Text           string
	Date           time.Time
	AttachmentKeys []string
}

type EmailSortField string

const (
	EmailSortSubject  EmailSortField = "subject"
	EmailSortSender   EmailSortField = "from"
	EmailSortReceived EmailSortField = "date"
)

func EmailSortFieldFromString(s string) EmailSortField {
	switch EmailSortField(s) {
	case EmailSortSubject, EmailSortSender:
		return EmailSortField(s)
	default:
		return EmailSortReceived
	}
}

type EmailFilters struct {
	StartDate null.Time
	EndDate   null.Time // inclusive, the whole day is taken
	Search    string    // case insensitive match on sender or subject
}

// ParsedInboundMail is the output of the MIME parser, before attachments are stored
type ParsedInboundMail struct {
	To          string
	From        string
	Subject     string
	Text        string
	Date        time.Time
	Attachments []InboundAttachment
}

type InboundAttachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

type InboundMailConfiguration struct {
	MailDomain           string
	InboundBucketUrl     string // raw MIME objects dropped by the mail relay
	AttachmentsBucketUrl string
}
