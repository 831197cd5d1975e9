package emails

import (
	"bytes"
	"html"
	"io"
	"mime"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"

	"github.com/invoicebox/backend/models"
)

var htmlToText = bluemonday.StrictPolicy()

// ParseInboundMail reads a raw MIME message. The recipient is the first To or Cc address of
// the mail domain, falling back to the first To address.
func ParseInboundMail(r io.Reader, mailDomain string) (models.ParsedInboundMail, error) {
	reader, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return models.ParsedInboundMail{}, errors.Wrap(models.BadParameterError, err.Error())
	}
	defer reader.Close()

	parsed := models.ParsedInboundMail{}
	header := reader.Header

	if parsed.To, err = recipient(header, mailDomain); err != nil {
		return models.ParsedInboundMail{}, err
	}
	if from, err := header.AddressList("From"); err == nil && len(from) > 0 {
		parsed.From = strings.ToLower(from[0].Address)
	}
	if parsed.Subject, err = header.Subject(); err != nil {
		parsed.Subject = header.Get("Subject")
	}
	// search terms are NFC too, so that decomposed accents still match
	parsed.Subject = norm.NFC.String(parsed.Subject)
	if parsed.Date, err = header.Date(); err != nil || parsed.Date.IsZero() {
		parsed.Date = time.Now()
	}
	parsed.Date = parsed.Date.UTC()

	var plainText, htmlText string
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return models.ParsedInboundMail{}, errors.Wrap(err, "could not read mail part")
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return models.ParsedInboundMail{}, errors.Wrap(err, "could not read mail body")
			}
			switch contentType {
			case "text/plain":
				if plainText == "" {
					plainText = string(body)
				}
			case "text/html":
				if htmlText == "" {
					htmlText = string(body)
				}
			}
		case *mail.AttachmentHeader:
			content, err := io.ReadAll(part.Body)
			if err != nil {
				return models.ParsedInboundMail{}, errors.Wrap(err, "could not read attachment")
			}
			contentType, _, _ := h.ContentType()
			fileName, _ := h.Filename()
			parsed.Attachments = append(parsed.Attachments, models.InboundAttachment{
				FileName:    attachmentFileName(fileName, contentType, len(parsed.Attachments)),
				ContentType: contentType,
				Content:     content,
			})
		}
	}

	parsed.Text = strings.TrimSpace(plainText)
	if parsed.Text == "" && htmlText != "" {
		parsed.Text = sanitizeHtml(htmlText)
	}
	return parsed, nil
}

func recipient(header mail.Header, mailDomain string) (string, error) {
	var candidates []*mail.Address
	for _, key := range []string{"To", "Cc"} {
		addresses, err := header.AddressList(key)
		if err != nil {
			continue
		}
		candidates = append(candidates, addresses...)
	}
	if len(candidates) == 0 {
		return "", errors.Wrap(models.BadParameterError, "mail has no recipient")
	}
	for _, address := range candidates {
		if models.IsWorkspaceDomainEmail(address.Address, mailDomain) {
			return strings.ToLower(address.Address), nil
		}
	}
	return strings.ToLower(candidates[0].Address), nil
}

// sanitizeHtml keeps the text of an html body, with whitespace collapsed
func sanitizeHtml(body string) string {
	text := html.UnescapeString(htmlToText.Sanitize(body))
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// attachmentFileName makes a file name usable as the last segment of a storage key
func attachmentFileName(fileName, contentType string, index int) string {
	fileName = strings.TrimSpace(path.Base(strings.ReplaceAll(fileName, "\\", "/")))
	if fileName == "" || fileName == "." || fileName == "/" {
		fileName = "attachment-" + strconv.Itoa(index+1)
		if extensions, _ := mime.ExtensionsByType(contentType); len(extensions) > 0 {
			fileName += extensions[0]
		}
	}
	return fileName
}

func readAllLimited(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, errors.Wrapf(models.BadParameterError, "mail is larger than %d bytes", limit)
	}
	return buf.Bytes(), nil
}
