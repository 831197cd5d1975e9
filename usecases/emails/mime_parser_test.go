package emails

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicebox/backend/models"
)

const multipartMail = "From: Billing <Billing@Supplier.com>\r\n" +
	"To: someone@example.com\r\n" +
	"Cc: acme@invoices.test\r\n" +
	"Subject: Invoice 2024-061\r\n" +
	"Date: Mon, 03 Jun 2024 10:15:00 +0200\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"XYZ\"\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Please find our invoice attached.\r\n" +
	"--XYZ\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=\"../invoice.pdf\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"JVBERi0xLjQ=\r\n" +
	"--XYZ--\r\n"

const htmlOnlyMail = "From: noreply@shop.com\r\n" +
	"To: ACME@invoices.test\r\n" +
	"Subject: Your receipt\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><body><h1>Receipt</h1>\n<p>Total: <b>42&nbsp;&euro;</b></p><script>alert(1)</script></body></html>\r\n"

func TestParseInboundMail_Multipart(t *testing.T) {
	parsed, err := ParseInboundMail(strings.NewReader(multipartMail), "invoices.test")
	require.NoError(t, err)

	assert.Equal(t, "acme@invoices.test", parsed.To)
	assert.Equal(t, "billing@supplier.com", parsed.From)
	assert.Equal(t, "Invoice 2024-061", parsed.Subject)
	assert.Equal(t, time.Date(2024, time.June, 3, 8, 15, 0, 0, time.UTC), parsed.Date)
	assert.Equal(t, "Please find our invoice attached.", parsed.Text)
	require.Len(t, parsed.Attachments, 1)
	assert.Equal(t, models.InboundAttachment{
		FileName:    "invoice.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4"),
	}, parsed.Attachments[0])
}

func TestParseInboundMail_HtmlOnly(t *testing.T) {
	parsed, err := ParseInboundMail(strings.NewReader(htmlOnlyMail), "invoices.test")
	require.NoError(t, err)

	assert.Equal(t, "acme@invoices.test", parsed.To)
	assert.NotContains(t, parsed.Text, "<")
	assert.NotContains(t, parsed.Text, "alert")
	assert.Contains(t, parsed.Text, "Receipt")
	assert.Contains(t, parsed.Text, "Total:")
	assert.Empty(t, parsed.Attachments)
}

func TestParseInboundMail_SubjectIsNormalized(t *testing.T) {
	raw := "To: acme@invoices.test\r\n" +
		"Subject: Facture de\u0301cembre\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"body\r\n"
	parsed, err := ParseInboundMail(strings.NewReader(raw), "invoices.test")
	require.NoError(t, err)
	assert.Equal(t, "Facture d\u00e9cembre", parsed.Subject)
}

func TestParseInboundMail_NoRecipient(t *testing.T) {
	_, err := ParseInboundMail(strings.NewReader("Subject: hello\r\n\r\nbody\r\n"), "invoices.test")
	assert.ErrorIs(t, err, models.BadParameterError)
}

func TestAttachmentFileName(t *testing.T) {
	assert.Equal(t, "invoice.pdf", attachmentFileName("C:\\Users\\me\\invoice.pdf", "application/pdf", 0))
	assert.Equal(t, "invoice.pdf", attachmentFileName("../../invoice.pdf", "application/pdf", 0))
	assert.True(t, strings.HasPrefix(attachmentFileName("", "application/octet-stream", 1), "attachment-2"))
}
