package gmail

import (
	"encoding/base64"
	"mime"
	"strings"
)

// buildMessage assembles a single-part plain-text RFC 2822 message. The
// Gmail API takes the whole message as one base64url blob, so there is no
// MIME multipart machinery here.
func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	if from != "" {
		b.WriteString("From: " + from + "\r\n")
	}
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

// encodeRaw produces the base64url payload the Gmail API expects in the
// Raw field of a message.
func encodeRaw(message string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(message))
}
