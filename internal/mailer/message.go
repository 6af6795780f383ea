package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// Message is a composed email with an HTML body and a plain-text
// alternative.
type Message struct {
	From    string
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// VerificationMessage composes the registration verification email.
func VerificationMessage(from, to, toName, code string) Message {
	return Message{
		From:    from,
		To:      to,
		ToName:  toName,
		Subject: "Login Verification Code",
		HTML:    fmt.Sprintf("<h2><u>Your verification code is</u>:<b> %s</b></h2>", code),
		Text:    fmt.Sprintf("Your verification code is: %s", code),
	}
}

// Encode renders the message as a raw MIME document and base64url-encodes
// it, the form the provider's send endpoint expects.
func (m Message) Encode() (string, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	if m.ToName != "" {
		fmt.Fprintf(&buf, "To: %s <%s>\r\n", m.ToName, m.To)
	} else {
		fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", m.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")

	w := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", w.Boundary())

	text, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create text part: %w", err)
	}
	if _, err := text.Write([]byte(m.Text)); err != nil {
		return "", fmt.Errorf("failed to write text part: %w", err)
	}

	html, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create html part: %w", err)
	}
	if _, err := html.Write([]byte(m.HTML)); err != nil {
		return "", fmt.Errorf("failed to write html part: %w", err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close message body: %w", err)
	}

	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}
