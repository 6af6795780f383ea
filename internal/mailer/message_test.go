package mailer

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationMessage(t *testing.T) {
	msg := VerificationMessage("no-reply@example.com", "marcus@example.com", "Marcus", "A1b2C3")

	assert.Equal(t, "no-reply@example.com", msg.From)
	assert.Equal(t, "marcus@example.com", msg.To)
	assert.Equal(t, "Login Verification Code", msg.Subject)
	assert.Contains(t, msg.HTML, "A1b2C3")
	assert.Contains(t, msg.Text, "A1b2C3")
}

func TestEncodeProducesBase64URLMIME(t *testing.T) {
	msg := VerificationMessage("no-reply@example.com", "marcus@example.com", "Marcus", "A1b2C3")

	raw, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)

	body := string(decoded)
	assert.Contains(t, body, "From: no-reply@example.com")
	assert.Contains(t, body, "To: Marcus <marcus@example.com>")
	assert.Contains(t, body, "Subject: Login Verification Code")
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "text/plain; charset=UTF-8")
	assert.Contains(t, body, "text/html; charset=UTF-8")
	assert.Contains(t, body, "A1b2C3")
}

func TestEncodeWithoutRecipientName(t *testing.T) {
	msg := Message{From: "a@example.com", To: "b@example.com", Subject: "s", HTML: "<p>h</p>", Text: "t"}

	raw, err := msg.Encode()
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "To: b@example.com")
}
