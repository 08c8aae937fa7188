package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	t.Run("plain ascii message", func(t *testing.T) {
		msg := buildMessage("me@co.com", "alice@co.com", "Lunch?", "Want to grab lunch tomorrow?")

		header, body, found := strings.Cut(msg, "\r\n\r\n")
		require.True(t, found, "message must have a blank line between headers and body")
		assert.Contains(t, header, "From: me@co.com")
		assert.Contains(t, header, "To: alice@co.com")
		assert.Contains(t, header, "Subject: Lunch?")
		assert.Contains(t, header, "Content-Type: text/plain; charset=\"UTF-8\"")
		assert.Equal(t, "Want to grab lunch tomorrow?", body)
	})

	t.Run("omits From header when sender is unset", func(t *testing.T) {
		msg := buildMessage("", "alice@co.com", "s", "b")
		assert.NotContains(t, msg, "From:")
	})

	t.Run("non-ascii subject is encoded", func(t *testing.T) {
		msg := buildMessage("", "alice@co.com", "Déjeuner?", "b")
		assert.Contains(t, msg, "=?utf-8?")
		assert.NotContains(t, msg, "Subject: Déjeuner?")
	})
}

func TestEncodeRaw(t *testing.T) {
	raw := encodeRaw("To: alice@co.com\r\n\r\nhi")

	// Gmail requires unpadded base64url.
	assert.NotContains(t, raw, "=")
	assert.NotContains(t, raw, "+")
	assert.NotContains(t, raw, "/")

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Equal(t, "To: alice@co.com\r\n\r\nhi", string(decoded))
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{TokenPath: "t"}.Validate())
	assert.Error(t, Config{CredentialsPath: "c"}.Validate())
	assert.NoError(t, Config{CredentialsPath: "c", TokenPath: "t"}.Validate())
}
