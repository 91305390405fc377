package managers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailManagerSkipsSendingInDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	mailMgr := NewMailManager()

	require.NoError(t, mailMgr.SendVerificationMail("test@example.com", "testuser", "sometoken"))
	require.NoError(t, mailMgr.SendResetMail("test@example.com", "testuser", "sometoken"))
}

func TestMailManagerUsesConfiguredBaseURL(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("PUBLIC_URL", "https://mysocial.example")

	mailMgr := NewMailManager()

	mm, ok := mailMgr.(*MailManager)
	require.True(t, ok)
	assert.Equal(t, "https://mysocial.example", mm.BaseURL)
}
