package tokens

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	issuer := NewIssuer(DefaultTTL)

	token, err := issuer.Issue()
	require.NoError(t, err)

	assert.Len(t, token.Raw, 2*rawLen)
	_, err = hex.DecodeString(token.Raw)
	assert.NoError(t, err, "raw token should be hex")

	assert.NotEqual(t, token.Raw, token.Digest, "digest must never equal the raw token")
	assert.Equal(t, DigestOf(token.Raw), token.Digest)
}

func TestIssueUniqueness(t *testing.T) {
	issuer := NewIssuer(DefaultTTL)
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := issuer.Issue()
		require.NoError(t, err)
		assert.False(t, seen[token.Raw], "raw tokens must not repeat")
		seen[token.Raw] = true
	}
}

func TestIssueExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuerWithClock(15*time.Minute, func() time.Time { return now })

	token, err := issuer.Issue()
	require.NoError(t, err)

	assert.Equal(t, now.Add(15*time.Minute), token.ExpiresAt)
}

func TestDigestOfIsDeterministic(t *testing.T) {
	raw := "0123456789abcdef0123456789abcdef01234567"

	assert.Equal(t, DigestOf(raw), DigestOf(raw))
	assert.NotEqual(t, DigestOf(raw), DigestOf(raw+"00"))
	assert.Len(t, DigestOf(raw), 64)
}
