package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager(t *testing.T) JWTMgr {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return NewJWTManager(privateKey, publicKey)
}

func TestGenerateAndAuthenticate(t *testing.T) {
	jwtMgr := newTestJWTManager(t)
	userId := uuid.New()

	token, err := jwtMgr.GenerateJWT(userId.String())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	authenticatedId, ok := jwtMgr.Authenticate(token)
	require.True(t, ok)
	assert.Equal(t, userId, authenticatedId)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	jwtMgr := newTestJWTManager(t)

	_, ok := jwtMgr.Authenticate("not.a.jwt")
	assert.False(t, ok)
}

func TestAuthenticateRejectsForeignKey(t *testing.T) {
	jwtMgr := newTestJWTManager(t)
	otherMgr := newTestJWTManager(t)

	token, err := otherMgr.GenerateJWT(uuid.New().String())
	require.NoError(t, err)

	_, ok := jwtMgr.Authenticate(token)
	assert.False(t, ok)
}
