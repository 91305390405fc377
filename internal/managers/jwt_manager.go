package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"mysocial-server/internal/schemas"
	"mysocial-server/internal/utils"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// sessionTTL is how long a login session stays valid.
const sessionTTL = 24 * time.Hour

// JWTMgr handles session token generation, validation and the session middleware.
type JWTMgr interface {
	GenerateJWT(userId string) (string, error)
	ValidateJWT(tokenString string) (jwt.Claims, error)
	Authenticate(tokenString string) (uuid.UUID, bool)
	SessionMiddleware() gin.HandlerFunc
	SessionTTL() time.Duration
}

// JWTManager signs and validates session tokens with an Ed25519 key pair.
type JWTManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// NewJWTManager creates a new JWTManager with the given key pair.
func NewJWTManager(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey) JWTMgr {
	return &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
	}
}

// NewJWTManagerFromFile loads the key pair from KEY_PAIR_PATH, generating and
// persisting a fresh one on first start.
func NewJWTManagerFromFile() (JWTMgr, error) {
	path := os.Getenv("KEY_PAIR_PATH")
	if path == "" {
		path = "keypair.bin"
	}

	privateKey, publicKey, err := loadKeyPair(path)
	if err != nil {
		// No key yet for initial setup, generate a new key pair
		publicKey, privateKey, err = ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}

		if err := saveKeyPair(privateKey, publicKey, path); err != nil {
			return nil, err
		}
	}

	return NewJWTManager(privateKey, publicKey), nil
}

// SessionTTL returns the session validity window, used for the cookie max-age.
func (jm *JWTManager) SessionTTL() time.Duration {
	return sessionTTL
}

// GenerateJWT generates a new session token for the given user.
func (jm *JWTManager) GenerateJWT(userId string) (string, error) {
	claims := jwt.MapClaims{
		"iss": "mysocial.app",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(sessionTTL).Unix(),
		"sub": userId,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(jm.privateKey)
}

// ValidateJWT validates the given token and returns the claims if valid.
func (jm *JWTManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, fmt.Errorf("invalid signing method")
		}

		return jm.publicKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return token.Claims, nil
}

// Authenticate resolves a session token to the user ID it was issued for.
// It reports false for missing, malformed, forged or expired tokens.
func (jm *JWTManager) Authenticate(tokenString string) (uuid.UUID, bool) {
	if tokenString == "" {
		return uuid.Nil, false
	}

	claims, err := jm.ValidateJWT(tokenString)
	if err != nil {
		return uuid.Nil, false
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, false
	}

	userId, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, false
	}

	return userId, true
}

// SessionMiddleware resolves the session cookie to a user ID and stores it in
// the request context. Requests without a valid session are rejected.
func (jm *JWTManager) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookieName)
		if err != nil {
			abortUnauthorized(c, errors.New("missing session cookie"))
			return
		}

		userId, ok := jm.Authenticate(cookie)
		if !ok {
			abortUnauthorized(c, errors.New("invalid session token"))
			return
		}

		c.Set(utils.UserIdKey.String(), userId)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	utils.LogMessageWithFieldsAndError(c, "debug", "Rejecting request", err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, &schemas.ErrorDTO{Error: *schemas.Unauthorized})
}

// saveKeyPair saves the key pair to the specified file.
func saveKeyPair(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, path string) error {
	keyPairBytes := append(privateKey, publicKey...)
	return os.WriteFile(path, keyPairBytes, 0600)
}

// loadKeyPair loads the key pair from the specified file.
func loadKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	keyPairBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	// The key pair is the concatenation of private and public keys
	if len(keyPairBytes) != ed25519.PrivateKeySize+ed25519.PublicKeySize {
		return nil, nil, fmt.Errorf("invalid key pair format")
	}

	privateKey := ed25519.PrivateKey(keyPairBytes[:ed25519.PrivateKeySize])
	publicKey := ed25519.PublicKey(keyPairBytes[ed25519.PrivateKeySize:])

	return privateKey, publicKey, nil
}
