// Package tokens produces the random secrets used to gate email verification
// and password resets. A secret only ever leaves this package in two shapes:
// the raw hex string that is mailed to the user, and the SHA-256 digest that
// is persisted. The raw value is never stored or logged.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// rawLen is the number of random bytes per token. 20 bytes give 160 bits of
// entropy, hex-encoded to a fixed width of 40 characters.
const rawLen = 20

// DefaultTTL is the validity window applied when no TTL is configured.
const DefaultTTL = 10 * time.Minute

// Token is the result of a single issuance.
type Token struct {
	Raw       string    // hex-encoded secret, handed to the mail dispatcher only
	Digest    string    // hex-encoded SHA-256 of Raw, safe to persist
	ExpiresAt time.Time // issuance time plus the configured window
}

// Issuer creates tokens with a fixed validity window.
type Issuer struct {
	ttl time.Duration
	now func() time.Time
}

// NewIssuer returns an Issuer with the given validity window.
// A non-positive ttl falls back to DefaultTTL.
func NewIssuer(ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{ttl: ttl, now: time.Now}
}

// NewIssuerWithClock returns an Issuer with an injected clock for tests.
func NewIssuerWithClock(ttl time.Duration, now func() time.Time) *Issuer {
	issuer := NewIssuer(ttl)
	issuer.now = now
	return issuer
}

// Issue generates a fresh random secret, its digest and its expiry instant.
func (i *Issuer) Issue() (Token, error) {
	buf := make([]byte, rawLen)
	if _, err := rand.Read(buf); err != nil {
		return Token{}, err
	}

	raw := hex.EncodeToString(buf)
	return Token{
		Raw:       raw,
		Digest:    DigestOf(raw),
		ExpiresAt: i.now().Add(i.ttl),
	}, nil
}

// DigestOf returns the hex-encoded SHA-256 digest of an externally supplied
// raw token. Redemption lookups compare this against the stored digest, so
// the raw value never has to be persisted.
func DigestOf(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
