// Package schemas defines the data structures
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// User represents the data model for a user in the system.
type User struct {
	ID            *uuid.UUID `json:"id"`             // Unique identifier for the user.
	Username      string     `json:"username"`       // Username of the user, unique and lowercased.
	Nickname      string     `json:"nickname"`       // Display name of the user.
	Email         string     `json:"email"`          // Email address of the user, unique and lowercased.
	Age           *int       `json:"age"`            // Optional age of the user.
	Password      string     `json:"password"`       // Password hash of the user.
	EmailVerified bool       `json:"email_verified"` // Whether the email address has been verified.
	CreatedAt     *time.Time `json:"created_at"`     // Timestamp when the user was created.

	// Ephemeral credential fields, populated only while a flow is in flight.
	// Only the SHA-256 digest of a token is stored, never the raw value.
	VerificationTokenHash string     `json:"verification_token_hash"`
	VerificationExpiresAt *time.Time `json:"verification_expires_at"`
	ResetTokenHash        string     `json:"reset_token_hash"`
	ResetExpiresAt        *time.Time `json:"reset_expires_at"`
}

// Post represents the data model for a post in the system.
// A post must carry at least one of text content or image URL.
type Post struct {
	ID        *uuid.UUID `json:"id"`         // Unique identifier for the post.
	AuthorID  *uuid.UUID `json:"author_id"`  // Identifier of the owning user, cascade-deleted with the user.
	Content   string     `json:"content"`    // Optional text body of the post.
	ImageURL  string     `json:"image_url"`  // Optional media URL returned by the media store.
	CreatedAt *time.Time `json:"created_at"` // Timestamp when the post was created.
}
