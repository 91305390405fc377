// Package schemas defines the request structures for various operations in the application.
package schemas

// RegistrationRequest is a struct that represents a registration request
// Username is required and must be less than 20 characters
// Nickname is optional and must be less than 25 characters
// Email is required and must be a valid email
// Age is optional and must be plausible if provided
// Password is required and must be at least 8 characters
type RegistrationRequest struct {
	Username string `json:"username" validate:"required,max=20,username_validation"`
	Nickname string `json:"nickname" validate:"max=25"`
	Email    string `json:"email" validate:"required,email"`
	Age      *int   `json:"age" validate:"omitempty,gte=13,lte=120"`
	Password string `json:"password" validate:"required,min=8,password_validation"`
}

// LoginRequest is a struct that represents a login request
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ForgotPasswordRequest is a struct that represents a password reset request
// Email is required and must be a valid email
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is a struct that represents a password reset redemption
// NewPassword is required and must be at least 8 characters
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8,password_validation"`
}

// ResendVerificationRequest is a struct that represents a request to resend
// the verification mail for a still-unverified account
// Email is required and must be a valid email
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdatePostRequest is a struct that represents a post edit request
// Content must be less than 256 characters; it may only be empty if the
// post carries an image
type UpdatePostRequest struct {
	Content string `json:"content" validate:"max=256"`
}
