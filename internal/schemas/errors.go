package schemas

// CustomError is the wire format for every error the API returns.
// Code is a stable identifier for clients, Message a human-readable explanation.
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	// BadRequest is returned when the request body or parameters are invalid.
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The request body is invalid. Please check the request body and try again.",
	}
	// UsernameTaken is returned when the username is already in use.
	UsernameTaken = &CustomError{
		Code:    "ERR-002",
		Message: "The username is already taken. Please try another username.",
	}
	// EmailTaken is returned when the email address is already in use.
	EmailTaken = &CustomError{
		Code:    "ERR-003",
		Message: "The email is already registered. Please log in instead.",
	}
	// UserNotFound is returned when no user matches the given identifier.
	UserNotFound = &CustomError{
		Code:    "ERR-004",
		Message: "The user was not found. Please check the username and try again.",
	}
	// PostNotFound is returned when no post matches the given identifier.
	PostNotFound = &CustomError{
		Code:    "ERR-005",
		Message: "The post was not found. Please check the post ID and try again.",
	}
	// InvalidToken is returned when a verification or reset token does not
	// match any stored digest. An expired reset token deliberately yields
	// the same error as a wrong one.
	InvalidToken = &CustomError{
		Code:    "ERR-006",
		Message: "The provided token is invalid. Please request a new one.",
	}
	// TokenExpired is returned when a verification token has lapsed.
	// The pending account is deleted and the user has to register again.
	TokenExpired = &CustomError{
		Code:    "ERR-007",
		Message: "The verification link has expired. Please register again.",
	}
	// EmailNotFound is returned when a password reset is requested for an
	// unknown email address.
	EmailNotFound = &CustomError{
		Code:    "ERR-008",
		Message: "The email address is not registered.",
	}
	// InvalidCredentials is returned when the email/password combination is wrong.
	InvalidCredentials = &CustomError{
		Code:    "ERR-009",
		Message: "The credentials are invalid. Please check the email and password and try again.",
	}
	// UserNotVerified is returned when a user tries to log in before verifying their email.
	UserNotVerified = &CustomError{
		Code:    "ERR-010",
		Message: "The email address has not been verified yet. Please check your inbox.",
	}
	// UserAlreadyVerified is returned when a verification mail is requested
	// for an account that is already verified.
	UserAlreadyVerified = &CustomError{
		Code:    "ERR-011",
		Message: "The email address has already been verified. Please log in.",
	}
	// Unauthorized is returned when no valid session accompanies the request.
	Unauthorized = &CustomError{
		Code:    "ERR-012",
		Message: "The request is unauthorized. Please log in and try again.",
	}
	// Forbidden is returned when the authenticated user does not own the resource.
	Forbidden = &CustomError{
		Code:    "ERR-013",
		Message: "You are not allowed to perform this action.",
	}
	// EmailNotSent is returned when the mail dispatcher failed. Any partially
	// created account has been removed before this error is reported.
	EmailNotSent = &CustomError{
		Code:    "ERR-014",
		Message: "The email could not be sent. Please try again later.",
	}
	// MediaUploadFailed is returned when the media store rejected an upload.
	MediaUploadFailed = &CustomError{
		Code:    "ERR-015",
		Message: "The image could not be uploaded. Please try again later.",
	}
	// DatabaseError is returned on any persistence failure.
	DatabaseError = &CustomError{
		Code:    "ERR-016",
		Message: "Something went wrong. Please try again later.",
	}
	// InternalServerError is returned on any other unexpected failure.
	InternalServerError = &CustomError{
		Code:    "ERR-017",
		Message: "Something went wrong. Please try again later.",
	}
)
