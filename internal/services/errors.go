// Package services contains the business logic between handlers and repositories
package services

import (
	"errors"

	"github.com/mundodosbots/backend/internal/models"
)

// Sentinel errors mapped by handlers to HTTP responses
var (
	// ErrInvalidCredentials covers both unknown-email and wrong-password so the
	// response never reveals which factor failed
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for a missing, malformed or expired session token
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrEmailInUse is returned when registering with an already registered email
	ErrEmailInUse = errors.New("email already in use")
	// ErrCurrentPasswordIncorrect is returned on password change with a wrong current password
	ErrCurrentPasswordIncorrect = errors.New("current password incorrect")
	// ErrInvalidResetToken is returned for an unknown, used or expired reset token.
	// Deliberately coarse so responses never say which of the three it was.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrNotFound is returned when the target resource does not exist
	ErrNotFound = errors.New("not found")
)

// ValidationFailedError carries per-field validation messages for a 400 response
type ValidationFailedError struct {
	Errors []models.ValidationError
}

func (e *ValidationFailedError) Error() string {
	return "validation failed"
}
