package models

import "time"

// PasswordResetToken represents a single-use, time-limited password reset token
//
// A token is valid iff used = false and expires_at is in the future.
// Consumption (used = true) happens atomically with the password update.
type PasswordResetToken struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Token     string    `json:"-"` // Never serialize the token itself
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}
