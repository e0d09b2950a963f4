package models

import "time"

// ValidationError describes a single per-field validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ForgotPasswordRequest represents a forgot-password request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents a reset-password request
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// SavePostRequest represents a post create/update request
type SavePostRequest struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	Content       string `json:"content"`
	CoverImageURL string `json:"cover_image_url"`
	Published     bool   `json:"published"`
}

// SaveSolutionRequest represents a solution create/update request
type SaveSolutionRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

// UpdateUserRequest represents an administrative user edit
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// CreateSocialPostRequest represents a social post creation request
type CreateSocialPostRequest struct {
	PostID      *int       `json:"post_id,omitempty"`
	Message     string     `json:"message"`
	Link        string     `json:"link"`
	Networks    string     `json:"networks"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}
