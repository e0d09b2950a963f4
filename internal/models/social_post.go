package models

import "time"

// SocialPostStatus is the delivery status of a social media post
type SocialPostStatus string

// Social post status constants
const (
	SocialPostStatusPending SocialPostStatus = "pending"
	SocialPostStatusSent    SocialPostStatus = "sent"
	SocialPostStatusFailed  SocialPostStatus = "failed"
)

// SocialPost represents a social media post queued for delivery via the Pabbly webhook
type SocialPost struct {
	ID           int              `json:"id"`
	PostID       *int             `json:"post_id,omitempty"`
	Message      string           `json:"message"`
	Link         string           `json:"link"`
	Networks     string           `json:"networks"` // comma-separated list, e.g. "facebook,instagram"
	Status       SocialPostStatus `json:"status"`
	ScheduledAt  time.Time        `json:"scheduled_at"`
	SentAt       *time.Time       `json:"sent_at,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}
