// Package models contains the domain types shared by repositories, services and handlers
package models

import "time"

// Role is a user role
type Role string

// User role constants
const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// User represents a user in the system
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
