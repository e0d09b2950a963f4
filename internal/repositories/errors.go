// Package repositories provides MySQL data access for the application
package repositories

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Sentinel errors returned by repositories. Services map these to user-facing responses.
var (
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists is returned when the users.email unique constraint is violated
	ErrEmailExists = errors.New("email already exists")
	// ErrTokenNotFound is returned when a reset token is missing, used or expired
	ErrTokenNotFound = errors.New("reset token not found or expired")
	// ErrPostNotFound is returned when no post matches the lookup
	ErrPostNotFound = errors.New("post not found")
	// ErrSlugExists is returned when a slug unique constraint is violated
	ErrSlugExists = errors.New("slug already exists")
	// ErrSolutionNotFound is returned when no solution matches the lookup
	ErrSolutionNotFound = errors.New("solution not found")
	// ErrSocialPostNotFound is returned when no social post matches the lookup
	ErrSocialPostNotFound = errors.New("social post not found")
)

// mysqlDuplicateEntry is the MySQL error code for a unique constraint violation
const mysqlDuplicateEntry = 1062

// isDuplicateEntry reports whether err is a MySQL duplicate-key error.
// The unique constraint is the real guard against check-then-act races;
// existence pre-checks are only a fast path.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
