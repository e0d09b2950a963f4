package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mundodosbots/backend/internal/models"
)

// resetTokenRepository implements password reset token data access over MySQL
type resetTokenRepository struct {
	db *sql.DB
}

// NewResetTokenRepository creates a new reset token repository
func NewResetTokenRepository(db *sql.DB) *resetTokenRepository {
	return &resetTokenRepository{
		db: db,
	}
}

// Create inserts a new password reset token into the database
func (r *resetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (user_id, token, expires_at, used)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, token.UserID, token.Token, token.ExpiresAt, token.Used)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	token.ID = int(id)
	return nil
}

// GetValidWithEmail retrieves an unused, unexpired token joined to its active user's email.
// The validity predicate is used = 0 AND expires_at > now.
func (r *resetTokenRepository) GetValidWithEmail(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, string, error) {
	query := `
		SELECT prt.id, prt.user_id, prt.token, prt.expires_at, prt.used, prt.created_at, u.email
		FROM password_reset_tokens prt
		JOIN users u ON u.id = prt.user_id
		WHERE prt.token = ? AND prt.used = 0 AND prt.expires_at > ? AND u.is_active = 1
		LIMIT 1
	`

	resetToken := &models.PasswordResetToken{}
	var email string
	err := r.db.QueryRowContext(ctx, query, token, now).Scan(
		&resetToken.ID,
		&resetToken.UserID,
		&resetToken.Token,
		&resetToken.ExpiresAt,
		&resetToken.Used,
		&resetToken.CreatedAt,
		&email,
	)

	if err == sql.ErrNoRows {
		return nil, "", ErrTokenNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get reset token: %w", err)
	}

	return resetToken, email, nil
}

// ConsumeAndResetPassword marks the token used and overwrites the user's password hash
// in a single transaction, so a crash cannot leave a half-applied state.
// The row lock on the token makes consumption single-use under concurrent requests.
func (r *resetTokenRepository) ConsumeAndResetPassword(ctx context.Context, token string, now time.Time, passwordHash string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var tokenID, userID int
	selectQuery := `
		SELECT id, user_id
		FROM password_reset_tokens
		WHERE token = ? AND used = 0 AND expires_at > ?
		LIMIT 1
		FOR UPDATE
	`
	err = tx.QueryRowContext(ctx, selectQuery, token, now).Scan(&tokenID, &userID)
	if err == sql.ErrNoRows {
		return ErrTokenNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock reset token: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE password_reset_tokens SET used = 1 WHERE id = ?`, tokenID); err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteExpired deletes all tokens that expired before the given time
func (r *resetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at <= ?`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
