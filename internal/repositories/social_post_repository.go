package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mundodosbots/backend/internal/models"
)

// socialPostRepository implements social post data access over MySQL
type socialPostRepository struct {
	db *sql.DB
}

// NewSocialPostRepository creates a new social post repository
func NewSocialPostRepository(db *sql.DB) *socialPostRepository {
	return &socialPostRepository{
		db: db,
	}
}

const socialPostColumns = `id, post_id, message, link, networks, status, scheduled_at, sent_at, error_message, created_at`

func scanSocialPost(row interface{ Scan(dest ...any) error }, sp *models.SocialPost) error {
	var errorMessage sql.NullString
	err := row.Scan(
		&sp.ID,
		&sp.PostID,
		&sp.Message,
		&sp.Link,
		&sp.Networks,
		&sp.Status,
		&sp.ScheduledAt,
		&sp.SentAt,
		&errorMessage,
		&sp.CreatedAt,
	)
	if err != nil {
		return err
	}
	sp.ErrorMessage = errorMessage.String
	return nil
}

// Create inserts a new social post into the database
func (r *socialPostRepository) Create(ctx context.Context, sp *models.SocialPost) error {
	query := `
		INSERT INTO social_posts (post_id, message, link, networks, status, scheduled_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		sp.PostID, sp.Message, sp.Link, sp.Networks, sp.Status, sp.ScheduledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create social post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	sp.ID = int(id)
	return nil
}

// GetByID retrieves a social post by its ID
func (r *socialPostRepository) GetByID(ctx context.Context, id int) (*models.SocialPost, error) {
	query := `
		SELECT ` + socialPostColumns + `
		FROM social_posts
		WHERE id = ?
		LIMIT 1
	`

	sp := &models.SocialPost{}
	err := scanSocialPost(r.db.QueryRowContext(ctx, query, id), sp)

	if err == sql.ErrNoRows {
		return nil, ErrSocialPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get social post by id: %w", err)
	}

	return sp, nil
}

// List retrieves a page of social posts, newest first, with the total count
func (r *socialPostRepository) List(ctx context.Context, page, limit int) ([]models.SocialPost, int, error) {
	countQuery := `SELECT COUNT(*) FROM social_posts`

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count social posts: %w", err)
	}

	query := `
		SELECT ` + socialPostColumns + `
		FROM social_posts
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	offset := (page - 1) * limit
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list social posts: %w", err)
	}
	defer rows.Close()

	var posts []models.SocialPost
	for rows.Next() {
		var sp models.SocialPost
		if err := scanSocialPost(rows, &sp); err != nil {
			return nil, 0, fmt.Errorf("failed to scan social post: %w", err)
		}
		posts = append(posts, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate social posts: %w", err)
	}

	return posts, total, nil
}

// GetDue retrieves pending posts whose scheduled time has passed
func (r *socialPostRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]models.SocialPost, error) {
	query := `
		SELECT ` + socialPostColumns + `
		FROM social_posts
		WHERE status = 'pending' AND scheduled_at <= ?
		ORDER BY scheduled_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due social posts: %w", err)
	}
	defer rows.Close()

	var posts []models.SocialPost
	for rows.Next() {
		var sp models.SocialPost
		if err := scanSocialPost(rows, &sp); err != nil {
			return nil, fmt.Errorf("failed to scan social post: %w", err)
		}
		posts = append(posts, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate social posts: %w", err)
	}

	return posts, nil
}

// MarkSent records a successful delivery
func (r *socialPostRepository) MarkSent(ctx context.Context, id int, sentAt time.Time) error {
	query := `UPDATE social_posts SET status = 'sent', sent_at = ?, error_message = NULL WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, sentAt, id); err != nil {
		return fmt.Errorf("failed to mark social post sent: %w", err)
	}

	return nil
}

// MarkFailed records a failed delivery with the error message
func (r *socialPostRepository) MarkFailed(ctx context.Context, id int, errorMessage string) error {
	query := `UPDATE social_posts SET status = 'failed', error_message = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, errorMessage, id); err != nil {
		return fmt.Errorf("failed to mark social post failed: %w", err)
	}

	return nil
}
