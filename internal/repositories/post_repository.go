package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mundodosbots/backend/internal/models"
)

// postRepository implements blog post data access over MySQL
type postRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *sql.DB) *postRepository {
	return &postRepository{
		db: db,
	}
}

const postColumns = `id, title, slug, summary, content, cover_image_url, author_id, published, published_at, created_at, updated_at`

// scanPost scans a post row into a model
func scanPost(row interface{ Scan(dest ...any) error }, post *models.Post) error {
	return row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Summary,
		&post.Content,
		&post.CoverImageURL,
		&post.AuthorID,
		&post.Published,
		&post.PublishedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
}

// Create inserts a new post into the database
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (title, slug, summary, content, cover_image_url, author_id, published, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		post.Title, post.Slug, post.Summary, post.Content,
		post.CoverImageURL, post.AuthorID, post.Published, post.PublishedAt,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	post.ID = int(id)
	return nil
}

// GetBySlug retrieves a published post by its slug
func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE slug = ? AND published = 1
		LIMIT 1
	`

	post := &models.Post{}
	err := scanPost(r.db.QueryRowContext(ctx, query, slug), post)

	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by slug: %w", err)
	}

	return post, nil
}

// GetByID retrieves a post by its ID, published or not
func (r *postRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE id = ?
		LIMIT 1
	`

	post := &models.Post{}
	err := scanPost(r.db.QueryRowContext(ctx, query, id), post)

	if err == sql.ErrNoRows {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}

	return post, nil
}

// ListPublished retrieves a page of published posts, newest first, with the total count
func (r *postRepository) ListPublished(ctx context.Context, page, limit int) ([]models.Post, int, error) {
	countQuery := `SELECT COUNT(*) FROM posts WHERE published = 1`

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count published posts: %w", err)
	}

	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE published = 1
		ORDER BY published_at DESC
		LIMIT ? OFFSET ?
	`

	offset := (page - 1) * limit
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list published posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := scanPost(rows, &post); err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, total, nil
}

// ListAll retrieves all posts including drafts, newest first
func (r *postRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := scanPost(rows, &post); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// Update saves changes to an existing post
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = ?, slug = ?, summary = ?, content = ?, cover_image_url = ?, published = ?, published_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		post.Title, post.Slug, post.Summary, post.Content,
		post.CoverImageURL, post.Published, post.PublishedAt, post.ID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPostNotFound
	}

	return nil
}

// Delete removes a post by ID
func (r *postRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM posts WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPostNotFound
	}

	return nil
}

// ExistsBySlug checks if a post exists with the given slug
func (r *postRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM posts WHERE slug = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}

	return exists, nil
}
