package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/repositories"
)

// Pagination defaults for public listings
const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// maxSlugAttempts bounds how often a write is retried after losing a slug
// race between the existence pre-check and the unique index
const maxSlugAttempts = 3

// PostRepository is the interface that wraps methods for blog post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetByID(ctx context.Context, id int) (*models.Post, error)
	ListPublished(ctx context.Context, page, limit int) ([]models.Post, int, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id int) error
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// PostPage is a page of posts with pagination metadata
type PostPage struct {
	Posts []models.Post `json:"posts"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// postService implements blog post business logic
type postService struct {
	postRepo PostRepository
	now      func() time.Time
}

// NewPostService creates a new post service
func NewPostService(postRepo PostRepository) *postService {
	return &postService{
		postRepo: postRepo,
		now:      time.Now,
	}
}

// ListPublished returns a page of published posts for the public site
func (s *postService) ListPublished(ctx context.Context, page, limit int) (*PostPage, error) {
	page, limit = normalizePagination(page, limit)

	posts, total, err := s.postRepo.ListPublished(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	return &PostPage{Posts: posts, Total: total, Page: page, Limit: limit}, nil
}

// GetBySlug returns a published post by slug
func (s *postService) GetBySlug(ctx context.Context, postSlug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, postSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// ListAll returns every post, drafts included, for the editor dashboard
func (s *postService) ListAll(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.ListAll(ctx)
}

// Create validates and stores a new post authored by the given user
func (s *postService) Create(ctx context.Context, authorID int, req *models.SavePostRequest) (*models.Post, error) {
	if err := validatePostRequest(req); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:         strings.TrimSpace(req.Title),
		Summary:       strings.TrimSpace(req.Summary),
		Content:       req.Content,
		CoverImageURL: strings.TrimSpace(req.CoverImageURL),
		AuthorID:      authorID,
		Published:     req.Published,
	}
	if post.Published {
		now := s.now()
		post.PublishedAt = &now
	}

	if err := s.saveWithUniqueSlug(ctx, post, req.Title, s.postRepo.Create); err != nil {
		return nil, err
	}

	return post, nil
}

// Update validates and saves changes to an existing post
func (s *postService) Update(ctx context.Context, id int, req *models.SavePostRequest) (*models.Post, error) {
	if err := validatePostRequest(req); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// The slug is regenerated only when the title changed, so published URLs stay stable
	titleChanged := strings.TrimSpace(req.Title) != post.Title

	post.Title = strings.TrimSpace(req.Title)
	post.Summary = strings.TrimSpace(req.Summary)
	post.Content = req.Content
	post.CoverImageURL = strings.TrimSpace(req.CoverImageURL)

	// First transition to published stamps published_at
	if req.Published && !post.Published {
		now := s.now()
		post.PublishedAt = &now
	}
	post.Published = req.Published

	if titleChanged {
		err = s.saveWithUniqueSlug(ctx, post, req.Title, s.postRepo.Update)
	} else {
		err = s.postRepo.Update(ctx, post)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return post, nil
}

// saveWithUniqueSlug assigns a unique slug derived from the title and writes the
// post. When the write loses the race between the existence check and the unique
// index, the slug is regenerated against the winner's row and retried; a conflict
// that survives all retries is reported as a field error.
func (s *postService) saveWithUniqueSlug(ctx context.Context, post *models.Post, title string, save func(context.Context, *models.Post) error) error {
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		postSlug, err := s.uniqueSlug(ctx, title)
		if err != nil {
			return err
		}
		post.Slug = postSlug

		err = save(ctx, post)
		if err == nil || !errors.Is(err, repositories.ErrSlugExists) {
			return err
		}
	}

	return &ValidationFailedError{Errors: []models.ValidationError{{
		Field:   "title",
		Message: "Já existe um post com este título",
	}}}
}

// Delete removes a post permanently
func (s *postService) Delete(ctx context.Context, id int) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// uniqueSlug slugifies the title and retries with a numeric suffix on collision
func (s *postService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "post"
	}

	candidate := base
	for i := 2; ; i++ {
		exists, err := s.postRepo.ExistsBySlug(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func validatePostRequest(req *models.SavePostRequest) error {
	var validationErrors []models.ValidationError
	if strings.TrimSpace(req.Title) == "" {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "title",
			Message: "Título é obrigatório",
		})
	}
	if strings.TrimSpace(req.Content) == "" {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "content",
			Message: "Conteúdo é obrigatório",
		})
	}
	if len(validationErrors) > 0 {
		return &ValidationFailedError{Errors: validationErrors}
	}
	return nil
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
