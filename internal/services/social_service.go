package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/pabbly"
	"github.com/mundodosbots/backend/internal/repositories"
	"go.uber.org/zap"
)

// maxSocialMessageLength matches the social_posts.message column
const maxSocialMessageLength = 500

// dueBatchSize bounds how many posts a single sweep delivers
const dueBatchSize = 20

// SocialPostRepository is the interface that wraps methods for social post data access
type SocialPostRepository interface {
	Create(ctx context.Context, sp *models.SocialPost) error
	GetByID(ctx context.Context, id int) (*models.SocialPost, error)
	List(ctx context.Context, page, limit int) ([]models.SocialPost, int, error)
	GetDue(ctx context.Context, now time.Time, limit int) ([]models.SocialPost, error)
	MarkSent(ctx context.Context, id int, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int, errorMessage string) error
}

// WebhookClient is the interface that wraps Pabbly webhook delivery
type WebhookClient interface {
	Enabled() bool
	Send(ctx context.Context, payload *pabbly.Payload) error
}

// SocialPostPage is a page of social posts with pagination metadata
type SocialPostPage struct {
	Posts []models.SocialPost `json:"posts"`
	Total int                 `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// socialService implements social media auto-posting via the Pabbly webhook
type socialService struct {
	socialRepo SocialPostRepository
	webhook    WebhookClient
	logger     *zap.Logger
	now        func() time.Time
}

// NewSocialService creates a new social service
func NewSocialService(socialRepo SocialPostRepository, webhook WebhookClient, logger *zap.Logger) *socialService {
	return &socialService{
		socialRepo: socialRepo,
		webhook:    webhook,
		logger:     logger,
		now:        time.Now,
	}
}

// Create queues a social post for delivery. With no scheduled time it becomes due immediately.
func (s *socialService) Create(ctx context.Context, req *models.CreateSocialPostRequest) (*models.SocialPost, error) {
	var validationErrors []models.ValidationError
	message := strings.TrimSpace(req.Message)
	if message == "" {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "message",
			Message: "Mensagem é obrigatória",
		})
	}
	if len([]rune(message)) > maxSocialMessageLength {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "message",
			Message: fmt.Sprintf("Mensagem deve ter no máximo %d caracteres", maxSocialMessageLength),
		})
	}
	if strings.TrimSpace(req.Networks) == "" {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "networks",
			Message: "Informe ao menos uma rede social",
		})
	}
	if len(validationErrors) > 0 {
		return nil, &ValidationFailedError{Errors: validationErrors}
	}

	scheduledAt := s.now()
	if req.ScheduledAt != nil {
		scheduledAt = *req.ScheduledAt
	}

	sp := &models.SocialPost{
		PostID:      req.PostID,
		Message:     message,
		Link:        strings.TrimSpace(req.Link),
		Networks:    strings.TrimSpace(req.Networks),
		Status:      models.SocialPostStatusPending,
		ScheduledAt: scheduledAt,
	}

	if err := s.socialRepo.Create(ctx, sp); err != nil {
		return nil, err
	}

	return sp, nil
}

// List returns a page of social posts, newest first
func (s *socialService) List(ctx context.Context, page, limit int) (*SocialPostPage, error) {
	page, limit = normalizePagination(page, limit)

	posts, total, err := s.socialRepo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	return &SocialPostPage{Posts: posts, Total: total, Page: page, Limit: limit}, nil
}

// GetByID returns a single social post
func (s *socialService) GetByID(ctx context.Context, id int) (*models.SocialPost, error) {
	sp, err := s.socialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSocialPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sp, nil
}

// ProcessDue delivers pending posts whose scheduled time has passed.
// Fire and forget: each post is attempted once and marked sent or failed,
// no retries. Called from the cron sweep.
func (s *socialService) ProcessDue(ctx context.Context) {
	if !s.webhook.Enabled() {
		return
	}

	due, err := s.socialRepo.GetDue(ctx, s.now(), dueBatchSize)
	if err != nil {
		s.logger.Error("failed to load due social posts", zap.Error(err))
		return
	}

	for _, sp := range due {
		payload := &pabbly.Payload{
			Message:  sp.Message,
			Link:     sp.Link,
			Networks: sp.Networks,
		}

		if err := s.webhook.Send(ctx, payload); err != nil {
			s.logger.Warn("social post delivery failed",
				zap.Int("social_post_id", sp.ID), zap.Error(err))
			if markErr := s.socialRepo.MarkFailed(ctx, sp.ID, err.Error()); markErr != nil {
				s.logger.Error("failed to mark social post failed",
					zap.Int("social_post_id", sp.ID), zap.Error(markErr))
			}
			continue
		}

		if err := s.socialRepo.MarkSent(ctx, sp.ID, s.now()); err != nil {
			s.logger.Error("failed to mark social post sent",
				zap.Int("social_post_id", sp.ID), zap.Error(err))
			continue
		}

		s.logger.Info("social post delivered",
			zap.Int("social_post_id", sp.ID), zap.String("networks", sp.Networks))
	}
}
