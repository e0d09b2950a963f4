package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/pabbly"
	"github.com/mundodosbots/backend/internal/repositories"
)

// mockSocialPostRepository is an in-memory mock implementation of SocialPostRepository
type mockSocialPostRepository struct {
	posts     map[int]*models.SocialPost
	nextID    int
	createErr error
	getDueErr error
}

func newMockSocialPostRepository() *mockSocialPostRepository {
	return &mockSocialPostRepository{
		posts:  make(map[int]*models.SocialPost),
		nextID: 1,
	}
}

func (m *mockSocialPostRepository) Create(ctx context.Context, sp *models.SocialPost) error {
	if m.createErr != nil {
		return m.createErr
	}
	sp.ID = m.nextID
	m.nextID++
	stored := *sp
	m.posts[sp.ID] = &stored
	return nil
}

func (m *mockSocialPostRepository) GetByID(ctx context.Context, id int) (*models.SocialPost, error) {
	sp, ok := m.posts[id]
	if !ok {
		return nil, repositories.ErrSocialPostNotFound
	}
	copied := *sp
	return &copied, nil
}

func (m *mockSocialPostRepository) List(ctx context.Context, page, limit int) ([]models.SocialPost, int, error) {
	var all []models.SocialPost
	for _, sp := range m.posts {
		all = append(all, *sp)
	}
	return all, len(all), nil
}

func (m *mockSocialPostRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]models.SocialPost, error) {
	if m.getDueErr != nil {
		return nil, m.getDueErr
	}
	var due []models.SocialPost
	for _, sp := range m.posts {
		if sp.Status == models.SocialPostStatusPending && !sp.ScheduledAt.After(now) {
			due = append(due, *sp)
		}
	}
	return due, nil
}

func (m *mockSocialPostRepository) MarkSent(ctx context.Context, id int, sentAt time.Time) error {
	sp, ok := m.posts[id]
	if !ok {
		return repositories.ErrSocialPostNotFound
	}
	sp.Status = models.SocialPostStatusSent
	sp.SentAt = &sentAt
	sp.ErrorMessage = ""
	return nil
}

func (m *mockSocialPostRepository) MarkFailed(ctx context.Context, id int, errorMessage string) error {
	sp, ok := m.posts[id]
	if !ok {
		return repositories.ErrSocialPostNotFound
	}
	sp.Status = models.SocialPostStatusFailed
	sp.ErrorMessage = errorMessage
	return nil
}

// mockWebhookClient records payloads delivered to the Pabbly webhook
type mockWebhookClient struct {
	enabled bool
	sent    []*pabbly.Payload
	err     error
	failFor string // fail only payloads containing this message
}

func (m *mockWebhookClient) Enabled() bool {
	return m.enabled
}

func (m *mockWebhookClient) Send(ctx context.Context, payload *pabbly.Payload) error {
	if m.err != nil && (m.failFor == "" || strings.Contains(payload.Message, m.failFor)) {
		return m.err
	}
	m.sent = append(m.sent, payload)
	return nil
}

func setupSocialService(t *testing.T) (*socialService, *mockSocialPostRepository, *mockWebhookClient) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	repo := newMockSocialPostRepository()
	webhook := &mockWebhookClient{enabled: true}
	svc := NewSocialService(repo, webhook, logger)
	return svc, repo, webhook
}

func TestSocialService_Create(t *testing.T) {
	t.Run("defaults to immediately due and pending", func(t *testing.T) {
		svc, _, _ := setupSocialService(t)
		created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return created }

		sp, err := svc.Create(context.Background(), &models.CreateSocialPostRequest{
			Message:  "Novo post no blog!",
			Networks: "facebook,instagram",
		})

		require.NoError(t, err)
		assert.Equal(t, models.SocialPostStatusPending, sp.Status)
		assert.Equal(t, created, sp.ScheduledAt)
	})

	t.Run("keeps a future schedule", func(t *testing.T) {
		svc, _, _ := setupSocialService(t)
		future := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

		sp, err := svc.Create(context.Background(), &models.CreateSocialPostRequest{
			Message:     "Agendado",
			Networks:    "facebook",
			ScheduledAt: &future,
		})

		require.NoError(t, err)
		assert.Equal(t, future, sp.ScheduledAt)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc, _, _ := setupSocialService(t)

		tests := []struct {
			name string
			req  *models.CreateSocialPostRequest
		}{
			{"empty message", &models.CreateSocialPostRequest{Message: "  ", Networks: "facebook"}},
			{"message too long", &models.CreateSocialPostRequest{
				Message:  strings.Repeat("a", maxSocialMessageLength+1),
				Networks: "facebook",
			}},
			{"no networks", &models.CreateSocialPostRequest{Message: "Olá", Networks: " "}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Create(context.Background(), tt.req)
				var validationErr *ValidationFailedError
				assert.ErrorAs(t, err, &validationErr)
			})
		}
	})

	t.Run("message at the limit is accepted", func(t *testing.T) {
		svc, _, _ := setupSocialService(t)

		_, err := svc.Create(context.Background(), &models.CreateSocialPostRequest{
			Message:  strings.Repeat("a", maxSocialMessageLength),
			Networks: "facebook",
		})

		assert.NoError(t, err)
	})
}

func TestSocialService_ProcessDue(t *testing.T) {
	t.Run("delivers due posts and marks them sent", func(t *testing.T) {
		svc, repo, webhook := setupSocialService(t)
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return now }

		due, err := svc.Create(context.Background(), &models.CreateSocialPostRequest{
			Message:  "Devido",
			Link:     "https://mundodosbots.com.br/blog/post-a",
			Networks: "facebook",
		})
		require.NoError(t, err)

		future := now.Add(time.Hour)
		scheduled, err := svc.Create(context.Background(), &models.CreateSocialPostRequest{
			Message:     "Futuro",
			Networks:    "instagram",
			ScheduledAt: &future,
		})
		require.NoError(t, err)

		svc.ProcessDue(context.Background())

		require.Len(t, webhook.sent, 1)
		assert.Equal(t, "Devido", webhook.sent[0].Message)
		assert.Equal(t, "https://mundodosbots.com.br/blog/post-a", webhook.sent[0].Link)

		assert.Equal(t, models.SocialPostStatusSent, repo.posts[due.ID].Status)
		require.NotNil(t, repo.posts[due.ID].SentAt)
		assert.Equal(t, models.SocialPostStatusPending, repo.posts[scheduled.ID].Status)
	})

	t.Run("delivery failure marks the post failed with the error, no retry", func(t *testing.T) {
		svc, repo, webhook := setupSocialService(t)
		webhook.err = errors.New("webhook returned status 500")

		sp, err := svc.Create(context.Background(), &models.CreateSocialPostRequest{
			Message:  "Vai falhar",
			Networks: "facebook",
		})
		require.NoError(t, err)

		svc.ProcessDue(context.Background())

		assert.Equal(t, models.SocialPostStatusFailed, repo.posts[sp.ID].Status)
		assert.Equal(t, "webhook returned status 500", repo.posts[sp.ID].ErrorMessage)

		// A failed post is not picked up by the next sweep
		svc.ProcessDue(context.Background())
		assert.Empty(t, webhook.sent)
	})

	t.Run("one failure does not stop the batch", func(t *testing.T) {
		svc, repo, webhook := setupSocialService(t)
		webhook.err = errors.New("webhook returned status 500")
		webhook.failFor = "ruim"

		bad, err := svc.Create(context.Background(), &models.CreateSocialPostRequest{
			Message:  "post ruim",
			Networks: "facebook",
		})
		require.NoError(t, err)
		good, err := svc.Create(context.Background(), &models.CreateSocialPostRequest{
			Message:  "post bom",
			Networks: "facebook",
		})
		require.NoError(t, err)

		svc.ProcessDue(context.Background())

		assert.Equal(t, models.SocialPostStatusFailed, repo.posts[bad.ID].Status)
		assert.Equal(t, models.SocialPostStatusSent, repo.posts[good.ID].Status)
	})

	t.Run("disabled webhook skips the sweep entirely", func(t *testing.T) {
		svc, repo, webhook := setupSocialService(t)
		webhook.enabled = false

		sp, err := svc.Create(context.Background(), &models.CreateSocialPostRequest{
			Message:  "Sem webhook",
			Networks: "facebook",
		})
		require.NoError(t, err)

		svc.ProcessDue(context.Background())

		assert.Empty(t, webhook.sent)
		assert.Equal(t, models.SocialPostStatusPending, repo.posts[sp.ID].Status)
	})
}

func TestSocialService_GetByID(t *testing.T) {
	svc, _, _ := setupSocialService(t)

	sp, err := svc.Create(context.Background(), &models.CreateSocialPostRequest{
		Message:  "Olá",
		Networks: "facebook",
	})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), sp.ID)
	require.NoError(t, err)
	assert.Equal(t, sp.ID, got.ID)

	_, err = svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
