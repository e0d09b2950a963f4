package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/services"
	"go.uber.org/zap"
)

// SocialService is the interface that wraps methods for social auto-posting logic
type SocialService interface {
	Create(ctx context.Context, req *models.CreateSocialPostRequest) (*models.SocialPost, error)
	List(ctx context.Context, page, limit int) (*services.SocialPostPage, error)
	GetByID(ctx context.Context, id int) (*models.SocialPost, error)
}

// SocialHandler handles social post HTTP requests
type SocialHandler struct {
	BaseHandler
	socialService SocialService
}

// NewSocialHandler creates a new social handler
func NewSocialHandler(socialService SocialService, logger *zap.Logger) *SocialHandler {
	return &SocialHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		socialService: socialService,
	}
}

// RegisterRoutes registers social post routes; the router group must already
// enforce authentication
func (h *SocialHandler) RegisterRoutes(r chi.Router) {
	r.Route("/social/posts", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
	})
}

// Create handles POST /social/posts
// @Summary Queue a social media post
// @Description Queues a post for delivery through the Pabbly webhook. Without a scheduled time it becomes due immediately.
// @Tags social
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateSocialPostRequest true "Social post data"
// @Success 201 {object} Response "Social post queued"
// @Failure 400 {object} Response "Validation error"
// @Router /social/posts [post]
func (h *SocialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSocialPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	sp, err := h.socialService.Create(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "Publicação agendada com sucesso", map[string]any{"social_post": sp})
}

// List handles GET /social/posts
// @Summary List social posts
// @Tags social
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 50)"
// @Success 200 {object} Response "Page of social posts"
// @Router /social/posts [get]
func (h *SocialHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.socialService.List(r.Context(), page, limit)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", result)
}

// GetByID handles GET /social/posts/{id}
// @Summary Get a social post
// @Tags social
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Social post ID"
// @Success 200 {object} Response "Social post"
// @Failure 404 {object} Response "Social post not found"
// @Router /social/posts/{id} [get]
func (h *SocialHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	sp, err := h.socialService.GetByID(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", map[string]any{"social_post": sp})
}
