package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mundodosbots/backend/internal/auth"
	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/services"
	"go.uber.org/zap"
)

// PostService is the interface that wraps methods for blog post business logic
type PostService interface {
	ListPublished(ctx context.Context, page, limit int) (*services.PostPage, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	Create(ctx context.Context, authorID int, req *models.SavePostRequest) (*models.Post, error)
	Update(ctx context.Context, id int, req *models.SavePostRequest) (*models.Post, error)
	Delete(ctx context.Context, id int) error
}

// PostHandler handles blog post HTTP requests
type PostHandler struct {
	BaseHandler
	postService PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		BaseHandler: BaseHandler{Logger: logger},
		postService: postService,
	}
}

// RegisterRoutes registers public and authenticated post routes
func (h *PostHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListPublished)
		r.Get("/{slug}", h.GetBySlug)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/admin/posts", h.ListAll)
	})
}

// ListPublished handles GET /posts
// @Summary List published posts
// @Description Paginated list of published posts, newest first.
// @Tags posts
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 50)"
// @Success 200 {object} Response "Page of posts"
// @Router /posts [get]
func (h *PostHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.postService.ListPublished(r.Context(), page, limit)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", result)
}

// GetBySlug handles GET /posts/{slug}
// @Summary Get a published post
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} Response "Post"
// @Failure 404 {object} Response "Post not found"
// @Router /posts/{slug} [get]
func (h *PostHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.postService.GetBySlug(r.Context(), slug)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", map[string]any{"post": post})
}

// ListAll handles GET /admin/posts
// @Summary List all posts including drafts
// @Tags posts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} Response "All posts"
// @Failure 401 {object} Response "Invalid or expired token"
// @Router /admin/posts [get]
func (h *PostHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListAll(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", map[string]any{"posts": posts})
}

// Create handles POST /posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.SavePostRequest true "Post data"
// @Success 201 {object} Response "Post created"
// @Failure 400 {object} Response "Validation error"
// @Failure 401 {object} Response "Invalid or expired token"
// @Router /posts [post]
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "Autenticação necessária")
		return
	}

	var req models.SavePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	post, err := h.postService.Create(r.Context(), claims.UserID, &req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "Post criado com sucesso", map[string]any{"post": post})
}

// Update handles PUT /posts/{id}
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Post ID"
// @Param request body models.SavePostRequest true "Post data"
// @Success 200 {object} Response "Post updated"
// @Failure 400 {object} Response "Validation error"
// @Failure 404 {object} Response "Post not found"
// @Router /posts/{id} [put]
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req models.SavePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	post, err := h.postService.Update(r.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Post atualizado com sucesso", map[string]any{"post": post})
}

// Delete handles DELETE /posts/{id}
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Post ID"
// @Success 200 {object} Response "Post deleted"
// @Failure 404 {object} Response "Post not found"
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.postService.Delete(r.Context(), id); err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Post removido com sucesso", nil)
}
