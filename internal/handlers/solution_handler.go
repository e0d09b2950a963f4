package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mundodosbots/backend/internal/models"
	"go.uber.org/zap"
)

// SolutionService is the interface that wraps methods for solution business logic
type SolutionService interface {
	ListActive(ctx context.Context) ([]models.Solution, error)
	ListAll(ctx context.Context) ([]models.Solution, error)
	Create(ctx context.Context, req *models.SaveSolutionRequest) (*models.Solution, error)
	Update(ctx context.Context, id int, req *models.SaveSolutionRequest) (*models.Solution, error)
	Delete(ctx context.Context, id int) error
}

// SolutionHandler handles solution HTTP requests
type SolutionHandler struct {
	BaseHandler
	solutionService SolutionService
}

// NewSolutionHandler creates a new solution handler
func NewSolutionHandler(solutionService SolutionService, logger *zap.Logger) *SolutionHandler {
	return &SolutionHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		solutionService: solutionService,
	}
}

// RegisterRoutes registers public and admin solution routes
func (h *SolutionHandler) RegisterRoutes(r chi.Router, adminMiddleware func(http.Handler) http.Handler) {
	r.Get("/solutions", h.ListActive)

	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Get("/admin/solutions", h.ListAll)
		r.Post("/solutions", h.Create)
		r.Put("/solutions/{id}", h.Update)
		r.Delete("/solutions/{id}", h.Delete)
	})
}

// ListActive handles GET /solutions
// @Summary List active solutions
// @Description Active solutions in display order for the public site.
// @Tags solutions
// @Produce json
// @Success 200 {object} Response "Solutions"
// @Router /solutions [get]
func (h *SolutionHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	solutions, err := h.solutionService.ListActive(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", map[string]any{"solutions": solutions})
}

// ListAll handles GET /admin/solutions
// @Summary List all solutions including inactive ones
// @Tags solutions
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} Response "Solutions"
// @Failure 403 {object} Response "Insufficient permissions"
// @Router /admin/solutions [get]
func (h *SolutionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	solutions, err := h.solutionService.ListAll(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", map[string]any{"solutions": solutions})
}

// Create handles POST /solutions
// @Summary Create a solution
// @Tags solutions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.SaveSolutionRequest true "Solution data"
// @Success 201 {object} Response "Solution created"
// @Failure 400 {object} Response "Validation error"
// @Router /solutions [post]
func (h *SolutionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SaveSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	solution, err := h.solutionService.Create(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "Solução criada com sucesso", map[string]any{"solution": solution})
}

// Update handles PUT /solutions/{id}
// @Summary Update a solution
// @Tags solutions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Solution ID"
// @Param request body models.SaveSolutionRequest true "Solution data"
// @Success 200 {object} Response "Solution updated"
// @Failure 404 {object} Response "Solution not found"
// @Router /solutions/{id} [put]
func (h *SolutionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req models.SaveSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	solution, err := h.solutionService.Update(r.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Solução atualizada com sucesso", map[string]any{"solution": solution})
}

// Delete handles DELETE /solutions/{id}
// @Summary Delete a solution
// @Tags solutions
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Solution ID"
// @Success 200 {object} Response "Solution deleted"
// @Failure 404 {object} Response "Solution not found"
// @Router /solutions/{id} [delete]
func (h *SolutionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.solutionService.Delete(r.Context(), id); err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Solução removida com sucesso", nil)
}
