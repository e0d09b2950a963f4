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

// AdminService is the interface that wraps methods for administrative user management
type AdminService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, userID int, req *models.UpdateUserRequest) (*models.User, error)
	DeactivateUser(ctx context.Context, userID int) error
}

// AdminHandler handles administrative user management requests
type AdminHandler struct {
	BaseHandler
	adminService AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		adminService: adminService,
	}
}

// RegisterRoutes registers admin user routes; the router group must already
// enforce the admin role
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Put("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeactivateUser)
	})
}

// ListUsers handles GET /admin/users
// @Summary List all users
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} Response "Users"
// @Failure 403 {object} Response "Insufficient permissions"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", map[string]any{"users": users})
}

// UpdateUser handles PUT /admin/users/{id}
// @Summary Update a user
// @Description Partial edit of name, role or active flag.
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} Response "User updated"
// @Failure 404 {object} Response "User not found"
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	user, err := h.adminService.UpdateUser(r.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Usuário atualizado com sucesso", map[string]any{"user": user})
}

// DeactivateUser handles DELETE /admin/users/{id}
// @Summary Deactivate a user
// @Description Soft delete: sets is_active = false. Users are never hard-deleted.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 200 {object} Response "User deactivated"
// @Failure 404 {object} Response "User not found"
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	if err := h.adminService.DeactivateUser(r.Context(), id); err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Usuário desativado com sucesso", nil)
}
