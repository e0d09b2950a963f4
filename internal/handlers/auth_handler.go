package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mundodosbots/backend/internal/auth"
	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/services"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic
type AuthService interface {
	// Login authenticates by email and password and returns the user with a session token.
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error)
	// Verify validates a session token and returns the current user.
	Verify(ctx context.Context, token string) (*models.User, error)
	// ChangePassword re-verifies the current password before setting a new one.
	ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error
	// Register creates a new editor account.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// ForgotPassword creates and delivers a reset token; enumeration-safe.
	ForgotPassword(ctx context.Context, email string) (*services.ForgotPasswordResult, error)
	// ValidateResetToken checks a reset token and returns the owner's email.
	ValidateResetToken(ctx context.Context, token string) (string, error)
	// ResetPassword consumes a reset token and sets the new password.
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: this assumes the router is already scoped to /api
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Get("/validate-reset-token/{token}", h.ValidateResetToken)
		r.Post("/reset-password", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/verify", h.Verify)
			r.Post("/logout", h.Logout)
			r.Put("/change-password", h.ChangePassword)
		})
	})
}

// Login handles POST /auth/login
// @Summary Authenticate a user
// @Description Authenticate with email and password. Returns the user and a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} Response "Login successful"
// @Failure 400 {object} Response "Validation error"
// @Failure 401 {object} Response "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	user, token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Login realizado com sucesso", map[string]any{
		"user":  user,
		"token": token,
	})
}

// Verify handles GET /auth/verify
// @Summary Verify the session token
// @Description Validate the bearer token and return the authenticated user.
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} Response "Token valid"
// @Failure 401 {object} Response "Invalid or expired token"
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	user, err := h.authService.Verify(r.Context(), token)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", map[string]any{"user": user})
}

// Logout handles POST /auth/logout
// @Summary Logout
// @Description Sessions are stateless; logout is a client-side token discard. The token stays cryptographically valid until expiry.
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} Response "Logout successful"
// @Failure 401 {object} Response "Invalid or expired token"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// No server-side session state exists to invalidate
	h.RespondSuccess(w, http.StatusOK, "Logout realizado com sucesso", nil)
}

// ChangePassword handles PUT /auth/change-password
// @Summary Change the authenticated user's password
// @Description Re-verifies the current password and overwrites the hash.
// @Tags auth
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.ChangePasswordRequest true "Change password request"
// @Success 200 {object} Response "Password changed"
// @Failure 400 {object} Response "Validation error or wrong current password"
// @Failure 401 {object} Response "Invalid or expired token"
// @Router /auth/change-password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "Autenticação necessária")
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), claims.UserID, &req); err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Senha alterada com sucesso", nil)
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Create a new editor account. Role is always "editor".
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register request"
// @Success 201 {object} Response "User created"
// @Failure 400 {object} Response "Validation error or email already in use"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "Usuário criado com sucesso", map[string]any{"user": user})
}

// forgotPasswordMessage is returned whether or not the email is registered
const forgotPasswordMessage = "Se o email estiver cadastrado, você receberá as instruções de redefinição de senha"

// ForgotPassword handles POST /auth/forgot-password
// @Summary Request a password reset
// @Description Always returns the same generic message. When the email belongs to an active account, a reset token is created and emailed.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} Response "Generic success message"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	result, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	var data any
	if result.ResetToken != "" {
		// Development-only exposure, gated by AUTH_EXPOSE_RESET_TOKEN
		data = map[string]any{"resetToken": result.ResetToken}
	}

	h.RespondSuccess(w, http.StatusOK, forgotPasswordMessage, data)
}

// ValidateResetToken handles GET /auth/validate-reset-token/{token}
// @Summary Validate a password reset token
// @Description Returns the associated email when the token is unused and unexpired.
// @Tags auth
// @Produce json
// @Param token path string true "Reset token"
// @Success 200 {object} Response "Token valid"
// @Failure 400 {object} Response "Invalid or expired token"
// @Router /auth/validate-reset-token/{token} [get]
func (h *AuthHandler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	email, err := h.authService.ValidateResetToken(r.Context(), token)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "", map[string]any{"email": email})
}

// ResetPassword handles POST /auth/reset-password
// @Summary Reset the password with a valid token
// @Description Consumes the token and updates the password atomically. A consumed or expired token is rejected.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ResetPasswordRequest true "Reset password request"
// @Success 200 {object} Response "Password reset"
// @Failure 400 {object} Response "Validation error or invalid token"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, "Senha redefinida com sucesso", nil)
}

// bearerToken reads the raw token from the Authorization header
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}
