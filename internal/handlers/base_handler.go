// Package handlers exposes the HTTP API
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/services"
	"go.uber.org/zap"
)

// Response is the JSON envelope shared by every endpoint
type Response struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message,omitempty"`
	Data    any                      `json:"data,omitempty"`
	Errors  []models.ValidationError `json:"errors,omitempty"`
}

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondSuccess sends a success envelope
func (h *BaseHandler) RespondSuccess(w http.ResponseWriter, status int, message string, data any) {
	h.RespondJSON(w, status, &Response{Success: true, Message: message, Data: data})
}

// RespondError sends an error envelope
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, &Response{Success: false, Message: message})
}

// RespondServiceError maps a service error to the HTTP envelope.
// Unrecognized errors are logged server-side and surface as a generic 500.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationFailedError
	if errors.As(err, &validationErr) {
		h.RespondJSON(w, http.StatusBadRequest, &Response{
			Success: false,
			Message: "Dados inválidos",
			Errors:  validationErr.Errors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		h.RespondError(w, http.StatusUnauthorized, "Credenciais inválidas")
	case errors.Is(err, services.ErrInvalidToken):
		h.RespondError(w, http.StatusUnauthorized, "Token inválido ou expirado")
	case errors.Is(err, services.ErrEmailInUse):
		h.RespondError(w, http.StatusBadRequest, "Email já está em uso")
	case errors.Is(err, services.ErrCurrentPasswordIncorrect):
		h.RespondError(w, http.StatusBadRequest, "Senha atual incorreta")
	case errors.Is(err, services.ErrInvalidResetToken):
		h.RespondError(w, http.StatusBadRequest, "Token inválido ou expirado")
	case errors.Is(err, services.ErrNotFound):
		h.RespondError(w, http.StatusNotFound, "Recurso não encontrado")
	default:
		h.Logger.Error("internal error", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "Erro interno do servidor")
	}
}
