package services

import (
	"context"
	"errors"
	"strings"

	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/repositories"
)

// UserAdminRepository is the interface that wraps methods for administrative user access
type UserAdminRepository interface {
	GetByID(ctx context.Context, userID int) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// adminService implements administrative user management.
// Accounts are never hard-deleted; removal is is_active = false.
type adminService struct {
	userRepo UserAdminRepository
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo UserAdminRepository) *adminService {
	return &adminService{
		userRepo: userRepo,
	}
}

// ListUsers returns all users for the admin dashboard
func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// UpdateUser applies a partial administrative edit to a user
func (s *adminService) UpdateUser(ctx context.Context, userID int, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len([]rune(name)) < minNameLength {
			return nil, &ValidationFailedError{Errors: []models.ValidationError{{
				Field:   "name",
				Message: "Nome deve ter no mínimo 2 caracteres",
			}}}
		}
		user.Name = name
	}

	if req.Role != nil {
		if *req.Role != models.RoleAdmin && *req.Role != models.RoleEditor {
			return nil, &ValidationFailedError{Errors: []models.ValidationError{{
				Field:   "role",
				Message: "Perfil inválido",
			}}}
		}
		user.Role = *req.Role
	}

	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

// DeactivateUser soft-deletes a user account
func (s *adminService) DeactivateUser(ctx context.Context, userID int) error {
	inactive := false
	_, err := s.UpdateUser(ctx, userID, &models.UpdateUserRequest{IsActive: &inactive})
	return err
}
