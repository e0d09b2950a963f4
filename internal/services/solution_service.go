package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/repositories"
)

// SolutionRepository is the interface that wraps methods for solution data access
type SolutionRepository interface {
	Create(ctx context.Context, solution *models.Solution) error
	GetByID(ctx context.Context, id int) (*models.Solution, error)
	ListActive(ctx context.Context) ([]models.Solution, error)
	ListAll(ctx context.Context) ([]models.Solution, error)
	Update(ctx context.Context, solution *models.Solution) error
	Delete(ctx context.Context, id int) error
}

// solutionService implements solution business logic
type solutionService struct {
	solutionRepo SolutionRepository
}

// NewSolutionService creates a new solution service
func NewSolutionService(solutionRepo SolutionRepository) *solutionService {
	return &solutionService{
		solutionRepo: solutionRepo,
	}
}

// ListActive returns active solutions in display order for the public site
func (s *solutionService) ListActive(ctx context.Context) ([]models.Solution, error) {
	return s.solutionRepo.ListActive(ctx)
}

// ListAll returns every solution for the admin dashboard
func (s *solutionService) ListAll(ctx context.Context) ([]models.Solution, error) {
	return s.solutionRepo.ListAll(ctx)
}

// Create validates and stores a new solution
func (s *solutionService) Create(ctx context.Context, req *models.SaveSolutionRequest) (*models.Solution, error) {
	if err := validateSolutionRequest(req); err != nil {
		return nil, err
	}

	solution := &models.Solution{
		Title:        strings.TrimSpace(req.Title),
		Slug:         slug.Make(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Icon:         strings.TrimSpace(req.Icon),
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	}

	if err := s.solutionRepo.Create(ctx, solution); err != nil {
		if errors.Is(err, repositories.ErrSlugExists) {
			return nil, &ValidationFailedError{Errors: []models.ValidationError{{
				Field:   "title",
				Message: "Já existe uma solução com este título",
			}}}
		}
		return nil, err
	}

	return solution, nil
}

// Update validates and saves changes to an existing solution
func (s *solutionService) Update(ctx context.Context, id int, req *models.SaveSolutionRequest) (*models.Solution, error) {
	if err := validateSolutionRequest(req); err != nil {
		return nil, err
	}

	solution, err := s.solutionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSolutionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	solution.Title = strings.TrimSpace(req.Title)
	solution.Slug = slug.Make(req.Title)
	solution.Description = strings.TrimSpace(req.Description)
	solution.Icon = strings.TrimSpace(req.Icon)
	solution.DisplayOrder = req.DisplayOrder
	solution.IsActive = req.IsActive

	if err := s.solutionRepo.Update(ctx, solution); err != nil {
		if errors.Is(err, repositories.ErrSolutionNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, repositories.ErrSlugExists) {
			return nil, &ValidationFailedError{Errors: []models.ValidationError{{
				Field:   "title",
				Message: "Já existe uma solução com este título",
			}}}
		}
		return nil, err
	}

	return solution, nil
}

// Delete removes a solution permanently
func (s *solutionService) Delete(ctx context.Context, id int) error {
	if err := s.solutionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSolutionNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func validateSolutionRequest(req *models.SaveSolutionRequest) error {
	var validationErrors []models.ValidationError
	if strings.TrimSpace(req.Title) == "" {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "title",
			Message: "Título é obrigatório",
		})
	}
	if strings.TrimSpace(req.Description) == "" {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "description",
			Message: "Descrição é obrigatória",
		})
	}
	if req.DisplayOrder < 0 {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "display_order",
			Message: fmt.Sprintf("Ordem de exibição inválida: %d", req.DisplayOrder),
		})
	}
	if len(validationErrors) > 0 {
		return &ValidationFailedError{Errors: validationErrors}
	}
	return nil
}
