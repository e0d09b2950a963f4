package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mundodosbots/backend/internal/models"
)

// solutionRepository implements solution data access over MySQL
type solutionRepository struct {
	db *sql.DB
}

// NewSolutionRepository creates a new solution repository
func NewSolutionRepository(db *sql.DB) *solutionRepository {
	return &solutionRepository{
		db: db,
	}
}

const solutionColumns = `id, title, slug, description, icon, display_order, is_active, created_at, updated_at`

func scanSolution(row interface{ Scan(dest ...any) error }, solution *models.Solution) error {
	return row.Scan(
		&solution.ID,
		&solution.Title,
		&solution.Slug,
		&solution.Description,
		&solution.Icon,
		&solution.DisplayOrder,
		&solution.IsActive,
		&solution.CreatedAt,
		&solution.UpdatedAt,
	)
}

// Create inserts a new solution into the database
func (r *solutionRepository) Create(ctx context.Context, solution *models.Solution) error {
	query := `
		INSERT INTO solutions (title, slug, description, icon, display_order, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		solution.Title, solution.Slug, solution.Description,
		solution.Icon, solution.DisplayOrder, solution.IsActive,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create solution: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	solution.ID = int(id)
	return nil
}

// GetByID retrieves a solution by its ID
func (r *solutionRepository) GetByID(ctx context.Context, id int) (*models.Solution, error) {
	query := `
		SELECT ` + solutionColumns + `
		FROM solutions
		WHERE id = ?
		LIMIT 1
	`

	solution := &models.Solution{}
	err := scanSolution(r.db.QueryRowContext(ctx, query, id), solution)

	if err == sql.ErrNoRows {
		return nil, ErrSolutionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get solution by id: %w", err)
	}

	return solution, nil
}

// ListActive retrieves active solutions ordered for display
func (r *solutionRepository) ListActive(ctx context.Context) ([]models.Solution, error) {
	query := `
		SELECT ` + solutionColumns + `
		FROM solutions
		WHERE is_active = 1
		ORDER BY display_order ASC, id ASC
	`

	return r.list(ctx, query)
}

// ListAll retrieves all solutions including inactive ones
func (r *solutionRepository) ListAll(ctx context.Context) ([]models.Solution, error) {
	query := `
		SELECT ` + solutionColumns + `
		FROM solutions
		ORDER BY display_order ASC, id ASC
	`

	return r.list(ctx, query)
}

func (r *solutionRepository) list(ctx context.Context, query string) ([]models.Solution, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list solutions: %w", err)
	}
	defer rows.Close()

	var solutions []models.Solution
	for rows.Next() {
		var solution models.Solution
		if err := scanSolution(rows, &solution); err != nil {
			return nil, fmt.Errorf("failed to scan solution: %w", err)
		}
		solutions = append(solutions, solution)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate solutions: %w", err)
	}

	return solutions, nil
}

// Update saves changes to an existing solution
func (r *solutionRepository) Update(ctx context.Context, solution *models.Solution) error {
	query := `
		UPDATE solutions
		SET title = ?, slug = ?, description = ?, icon = ?, display_order = ?, is_active = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		solution.Title, solution.Slug, solution.Description,
		solution.Icon, solution.DisplayOrder, solution.IsActive, solution.ID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to update solution: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSolutionNotFound
	}

	return nil
}

// Delete removes a solution by ID
func (r *solutionRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM solutions WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete solution: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSolutionNotFound
	}

	return nil
}
