package applications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formflow/backend/internal/models"
)

// Repository handles candidate application persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an application repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new candidate application.
func (r *Repository) Create(ctx context.Context, a *models.CandidateApplication) error {
	const q = `INSERT INTO candidate_applications (id, applying_for, name, email, phone, address, degree, cover_letter, resume_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q, a.ID, a.ApplyingFor, a.Name, a.Email, a.Phone, a.Address, a.Degree, a.CoverLetter, a.ResumeKey).
		Scan(&a.CreatedAt)
}

// List returns all applications, newest first (admin use).
func (r *Repository) List(ctx context.Context) ([]models.CandidateApplication, error) {
	const q = `SELECT id, applying_for, name, email, phone, address, degree, cover_letter, resume_key, created_at
		FROM candidate_applications ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.CandidateApplication
	for rows.Next() {
		var a models.CandidateApplication
		if err := rows.Scan(&a.ID, &a.ApplyingFor, &a.Name, &a.Email, &a.Phone, &a.Address, &a.Degree, &a.CoverLetter, &a.ResumeKey, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetByID returns one application by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.CandidateApplication, error) {
	const q = `SELECT id, applying_for, name, email, phone, address, degree, cover_letter, resume_key, created_at
		FROM candidate_applications WHERE id = $1`
	var a models.CandidateApplication
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.ApplyingFor, &a.Name, &a.Email, &a.Phone, &a.Address, &a.Degree, &a.CoverLetter, &a.ResumeKey, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
