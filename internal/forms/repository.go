package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formflow/backend/internal/models"
)

// Repository is the PostgreSQL Store. Field definitions are stored as a JSONB
// document per form; every mutating operation rewrites the whole document.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a form repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

// Create inserts a new form.
func (r *Repository) Create(ctx context.Context, form *models.Form) error {
	fields, err := json.Marshal(form.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	const q = `INSERT INTO forms (id, title, description, fields, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.pool.Exec(ctx, q, form.ID, form.Title, form.Description, fields, form.CreatedBy, form.CreatedAt, form.UpdatedAt)
	return err
}

// Update replaces the stored form by id. Last writer wins; an absent id
// touches zero rows.
func (r *Repository) Update(ctx context.Context, form *models.Form) error {
	fields, err := json.Marshal(form.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	const q = `UPDATE forms SET title = $1, description = $2, fields = $3, updated_at = $4 WHERE id = $5`
	_, err = r.pool.Exec(ctx, q, form.Title, form.Description, fields, form.UpdatedAt, form.ID)
	return err
}

// Delete removes a form by id. Responses cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM forms WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// GetByID returns a form by id, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Form, error) {
	const q = `SELECT id, title, description, fields, created_by, response_count, created_at, updated_at
		FROM forms WHERE id = $1`
	form, err := scanForm(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return form, nil
}

// List returns all forms, newest first, optionally filtered by creator.
func (r *Repository) List(ctx context.Context, createdBy *uuid.UUID) ([]models.Form, error) {
	base := `SELECT id, title, description, fields, created_by, response_count, created_at, updated_at FROM forms`
	var args []interface{}
	if createdBy != nil {
		base += ` WHERE created_by = $1`
		args = append(args, *createdBy)
	}
	rows, err := r.pool.Query(ctx, base+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Form
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *form)
	}
	return list, rows.Err()
}

// SetResponseCount writes the denormalized response counter (worker only).
func (r *Repository) SetResponseCount(ctx context.Context, id uuid.UUID, count int) error {
	const q = `UPDATE forms SET response_count = $1 WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, count, id)
	return err
}

func scanForm(row pgx.Row) (*models.Form, error) {
	var form models.Form
	var fields []byte
	if err := row.Scan(&form.ID, &form.Title, &form.Description, &fields, &form.CreatedBy, &form.ResponseCount, &form.CreatedAt, &form.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fields, &form.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return &form, nil
}
