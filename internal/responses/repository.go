package responses

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/formflow/backend/internal/models"
)

// Repository handles response persistence. Answer data is stored as a plain
// fieldId->value JSONB object and decoded against the form's schema on read.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a response repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Sink = (*Repository)(nil)

// Create inserts a response. Responses are immutable once written.
func (r *Repository) Create(ctx context.Context, resp *models.FormResponse) error {
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}
	const q = `INSERT INTO form_responses (id, form_id, user_id, data, submitted_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = r.pool.Exec(ctx, q, resp.ID, resp.FormID, resp.UserID, data, resp.SubmittedAt)
	return err
}

// ListByForm returns the form's responses in submission order.
func (r *Repository) ListByForm(ctx context.Context, form *models.Form) ([]models.FormResponse, error) {
	const q = `SELECT id, form_id, user_id, data, submitted_at
		FROM form_responses WHERE form_id = $1 ORDER BY submitted_at, id`
	rows, err := r.pool.Query(ctx, q, form.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.FormResponse
	for rows.Next() {
		var resp models.FormResponse
		var raw map[string]json.RawMessage
		if err := rows.Scan(&resp.ID, &resp.FormID, &resp.UserID, &raw, &resp.SubmittedAt); err != nil {
			return nil, err
		}
		resp.Data, err = models.ParseResponseData(form, raw)
		if err != nil {
			return nil, fmt.Errorf("response %s: %w", resp.ID, err)
		}
		list = append(list, resp)
	}
	return list, rows.Err()
}

// CountByForm returns the number of responses for a form (worker use).
func (r *Repository) CountByForm(ctx context.Context, formID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM form_responses WHERE form_id = $1`
	var count int
	err := r.pool.QueryRow(ctx, q, formID).Scan(&count)
	return count, err
}
