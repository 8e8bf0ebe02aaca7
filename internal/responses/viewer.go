package responses

import (
	"time"

	"github.com/google/uuid"

	"github.com/formflow/backend/internal/models"
)

// Column is one table column: a form field in declaration order.
type Column struct {
	FieldID string           `json:"field_id"`
	Label   string           `json:"label"`
	Type    models.FieldType `json:"type"`
}

// Row is one submitted response projected onto the form's columns.
type Row struct {
	ResponseID  uuid.UUID            `json:"response_id"`
	UserID      uuid.UUID            `json:"user_id"`
	SubmittedAt time.Time            `json:"submitted_at"`
	Cells       []models.AnswerValue `json:"cells"` // aligned with Columns
}

// Table is the read-only tabular projection of a form's responses. Rows keep
// the order the store returned them in; no independent sort is imposed.
type Table struct {
	FormID  uuid.UUID `json:"form_id"`
	Title   string    `json:"title"`
	Columns []Column  `json:"columns"`
	Rows    []Row     `json:"rows"`
}

// NewTable builds the viewer projection for a form and its responses.
func NewTable(form *models.Form, list []models.FormResponse) *Table {
	t := &Table{
		FormID:  form.ID,
		Title:   form.Title,
		Columns: make([]Column, len(form.Fields)),
	}
	for i, field := range form.Fields {
		t.Columns[i] = Column{FieldID: field.ID, Label: field.Label, Type: field.Type}
	}
	for _, resp := range list {
		row := Row{
			ResponseID:  resp.ID,
			UserID:      resp.UserID,
			SubmittedAt: resp.SubmittedAt,
			Cells:       make([]models.AnswerValue, len(form.Fields)),
		}
		for i, field := range form.Fields {
			if v, ok := resp.Data[field.ID]; ok {
				row.Cells[i] = v
			} else {
				row.Cells[i] = models.AnswerValue{Kind: field.Type}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
