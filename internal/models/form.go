package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldType is the input type of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDropdown FieldType = "dropdown"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldDropdown:
		return true
	}
	return false
}

// FormFieldOption is one selectable choice of a dropdown field.
type FormFieldOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormField is one input definition within a form.
// Options is present only for dropdown fields.
type FormField struct {
	ID          string            `json:"id"` // unique within the form
	Label       string            `json:"label"`
	Type        FieldType         `json:"type"`
	Required    bool              `json:"required"`
	Placeholder string            `json:"placeholder,omitempty"`
	Options     []FormFieldOption `json:"options,omitempty"`
}

// Form is a user-authored definition of fields to be collected from respondents.
type Form struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	Fields        []FormField `json:"fields"`
	CreatedBy     uuid.UUID   `json:"created_by"`
	ResponseCount int         `json:"response_count"` // denormalized, refreshed by the worker
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// FieldByID returns the field with the given id, or nil.
func (f *Form) FieldByID(id string) *FormField {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return &f.Fields[i]
		}
	}
	return nil
}
