package forms

import "github.com/google/uuid"

// NewFieldID returns an identifier for a new field. Random UUIDs give the
// required uniqueness within a form (and beyond, which is harmless).
func NewFieldID() string {
	return "field-" + uuid.New().String()
}

// NewOptionID returns an identifier for a new dropdown option.
func NewOptionID() string {
	return "opt-" + uuid.New().String()
}
