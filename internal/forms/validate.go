package forms

import (
	"fmt"
	"strings"

	"github.com/formflow/backend/internal/models"
)

// ValidationError is one user-correctable problem with a form definition or a
// submitted answer. Field holds the offending field id when the problem is
// field-scoped.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// ValidationErrors is the complete list of violations found in one pass, so a
// caller can surface all problems at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks a form definition before persistence and returns every
// violation found. A nil result means the form is valid for saving.
func Validate(form *models.Form) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(form.Title) == "" {
		errs = append(errs, ValidationError{Message: "form title must not be empty"})
	}
	for _, field := range form.Fields {
		if !field.Type.Valid() {
			errs = append(errs, ValidationError{Field: field.ID, Message: fmt.Sprintf("unknown field type %q", field.Type)})
		}
		if strings.TrimSpace(field.Label) == "" {
			errs = append(errs, ValidationError{Field: field.ID, Message: "field label must not be empty"})
		}
		if field.Type != models.FieldDropdown {
			continue
		}
		if len(field.Options) == 0 {
			errs = append(errs, ValidationError{Field: field.ID, Message: "dropdown field must have at least one option"})
			continue
		}
		for _, opt := range field.Options {
			if strings.TrimSpace(opt.Label) == "" || strings.TrimSpace(opt.Value) == "" {
				errs = append(errs, ValidationError{Field: field.ID, Message: "dropdown options must have both a label and a value"})
				break
			}
		}
	}
	return errs
}
