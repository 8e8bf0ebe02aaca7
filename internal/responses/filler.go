package responses

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/formflow/backend/internal/forms"
	"github.com/formflow/backend/internal/models"
)

// Observer is notified of every answer change. Production wiring points this
// at the realtime hub; tests and offline use leave it nil.
type Observer func(fieldID string, value models.AnswerValue)

// Sink receives the completed response on submit.
type Sink interface {
	Create(ctx context.Context, resp *models.FormResponse) error
}

// Filler collects answers against a form and produces exactly one
// FormResponse per successful submission.
type Filler struct {
	form     *models.Form
	userID   uuid.UUID
	answers  models.ResponseData
	observer Observer
}

// NewFiller seeds an empty answer for every field of the form: empty string
// for text and dropdown, unset for number.
func NewFiller(form *models.Form, userID uuid.UUID) *Filler {
	answers := make(models.ResponseData, len(form.Fields))
	for _, field := range form.Fields {
		answers[field.ID] = models.AnswerValue{Kind: field.Type}
	}
	return &Filler{form: form, userID: userID, answers: answers}
}

// SetObserver registers a change observer.
func (f *Filler) SetObserver(fn Observer) { f.observer = fn }

// Answers returns a snapshot of the current answer map.
func (f *Filler) Answers() models.ResponseData {
	out := make(models.ResponseData, len(f.answers))
	for k, v := range f.answers {
		out[k] = v
	}
	return out
}

// SetAnswer records a raw text input for a field, parsing it according to the
// field's declared type. An unparseable number is rejected outright rather
// than stored as "no value". An empty string clears the answer.
func (f *Filler) SetAnswer(fieldID, raw string) error {
	field := f.form.FieldByID(fieldID)
	if field == nil {
		return fmt.Errorf("field %q not in form", fieldID)
	}
	if raw == "" {
		return f.SetValue(fieldID, models.AnswerValue{Kind: field.Type})
	}
	if field.Type == models.FieldNumber {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return forms.ValidationError{Field: fieldID, Message: fmt.Sprintf("%q is not a number", raw)}
		}
		return f.SetValue(fieldID, models.NumberAnswer(n))
	}
	return f.SetValue(fieldID, models.TextAnswer(field.Type, raw))
}

// SetValue records a typed answer. The value's kind must match the field's
// type, and a dropdown answer must be one of the field's option values.
func (f *Filler) SetValue(fieldID string, value models.AnswerValue) error {
	field := f.form.FieldByID(fieldID)
	if field == nil {
		return fmt.Errorf("field %q not in form", fieldID)
	}
	if value.Kind != field.Type {
		return fmt.Errorf("field %q: answer kind %q does not match field type %q", fieldID, value.Kind, field.Type)
	}
	if field.Type == models.FieldDropdown && !value.Empty() {
		if !optionValue(field, value.Text) {
			return forms.ValidationError{Field: fieldID, Message: fmt.Sprintf("%q is not one of the field's options", value.Text)}
		}
	}
	f.answers[fieldID] = value
	if f.observer != nil {
		f.observer(fieldID, value)
	}
	return nil
}

// Submit validates that every required field has a present, non-empty answer
// and hands the built response to the sink. Validation failure reports every
// missing field by label and writes nothing; a sink failure is forwarded and
// the answers stay intact for retry.
func (f *Filler) Submit(ctx context.Context, sink Sink) (*models.FormResponse, error) {
	var errs forms.ValidationErrors
	for _, field := range f.form.Fields {
		if !field.Required {
			continue
		}
		if f.answers[field.ID].Empty() {
			errs = append(errs, forms.ValidationError{
				Field:   field.ID,
				Message: fmt.Sprintf("%q is required", field.Label),
			})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	resp := &models.FormResponse{
		ID:          uuid.New(),
		FormID:      f.form.ID,
		UserID:      f.userID,
		Data:        f.Answers(),
		SubmittedAt: time.Now().UTC(),
	}
	if err := sink.Create(ctx, resp); err != nil {
		return nil, fmt.Errorf("store response: %w", err)
	}
	return resp, nil
}

func optionValue(field *models.FormField, value string) bool {
	for _, opt := range field.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
