package forms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/formflow/backend/internal/models"
)

// Draft is an in-memory form definition being edited, new or loaded for edit.
// Nothing is persisted until Save succeeds; a failed save leaves the draft
// untouched so editing can continue.
type Draft struct {
	form     models.Form
	existing bool // loaded from the store, so Save updates instead of creating
}

// NewDraft starts a draft for a brand new form.
func NewDraft(title, description string) *Draft {
	return &Draft{form: models.Form{Title: title, Description: description}}
}

// EditDraft starts a draft from a stored form.
func EditDraft(form *models.Form) *Draft {
	d := &Draft{existing: true}
	d.form = *form
	d.form.Fields = append([]models.FormField(nil), form.Fields...)
	return d
}

// SetTitle updates the draft title.
func (d *Draft) SetTitle(title string) { d.form.Title = title }

// SetDescription updates the draft description.
func (d *Draft) SetDescription(desc string) { d.form.Description = desc }

// Form returns a snapshot of the draft's current state.
func (d *Draft) Form() models.Form {
	out := d.form
	out.Fields = append([]models.FormField(nil), d.form.Fields...)
	return out
}

// AddField appends a new field of the given type with an empty label and
// placeholder. Dropdown fields are seeded with one empty option so the editor
// has a row to fill in.
func (d *Draft) AddField(fieldType models.FieldType) (models.FormField, error) {
	if !fieldType.Valid() {
		return models.FormField{}, fmt.Errorf("unknown field type %q", fieldType)
	}
	field := models.FormField{
		ID:   NewFieldID(),
		Type: fieldType,
	}
	if fieldType == models.FieldDropdown {
		field.Options = []models.FormFieldOption{{ID: NewOptionID()}}
	}
	d.form.Fields = append(d.form.Fields, field)
	return field, nil
}

// UpdateField replaces the field with a matching id.
func (d *Draft) UpdateField(updated models.FormField) error {
	for i := range d.form.Fields {
		if d.form.Fields[i].ID == updated.ID {
			d.form.Fields[i] = updated
			return nil
		}
	}
	return fmt.Errorf("field %q not in draft", updated.ID)
}

// RemoveField deletes the field with the given id. Removing an unknown id is
// a no-op.
func (d *Draft) RemoveField(id string) {
	for i := range d.form.Fields {
		if d.form.Fields[i].ID == id {
			d.form.Fields = append(d.form.Fields[:i], d.form.Fields[i+1:]...)
			return
		}
	}
}

// Save validates the draft and persists it through the store. Validation
// failure returns the full violation list and writes nothing. A store failure
// is returned as-is; in both cases the draft stays editable.
func (d *Draft) Save(ctx context.Context, store Store, userID uuid.UUID) (*models.Form, error) {
	if errs := Validate(&d.form); len(errs) > 0 {
		return nil, errs
	}

	now := time.Now().UTC()
	saved := d.Form()
	saved.UpdatedAt = now
	if d.existing {
		if err := store.Update(ctx, &saved); err != nil {
			return nil, fmt.Errorf("update form: %w", err)
		}
	} else {
		saved.ID = uuid.New()
		saved.CreatedBy = userID
		saved.CreatedAt = now
		if err := store.Create(ctx, &saved); err != nil {
			return nil, fmt.Errorf("create form: %w", err)
		}
	}

	d.form = saved
	d.existing = true
	return &saved, nil
}
