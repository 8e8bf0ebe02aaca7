package forms

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/formflow/backend/internal/models"
)

// ErrNotFound is returned when the requested form does not exist.
var ErrNotFound = errors.New("form not found")

// Store is the persistence contract for forms. The production implementation
// is Repository (PostgreSQL); MemoryStore backs tests and local tooling.
type Store interface {
	Create(ctx context.Context, form *models.Form) error
	// Update replaces the stored form by id. Updating an absent id is a
	// caller error, not a reported failure: zero rows are touched.
	Update(ctx context.Context, form *models.Form) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Form, error)
	List(ctx context.Context, createdBy *uuid.UUID) ([]models.Form, error)
}

// MemoryStore is an in-memory Store. Last writer wins on concurrent updates,
// matching the contract Repository offers.
type MemoryStore struct {
	mu    sync.RWMutex
	forms map[uuid.UUID]models.Form
	order []uuid.UUID
}

// NewMemoryStore creates an empty in-memory form store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{forms: make(map[uuid.UUID]models.Form)}
}

func (s *MemoryStore) Create(_ context.Context, form *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[form.ID]; !ok {
		s.order = append(s.order, form.ID)
	}
	s.forms[form.ID] = cloneForm(form)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, form *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[form.ID]; !ok {
		return nil
	}
	s.forms[form.ID] = cloneForm(form)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forms, id)
	for i, fid := range s.order {
		if fid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.forms[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneForm(&form)
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context, createdBy *uuid.UUID) ([]models.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Form
	for _, id := range s.order {
		form := s.forms[id]
		if createdBy != nil && form.CreatedBy != *createdBy {
			continue
		}
		list = append(list, cloneForm(&form))
	}
	return list, nil
}

func cloneForm(form *models.Form) models.Form {
	out := *form
	out.Fields = make([]models.FormField, len(form.Fields))
	copy(out.Fields, form.Fields)
	for i, field := range out.Fields {
		if field.Options != nil {
			opts := make([]models.FormFieldOption, len(field.Options))
			copy(opts, field.Options)
			out.Fields[i].Options = opts
		}
	}
	return out
}
