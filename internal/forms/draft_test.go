package forms

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflow/backend/internal/models"
)

func TestAddFieldAssignsUniqueIDs(t *testing.T) {
	d := NewDraft("Survey", "")

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		f, err := d.AddField(models.FieldText)
		require.NoError(t, err)
		assert.False(t, seen[f.ID], "duplicate field id %s", f.ID)
		seen[f.ID] = true
	}
}

func TestAddFieldRejectsUnknownType(t *testing.T) {
	d := NewDraft("Survey", "")

	_, err := d.AddField("checkbox")
	assert.Error(t, err)
	assert.Empty(t, d.Form().Fields)
}

func TestAddDropdownSeedsOneOption(t *testing.T) {
	d := NewDraft("Survey", "")

	f, err := d.AddField(models.FieldDropdown)
	require.NoError(t, err)
	require.Len(t, f.Options, 1)
	assert.NotEmpty(t, f.Options[0].ID)
	assert.Empty(t, f.Options[0].Label)
}

func TestUpdateFieldUnknownIDFails(t *testing.T) {
	d := NewDraft("Survey", "")

	err := d.UpdateField(models.FormField{ID: "missing", Label: "x", Type: models.FieldText})
	assert.Error(t, err)
}

func TestRemoveFieldUnknownIDIsNoOp(t *testing.T) {
	d := NewDraft("Survey", "")
	_, err := d.AddField(models.FieldText)
	require.NoError(t, err)

	d.RemoveField("missing")
	assert.Len(t, d.Form().Fields, 1)
}

func TestSaveNewFormFillsServerFields(t *testing.T) {
	store := NewMemoryStore()
	owner := uuid.New()

	d := NewDraft("Survey", "About us")
	f, err := d.AddField(models.FieldText)
	require.NoError(t, err)
	f.Label = "Name"
	require.NoError(t, d.UpdateField(f))

	saved, err := d.Save(context.Background(), store, owner)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Equal(t, owner, saved.CreatedBy)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)

	got, err := store.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Survey", got.Title)
	require.Len(t, got.Fields, 1)
	assert.Equal(t, "Name", got.Fields[0].Label)
}

func TestSaveValidationFailureWritesNothing(t *testing.T) {
	store := NewMemoryStore()

	d := NewDraft("Survey", "")
	_, err := d.AddField(models.FieldDropdown) // seeded option has no label/value
	require.NoError(t, err)

	_, err = d.Save(context.Background(), store, uuid.New())
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.NotEmpty(t, verrs)

	list, err := store.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	// draft stays editable; fixing the violation makes Save succeed
	f := d.Form().Fields[0]
	f.Label = "Service"
	f.Options[0].Label = "A"
	f.Options[0].Value = "a"
	require.NoError(t, d.UpdateField(f))
	_, err = d.Save(context.Background(), store, uuid.New())
	assert.NoError(t, err)
}

func TestSaveExistingFormUpdatesInPlace(t *testing.T) {
	store := NewMemoryStore()
	owner := uuid.New()

	d := NewDraft("Survey", "")
	saved, err := d.Save(context.Background(), store, owner)
	require.NoError(t, err)

	edit := EditDraft(saved)
	edit.SetTitle("Survey v2")
	updated, err := edit.Save(context.Background(), store, owner)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(saved.UpdatedAt) || updated.UpdatedAt.Equal(saved.UpdatedAt))

	list, err := store.List(context.Background(), &owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Survey v2", list[0].Title)
}

func TestDeleteRemovesFormEverywhere(t *testing.T) {
	store := NewMemoryStore()
	owner := uuid.New()

	saved, err := NewDraft("Survey", "").Save(context.Background(), store, owner)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), saved.ID))

	_, err = store.GetByID(context.Background(), saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := store.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListFiltersByCreator(t *testing.T) {
	store := NewMemoryStore()
	alice, bob := uuid.New(), uuid.New()

	_, err := NewDraft("Alice's", "").Save(context.Background(), store, alice)
	require.NoError(t, err)
	_, err = NewDraft("Bob's", "").Save(context.Background(), store, bob)
	require.NoError(t, err)

	all, err := store.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := store.List(context.Background(), &alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Alice's", mine[0].Title)
}
