package responses

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflow/backend/internal/models"
)

func TestNewTableProjectsColumnsInFieldOrder(t *testing.T) {
	form := surveyForm()

	table := NewTable(form, nil)
	assert.Equal(t, form.ID, table.FormID)
	assert.Equal(t, "Survey", table.Title)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, []string{"Name", "Age", "Team"}, []string{
		table.Columns[0].Label, table.Columns[1].Label, table.Columns[2].Label,
	})
	assert.Empty(t, table.Rows)
}

func TestNewTableAlignsCellsWithColumns(t *testing.T) {
	form := surveyForm()
	user := uuid.New()
	first := models.FormResponse{
		ID:     uuid.New(),
		FormID: form.ID,
		UserID: user,
		Data: models.ResponseData{
			"f1": models.TextAnswer(models.FieldText, "Alice"),
			"f2": models.NumberAnswer(30),
			"f3": models.TextAnswer(models.FieldDropdown, "eng"),
		},
		SubmittedAt: time.Now().UTC().Add(-time.Hour),
	}
	second := models.FormResponse{
		ID:     uuid.New(),
		FormID: form.ID,
		UserID: user,
		Data: models.ResponseData{
			"f1": models.TextAnswer(models.FieldText, "Bob"),
			// f2 and f3 never answered
		},
		SubmittedAt: time.Now().UTC(),
	}

	table := NewTable(form, []models.FormResponse{first, second})
	require.Len(t, table.Rows, 2)

	// rows keep store order
	assert.Equal(t, first.ID, table.Rows[0].ResponseID)
	assert.Equal(t, second.ID, table.Rows[1].ResponseID)

	row := table.Rows[0]
	require.Len(t, row.Cells, 3)
	assert.Equal(t, "Alice", row.Cells[0].Text)
	assert.Equal(t, 30.0, row.Cells[1].Number)
	assert.Equal(t, "eng", row.Cells[2].Text)

	// missing answers render as empty cells of the column's type
	sparse := table.Rows[1]
	assert.Equal(t, "Bob", sparse.Cells[0].Text)
	assert.True(t, sparse.Cells[1].Empty())
	assert.Equal(t, models.FieldNumber, sparse.Cells[1].Kind)
	assert.True(t, sparse.Cells[2].Empty())
}
