package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/formflow/backend/internal/middleware"
	"github.com/formflow/backend/internal/models"
	"github.com/formflow/backend/pkg/response"
)

func newTestRouter(store Store, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextUserID, userID) })
	r.GET("/forms", h.List)
	r.POST("/forms", h.Create)
	r.GET("/forms/:id", h.GetByID)
	r.PUT("/forms/:id", h.Update)
	r.DELETE("/forms/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeForm(t *testing.T, w *httptest.ResponseRecorder) models.Form {
	t.Helper()
	var body struct {
		Success bool        `json:"success"`
		Data    models.Form `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	return body.Data
}

func TestCreateFormFillsMissingIDs(t *testing.T) {
	owner := uuid.New()
	r := newTestRouter(NewMemoryStore(), owner)

	w := doJSON(t, r, http.MethodPost, "/forms", SaveRequest{
		Title: "Survey",
		Fields: []models.FormField{
			{Label: "Name", Type: models.FieldText, Required: true},
			{Label: "Team", Type: models.FieldDropdown, Options: []models.FormFieldOption{{Label: "Eng", Value: "eng"}}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	form := decodeForm(t, w)
	assert.Equal(t, owner, form.CreatedBy)
	require.Len(t, form.Fields, 2)
	assert.NotEmpty(t, form.Fields[0].ID)
	assert.NotEmpty(t, form.Fields[1].Options[0].ID)
}

func TestCreateInvalidFormReturns422WithViolations(t *testing.T) {
	r := newTestRouter(NewMemoryStore(), uuid.New())

	w := doJSON(t, r, http.MethodPost, "/forms", SaveRequest{
		Title:  "",
		Fields: []models.FormField{{Label: "", Type: models.FieldText}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	details, ok := body.Details.([]interface{})
	require.True(t, ok)
	assert.Len(t, details, 2)
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	store := NewMemoryStore()
	owner := uuid.New()
	saved, err := NewDraft("Survey", "").Save(context.Background(), store, owner)
	require.NoError(t, err)

	r := newTestRouter(store, uuid.New()) // different user
	w := doJSON(t, r, http.MethodPut, "/forms/"+saved.ID.String(), SaveRequest{Title: "Hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	got, err := store.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Survey", got.Title)
}

func TestGetUnknownFormReturns404(t *testing.T) {
	r := newTestRouter(NewMemoryStore(), uuid.New())

	w := doJSON(t, r, http.MethodGet, "/forms/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/forms/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteFormLifecycle(t *testing.T) {
	store := NewMemoryStore()
	owner := uuid.New()
	saved, err := NewDraft("Survey", "").Save(context.Background(), store, owner)
	require.NoError(t, err)

	r := newTestRouter(store, owner)
	w := doJSON(t, r, http.MethodDelete, "/forms/"+saved.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/forms/"+saved.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListMineFiltersByCurrentUser(t *testing.T) {
	store := NewMemoryStore()
	alice, bob := uuid.New(), uuid.New()
	_, err := NewDraft("Alice's", "").Save(context.Background(), store, alice)
	require.NoError(t, err)
	_, err = NewDraft("Bob's", "").Save(context.Background(), store, bob)
	require.NoError(t, err)

	r := newTestRouter(store, alice)

	w := doJSON(t, r, http.MethodGet, "/forms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all struct {
		Data []models.Form `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all.Data, 2)

	w = doJSON(t, r, http.MethodGet, "/forms?mine=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Data []models.Form `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine.Data, 1)
	assert.Equal(t, "Alice's", mine.Data[0].Title)
}
