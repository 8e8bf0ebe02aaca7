package forms

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formflow/backend/internal/middleware"
	"github.com/formflow/backend/internal/models"
	"github.com/formflow/backend/pkg/response"
)

// SaveRequest is the body for POST /forms and PUT /forms/:id.
type SaveRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Fields      []models.FormField `json:"fields"`
}

// Handler handles form HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a form handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Create handles POST /forms.
func (h *Handler) Create(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	draft := NewDraft(req.Title, req.Description)
	for _, field := range req.Fields {
		draft.form.Fields = append(draft.form.Fields, withIDs(field))
	}

	form, err := draft.Save(c.Request.Context(), h.store, userID)
	if err != nil {
		h.saveError(c, err)
		return
	}
	response.Created(c, form)
}

// Update handles PUT /forms/:id (owner only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	existing, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, err)
		return
	}
	if existing.CreatedBy != userID {
		response.Forbidden(c, "only the creator can update this form")
		return
	}

	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	draft := EditDraft(existing)
	draft.SetTitle(req.Title)
	draft.SetDescription(req.Description)
	draft.form.Fields = nil
	for _, field := range req.Fields {
		draft.form.Fields = append(draft.form.Fields, withIDs(field))
	}

	form, err := draft.Save(c.Request.Context(), h.store, userID)
	if err != nil {
		h.saveError(c, err)
		return
	}
	response.OK(c, form)
}

// GetByID handles GET /forms/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	form, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, err)
		return
	}
	response.OK(c, form)
}

// List handles GET /forms. Query ?mine=1 returns only forms created by the
// current user.
func (h *Handler) List(c *gin.Context) {
	var createdBy *uuid.UUID
	if c.Query("mine") == "1" {
		uid := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		createdBy = &uid
	}
	list, err := h.store.List(c.Request.Context(), createdBy)
	if err != nil {
		h.logger.Error("list forms", zap.Error(err))
		response.Internal(c, "failed to list forms")
		return
	}
	response.OK(c, list)
}

// Delete handles DELETE /forms/:id (owner only). Responses cascade.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	form, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.lookupError(c, err)
		return
	}
	if form.CreatedBy != userID {
		response.Forbidden(c, "only the creator can delete this form")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete form", zap.Error(err), zap.String("form_id", id.String()))
		response.Internal(c, "failed to delete form")
		return
	}
	response.NoContent(c)
}

func (h *Handler) saveError(c *gin.Context, err error) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		response.UnprocessableEntity(c, "form is not valid", verrs)
		return
	}
	h.logger.Error("save form", zap.Error(err))
	response.Internal(c, "failed to save form")
}

func (h *Handler) lookupError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "form not found")
		return
	}
	h.logger.Error("load form", zap.Error(err))
	response.Internal(c, "failed to load form")
}

// withIDs fills in missing field/option ids so clients may omit them for
// newly added fields.
func withIDs(field models.FormField) models.FormField {
	if field.ID == "" {
		field.ID = NewFieldID()
	}
	for i := range field.Options {
		if field.Options[i].ID == "" {
			field.Options[i].ID = NewOptionID()
		}
	}
	return field
}
