package responses

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formflow/backend/internal/forms"
	"github.com/formflow/backend/internal/middleware"
	"github.com/formflow/backend/internal/models"
	"github.com/formflow/backend/pkg/response"
)

// Broadcaster pushes live events to viewers of a form's responses page.
type Broadcaster interface {
	BroadcastToFormAndPublish(formID uuid.UUID, event string, payload interface{})
}

// Enqueuer schedules the asynchronous response-count refresh.
type Enqueuer interface {
	EnqueueResponseCount(ctx context.Context, formID uuid.UUID) error
}

// SubmitRequest is the body for POST /forms/:id/responses.
type SubmitRequest struct {
	Data map[string]json.RawMessage `json:"data"`
}

// Handler handles response HTTP endpoints.
type Handler struct {
	formStore forms.Store
	repo      *Repository
	queue     Enqueuer
	hub       Broadcaster
	logger    *zap.Logger
}

// NewHandler creates a response handler. queue and hub may be nil.
func NewHandler(formStore forms.Store, repo *Repository, queue Enqueuer, hub Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{formStore: formStore, repo: repo, queue: queue, hub: hub, logger: logger}
}

// Submit handles POST /forms/:id/responses.
func (h *Handler) Submit(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	form, err := h.formStore.GetByID(c.Request.Context(), formID)
	if err != nil {
		h.lookupError(c, err)
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	data, err := models.ParseResponseData(form, req.Data)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	filler := NewFiller(form, userID)
	var verrs forms.ValidationErrors
	for fieldID, value := range data {
		if err := filler.SetValue(fieldID, value); err != nil {
			var ve forms.ValidationError
			if errors.As(err, &ve) {
				verrs = append(verrs, ve)
				continue
			}
			response.BadRequest(c, err.Error())
			return
		}
	}
	if len(verrs) > 0 {
		response.UnprocessableEntity(c, "response is not valid", verrs)
		return
	}

	resp, err := filler.Submit(c.Request.Context(), h.repo)
	if err != nil {
		if errors.As(err, &verrs) {
			response.UnprocessableEntity(c, "response is not valid", verrs)
			return
		}
		h.logger.Error("submit response", zap.Error(err), zap.String("form_id", formID.String()))
		response.Internal(c, "failed to submit response")
		return
	}

	if h.queue != nil {
		if err := h.queue.EnqueueResponseCount(c.Request.Context(), formID); err != nil {
			h.logger.Warn("enqueue response count refresh", zap.Error(err))
		}
	}
	if h.hub != nil {
		h.hub.BroadcastToFormAndPublish(formID, "response_submitted", resp)
	}
	response.Created(c, resp)
}

// ListByForm handles GET /forms/:id/responses (owner only). Returns the
// tabular projection: columns in field declaration order, rows in
// submission order.
func (h *Handler) ListByForm(c *gin.Context) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	form, err := h.formStore.GetByID(c.Request.Context(), formID)
	if err != nil {
		h.lookupError(c, err)
		return
	}
	if form.CreatedBy != userID {
		response.Forbidden(c, "only the creator can view responses")
		return
	}

	list, err := h.repo.ListByForm(c.Request.Context(), form)
	if err != nil {
		h.logger.Error("list responses", zap.Error(err), zap.String("form_id", formID.String()))
		response.Internal(c, "failed to list responses")
		return
	}
	response.OK(c, NewTable(form, list))
}

func (h *Handler) lookupError(c *gin.Context, err error) {
	if errors.Is(err, forms.ErrNotFound) {
		response.NotFound(c, "form not found")
		return
	}
	h.logger.Error("load form", zap.Error(err))
	response.Internal(c, "failed to load form")
}
