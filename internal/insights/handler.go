package insights

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formflow/backend/internal/forms"
	"github.com/formflow/backend/internal/middleware"
	"github.com/formflow/backend/internal/responses"
	"github.com/formflow/backend/pkg/response"
)

// Result is the body returned by both insight endpoints.
type Result struct {
	Summary string `json:"summary"`
}

type insightOp func(ctx context.Context, schema Schema, resps []map[string]interface{}) (string, error)

// Handler handles insight HTTP endpoints.
type Handler struct {
	formStore forms.Store
	respRepo  *responses.Repository
	service   *Service
	logger    *zap.Logger
}

// NewHandler creates an insight handler.
func NewHandler(formStore forms.Store, respRepo *responses.Repository, service *Service, logger *zap.Logger) *Handler {
	return &Handler{formStore: formStore, respRepo: respRepo, service: service, logger: logger}
}

// Summarize handles POST /forms/:id/insights/summary (owner only).
func (h *Handler) Summarize(c *gin.Context) {
	h.run(c, h.service.Summarize)
}

// DetectInconsistencies handles POST /forms/:id/insights/inconsistencies (owner only).
func (h *Handler) DetectInconsistencies(c *gin.Context) {
	h.run(c, h.service.DetectInconsistencies)
}

func (h *Handler) run(c *gin.Context, op insightOp) {
	formID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	form, err := h.formStore.GetByID(c.Request.Context(), formID)
	if err != nil {
		if errors.Is(err, forms.ErrNotFound) {
			response.NotFound(c, "form not found")
			return
		}
		h.logger.Error("load form", zap.Error(err))
		response.Internal(c, "failed to load form")
		return
	}
	if form.CreatedBy != userID {
		response.Forbidden(c, "only the creator can request insights")
		return
	}

	list, err := h.respRepo.ListByForm(c.Request.Context(), form)
	if err != nil {
		h.logger.Error("list responses", zap.Error(err), zap.String("form_id", formID.String()))
		response.Internal(c, "failed to load responses")
		return
	}

	summary, err := op(c.Request.Context(), SchemaOf(form), ResponseMaps(list))
	if err != nil {
		switch {
		case errors.Is(err, ErrNoResponses):
			response.BadRequest(c, ErrNoResponses.Error())
		case errors.Is(err, ErrTimeout):
			response.GatewayTimeout(c, "insight request timed out")
		default:
			h.logger.Error("generate insight", zap.Error(err), zap.String("form_id", formID.String()))
			response.BadGateway(c, "insight generation failed")
		}
		return
	}
	response.OK(c, Result{Summary: summary})
}
