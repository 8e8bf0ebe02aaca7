package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/formflow/backend/internal/forms"
	"github.com/formflow/backend/internal/responses"
	"github.com/formflow/backend/pkg/queue"
)

// ResponseCountProcessor refreshes the denormalized response counter on forms.
// Submissions enqueue a job instead of updating the counter inline, so the
// hot path stays a single insert.
type ResponseCountProcessor struct {
	formRepo *forms.Repository
	respRepo *responses.Repository
	queue    *queue.Queue
	logger   *zap.Logger
}

// NewResponseCountProcessor creates a response-count processor.
func NewResponseCountProcessor(formRepo *forms.Repository, respRepo *responses.Repository, q *queue.Queue, logger *zap.Logger) *ResponseCountProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCountProcessor{formRepo: formRepo, respRepo: respRepo, queue: q, logger: logger}
}

// Process executes one response-count refresh job.
func (p *ResponseCountProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeResponseCount {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ResponseCountPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	count, err := p.respRepo.CountByForm(ctx, payload.FormID)
	if err != nil {
		return fmt.Errorf("count responses: %w", err)
	}
	if err := p.formRepo.SetResponseCount(ctx, payload.FormID, count); err != nil {
		return fmt.Errorf("set response count: %w", err)
	}
	p.logger.Debug("response count refreshed", zap.String("form_id", payload.FormID.String()), zap.Int("count", count))
	return nil
}

// Run consumes response-count jobs until the context is cancelled.
func (p *ResponseCountProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		job, err := p.queue.Dequeue(ctx, queue.QueueResponseCounts, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("process job", zap.Error(err), zap.String("job_id", job.ID))
			if rerr := p.queue.Retry(ctx, queue.QueueResponseCounts, job); rerr != nil {
				p.logger.Error("retry job", zap.Error(rerr), zap.String("job_id", job.ID))
			}
		}
	}
}
