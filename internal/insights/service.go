// Package insights produces natural-language reports over a form's responses
// by prompting an external language model. Both operations are stateless: no
// caching, no automatic retry, each call re-sends the full response set.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/formflow/backend/internal/models"
)

// ErrNoResponses is reported locally when there is nothing to analyze; the
// external service is not invoked at all in that case.
var ErrNoResponses = errors.New("no responses to analyze")

// ErrTimeout marks a call that exceeded the configured deadline, distinct
// from the model failing or returning garbage.
var ErrTimeout = errors.New("insight request timed out")

// GenerationError wraps an external service failure or a response that does
// not match the expected {summary} shape.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("insight %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SchemaField describes one field to the model.
type SchemaField struct {
	Label string           `json:"label"`
	Type  models.FieldType `json:"type"`
}

// Schema is the fieldId -> {label, type} mapping sent to the model.
type Schema map[string]SchemaField

// SchemaOf builds the insight schema from a form definition.
func SchemaOf(form *models.Form) Schema {
	s := make(Schema, len(form.Fields))
	for _, field := range form.Fields {
		s[field.ID] = SchemaField{Label: field.Label, Type: field.Type}
	}
	return s
}

// ResponseMaps flattens responses to the plain fieldId->value maps of the
// service contract.
func ResponseMaps(list []models.FormResponse) []map[string]interface{} {
	out := make([]map[string]interface{}, len(list))
	for i, resp := range list {
		m := make(map[string]interface{}, len(resp.Data))
		for id, v := range resp.Data {
			switch {
			case v.Kind == models.FieldNumber && v.Set:
				m[id] = v.Number
			case v.Kind == models.FieldNumber:
				m[id] = nil
			default:
				m[id] = v.Text
			}
		}
		out[i] = m
	}
	return out
}

// generator is the model call boundary; GeminiGenerator implements it.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service runs the two insight operations.
type Service struct {
	gen     generator
	timeout time.Duration
	logger  *zap.Logger
}

// NewService creates an insight service. timeout bounds each model call.
func NewService(gen generator, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gen: gen, timeout: timeout, logger: logger}
}

// Summarize returns a natural-language synthesis of key information and
// trends across the responses.
func (s *Service) Summarize(ctx context.Context, schema Schema, responses []map[string]interface{}) (string, error) {
	return s.run(ctx, "summarize", buildSummarizePrompt, schema, responses)
}

// DetectInconsistencies returns a natural-language description of
// contradictions across the responses.
func (s *Service) DetectInconsistencies(ctx context.Context, schema Schema, responses []map[string]interface{}) (string, error) {
	return s.run(ctx, "detect-inconsistencies", buildInconsistenciesPrompt, schema, responses)
}

func (s *Service) run(ctx context.Context, op string, build promptBuilder, schema Schema, responses []map[string]interface{}) (string, error) {
	if len(responses) == 0 {
		return "", ErrNoResponses
	}
	prompt, err := build(schema, responses)
	if err != nil {
		return "", &GenerationError{Op: op, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s after %s", ErrTimeout, op, s.timeout)
		}
		return "", &GenerationError{Op: op, Err: err}
	}
	s.logger.Debug("insight generated", zap.String("op", op), zap.Duration("latency", time.Since(start)))

	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", &GenerationError{Op: op, Err: fmt.Errorf("malformed model output: %w", err)}
	}
	if strings.TrimSpace(out.Summary) == "" {
		return "", &GenerationError{Op: op, Err: errors.New("model returned an empty summary")}
	}
	return out.Summary, nil
}
