package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formflow/backend/internal/models"
)

type fakeGenerator struct {
	calls   int
	prompts []string
	output  string
	err     error
	block   bool // wait for ctx cancellation instead of answering
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.output, g.err
}

func testSchema() Schema {
	return Schema{
		"f1": {Label: "Name", Type: models.FieldText},
		"f2": {Label: "Age", Type: models.FieldNumber},
	}
}

func testResponses() []map[string]interface{} {
	return []map[string]interface{}{
		{"f1": "Alice", "f2": 30.0},
		{"f1": "Bob", "f2": nil},
	}
}

func TestSummarizeReturnsModelSummary(t *testing.T) {
	gen := &fakeGenerator{output: `{"summary": "Two respondents, average age 30."}`}
	svc := NewService(gen, time.Second, nil)

	got, err := svc.Summarize(context.Background(), testSchema(), testResponses())
	require.NoError(t, err)
	assert.Equal(t, "Two respondents, average age 30.", got)
	assert.Equal(t, 1, gen.calls)
}

func TestEmptyResponsesSkipModelEntirely(t *testing.T) {
	gen := &fakeGenerator{output: `{"summary": "unused"}`}
	svc := NewService(gen, time.Second, nil)

	_, err := svc.Summarize(context.Background(), testSchema(), nil)
	assert.ErrorIs(t, err, ErrNoResponses)

	_, err = svc.DetectInconsistencies(context.Background(), testSchema(), nil)
	assert.ErrorIs(t, err, ErrNoResponses)

	assert.Zero(t, gen.calls)
}

func TestMalformedModelOutputIsGenerationError(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"not json", "here is your summary"},
		{"wrong shape", `{"text": "hi"}`},
		{"empty summary", `{"summary": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeGenerator{output: tt.output}, time.Second, nil)

			_, err := svc.Summarize(context.Background(), testSchema(), testResponses())
			var gerr *GenerationError
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, "summarize", gerr.Op)
		})
	}
}

func TestModelFailureIsGenerationError(t *testing.T) {
	svc := NewService(&fakeGenerator{err: errors.New("quota exceeded")}, time.Second, nil)

	_, err := svc.DetectInconsistencies(context.Background(), testSchema(), testResponses())
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "detect-inconsistencies", gerr.Op)
}

func TestSlowModelHitsTimeout(t *testing.T) {
	svc := NewService(&fakeGenerator{block: true}, 20*time.Millisecond, nil)

	_, err := svc.Summarize(context.Background(), testSchema(), testResponses())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestPromptCarriesSchemaAndEveryResponse(t *testing.T) {
	gen := &fakeGenerator{output: `{"summary": "ok"}`}
	svc := NewService(gen, time.Second, nil)

	_, err := svc.Summarize(context.Background(), testSchema(), testResponses())
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, `"Name"`)
	assert.Contains(t, prompt, `"Age"`)
	assert.Contains(t, prompt, "Response 1:")
	assert.Contains(t, prompt, "Response 2:")
	assert.Contains(t, prompt, "Alice")
	assert.Contains(t, prompt, "Bob")
}

func TestSchemaOfAndResponseMaps(t *testing.T) {
	form := &models.Form{
		ID:    uuid.New(),
		Title: "Survey",
		Fields: []models.FormField{
			{ID: "f1", Label: "Name", Type: models.FieldText},
			{ID: "f2", Label: "Age", Type: models.FieldNumber},
		},
	}
	schema := SchemaOf(form)
	assert.Equal(t, testSchema(), schema)

	list := []models.FormResponse{{
		Data: models.ResponseData{
			"f1": models.TextAnswer(models.FieldText, "Alice"),
			"f2": models.AnswerValue{Kind: models.FieldNumber}, // left blank
		},
	}}
	maps := ResponseMaps(list)
	require.Len(t, maps, 1)
	assert.Equal(t, "Alice", maps[0]["f1"])
	assert.Nil(t, maps[0]["f2"])
}
