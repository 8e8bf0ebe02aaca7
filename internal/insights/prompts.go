package insights

import (
	"encoding/json"
	"fmt"
	"strings"
)

const summarizePreamble = `You are an AI assistant helping an administrator understand form responses.

You are provided with the form schema and an array of form responses. Each
response maps a field id to the respondent's answer.`

const summarizeInstruction = `Summarize the key information and highlight any inconsistencies across the
responses. Focus on identifying trends and insights that the administrator
should be aware of.

Respond with JSON: {"summary": "<your summary>"}`

const inconsistenciesPreamble = `You are an AI assistant tasked with identifying inconsistencies across
multiple responses to the same form.`

const inconsistenciesInstruction = `Analyze the provided form responses and identify any significant
inconsistencies or discrepancies in the answers. Consider the form schema
when analyzing the responses. Provide a concise summary of the identified
inconsistencies, highlighting the specific fields and responses where they
occur. Focus on discrepancies that might indicate errors, misunderstandings,
or potentially fraudulent information.

Respond with JSON: {"summary": "<your summary of inconsistencies>"}`

type promptBuilder func(schema Schema, responses []map[string]interface{}) (string, error)

func buildSummarizePrompt(schema Schema, responses []map[string]interface{}) (string, error) {
	return buildPrompt(summarizePreamble, summarizeInstruction, schema, responses)
}

func buildInconsistenciesPrompt(schema Schema, responses []map[string]interface{}) (string, error) {
	return buildPrompt(inconsistenciesPreamble, inconsistenciesInstruction, schema, responses)
}

func buildPrompt(preamble, instruction string, schema Schema, responses []map[string]interface{}) (string, error) {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\nForm Schema:\n")
	b.Write(schemaJSON)
	b.WriteString("\n\nForm Responses:\n")
	for i, resp := range responses {
		respJSON, err := json.Marshal(resp)
		if err != nil {
			return "", fmt.Errorf("marshal response %d: %w", i, err)
		}
		fmt.Fprintf(&b, "Response %d: %s\n", i+1, respJSON)
	}
	b.WriteString("\n")
	b.WriteString(instruction)
	return b.String(), nil
}
