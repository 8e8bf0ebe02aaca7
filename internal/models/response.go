package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AnswerValue is a typed answer to a single field. The kind always matches the
// field's declared type: text and dropdown answers carry Text, number answers
// carry Number. A zero AnswerValue of kind number means "no value entered".
type AnswerValue struct {
	Kind   FieldType
	Text   string
	Number float64
	Set    bool // false for a number field the respondent left blank
}

// TextAnswer builds a text or dropdown answer.
func TextAnswer(kind FieldType, s string) AnswerValue {
	return AnswerValue{Kind: kind, Text: s, Set: s != ""}
}

// NumberAnswer builds a number answer.
func NumberAnswer(n float64) AnswerValue {
	return AnswerValue{Kind: FieldNumber, Number: n, Set: true}
}

// Empty reports whether the answer counts as absent for required-field checks.
func (v AnswerValue) Empty() bool {
	if v.Kind == FieldNumber {
		return !v.Set
	}
	return v.Text == ""
}

// MarshalJSON emits the bare value (string or number, null when unset) so the
// stored data map keeps the plain fieldId->value shape of the wire contract.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.Kind == FieldNumber {
		if !v.Set {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.Number, 'f', -1, 64)), nil
	}
	return json.Marshal(v.Text)
}

// ResponseData maps field ids to typed answers.
type ResponseData map[string]AnswerValue

// ParseResponseData decodes a raw fieldId->value JSON object against the form's
// schema. Unknown field ids are dropped; a value of the wrong JSON type is an error.
func ParseResponseData(form *Form, raw map[string]json.RawMessage) (ResponseData, error) {
	data := make(ResponseData, len(raw))
	for id, rv := range raw {
		field := form.FieldByID(id)
		if field == nil {
			continue
		}
		if string(rv) == "null" {
			data[id] = AnswerValue{Kind: field.Type}
			continue
		}
		switch field.Type {
		case FieldNumber:
			var n float64
			if err := json.Unmarshal(rv, &n); err != nil {
				return nil, fmt.Errorf("field %q: expected a number: %w", id, err)
			}
			data[id] = NumberAnswer(n)
		default:
			var s string
			if err := json.Unmarshal(rv, &s); err != nil {
				return nil, fmt.Errorf("field %q: expected a string: %w", id, err)
			}
			data[id] = TextAnswer(field.Type, s)
		}
	}
	return data, nil
}

// FormResponse is one respondent's submitted answers against a form.
// Responses are immutable once created.
type FormResponse struct {
	ID          uuid.UUID    `json:"id"`
	FormID      uuid.UUID    `json:"form_id"`
	UserID      uuid.UUID    `json:"user_id"`
	Data        ResponseData `json:"data"`
	SubmittedAt time.Time    `json:"submitted_at"`
}
