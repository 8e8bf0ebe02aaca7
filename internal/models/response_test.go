package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemaForm() *Form {
	return &Form{
		Title: "Survey",
		Fields: []FormField{
			{ID: "f1", Label: "Name", Type: FieldText},
			{ID: "f2", Label: "Age", Type: FieldNumber},
			{ID: "f3", Label: "Team", Type: FieldDropdown, Options: []FormFieldOption{{ID: "o1", Label: "Eng", Value: "eng"}}},
		},
	}
}

func TestParseResponseDataDecodesBySchema(t *testing.T) {
	raw := map[string]json.RawMessage{
		"f1": json.RawMessage(`"Alice"`),
		"f2": json.RawMessage(`30`),
		"f3": json.RawMessage(`"eng"`),
	}

	data, err := ParseResponseData(schemaForm(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Alice", data["f1"].Text)
	assert.Equal(t, 30.0, data["f2"].Number)
	assert.True(t, data["f2"].Set)
	assert.Equal(t, FieldDropdown, data["f3"].Kind)
}

func TestParseResponseDataDropsUnknownFields(t *testing.T) {
	raw := map[string]json.RawMessage{
		"f1":    json.RawMessage(`"Alice"`),
		"ghost": json.RawMessage(`"boo"`),
	}

	data, err := ParseResponseData(schemaForm(), raw)
	require.NoError(t, err)
	assert.Len(t, data, 1)
	assert.NotContains(t, data, "ghost")
}

func TestParseResponseDataRejectsWrongJSONType(t *testing.T) {
	_, err := ParseResponseData(schemaForm(), map[string]json.RawMessage{
		"f2": json.RawMessage(`"thirty"`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "f2")

	_, err = ParseResponseData(schemaForm(), map[string]json.RawMessage{
		"f1": json.RawMessage(`12`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "f1")
}

func TestParseResponseDataNullMeansUnset(t *testing.T) {
	data, err := ParseResponseData(schemaForm(), map[string]json.RawMessage{
		"f2": json.RawMessage(`null`),
	})
	require.NoError(t, err)
	assert.True(t, data["f2"].Empty())
	assert.Equal(t, FieldNumber, data["f2"].Kind)
}

func TestAnswerValueMarshalsAsBareValue(t *testing.T) {
	data := ResponseData{
		"f1": TextAnswer(FieldText, "Alice"),
		"f2": NumberAnswer(30),
		"f3": {Kind: FieldNumber},
	}

	out, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"f1": "Alice", "f2": 30, "f3": null}`, string(out))
}

func TestAnswerValueEmpty(t *testing.T) {
	assert.True(t, AnswerValue{Kind: FieldText}.Empty())
	assert.True(t, AnswerValue{Kind: FieldNumber, Number: 5}.Empty(), "number without Set is absent")
	assert.False(t, NumberAnswer(0).Empty(), "an entered zero is a value")
	assert.False(t, TextAnswer(FieldDropdown, "eng").Empty())
}
