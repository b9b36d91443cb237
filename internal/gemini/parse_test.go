package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFencedJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"fenced with language tag", "```json\n{\"a\":1}\n```"},
		{"fenced without tag", "```\n{\"a\":1}\n```"},
		{"bare object", `  {"a":1}  `},
		{"surrounded by prose", "Here you go: {\"a\":1} hope that helps"},
		{"unterminated fence", "```json\n{\"a\":1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				A int `json:"a"`
			}
			require.NoError(t, ParseFencedJSON(tt.raw, &got))
			assert.Equal(t, 1, got.A)
		})
	}
}

func TestParseFencedJSON_Errors(t *testing.T) {
	var v map[string]any

	err := ParseFencedJSON("no json anywhere", &v)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	err = ParseFencedJSON("```json\n{\"a\": }\n```", &v)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	err = ParseFencedJSON("   ", &v)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	err = ParseFencedJSON("```\n```", &v)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
