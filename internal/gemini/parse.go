package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidJSON means the model output held no decodable JSON object.
	ErrInvalidJSON = errors.New("invalid JSON from Gemini")
	// ErrEmptyResponse means the model returned no text at all.
	ErrEmptyResponse = errors.New("empty response from Gemini")
)

// ParseFencedJSON decodes a model response into v. The response may be
// wrapped in a ``` fence (optionally tagged, e.g. ```json) or surrounded by
// prose, in which case the span from the first '{' to the last '}' is tried.
func ParseFencedJSON(raw string, v any) error {
	s := stripCodeFence(raw)
	if s == "" {
		return ErrEmptyResponse
	}

	err := json.Unmarshal([]byte(s), v)
	if err == nil {
		return nil
	}
	if obj := extractJSONObject(s); obj != s {
		if err = json.Unmarshal([]byte(obj), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
}

// stripCodeFence removes a leading ```lang line and a closing ``` line.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractJSONObject finds the first {...} substring in s.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
