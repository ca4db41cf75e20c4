package modeladapter

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject is returned by ExtractJSON when the text holds no object.
var ErrNoJSONObject = errors.New("no JSON object in model output")

// ExtractJSON returns the JSON object embedded in model text. It strips
// markdown code fences and surrounding prose, keeping the span from the first
// '{' to the last '}'.
func ExtractJSON(s string) (json.RawMessage, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s[3:], "\n"); idx >= 0 {
			s = s[3+idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSONObject
	}

	raw := json.RawMessage(s[start : end+1])
	if !json.Valid(raw) {
		return nil, ErrNoJSONObject
	}

	return raw, nil
}
