package gemini

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonFence = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")

// ExtractJSON strips a markdown code fence from model output, if present,
// and returns the inner text. Unfenced output comes back trimmed.
func ExtractJSON(text string) string {
	if match := jsonFence.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(text)
}

// DecodeJSON extracts and unmarshals the JSON payload of model output.
func DecodeJSON(text string, v any) error {
	payload := ExtractJSON(text)
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("model output is not valid JSON: %w", err)
	}
	return nil
}

// StripHTMLFence removes a ```html fence from generated markup, leaving bare
// output untouched.
func StripHTMLFence(text string) string {
	out := strings.TrimSpace(text)
	out = strings.TrimPrefix(out, "```html")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
