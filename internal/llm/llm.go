package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wellness-planner/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// ExtractJSON returns the first JSON object found in a model response,
// dropping markdown code fences and any prose around it.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}
	var obj json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s[start:])).Decode(&obj); err != nil {
		return "", fmt.Errorf("no JSON object in response: %w", err)
	}
	return string(obj), nil
}
