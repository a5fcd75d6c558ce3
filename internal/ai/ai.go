// Package ai defines the boundary to third-party completion providers.
// Providers themselves live outside this repository; the engine only
// depends on the Completer capability and the shape of the JSON the
// providers return.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Completer is an opaque text-completion capability.
type Completer interface {
	// Complete sends a prompt with a system prompt and returns the raw
	// model output. Failure modes are provider-specific and surfaced
	// as-is.
	Complete(ctx context.Context, prompt, systemPrompt string) (string, error)

	// Name identifies the provider/model, recorded on AI-generated rows.
	Name() string
}

// DecodeJSON unmarshals a model response into v, tolerating the markdown
// code fences providers like to wrap JSON in.
func DecodeJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("failed to decode model response: %w", err)
	}
	return nil
}
