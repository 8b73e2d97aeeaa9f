package llm

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrEmptyResponse means the model answered with no text at all.
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrBlocked means the provider refused the prompt or the answer on safety grounds.
	ErrBlocked = errors.New("llm: response blocked")
)

// Client is a single-turn text completion endpoint.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StripCodeFence removes Markdown code-fence markup around a model answer.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
