package services

import (
	"context"
	"fmt"
)

// GenerateScript writes the narration for one topic. Empty, blocked or failed
// generations are reported as ErrScriptUnavailable so the segment is skipped.
func (s *Services) GenerateScript(ctx context.Context, topic, webContext string) (string, error) {
	s.log.Info("Generating script", "topic", topic)
	script, err := s.generate(ctx, scriptPrompt(topic, webContext))
	if err != nil {
		return "", fmt.Errorf("%w for %q: %w", ErrScriptUnavailable, topic, err)
	}
	if script == "" {
		return "", fmt.Errorf("%w for %q: empty script", ErrScriptUnavailable, topic)
	}
	return script, nil
}
