package narrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// MinScriptLength is the shortest script (after trimming) worth sending to a TTS provider.
const MinScriptLength = 10

var (
	ErrScriptTooShort = errors.New("narrator: script too short")
	ErrProvider       = errors.New("narrator: provider error")
)

// ProviderError carries a non-success answer from a TTS provider.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("tts provider returned status %d: %s", e.Status, e.Body)
}

func (e *ProviderError) Unwrap() error { return ErrProvider }

// Narrator turns a script into an audio file at path. Nothing is written on failure.
type Narrator interface {
	Narrate(ctx context.Context, script, path string) error
}

func checkScript(script string) error {
	if len(strings.TrimSpace(script)) < MinScriptLength {
		return ErrScriptTooShort
	}
	return nil
}

func writeAudio(path string, audio []byte) error {
	if len(audio) == 0 {
		return fmt.Errorf("%w: empty audio body", ErrProvider)
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("writing audio file: %w", err)
	}
	return nil
}
