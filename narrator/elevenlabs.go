package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenLabsRequest struct {
	Text          string        `json:"text"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// ElevenLabs narrates through the ElevenLabs text-to-speech REST API with one fixed voice.
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	voiceID    string
	settings   voiceSettings
	httpClient *http.Client
}

func NewElevenLabs(apiKey, baseURL, voiceID string, timeout time.Duration) *ElevenLabs {
	return &ElevenLabs{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		voiceID:    voiceID,
		settings:   voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (e *ElevenLabs) Narrate(ctx context.Context, script, path string) error {
	if err := checkScript(script); err != nil {
		return err
	}

	body, err := json.Marshal(elevenLabsRequest{Text: script, VoiceSettings: e.settings})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &ProviderError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read audio body: %w", err)
	}
	return writeAudio(path, audio)
}
