package cmd

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	texttospeech "cloud.google.com/go/texttospeech/apiv1"

	"github.com/srgchrksv/bitecast/config"
	"github.com/srgchrksv/bitecast/llm"
	"github.com/srgchrksv/bitecast/logger"
	"github.com/srgchrksv/bitecast/narrator"
	"github.com/srgchrksv/bitecast/search"
	"github.com/srgchrksv/bitecast/services"
)

// setup loads configuration and the logger shared by every command.
func setup() (config.Config, *logger.Logger, error) {
	cfg, found := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return cfg, nil, fmt.Errorf("creating logger: %w", err)
	}
	if !found {
		log.Warn("No .env file found, using process environment")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, log, err
	}
	if cfg.InsecureSessionSecret() {
		log.Warn("SESSION_SECRET is unset, session cookies use the development key")
	}
	return cfg, log, nil
}

// buildServices wires the configured providers into the pipeline. The returned
// func releases the provider clients.
func buildServices(ctx context.Context, cfg config.Config, log *logger.Logger) (*services.Services, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("Error closing client", "error", err)
			}
		}
	}

	var client llm.Client
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		client = llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Info("Using OpenAI", "model", cfg.OpenAIModel)
	default:
		gemini, err := llm.NewGemini(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, gemini.Close)
		client = gemini
		log.Info("Using Gemini", "model", cfg.GeminiModel)
	}

	var n narrator.Narrator
	switch cfg.TTSProvider {
	case config.ProviderGoogle:
		tts, err := texttospeech.NewClient(ctx)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("creating text-to-speech client: %w", err)
		}
		closers = append(closers, tts.Close)
		n = narrator.NewGoogle(tts, cfg.GoogleTTSVoice)
		log.Info("Using Google text-to-speech", "voice", cfg.GoogleTTSVoice)
	default:
		n = narrator.NewElevenLabs(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL, cfg.ElevenLabsVoiceID, cfg.TTSTimeout)
		log.Info("Using ElevenLabs text-to-speech", "voice", cfg.ElevenLabsVoiceID)
	}

	var transcriber services.Transcriber
	if cfg.SpeechToText {
		stt, err := speech.NewClient(ctx)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("creating speech client: %w", err)
		}
		closers = append(closers, stt.Close)
		transcriber = services.NewSpeechToText(stt)
		log.Info("Speech-to-text enabled")
	}

	svc := services.NewServices(client, search.NewTavily(cfg.TavilyAPIKey, cfg.TavilyBaseURL), n, services.Options{
		BaseDir:           cfg.PlaylistDir,
		SearchResultCount: cfg.SearchResultCount,
		Concurrency:       cfg.SegmentConcurrency,
		Pacing: services.Pacing{
			Search:  cfg.SearchInterval,
			LLM:     cfg.LLMInterval,
			TTS:     cfg.TTSInterval,
			Segment: cfg.SegmentInterval,
		},
		Transcriber: transcriber,
		Logger:      log,
	})
	return svc, cleanup, nil
}
