package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderElevenLabs = "elevenlabs"
	ProviderGoogle     = "google"

	// DefaultSessionSecret signs session cookies when SESSION_SECRET is unset.
	// Only fit for local development.
	DefaultSessionSecret = "secret"
)

type Config struct {
	Port        string
	PlaylistDir string
	LogMode     string

	LLMProvider  string
	GoogleAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	TavilyAPIKey      string
	TavilyBaseURL     string
	SearchResultCount int

	TTSProvider       string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsBaseURL string
	TTSTimeout        time.Duration
	GoogleTTSVoice    string

	SpeechToText bool

	RedisURL      string
	SessionSecret string
	CORSOrigins   []string

	SearchInterval     time.Duration
	LLMInterval        time.Duration
	TTSInterval        time.Duration
	SegmentInterval    time.Duration
	SegmentConcurrency int
}

// Load reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was found.
func Load() (Config, bool) {
	found := godotenv.Load() == nil
	return FromEnv(), found
}

func FromEnv() Config {
	return Config{
		Port:        envString("PORT", "8000"),
		PlaylistDir: envString("PLAYLIST_DIR", "generated_playlists"),
		LogMode:     envString("LOG_MODE", "dev"),

		LLMProvider:  strings.ToLower(envString("LLM_PROVIDER", ProviderGemini)),
		GoogleAPIKey: envString("GOOGLE_API_KEY", ""),
		GeminiModel:  envString("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey: envString("OPENAI_API_KEY", ""),
		OpenAIModel:  envString("OPENAI_MODEL", "gpt-4o-mini"),

		TavilyAPIKey:      envString("TAVILY_API_KEY", ""),
		TavilyBaseURL:     envString("TAVILY_BASE_URL", "https://api.tavily.com"),
		SearchResultCount: envInt("SEARCH_RESULT_COUNT", 3),

		TTSProvider:       strings.ToLower(envString("TTS_PROVIDER", ProviderElevenLabs)),
		ElevenLabsAPIKey:  envString("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: envString("ELEVENLABS_VOICE_ID", "EXAVITQu4vr4xnSDxMaL"),
		ElevenLabsBaseURL: envString("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io"),
		TTSTimeout:        envDuration("TTS_TIMEOUT", 180*time.Second),
		GoogleTTSVoice:    envString("GOOGLE_TTS_VOICE", "en-US-Standard-C"),

		SpeechToText: envBool("SPEECH_TO_TEXT", false),

		RedisURL:      envString("REDIS_URL", ""),
		SessionSecret: envString("SESSION_SECRET", DefaultSessionSecret),
		CORSOrigins:   envList("CORS_ORIGINS", nil),

		SearchInterval:     envDuration("SEARCH_INTERVAL", time.Second),
		LLMInterval:        envDuration("LLM_INTERVAL", 0),
		TTSInterval:        envDuration("TTS_INTERVAL", time.Second),
		SegmentInterval:    envDuration("SEGMENT_INTERVAL", 1500*time.Millisecond),
		SegmentConcurrency: envInt("SEGMENT_CONCURRENCY", 1),
	}
}

// Validate checks that the credentials needed by the selected providers are present.
func (c Config) Validate() error {
	var missing []string
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			missing = append(missing, "GOOGLE_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.TavilyAPIKey == "" {
		missing = append(missing, "TAVILY_API_KEY")
	}
	switch c.TTSProvider {
	case ProviderElevenLabs:
		if c.ElevenLabsAPIKey == "" {
			missing = append(missing, "ELEVENLABS_API_KEY")
		}
	case ProviderGoogle:
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q", c.TTSProvider)
	}
	if len(missing) > 0 {
		return errors.New("missing required environment: " + strings.Join(missing, ", "))
	}
	if c.SegmentConcurrency < 1 {
		return fmt.Errorf("SEGMENT_CONCURRENCY must be >= 1, got %d", c.SegmentConcurrency)
	}
	if c.Production() && c.InsecureSessionSecret() {
		return errors.New("SESSION_SECRET must be set to a non-default value when LOG_MODE is prod")
	}
	return nil
}

// Production reports whether LOG_MODE selects the production setup.
func (c Config) Production() bool {
	switch strings.ToLower(c.LogMode) {
	case "prod", "production":
		return true
	}
	return false
}

// InsecureSessionSecret reports whether session cookies would be signed with
// an empty or well-known key.
func (c Config) InsecureSessionSecret() bool {
	return c.SessionSecret == "" || c.SessionSecret == DefaultSessionSecret
}

func envString(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envBool(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// envDuration accepts Go duration strings ("1.5s") or a bare number of seconds.
func envDuration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}

func envList(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
