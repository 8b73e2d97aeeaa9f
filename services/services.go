package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"

	"github.com/srgchrksv/bitecast/llm"
	"github.com/srgchrksv/bitecast/logger"
	"github.com/srgchrksv/bitecast/models"
	"github.com/srgchrksv/bitecast/narrator"
	"github.com/srgchrksv/bitecast/search"
)

const (
	SegmentMinutes    = 5
	WordsPerMinute    = 160
	TargetWordCount   = SegmentMinutes * WordsPerMinute
	MaxSegments       = 24
	DefaultResultsCap = 3
	previewLength     = 100
)

var (
	ErrAnalysis            = errors.New("prompt analysis failed")
	ErrNoTopics            = errors.New("no topics resolved")
	ErrScriptUnavailable   = errors.New("script unavailable")
	ErrNoSegments          = errors.New("no segment produced audio")
	ErrTranscriberDisabled = errors.New("speech-to-text is not configured")
	ErrEmptyTranscription  = errors.New("transcription is empty")
)

// Options tune a Services instance. Zero values fall back to sequential,
// unpaced processing with three search results per topic.
type Options struct {
	BaseDir           string
	SearchResultCount int
	Concurrency       int
	Pacing            Pacing
	Transcriber       Transcriber
	Logger            *logger.Logger
	Now               func() time.Time
}

type Services struct {
	llm         llm.Client
	search      search.Searcher
	narrator    narrator.Narrator
	transcriber Transcriber
	pacer       *Pacer
	log         *logger.Logger

	baseDir     string
	resultCount int
	concurrency int
	now         func() time.Time
}

func NewServices(client llm.Client, searcher search.Searcher, n narrator.Narrator, opts Options) *Services {
	s := &Services{
		llm:         client,
		search:      searcher,
		narrator:    n,
		transcriber: opts.Transcriber,
		pacer:       NewPacer(opts.Pacing),
		log:         opts.Logger,
		baseDir:     opts.BaseDir,
		resultCount: opts.SearchResultCount,
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.baseDir == "" {
		s.baseDir = "generated_playlists"
	}
	if s.resultCount <= 0 {
		s.resultCount = DefaultResultsCap
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Services) BaseDir() string { return s.baseDir }

// generate paces and performs one LLM call.
func (s *Services) generate(ctx context.Context, prompt string) (string, error) {
	if err := s.pacer.Wait(ctx, ProviderLLM); err != nil {
		return "", err
	}
	return s.llm.Generate(ctx, prompt)
}

// Transcriber turns a spoken request into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
}

// SpeechToText transcribes MP3 uploads through Google Cloud Speech.
type SpeechToText struct {
	client recognizer
}

func NewSpeechToText(client *speech.Client) *SpeechToText {
	return &SpeechToText{client: client}
}

func (t *SpeechToText) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_MP3,
			SampleRateHertz: 16000,
			LanguageCode:    "en-US",
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	var transcriptions []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcriptions = append(transcriptions, result.Alternatives[0].Transcript)
		}
	}
	return strings.TrimSpace(strings.Join(transcriptions, " ")), nil
}

// Transcribe converts a spoken request to text for ProcessRequest.
func (s *Services) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if s.transcriber == nil {
		return "", ErrTranscriberDisabled
	}
	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmptyTranscription
	}
	s.log.Info("Transcribed spoken request", "chars", len(text))
	return text, nil
}

func emit(req models.Request, ev models.ProgressEvent) {
	if req.Progress != nil {
		req.Progress(ev)
	}
}
