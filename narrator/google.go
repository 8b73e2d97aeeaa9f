package narrator

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
)

// Google TTS rejects inputs above 5000 bytes; keep some headroom.
const maxGoogleInputBytes = 4500

type synthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
}

// Google narrates through Cloud Text-to-Speech. Long scripts are synthesized in
// sentence-aligned chunks and the MP3 frames concatenated.
type Google struct {
	client synthesizer
	voice  string
}

func NewGoogle(client synthesizer, voice string) *Google {
	return &Google{client: client, voice: voice}
}

func (g *Google) Narrate(ctx context.Context, script, path string) error {
	if err := checkScript(script); err != nil {
		return err
	}

	var audio []byte
	for i, chunk := range splitScript(script, maxGoogleInputBytes) {
		resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: languageCode(g.voice),
				SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
				Name:         g.voice,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			},
		})
		if err != nil {
			return fmt.Errorf("%w: synthesizing chunk %d: %v", ErrProvider, i+1, err)
		}
		audio = append(audio, resp.AudioContent...)
	}
	return writeAudio(path, audio)
}

// languageCode derives "en-US" from a voice name such as "en-US-Standard-C".
func languageCode(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 2 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}

// splitScript breaks text on sentence ends so no chunk exceeds limit bytes.
// A single sentence longer than limit is split on spaces.
func splitScript(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}
	add := func(piece string) {
		if cur.Len()+len(piece)+1 > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(piece)
	}

	for _, sentence := range sentences(text) {
		if len(sentence) <= limit {
			add(sentence)
			continue
		}
		for _, word := range strings.Fields(sentence) {
			add(word)
		}
	}
	flush()
	return chunks
}

func sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?', '\n':
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
