package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

type Provider string

const (
	ProviderSearch  Provider = "search"
	ProviderLLM     Provider = "llm"
	ProviderTTS     Provider = "tts"
	ProviderSegment Provider = "segment"
)

// Pacing is the minimum spacing between consecutive calls to each provider.
// A zero interval disables pacing for that provider.
type Pacing struct {
	Search  time.Duration
	LLM     time.Duration
	TTS     time.Duration
	Segment time.Duration
}

// Pacer spaces calls per provider with a token bucket of burst 1, so the
// first call goes out immediately and later ones wait out the interval.
type Pacer struct {
	limiters map[Provider]*rate.Limiter
}

func NewPacer(p Pacing) *Pacer {
	return &Pacer{limiters: map[Provider]*rate.Limiter{
		ProviderSearch:  newLimiter(p.Search),
		ProviderLLM:     newLimiter(p.LLM),
		ProviderTTS:     newLimiter(p.TTS),
		ProviderSegment: newLimiter(p.Segment),
	}}
}

func newLimiter(every time.Duration) *rate.Limiter {
	if every <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(every), 1)
}

// Wait blocks until provider may be called again or ctx is done.
func (p *Pacer) Wait(ctx context.Context, provider Provider) error {
	l, ok := p.limiters[provider]
	if !ok {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// the limiter refuses early when the wait would outlive the deadline
		if _, ok := ctx.Deadline(); ok {
			return fmt.Errorf("%s pacing: %w", provider, context.DeadlineExceeded)
		}
		return err
	}
	return nil
}
