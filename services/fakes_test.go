package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/srgchrksv/bitecast/narrator"
	"github.com/srgchrksv/bitecast/search"
)

// fakeLLM routes each prompt to a canned answer by recognising which prompt builder produced it.
type fakeLLM struct {
	mu       sync.Mutex
	prompts  []string
	analysis func() (string, error)
	single   func(prompt string) (string, error)
	expand   func() (string, error)
	related  func() (string, error)
	script   func(prompt string) (string, error)
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	switch {
	case strings.Contains(prompt, "Analyze the following user request"):
		return call0(f.analysis)
	case strings.Contains(prompt, "This request is vague"):
		if f.single == nil {
			return "", errors.New("unexpected single topic call")
		}
		return f.single(prompt)
	case strings.Contains(prompt, "Generate a list of exactly"):
		return call0(f.expand)
	case strings.Contains(prompt, "additional, distinct learning topics"):
		return call0(f.related)
	case strings.Contains(prompt, "audio learning script"):
		if f.script == nil {
			return "A generated narration that is comfortably longer than ten characters.", nil
		}
		return f.script(prompt)
	}
	return "", errors.New("unrecognised prompt")
}

func (f *fakeLLM) count(marker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

func call0(fn func() (string, error)) (string, error) {
	if fn == nil {
		return "", errors.New("unexpected call")
	}
	return fn()
}

type fakeSearch struct {
	results []search.Result
	err     error
	queries []search.Query
	mu      sync.Mutex
}

func (f *fakeSearch) Search(_ context.Context, q search.Query) ([]search.Result, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.results, f.err
}

// fakeNarrator writes the script to path unless the path mentions a failing topic.
type fakeNarrator struct {
	mu      sync.Mutex
	failOn  []string
	scripts []string
	delay   time.Duration
}

func (f *fakeNarrator) Narrate(_ context.Context, script, path string) error {
	if len(strings.TrimSpace(script)) < narrator.MinScriptLength {
		return narrator.ErrScriptTooShort
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.scripts = append(f.scripts, script)
	f.mu.Unlock()
	for _, bad := range f.failOn {
		if strings.Contains(path, bad) {
			return &narrator.ProviderError{Status: 500, Body: "boom"}
		}
	}
	return os.WriteFile(path, []byte(script), 0o644)
}

func newTestServices(t *testing.T, l *fakeLLM, s *fakeSearch, n *fakeNarrator) *Services {
	t.Helper()
	if s == nil {
		s = &fakeSearch{results: []search.Result{{URL: "https://example.test", Content: "snippet"}}}
	}
	if n == nil {
		n = &fakeNarrator{}
	}
	return NewServices(l, s, n, Options{
		BaseDir: t.TempDir(),
		Now:     func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
}

func answer(s string) func() (string, error) {
	return func() (string, error) { return s, nil }
}
