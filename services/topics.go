package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/srgchrksv/bitecast/llm"
	"github.com/srgchrksv/bitecast/models"
)

const (
	fallbackSuggestion  = "A random interesting fact"
	duplicateSuggestion = "A different interesting science fact"
)

// ResolveTopics decides the ordered list of topics to narrate, in this order:
//  1. no requested topics and a suggestion is wanted: one LLM-suggested topic
//  2. too few topics and time or suggestion based: expand to exactly the needed count
//  3. too few topics otherwise: use what was given
//  4. too many topics: keep the first ones
//  5. exact match: use as is
func (s *Services) ResolveTopics(ctx context.Context, userPrompt string, a models.PromptAnalysis, history []string) ([]string, error) {
	requested := a.RequestedTopics
	needed := a.SegmentsNeeded

	var topics []string
	switch {
	case len(requested) == 0 && a.RequiresSuggestion:
		s.log.Info("Suggesting a single topic", "history", len(history))
		topic, err := s.SuggestSingleTopic(ctx, userPrompt, history)
		if err != nil {
			return nil, fmt.Errorf("%w: suggestion failed: %w", ErrNoTopics, err)
		}
		topics = []string{topic}
	case len(requested) < needed && (a.SegmentsBasedOnTime || a.RequiresSuggestion):
		s.log.Info("Expanding topics", "requested", requested, "needed", needed)
		topics = s.ExpandTopics(ctx, requested, needed)
	case len(requested) < needed:
		s.log.Info("Using only the requested topics", "requested", requested)
		topics = append([]string(nil), requested...)
	case len(requested) > needed:
		s.log.Warn("Truncating requested topics", "requested", len(requested), "needed", needed)
		topics = append([]string(nil), requested[:needed]...)
	default:
		topics = append([]string(nil), requested...)
	}

	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	return topics, nil
}

// SuggestSingleTopic asks for one new topic informed by the session history.
// An empty answer or one repeating the most recent history entry is replaced
// by a generic placeholder topic instead of calling again.
func (s *Services) SuggestSingleTopic(ctx context.Context, userPrompt string, history []string) (string, error) {
	text, err := s.generate(ctx, singleTopicPrompt(userPrompt, history))
	if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
		return "", err
	}

	topic := strings.Trim(strings.TrimSpace(text), `"`)
	switch {
	case topic == "":
		s.log.Warn("LLM suggested no topic, using fallback")
		return fallbackSuggestion, nil
	case len(history) > 0 && strings.EqualFold(topic, history[len(history)-1]):
		s.log.Warn("Suggested topic repeats the last history entry", "topic", topic)
		return duplicateSuggestion, nil
	}
	s.log.Info("Suggested single topic", "topic", topic)
	return topic, nil
}

// ExpandTopics asks the LLM for exactly n topic titles covering the initial
// topics. The result always has length n: malformed or wrong-length answers
// fall back to PadTopics.
func (s *Services) ExpandTopics(ctx context.Context, initial []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(initial) == 0 {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("Interesting Topic %d", i+1)
		}
		return out
	}

	text, err := s.generate(ctx, expandTopicsPrompt(initial, n))
	if err != nil {
		s.log.Warn("Topic expansion call failed, padding", "error", err)
		return PadTopics(initial, n)
	}

	expanded, err := decodeTopicList(text)
	if err != nil || len(expanded) != n {
		s.log.Warn("Unexpected topic expansion answer, padding", "expected", n, "got", len(expanded), "error", err)
		return PadTopics(initial, n)
	}
	return expanded
}

// PadTopics extends initial with "<first> - Aspect <k>" entries until it has
// n items, then trims to n.
func PadTopics(initial []string, n int) []string {
	out := append([]string(nil), initial...)
	for len(out) < n {
		out = append(out, fmt.Sprintf("%s - Aspect %d", initial[0], len(out)))
	}
	return out[:n]
}

// SuggestRelated proposes up to n further topics for someone who enjoyed the
// given ones. Failures yield an empty list.
func (s *Services) SuggestRelated(ctx context.Context, topics []string, n int) []string {
	if len(topics) == 0 || n <= 0 {
		return nil
	}
	text, err := s.generate(ctx, relatedTopicsPrompt(topics, n))
	if err != nil {
		s.log.Warn("Related topic suggestion failed", "error", err)
		return nil
	}
	related, err := decodeTopicList(text)
	if err != nil {
		s.log.Warn("Related topic suggestion was not a JSON list", "error", err)
		return nil
	}
	if len(related) > n {
		related = related[:n]
	}
	return related
}

func decodeTopicList(text string) ([]string, error) {
	var list []string
	if err := json.Unmarshal([]byte(llm.StripCodeFence(text)), &list); err != nil {
		return nil, err
	}
	out := list[:0]
	for _, t := range list {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}
