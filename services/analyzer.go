package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/srgchrksv/bitecast/llm"
	"github.com/srgchrksv/bitecast/models"
)

// RawAnalysis is the JSON object the LLM is asked to return.
type RawAnalysis struct {
	TotalTimeMinutes   float64  `json:"total_time_minutes"`
	RequestedTopics    []string `json:"requested_topics"`
	RequiresSuggestion bool     `json:"requires_suggestion"`
}

// AnalyzePrompt asks the LLM to read the request and derives the segment plan.
// Any LLM failure or non-JSON answer is reported wrapped in ErrAnalysis.
func (s *Services) AnalyzePrompt(ctx context.Context, userPrompt string) (models.PromptAnalysis, error) {
	s.log.Info("Analyzing user prompt", "prompt", userPrompt)

	text, err := s.generate(ctx, analysisPrompt(userPrompt))
	if err != nil {
		return models.PromptAnalysis{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	var raw RawAnalysis
	if err := json.Unmarshal([]byte(llm.StripCodeFence(text)), &raw); err != nil {
		s.log.Warn("LLM did not return valid analysis JSON", "error", err, "raw", text)
		return models.PromptAnalysis{}, fmt.Errorf("%w: decoding analysis: %w", ErrAnalysis, err)
	}

	analysis := FinalizeAnalysis(raw)
	if raw.TotalTimeMinutes > MaxSegments*SegmentMinutes || len(analysis.RequestedTopics) > MaxSegments {
		s.log.Warn("Request exceeds the playlist limit, capping segments",
			"requested_minutes", raw.TotalTimeMinutes,
			"requested_topics", len(analysis.RequestedTopics),
			"max_segments", MaxSegments,
		)
	}
	s.log.Info("Prompt analysis complete",
		"total_time_minutes", analysis.TotalTimeMinutes,
		"requested_topics", analysis.RequestedTopics,
		"requires_suggestion", analysis.RequiresSuggestion,
		"segments_needed", analysis.SegmentsNeeded,
		"segments_based_on_time", analysis.SegmentsBasedOnTime,
	)
	return analysis, nil
}

// FinalizeAnalysis turns the raw LLM reading into a plan:
//   - explicit time T > 0: ceil(T/5) segments, time based
//   - k topics, no time: k segments, 5k minutes
//   - suggestion only: 1 segment, 5 minutes
//   - nothing usable: forced suggestion, 1 segment, 5 minutes
//
// Plans never exceed MaxSegments; longer requests are cut down to that many
// segments and the matching total time.
func FinalizeAnalysis(raw RawAnalysis) models.PromptAnalysis {
	topics := make([]string, 0, len(raw.RequestedTopics))
	for _, t := range raw.RequestedTopics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}

	a := models.PromptAnalysis{
		RequestedTopics:    topics,
		RequiresSuggestion: raw.RequiresSuggestion,
	}

	switch {
	case raw.TotalTimeMinutes > MaxSegments*SegmentMinutes:
		a.TotalTimeMinutes = MaxSegments * SegmentMinutes
		a.SegmentsNeeded = MaxSegments
		a.SegmentsBasedOnTime = true
	case raw.TotalTimeMinutes > 0:
		a.TotalTimeMinutes = int(math.Ceil(raw.TotalTimeMinutes))
		a.SegmentsNeeded = int(math.Ceil(raw.TotalTimeMinutes / SegmentMinutes))
		a.SegmentsBasedOnTime = true
	case len(topics) > MaxSegments:
		a.SegmentsNeeded = MaxSegments
		a.TotalTimeMinutes = MaxSegments * SegmentMinutes
	case len(topics) > 0:
		a.SegmentsNeeded = len(topics)
		a.TotalTimeMinutes = len(topics) * SegmentMinutes
	case raw.RequiresSuggestion:
		a.SegmentsNeeded = 1
		a.TotalTimeMinutes = SegmentMinutes
	default:
		a.RequiresSuggestion = true
		a.SegmentsNeeded = 1
		a.TotalTimeMinutes = SegmentMinutes
	}

	if a.SegmentsNeeded < 1 {
		a.SegmentsNeeded = 1
	}
	return a
}
