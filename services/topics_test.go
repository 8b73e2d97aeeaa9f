package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/srgchrksv/bitecast/models"
)

func TestResolveTopicsTruncatesInOrder(t *testing.T) {
	s := newTestServices(t, &fakeLLM{}, nil, nil)
	a := models.PromptAnalysis{RequestedTopics: []string{"A", "B", "C", "D", "E"}, SegmentsNeeded: 3, SegmentsBasedOnTime: true}

	got, err := s.ResolveTopics(context.Background(), "x", a, nil)
	if err != nil {
		t.Fatalf("ResolveTopics: %v", err)
	}
	if strings.Join(got, ",") != "A,B,C" {
		t.Fatalf("got=%v", got)
	}
}

func TestResolveTopicsKeepsLongListsWithinLimit(t *testing.T) {
	s := newTestServices(t, &fakeLLM{}, nil, nil)
	a := FinalizeAnalysis(RawAnalysis{RequestedTopics: numberedTopics(30)})

	got, err := s.ResolveTopics(context.Background(), "x", a, nil)
	if err != nil {
		t.Fatalf("ResolveTopics: %v", err)
	}
	if len(got) != MaxSegments || got[0] != "Topic 1" || got[MaxSegments-1] != "Topic 24" {
		t.Fatalf("got %d topics: %v", len(got), got)
	}
}

func TestResolveTopicsExactAndUnderfilled(t *testing.T) {
	l := &fakeLLM{}
	s := newTestServices(t, l, nil, nil)

	got, err := s.ResolveTopics(context.Background(), "x", models.PromptAnalysis{RequestedTopics: []string{"A", "B"}, SegmentsNeeded: 2}, nil)
	if err != nil || strings.Join(got, ",") != "A,B" {
		t.Fatalf("exact: got=%v err=%v", got, err)
	}

	got, err = s.ResolveTopics(context.Background(), "x", models.PromptAnalysis{RequestedTopics: []string{"A"}, SegmentsNeeded: 3}, nil)
	if err != nil || strings.Join(got, ",") != "A" {
		t.Fatalf("underfilled without time/suggestion must not pad: got=%v err=%v", got, err)
	}
	if len(l.prompts) != 0 {
		t.Fatalf("no LLM calls expected, got %d", len(l.prompts))
	}
}

func TestResolveTopicsExpansionAlwaysReachesNeededCount(t *testing.T) {
	answers := map[string]func() (string, error){
		"good":         answer(`["History of the Automobile", "How Engines Work", "Electric Vehicles", "Self-Driving Cars"]`),
		"fenced":       answer("```json\n[\"a\", \"b\", \"c\", \"d\"]\n```"),
		"wrong length": answer(`["Only One"]`),
		"too many":     answer(`["a","b","c","d","e","f"]`),
		"malformed":    answer(`here are some topics: cars, engines`),
		"not strings":  answer(`[1, 2, 3, 4]`),
		"object":       answer(`{"topics": ["a","b","c","d"]}`),
		"error":        func() (string, error) { return "", errors.New("network down") },
	}
	for name, fn := range answers {
		s := newTestServices(t, &fakeLLM{expand: fn}, nil, nil)
		a := models.PromptAnalysis{TotalTimeMinutes: 20, RequestedTopics: []string{"Cars"}, SegmentsNeeded: 4, SegmentsBasedOnTime: true}
		got, err := s.ResolveTopics(context.Background(), "20 mins on cars", a, nil)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(got) != 4 {
			t.Fatalf("%s: got %d topics (%v), want 4", name, len(got), got)
		}
	}
}

func TestResolveTopicsExpandsOnSuggestionFlag(t *testing.T) {
	l := &fakeLLM{expand: answer(`["Space Exploration", "Mars Missions", "The ISS"]`)}
	s := newTestServices(t, l, nil, nil)
	a := models.PromptAnalysis{RequestedTopics: []string{"Space Exploration"}, SegmentsNeeded: 3, RequiresSuggestion: true}

	got, err := s.ResolveTopics(context.Background(), "x", a, nil)
	if err != nil || len(got) != 3 || got[1] != "Mars Missions" {
		t.Fatalf("got=%v err=%v", got, err)
	}
}

func TestPadTopics(t *testing.T) {
	got := PadTopics([]string{"Cars"}, 4)
	want := []string{"Cars", "Cars - Aspect 1", "Cars - Aspect 2", "Cars - Aspect 3"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got=%v want=%v", got, want)
	}
	if got := PadTopics([]string{"A", "B", "C"}, 2); strings.Join(got, ",") != "A,B" {
		t.Fatalf("pad should trim to n: %v", got)
	}
}

func TestExpandTopicsWithoutSeeds(t *testing.T) {
	l := &fakeLLM{}
	s := newTestServices(t, l, nil, nil)
	got := s.ExpandTopics(context.Background(), nil, 2)
	if strings.Join(got, ",") != "Interesting Topic 1,Interesting Topic 2" {
		t.Fatalf("got=%v", got)
	}
	if len(l.prompts) != 0 {
		t.Fatal("no LLM call expected without seed topics")
	}
}

func TestSuggestSingleTopicUsesHistory(t *testing.T) {
	var seen string
	l := &fakeLLM{single: func(p string) (string, error) { seen = p; return `"What is dark matter?"`, nil }}
	s := newTestServices(t, l, nil, nil)

	got, err := s.SuggestSingleTopic(context.Background(), "surprise me", []string{"Black holes", "Star formation"})
	if err != nil {
		t.Fatalf("SuggestSingleTopic: %v", err)
	}
	if got != "What is dark matter?" {
		t.Fatalf("got=%q", got)
	}
	if !strings.Contains(seen, "Black holes, Star formation") {
		t.Fatalf("history missing from prompt: %s", seen)
	}
}

func TestSuggestSingleTopicFallbacks(t *testing.T) {
	history := []string{"Black holes", "Quantum Tunneling"}

	l := &fakeLLM{single: func(string) (string, error) { return "quantum tunneling", nil }}
	got, err := newTestServices(t, l, nil, nil).SuggestSingleTopic(context.Background(), "surprise me", history)
	if err != nil || got != duplicateSuggestion {
		t.Fatalf("duplicate of last entry: got=%q err=%v", got, err)
	}
	if l.count("This request is vague") != 1 {
		t.Fatal("duplicate must not trigger a retry")
	}

	l = &fakeLLM{single: func(string) (string, error) { return "black holes", nil }}
	got, _ = newTestServices(t, l, nil, nil).SuggestSingleTopic(context.Background(), "surprise me", history)
	if got != "black holes" {
		t.Fatalf("only the most recent entry is checked, got=%q", got)
	}

	l = &fakeLLM{single: func(string) (string, error) { return `""`, nil }}
	got, _ = newTestServices(t, l, nil, nil).SuggestSingleTopic(context.Background(), "surprise me", nil)
	if got != fallbackSuggestion {
		t.Fatalf("empty suggestion: got=%q", got)
	}
}

func TestResolveTopicsSuggestionFailureIsFatal(t *testing.T) {
	l := &fakeLLM{single: func(string) (string, error) { return "", errors.New("quota") }}
	s := newTestServices(t, l, nil, nil)
	a := models.PromptAnalysis{RequiresSuggestion: true, SegmentsNeeded: 1, TotalTimeMinutes: 5}

	if _, err := s.ResolveTopics(context.Background(), "surprise me", a, nil); !errors.Is(err, ErrNoTopics) {
		t.Fatalf("got=%v want ErrNoTopics", err)
	}
}

func TestSuggestRelated(t *testing.T) {
	s := newTestServices(t, &fakeLLM{related: answer(`["A", "B", "C"]`)}, nil, nil)
	if got := s.SuggestRelated(context.Background(), []string{"Cars"}, 2); strings.Join(got, ",") != "A,B" {
		t.Fatalf("got=%v", got)
	}

	s = newTestServices(t, &fakeLLM{related: answer(`nope`)}, nil, nil)
	if got := s.SuggestRelated(context.Background(), []string{"Cars"}, 2); len(got) != 0 {
		t.Fatalf("malformed answer should yield nothing, got=%v", got)
	}
}
