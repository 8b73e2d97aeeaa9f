package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/srgchrksv/bitecast/search"
)

// FetchContext gathers web snippets for a topic. It never fails: a search
// error yields a context block saying so, and scripting goes ahead anyway.
func (s *Services) FetchContext(ctx context.Context, topic string) string {
	s.log.Info("Searching web", "topic", topic)
	if err := s.pacer.Wait(ctx, ProviderSearch); err != nil {
		return fmt.Sprintf("Topic: %s\n\nError: Could not fetch search results.", topic)
	}

	results, err := s.search.Search(ctx, search.Query{
		Query:         fmt.Sprintf("Comprehensive overview of %s for a %d-minute explanation", topic, SegmentMinutes),
		Depth:         "basic",
		MaxResults:    s.resultCount,
		IncludeAnswer: false,
	})
	if err != nil {
		s.log.Warn("Web search failed", "topic", topic, "error", err)
		return fmt.Sprintf("Topic: %s\n\nError: Could not fetch search results.", topic)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s\n\nSearch Results Context:\n", topic)
	if len(results) == 0 {
		s.log.Warn("No search results", "topic", topic)
		sb.WriteString("No specific search results found.")
		return sb.String()
	}
	for _, r := range results {
		fmt.Fprintf(&sb, "- Source: %s\n  Snippet: %s\n\n", orNA(r.URL), orNA(r.Content))
	}
	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
