package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTavilySearchSendsQueryAndDecodesResults(t *testing.T) {
	var got tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"url":"https://a.test","content":"alpha"},{"url":"https://b.test","content":"beta"}]}`))
	}))
	defer srv.Close()

	results, err := NewTavily("key", srv.URL+"/").Search(context.Background(), Query{Query: "cars", MaxResults: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got.Query != "cars" || got.SearchDepth != "basic" || got.MaxResults != 3 || got.IncludeAnswer {
		t.Fatalf("unexpected request body: %+v", got)
	}
	if len(results) != 2 || results[1].URL != "https://b.test" || results[0].Content != "alpha" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestTavilySearchReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewTavily("key", srv.URL).Search(context.Background(), Query{Query: "x"}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
