package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	oaioption "github.com/openai/openai-go/option"
)

func chatServer(t *testing.T, content, finish string) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing api key header")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": finish,
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestOpenAIGenerate(t *testing.T) {
	srv, got := chatServer(t, "  Volcanoes are vents.  ", "stop")
	client := NewOpenAI("test-key", "gpt-4o-mini", oaioption.WithBaseURL(srv.URL+"/"), oaioption.WithMaxRetries(0))

	text, err := client.Generate(context.Background(), "Tell me about volcanoes")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Volcanoes are vents." {
		t.Fatalf("text: %q", text)
	}
	if (*got)["model"] != "gpt-4o-mini" {
		t.Fatalf("request model: %v", (*got)["model"])
	}
}

func TestOpenAIGenerateTypedFailures(t *testing.T) {
	srv, _ := chatServer(t, "", "content_filter")
	client := NewOpenAI("test-key", "gpt-4o-mini", oaioption.WithBaseURL(srv.URL+"/"), oaioption.WithMaxRetries(0))
	if _, err := client.Generate(context.Background(), "x"); !errors.Is(err, ErrBlocked) {
		t.Fatalf("got=%v want ErrBlocked", err)
	}

	srv, _ = chatServer(t, "   ", "stop")
	client = NewOpenAI("test-key", "gpt-4o-mini", oaioption.WithBaseURL(srv.URL+"/"), oaioption.WithMaxRetries(0))
	if _, err := client.Generate(context.Background(), "x"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("got=%v want ErrEmptyResponse", err)
	}
}
