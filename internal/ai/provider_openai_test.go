package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ii-tuitions/mocktest/internal/apperr"
)

func chatCompletionHandler(t *testing.T, content string, gotBody *map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if gotBody != nil {
			json.NewDecoder(r.Body).Decode(gotBody)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}
}

func TestNewOpenAIProvider_EmptyKey(t *testing.T) {
	_, err := NewOpenAIProvider("")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("NewOpenAIProvider(\"\") error = %v, want ErrNotConfigured", err)
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(chatCompletionHandler(t, `{"questions": []}`, &body))
	defer server.Close()

	p, err := NewOpenAIProvider("test-key", WithBaseURL(server.URL+"/v1"))
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	resp, err := p.Complete(context.Background(), UserMessage("Generate a test.", "", 4000))
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != `{"questions": []}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.InputTokens != 40 || resp.OutputTokens != 25 {
		t.Errorf("tokens = (%d, %d), want (40, 25)", resp.InputTokens, resp.OutputTokens)
	}
	if body["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, want gpt-4o-mini", body["model"])
	}
	if body["max_tokens"] != float64(4000) {
		t.Errorf("max_tokens = %v, want 4000", body["max_tokens"])
	}
}

func TestOpenAIProvider_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind apperr.Kind
	}{
		{"unauthorized", http.StatusUnauthorized, apperr.KindAuthentication},
		{"rate limited", http.StatusTooManyRequests, apperr.KindRateLimited},
		{"server error", http.StatusInternalServerError, apperr.KindAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "nope", "type": "error", "code": "error"},
				})
			}))
			defer server.Close()

			p, _ := NewOpenAIProvider("test-key", WithBaseURL(server.URL+"/v1"))
			_, err := p.Complete(context.Background(), UserMessage("hi", "", 0))
			if err == nil {
				t.Fatal("Complete() expected error")
			}
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf(%v) = %q, want %q", err, got, tt.wantKind)
			}
			if calls != 1 {
				t.Errorf("server saw %d calls, want 1", calls)
			}
		})
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer server.Close()

	p, _ := NewOpenAIProvider("test-key", WithBaseURL(server.URL+"/v1"))
	_, err := p.Complete(context.Background(), UserMessage("hi", "", 0))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
}

func TestOpenRouterAndOllamaDefaults(t *testing.T) {
	or, err := NewOpenRouterProvider("or-key")
	if err != nil {
		t.Fatalf("NewOpenRouterProvider() error = %v", err)
	}
	if or.Name() != "openrouter" || or.baseURL != defaultOpenRouterURL {
		t.Errorf("openrouter = %q at %q", or.Name(), or.baseURL)
	}

	ol, err := NewOllamaProvider("http://gpu-box:11434/")
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}
	if ol.Name() != "ollama" || ol.baseURL != "http://gpu-box:11434/v1" || ol.model != defaultOllamaModel {
		t.Errorf("ollama = %q at %q model %q", ol.Name(), ol.baseURL, ol.model)
	}
}

func TestOllamaProvider_Complete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(chatCompletionHandler(t, "pong", &body))
	defer server.Close()

	p, err := NewOllamaProvider(server.URL, WithModel("qwen2.5:7b"))
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if body["model"] != "qwen2.5:7b" {
		t.Errorf("model = %v, want qwen2.5:7b", body["model"])
	}
	if body["max_tokens"] != float64(10) {
		t.Errorf("max_tokens = %v, want 10", body["max_tokens"])
	}
}
