package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ii-tuitions/mocktest/internal/apperr"
)

func geminiHandler(t *testing.T, text string, gotBody *string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("x-goog-api-key = %q, want test-key", got)
		}
		if gotBody != nil {
			b, _ := io.ReadAll(r.Body)
			*gotBody = string(b)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
					"finishReason": "STOP",
				},
			},
			"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 34, "totalTokenCount": 46},
		})
	}
}

func TestNewGoogleProvider_EmptyKey(t *testing.T) {
	_, err := NewGoogleProvider(context.Background(), "")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("NewGoogleProvider(\"\") error = %v, want ErrNotConfigured", err)
	}
}

func TestGoogleProvider_Complete(t *testing.T) {
	var body string
	server := httptest.NewServer(geminiHandler(t, `{"questions": []}`, &body))
	defer server.Close()

	p, err := NewGoogleProvider(context.Background(), "test-key", WithGoogleBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewGoogleProvider() error = %v", err)
	}

	resp, err := p.Complete(context.Background(), UserMessage("Generate a test.", "", 4000))
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != `{"questions": []}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 34 {
		t.Errorf("tokens = %d/%d, want 12/34", resp.InputTokens, resp.OutputTokens)
	}
	if resp.Model != defaultGoogleModel {
		t.Errorf("Model = %q, want %q", resp.Model, defaultGoogleModel)
	}
	if !strings.Contains(body, "Generate a test.") || !strings.Contains(body, `"maxOutputTokens":4000`) {
		t.Errorf("request body = %s", body)
	}
}

func TestGoogleProvider_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind apperr.Kind
	}{
		{"forbidden key", http.StatusForbidden, apperr.KindAuthentication},
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
					"error": map[string]any{"code": tt.status, "message": "upstream said no", "status": "ERROR"},
				})
			}))
			defer server.Close()

			p, err := NewGoogleProvider(context.Background(), "test-key", WithGoogleBaseURL(server.URL))
			if err != nil {
				t.Fatalf("NewGoogleProvider() error = %v", err)
			}
			_, err = p.Complete(context.Background(), UserMessage("hi", "", 10))
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf(%v) = %q, want %q", err, got, tt.wantKind)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
		})
	}
}

func TestGoogleProvider_EmptyText(t *testing.T) {
	server := httptest.NewServer(geminiHandler(t, "", nil))
	defer server.Close()

	p, err := NewGoogleProvider(context.Background(), "test-key", WithGoogleBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewGoogleProvider() error = %v", err)
	}
	_, err = p.Complete(context.Background(), UserMessage("hi", "", 10))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Complete() error = %v, want *APIError", err)
	}
}
