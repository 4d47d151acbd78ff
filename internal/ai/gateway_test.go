package ai_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ii-tuitions/mocktest/internal/ai"
	"github.com/ii-tuitions/mocktest/internal/apperr"
	"github.com/ii-tuitions/mocktest/internal/platform/config"
)

func TestMockProvider_Complete(t *testing.T) {
	mock := ai.NewMockProvider("test response")

	resp, err := mock.Complete(context.Background(), ai.UserMessage("Hello", "", 0))
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "test response" {
		t.Errorf("Content = %q, want %q", resp.Content, "test response")
	}
	if resp.Model != "mock" {
		t.Errorf("Model = %q, want %q", resp.Model, "mock")
	}
	if mock.LastRequest == nil || mock.LastRequest.Messages[0].Content != "Hello" {
		t.Errorf("LastRequest = %+v", mock.LastRequest)
	}
	if mock.Calls != 1 {
		t.Errorf("Calls = %d, want 1", mock.Calls)
	}
}

func TestMockProvider_Error(t *testing.T) {
	mock := ai.NewMockProvider("")
	mock.Err = ai.ErrRateLimited

	if _, err := mock.Complete(context.Background(), ai.CompletionRequest{}); !errors.Is(err, ai.ErrRateLimited) {
		t.Errorf("Complete() error = %v, want ErrRateLimited", err)
	}
	if err := mock.HealthCheck(context.Background()); !errors.Is(err, ai.ErrRateLimited) {
		t.Errorf("HealthCheck() error = %v, want ErrRateLimited", err)
	}
}

func TestMockProvider_Models(t *testing.T) {
	mock := ai.NewMockProvider("response")
	if len(mock.Models()) == 0 {
		t.Error("Models() returned empty")
	}
}

func TestDemoResponse_IsFenced(t *testing.T) {
	if !strings.Contains(ai.DemoResponse, "```json") {
		t.Error("DemoResponse should be fenced like a real reply")
	}
}

func TestCompletionResponse_TotalTokens(t *testing.T) {
	resp := ai.CompletionResponse{InputTokens: 100, OutputTokens: 50}
	if got := resp.TotalTokens(); got != 150 {
		t.Errorf("TotalTokens() = %d, want 150", got)
	}
}

func TestNewProvider(t *testing.T) {
	base := config.AIConfig{Timeout: 60 * time.Second, ConnectionTestTimeout: 10 * time.Second}

	tests := []struct {
		name          string
		mutate        func(*config.AIConfig)
		wantName      string
		wantNotConfig bool
		wantErr       bool
	}{
		{"anthropic", func(c *config.AIConfig) { c.Provider = "anthropic"; c.Anthropic.APIKey = "sk-ant-api03-abc" }, "anthropic", false, false},
		{"anthropic without key", func(c *config.AIConfig) { c.Provider = "anthropic" }, "anthropic", true, false},
		{"anthropic placeholder key", func(c *config.AIConfig) { c.Provider = "anthropic"; c.Anthropic.APIKey = ai.PlaceholderKey }, "anthropic", true, false},
		{"openai", func(c *config.AIConfig) { c.Provider = "openai"; c.OpenAI.APIKey = "sk-abc" }, "openai", false, false},
		{"openai without key", func(c *config.AIConfig) { c.Provider = "openai" }, "openai", true, false},
		{"google", func(c *config.AIConfig) { c.Provider = "google"; c.Google.APIKey = "AIza-test" }, "google", false, false},
		{"google without key", func(c *config.AIConfig) { c.Provider = "google" }, "google", true, false},
		{"openrouter", func(c *config.AIConfig) { c.Provider = "openrouter"; c.OpenRouter.APIKey = "or-abc" }, "openrouter", false, false},
		{"ollama", func(c *config.AIConfig) { c.Provider = "ollama" }, "ollama", false, false},
		{"mock", func(c *config.AIConfig) { c.Provider = "mock" }, "mock", false, false},
		{"unknown", func(c *config.AIConfig) { c.Provider = "gemini" }, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			p, err := ai.NewProvider(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewProvider() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
			if tt.wantNotConfig {
				_, err := p.Complete(context.Background(), ai.UserMessage("hi", "", 0))
				if !errors.Is(err, ai.ErrNotConfigured) {
					t.Errorf("Complete() error = %v, want ErrNotConfigured", err)
				}
				if apperr.KindOf(err) != apperr.KindConfiguration {
					t.Errorf("KindOf() = %q, want %q", apperr.KindOf(err), apperr.KindConfiguration)
				}
				if err := p.HealthCheck(context.Background()); !errors.Is(err, ai.ErrNotConfigured) {
					t.Errorf("HealthCheck() error = %v, want ErrNotConfigured", err)
				}
			}
		})
	}
}
