package ai

import (
	"context"
	"fmt"

	"github.com/ii-tuitions/mocktest/internal/platform/config"
)

// NewProvider builds the provider selected by cfg.Provider. A provider whose
// key is missing is still returned; every call on it fails with
// ErrNotConfigured so the user sees the configuration problem on the action
// that needs it.
func NewProvider(cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		if !IsConfiguredKey(cfg.Anthropic.APIKey) {
			return unconfigured{name: "anthropic"}, nil
		}
		p, err := NewAnthropicProvider(cfg.Anthropic.APIKey,
			WithAnthropicBaseURL(cfg.Anthropic.BaseURL),
			WithAnthropicModel(cfg.Anthropic.Model),
			WithAnthropicTimeout(cfg.Timeout),
			WithAnthropicPingTimeout(cfg.ConnectionTestTimeout),
		)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		if !IsConfiguredKey(cfg.OpenAI.APIKey) {
			return unconfigured{name: "openai"}, nil
		}
		p, err := NewOpenAIProvider(cfg.OpenAI.APIKey,
			WithBaseURL(cfg.OpenAI.BaseURL),
			WithModel(cfg.OpenAI.Model),
			WithTimeout(cfg.Timeout),
			WithPingTimeout(cfg.ConnectionTestTimeout),
		)
		return openAICompatible(p, err)
	case "google":
		if !IsConfiguredKey(cfg.Google.APIKey) {
			return unconfigured{name: "google"}, nil
		}
		p, err := NewGoogleProvider(context.Background(), cfg.Google.APIKey,
			WithGoogleBaseURL(cfg.Google.BaseURL),
			WithGoogleModel(cfg.Google.Model),
			WithGoogleTimeout(cfg.Timeout),
			WithGooglePingTimeout(cfg.ConnectionTestTimeout),
		)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openrouter":
		if !IsConfiguredKey(cfg.OpenRouter.APIKey) {
			return unconfigured{name: "openrouter"}, nil
		}
		p, err := NewOpenRouterProvider(cfg.OpenRouter.APIKey,
			WithModel(cfg.OpenRouter.Model),
			WithTimeout(cfg.Timeout),
			WithPingTimeout(cfg.ConnectionTestTimeout),
		)
		return openAICompatible(p, err)
	case "ollama":
		p, err := NewOllamaProvider(cfg.Ollama.URL,
			WithModel(cfg.Ollama.Model),
			WithTimeout(cfg.Timeout),
			WithPingTimeout(cfg.ConnectionTestTimeout),
		)
		return openAICompatible(p, err)
	case "mock":
		return NewDemoProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

func openAICompatible(p *OpenAIProvider, err error) (Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

// unconfigured stands in for a provider without a credential.
type unconfigured struct {
	name string
}

func (u unconfigured) Name() string { return u.name }

func (u unconfigured) Complete(context.Context, CompletionRequest) (CompletionResponse, error) {
	return CompletionResponse{}, fmt.Errorf("%s: %w", u.name, ErrNotConfigured)
}

func (u unconfigured) Models() []ModelInfo { return nil }

func (u unconfigured) HealthCheck(context.Context) error {
	return fmt.Errorf("%s: %w", u.name, ErrNotConfigured)
}
