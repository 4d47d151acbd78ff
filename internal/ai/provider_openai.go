package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultOpenRouterURL    = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel  = "anthropic/claude-sonnet-4"
	defaultOllamaURL        = "http://localhost:11434"
	defaultOllamaModel      = "llama3:8b"
	ollamaPlaceholderAPIKey = "ollama"
)

// OpenAIProvider implements Provider for OpenAI and OpenAI-compatible APIs
// (OpenRouter, Ollama) via a configurable base URL.
type OpenAIProvider struct {
	name        string
	model       string
	baseURL     string
	timeout     time.Duration
	pingTimeout time.Duration
	models      []ModelInfo
	client      *openai.Client
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithBaseURL sets the base URL for the OpenAI-compatible API.
func WithBaseURL(url string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if url != "" {
			p.baseURL = url
		}
	}
}

// WithModel sets the default model.
func WithModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithModels sets the available models for this provider.
func WithModels(models []ModelInfo) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.models = models
	}
}

// WithProviderName sets the provider name used in errors and logs.
func WithProviderName(name string) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.name = name
	}
}

// WithTimeout sets the request timeout for generation.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.timeout = d
	}
}

// WithPingTimeout sets the timeout for HealthCheck.
func WithPingTimeout(d time.Duration) OpenAIOption {
	return func(p *OpenAIProvider) {
		p.pingTimeout = d
	}
}

// NewOpenAIProvider creates a new OpenAI-compatible provider. It returns
// ErrNotConfigured for an empty key.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	p := &OpenAIProvider{
		name:        "openai",
		model:       defaultOpenAIModel,
		timeout:     defaultTimeout,
		pingTimeout: defaultPingTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.name, ErrNotConfigured)
	}

	config := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		config.BaseURL = p.baseURL
	}
	config.HTTPClient = &http.Client{Timeout: p.timeout}
	p.client = openai.NewClientWithConfig(config)
	return p, nil
}

// NewOpenRouterProvider creates a provider for OpenRouter (OpenAI-compatible).
func NewOpenRouterProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	opts = append([]OpenAIOption{
		WithBaseURL(defaultOpenRouterURL),
		WithProviderName("openrouter"),
		WithModel(defaultOpenRouterModel),
	}, opts...)
	return NewOpenAIProvider(apiKey, opts...)
}

// NewOllamaProvider creates a provider for a self-hosted Ollama server,
// which serves an OpenAI-compatible API under /v1 and needs no key.
func NewOllamaProvider(baseURL string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	opts = append([]OpenAIOption{
		WithBaseURL(strings.TrimSuffix(baseURL, "/") + "/v1"),
		WithProviderName("ollama"),
		WithModel(defaultOllamaModel),
	}, opts...)
	return NewOpenAIProvider(ollamaPlaceholderAPIKey, opts...)
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return CompletionResponse{}, p.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return CompletionResponse{}, &APIError{Provider: p.name, StatusCode: http.StatusOK, Message: "no choices in response"}
	}

	return CompletionResponse{
		Content:      resp.Choices[0].Message.Content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (p *OpenAIProvider) Models() []ModelInfo {
	if p.models != nil {
		return p.models
	}
	return []ModelInfo{
		{ID: "gpt-4o", Name: "GPT-4o", MaxTokens: 128000, Description: "Most capable OpenAI model"},
		{ID: "gpt-4o-mini", Name: "GPT-4o Mini", MaxTokens: 128000, Description: "Fast, affordable OpenAI model"},
	}
}

// HealthCheck sends a ten-token request under the ping timeout.
func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.pingTimeout)
	defer cancel()
	_, err := p.Complete(ctx, UserMessage("Test", "", pingMaxTokens))
	return err
}

func (p *OpenAIProvider) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusCodeError(p.name, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return statusCodeError(p.name, reqErr.HTTPStatusCode, "")
	}
	return &ConnectionError{Provider: p.name, Err: err}
}
