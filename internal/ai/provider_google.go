package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

const defaultGoogleModel = "gemini-2.0-flash"

// GoogleProvider implements Provider for Gemini through the genai SDK.
type GoogleProvider struct {
	model       string
	baseURL     string
	timeout     time.Duration
	pingTimeout time.Duration
	client      *genai.Client
}

// GoogleOption configures a GoogleProvider.
type GoogleOption func(*GoogleProvider)

// WithGoogleBaseURL overrides the API endpoint.
func WithGoogleBaseURL(url string) GoogleOption {
	return func(p *GoogleProvider) {
		if url != "" {
			p.baseURL = url
		}
	}
}

// WithGoogleModel sets the default model.
func WithGoogleModel(model string) GoogleOption {
	return func(p *GoogleProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithGoogleTimeout sets the request timeout for generation.
func WithGoogleTimeout(d time.Duration) GoogleOption {
	return func(p *GoogleProvider) { p.timeout = d }
}

// WithGooglePingTimeout sets the timeout for HealthCheck.
func WithGooglePingTimeout(d time.Duration) GoogleOption {
	return func(p *GoogleProvider) { p.pingTimeout = d }
}

// NewGoogleProvider creates a Gemini provider. It returns ErrNotConfigured
// for an empty key.
func NewGoogleProvider(ctx context.Context, apiKey string, opts ...GoogleOption) (*GoogleProvider, error) {
	p := &GoogleProvider{
		model:       defaultGoogleModel,
		timeout:     defaultTimeout,
		pingTimeout: defaultPingTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("google: %w", ErrNotConfigured)
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: p.timeout},
	}
	if p.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	p.client = client
	return p, nil
}

// Name returns "google".
func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	gc := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		gc.Temperature = &temp
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == "system" {
			gc.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: m.Content}}}
			continue
		}
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Content}}})
	}

	result, err := p.client.Models.GenerateContent(ctx, model, contents, gc)
	if err != nil {
		return CompletionResponse{}, mapGoogleError(err)
	}

	text := result.Text()
	if text == "" {
		return CompletionResponse{}, &APIError{Provider: "google", StatusCode: http.StatusOK, Message: "no text in response"}
	}

	resp := CompletionResponse{Content: text, Model: model}
	if result.UsageMetadata != nil {
		resp.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	return resp, nil
}

func (p *GoogleProvider) Models() []ModelInfo {
	return []ModelInfo{
		{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", MaxTokens: 8192, Description: "Fast Gemini model"},
		{ID: "gemini-2.0-pro", Name: "Gemini 2.0 Pro", MaxTokens: 8192, Description: "Most capable Gemini model"},
	}
}

// HealthCheck sends a ten-token request under the ping timeout.
func (p *GoogleProvider) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.pingTimeout)
	defer cancel()
	_, err := p.Complete(ctx, UserMessage("Test", "", pingMaxTokens))
	return err
}

// mapGoogleError treats 403 like 401: Gemini rejects bad keys with it.
func mapGoogleError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Code
		if status == http.StatusForbidden {
			status = http.StatusUnauthorized
		}
		return statusCodeError("google", status, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return mapGoogleError(*apiErrPtr)
	}
	return &ConnectionError{Provider: "google", Err: err}
}
