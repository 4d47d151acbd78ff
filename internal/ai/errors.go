package ai

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ii-tuitions/mocktest/internal/apperr"
)

var (
	// ErrNotConfigured is returned before any network call when the
	// provider has no credential.
	ErrNotConfigured = fmt.Errorf("%w: API key not configured", apperr.ErrConfiguration)
	// ErrInvalidKeyFormat is returned by CheckKeyFormat.
	ErrInvalidKeyFormat = fmt.Errorf("%w: invalid API key format", apperr.ErrConfiguration)
	// ErrAuthentication is returned when the backend rejects the credential (401).
	ErrAuthentication = fmt.Errorf("%w: API authentication failed - check your API key", apperr.ErrAuthentication)
	// ErrRateLimited is returned when the backend throttles the request (429).
	ErrRateLimited = fmt.Errorf("%w: API rate limit exceeded - try again later", apperr.ErrRateLimited)
)

// APIError is any other non-success response from a backend.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s API Error %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API Error: %d", e.Provider, e.StatusCode)
}

func (e *APIError) Unwrap() error { return apperr.ErrAPI }

// ConnectionError wraps a transport failure: the request never got a response.
type ConnectionError struct {
	Provider string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection error: %v", e.Provider, e.Err)
}

func (e *ConnectionError) Unwrap() []error { return []error{apperr.ErrAPI, e.Err} }

// statusError maps an HTTP status and JSON error body to the error for that
// status.
func statusError(provider string, status int, body []byte) error {
	return statusCodeError(provider, status, vendorMessage(body))
}

func statusCodeError(provider string, status int, message string) error {
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", provider, ErrAuthentication)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", provider, ErrRateLimited)
	}
	return &APIError{Provider: provider, StatusCode: status, Message: message}
}

// vendorMessage extracts error.message from a JSON error body, or "".
func vendorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Error.Message
}
