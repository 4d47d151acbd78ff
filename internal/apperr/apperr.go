// Package apperr defines the error kinds surfaced to users and the message
// shown for each.
package apperr

import "errors"

// Kind identifies a class of failure for one user action.
type Kind string

const (
	KindConfiguration     Kind = "CONFIGURATION_ERROR"
	KindAuthentication    Kind = "AUTHENTICATION_ERROR"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindMalformedResponse Kind = "MALFORMED_RESPONSE"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindAPI               Kind = "API_ERROR"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// Sentinels for each kind. Packages wrap these so errors.Is can classify.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrAuthentication    = errors.New("authentication failed")
	ErrRateLimited       = errors.New("rate limited")
	ErrMalformedResponse = errors.New("malformed response")
	ErrValidation        = errors.New("validation failed")
	ErrAPI               = errors.New("api error")
)

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAPI):
		return KindAPI
	default:
		return KindInternal
	}
}

// GetMessage returns the human-readable message for a kind.
func GetMessage(kind Kind) string {
	switch kind {
	case KindConfiguration:
		return "API key not configured."
	case KindAuthentication:
		return "API authentication failed. Check your API key."
	case KindRateLimited:
		return "API rate limit exceeded. Please wait and try again."
	case KindMalformedResponse:
		return "Could not parse AI response. Try again."
	case KindValidation:
		return "Please fix validation errors before creating the test."
	case KindAPI:
		return "The AI service returned an error."
	default:
		return "Failed to generate test."
	}
}

// GetHint returns the suggested next step for a kind.
func GetHint(kind Kind) string {
	switch kind {
	case KindConfiguration:
		return "Set MOCKTEST_ANTHROPIC_API_KEY and restart the server."
	case KindAuthentication:
		return "Check that the key is correct, has credits remaining and has not expired, then test the connection again."
	case KindRateLimited:
		return "Wait a minute before generating another test."
	case KindMalformedResponse:
		return "Regenerate the test."
	case KindValidation:
		return "Complete all required fields: Board, Grade, Subject and Topic, and pick a topic that matches the subject."
	case KindAPI:
		return "Test the API connection first, then regenerate the test."
	default:
		return "Check your API connection and try again."
	}
}

// Message is the user-facing text for err: the kind's message and hint.
type Message struct {
	Kind   Kind   `json:"kind"`
	Text   string `json:"message"`
	Hint   string `json:"hint"`
	Detail string `json:"detail,omitempty"`
}

// MessageFor builds the Message for err. Detail carries err's own text for
// API and validation errors, where it says what went wrong.
func MessageFor(err error) Message {
	kind := KindOf(err)
	m := Message{Kind: kind, Text: GetMessage(kind), Hint: GetHint(kind)}
	switch kind {
	case KindAPI, KindValidation:
		m.Detail = err.Error()
	}
	return m
}
