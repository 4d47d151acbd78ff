package paper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ii-tuitions/mocktest/internal/apperr"
)

// ErrMalformedResponse is returned when no payload can be parsed from the
// backend's reply.
var ErrMalformedResponse = fmt.Errorf("%w: could not parse generated test", apperr.ErrMalformedResponse)

const (
	jsonFence = "```json"
	fence     = "```"
)

// ExtractJSON returns the candidate JSON text in a model reply. A ```json
// fence wins over a bare fence; the text runs to the next closing fence. With
// no closing fence the whole reply is used.
func ExtractJSON(raw string) string {
	content := strings.TrimSpace(raw)

	open := fence
	start := strings.Index(content, jsonFence)
	if start >= 0 {
		open = jsonFence
	} else {
		start = strings.Index(content, fence)
	}

	if start >= 0 {
		body := start + len(open)
		if end := strings.Index(content[body:], fence); end >= 0 {
			content = content[body : body+end]
		}
	}

	return strings.TrimSpace(content)
}

// Accept parses a model reply into a Paper. It fails with
// ErrMalformedResponse and a nil Paper when no JSON object can be parsed.
// The backend is not trusted to echo the answers flag, so
// ShowAnswersOnScreen is always taken from req.
func Accept(raw string, req Requested) (*Paper, error) {
	content := ExtractJSON(raw)
	if !strings.HasPrefix(content, "{") {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var p Paper
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	p.Info.ShowAnswersOnScreen = req.ShowAnswers
	p.raw = []byte(content)
	return &p, nil
}
