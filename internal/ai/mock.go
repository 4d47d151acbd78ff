package ai

import (
	"context"
	"sync"
)

// MockProvider is a test double for AI providers. With MOCKTEST_AI_PROVIDER=mock
// it also serves the offline demo.
type MockProvider struct {
	Response    string
	Err         error
	LastRequest *CompletionRequest // captures the last request for inspection
	Calls       int

	mu sync.Mutex
}

// NewMockProvider creates a MockProvider that returns the given response.
func NewMockProvider(response string) *MockProvider {
	return &MockProvider{Response: response}
}

// NewDemoProvider returns a MockProvider that answers with DemoResponse.
func NewDemoProvider() *MockProvider {
	return NewMockProvider(DemoResponse)
}

// Name returns "mock".
func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRequest = &req
	m.Calls++
	if m.Err != nil {
		return CompletionResponse{}, m.Err
	}
	return CompletionResponse{
		Content:      m.Response,
		Model:        "mock",
		InputTokens:  10,
		OutputTokens: len(m.Response),
	}, nil
}

func (m *MockProvider) Models() []ModelInfo {
	return []ModelInfo{
		{ID: "mock", Name: "Mock Model", MaxTokens: 4096, Description: "Canned test paper"},
	}
}

func (m *MockProvider) HealthCheck(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

// DemoResponse is a short fenced paper with surrounding commentary, shaped
// like a real model reply.
const DemoResponse = "Here is your mock test.\n\n```json\n" + `{
  "test_info": {
    "board": "CBSE",
    "grade": 8,
    "subject": "Science",
    "topic": "Force and Pressure",
    "paper_type": "Paper 2 (23 Mixed)",
    "total_questions": 3,
    "show_answers_on_screen": false
  },
  "questions": [
    {
      "question_number": 1,
      "type": "mcq",
      "question": "A force of 50 N acts on an area of 0.5 m^2. What pressure does it exert?",
      "options": {"A": "25 Pa", "B": "100 Pa", "C": "50 Pa", "D": "0.01 Pa"},
      "correct_answer": "B",
      "explanation": "Pressure = Force / Area = 50 / 0.5 = 100 Pa."
    },
    {
      "question_number": 2,
      "type": "mcq",
      "question": "Why are the blades of knives sharpened?",
      "options": {"A": "To increase the area of contact", "B": "To reduce friction", "C": "To increase pressure on the object cut", "D": "To reduce the force needed to hold them"},
      "correct_answer": "C",
      "explanation": "A thin edge has a small area, so the same force produces a larger pressure."
    },
    {
      "question_number": 3,
      "type": "short_answer",
      "question": "Explain why liquid pressure increases with depth.",
      "sample_answer": "The weight of the liquid column above a point grows with depth, so the pressure at that point grows too."
    }
  ]
}` + "\n```\n\nGood luck with your preparation!"
