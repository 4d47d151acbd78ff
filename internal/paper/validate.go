package paper

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Issue is one problem found in an accepted paper.
type Issue struct {
	Question int    `json:"question,omitempty"` // 1-based position, 0 for the whole paper
	Message  string `json:"message"`
}

func (i Issue) String() string {
	if i.Question == 0 {
		return i.Message
	}
	return fmt.Sprintf("question %d: %s", i.Question, i.Message)
}

// PayloadSchema is the JSON Schema a generated test must satisfy.
const PayloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["test_info", "questions"],
  "properties": {
    "test_info": {
      "type": "object",
      "required": ["board", "grade", "subject", "topic"],
      "properties": {
        "board": {"type": "string"},
        "grade": {"type": ["integer", "string"]},
        "subject": {"type": "string"},
        "topic": {"type": "string"},
        "paper_type": {"type": "string"},
        "total_questions": {"type": ["integer", "string"]},
        "show_answers_on_screen": {"type": "boolean"}
      }
    },
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["type", "question"],
        "properties": {
          "question_number": {"type": ["integer", "string"]},
          "type": {"type": "string", "enum": ["mcq", "short_answer"]},
          "question": {"type": "string"},
          "options": {
            "type": "object",
            "additionalProperties": {"type": "string"}
          },
          "correct_answer": {"type": "string"},
          "explanation": {"type": "string"},
          "sample_answer": {"type": "string"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(PayloadSchema)

// ValidateSchema checks p against PayloadSchema. A paper produced by Accept
// is checked as the backend sent it, before any defaults were applied;
// other papers are checked in their encoded form.
func ValidateSchema(p *Paper) ([]Issue, error) {
	if len(p.raw) > 0 {
		return ValidateSchemaJSON(string(p.raw))
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling paper: %w", err)
	}
	return ValidateSchemaJSON(string(data))
}

// ValidateSchemaJSON checks a JSON document against PayloadSchema.
func ValidateSchemaJSON(doc string) ([]Issue, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating paper schema: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	issues := make([]Issue, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, Issue{Message: "schema: " + e.String()})
	}
	return issues, nil
}

// Validate checks the payload invariants: the declared and requested counts
// match the questions, every question has text, and every MCQ has exactly
// the options A to D, distinct, with a correct answer among them. Answers are
// not required.
func Validate(p *Paper, req Requested) []Issue {
	var issues []Issue

	n := len(p.Questions)
	if n == 0 {
		issues = append(issues, Issue{Message: "no questions"})
	}
	if p.Info.TotalQuestions > 0 && int(p.Info.TotalQuestions) != n {
		issues = append(issues, Issue{Message: fmt.Sprintf("total_questions is %d but %d questions were returned", p.Info.TotalQuestions, n)})
	}
	if req.Total() > 0 && req.Total() != n {
		issues = append(issues, Issue{Message: fmt.Sprintf("requested %d questions but %d were returned", req.Total(), n)})
	}

	for i, q := range p.Questions {
		pos := i + 1
		if strings.TrimSpace(q.Text) == "" {
			issues = append(issues, Issue{Question: pos, Message: "question text is empty"})
		}
		switch q.Type {
		case TypeMCQ:
			issues = append(issues, validateOptions(pos, q)...)
		case TypeShortAnswer:
		default:
			issues = append(issues, Issue{Question: pos, Message: fmt.Sprintf("unknown type %q", q.Type)})
		}
	}

	return issues
}

func validateOptions(pos int, q Question) []Issue {
	var issues []Issue

	labels := make([]string, 0, len(q.Options))
	for l := range q.Options {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	if !slices.Equal(labels, OptionLabels) {
		issues = append(issues, Issue{Question: pos, Message: fmt.Sprintf("options are %v, want %v", labels, OptionLabels)})
	}

	seen := make(map[string]string, len(q.Options))
	for _, l := range labels {
		text := strings.TrimSpace(q.Options[l])
		if prev, dup := seen[strings.ToLower(text)]; dup {
			issues = append(issues, Issue{Question: pos, Message: fmt.Sprintf("options %s and %s are identical", prev, l)})
			continue
		}
		seen[strings.ToLower(text)] = l
	}

	if q.CorrectAnswer != "" && !slices.Contains(labels, q.CorrectAnswer) {
		issues = append(issues, Issue{Question: pos, Message: fmt.Sprintf("correct answer %q is not an option label", q.CorrectAnswer)})
	}
	return issues
}

// Check runs Validate and ValidateSchema together.
func Check(p *Paper, req Requested) ([]Issue, error) {
	issues := Validate(p, req)
	schemaIssues, err := ValidateSchema(p)
	if err != nil {
		return issues, err
	}
	return append(issues, schemaIssues...), nil
}
