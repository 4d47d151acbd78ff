// Package paper defines the generated test payload, how it is accepted from
// raw model output, and how it is checked.
package paper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Question types.
const (
	TypeMCQ         = "mcq"
	TypeShortAnswer = "short_answer"
)

// Placeholders rendered in place of missing fields.
const (
	MissingQuestionText = "Question text missing"
	MissingAnswer       = "Answer not generated (test created without answers)"
)

// OptionLabels are the labels every MCQ must carry, in display order.
var OptionLabels = []string{"A", "B", "C", "D"}

// PaperType is a test composition preset.
type PaperType string

const (
	Paper1 PaperType = "Paper 1 (25 MCQs)"
	Paper2 PaperType = "Paper 2 (23 Mixed)"
	Paper3 PaperType = "Paper 3 (more than 25)"
)

// PaperTypes lists the presets in display order.
func PaperTypes() []PaperType {
	return []PaperType{Paper1, Paper2, Paper3}
}

// Counts returns the MCQ and short-answer counts for the preset. Unrecognised
// values get the Paper 3 composition.
func (p PaperType) Counts() (mcq, short int) {
	switch p {
	case Paper1:
		return 25, 0
	case Paper2:
		return 15, 8
	default:
		return 30, 0
	}
}

// Format describes the preset's composition for the create page.
func (p PaperType) Format() string {
	switch p {
	case Paper1:
		return "25 Multiple Choice Questions"
	case Paper2:
		return "15 MCQs + 8 Short Answer Questions"
	default:
		return "30+ Multiple Choice Questions"
	}
}

// Valid reports whether p is one of the presets.
func (p PaperType) Valid() bool {
	return slices.Contains(PaperTypes(), p)
}

// Requested is what the caller asked the backend for.
type Requested struct {
	PaperType   PaperType
	MCQCount    int
	ShortCount  int
	ShowAnswers bool
}

// RequestFor builds a Requested from a preset.
func RequestFor(p PaperType, showAnswers bool) Requested {
	mcq, short := p.Counts()
	return Requested{PaperType: p, MCQCount: mcq, ShortCount: short, ShowAnswers: showAnswers}
}

// Total is the number of questions requested.
func (r Requested) Total() int {
	return r.MCQCount + r.ShortCount
}

// Paper is a generated test.
type Paper struct {
	Info      TestInfo   `json:"test_info"`
	Questions []Question `json:"questions"`

	// raw is the JSON text the paper was decoded from, kept for the schema
	// check. Papers built in code or reloaded from a session have none.
	raw []byte
}

// TestInfo is the test metadata.
type TestInfo struct {
	Board               string  `json:"board"`
	Grade               FlexInt `json:"grade"`
	Subject             string  `json:"subject"`
	Topic               string  `json:"topic"`
	PaperType           string  `json:"paper_type"`
	TotalQuestions      FlexInt `json:"total_questions"`
	ShowAnswersOnScreen bool    `json:"show_answers_on_screen"`
	DifficultyLevel     string  `json:"difficulty_level,omitempty"`
}

// Question is one test question. Options, CorrectAnswer and Explanation apply
// to MCQs; SampleAnswer to short answers. Answer is a generic answer some
// responses use instead.
type Question struct {
	Number        FlexInt           `json:"question_number"`
	Type          string            `json:"type"`
	Text          string            `json:"question"`
	Options       map[string]string `json:"options,omitempty"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Explanation   string            `json:"explanation,omitempty"`
	SampleAnswer  string            `json:"sample_answer,omitempty"`
	Answer        string            `json:"answer,omitempty"`
	Difficulty    string            `json:"difficulty,omitempty"`
}

// Total is the declared question count, or the number of questions when the
// payload does not declare one.
func (i TestInfo) Total(p *Paper) int {
	if i.TotalQuestions > 0 {
		return int(i.TotalQuestions)
	}
	return len(p.Questions)
}

// Difficulty is the declared difficulty level, defaulting to the grade.
func (i TestInfo) Difficulty() string {
	if i.DifficultyLevel != "" {
		return i.DifficultyLevel
	}
	return fmt.Sprintf("Grade %d Level", i.Grade)
}

// DisplayText is the question text or its placeholder.
func (q Question) DisplayText() string {
	if q.Text == "" {
		return MissingQuestionText
	}
	return q.Text
}

// IsMCQ reports whether q is a multiple-choice question with options.
func (q Question) IsMCQ() bool {
	return q.Type == TypeMCQ && len(q.Options) > 0
}

// Option is one labelled MCQ option.
type Option struct {
	Label string
	Text  string
}

// SortedOptions returns the options ordered by label.
func (q Question) SortedOptions() []Option {
	labels := make([]string, 0, len(q.Options))
	for l := range q.Options {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	opts := make([]Option, 0, len(labels))
	for _, l := range labels {
		opts = append(opts, Option{Label: l, Text: q.Options[l]})
	}
	return opts
}

// AnswerLabel names the kind of answer AnswerKey returns.
func (q Question) AnswerLabel() string {
	switch {
	case q.CorrectAnswer != "":
		return "Correct Answer"
	case q.SampleAnswer != "":
		return "Sample Answer"
	default:
		return "Answer"
	}
}

// AnswerKey is the correct answer, else the sample answer, else the generic
// answer, else the not-generated placeholder.
func (q Question) AnswerKey() string {
	switch {
	case q.CorrectAnswer != "":
		return q.CorrectAnswer
	case q.SampleAnswer != "":
		return q.SampleAnswer
	case q.Answer != "":
		return q.Answer
	default:
		return MissingAnswer
	}
}

// HasAnswer reports whether any answer field is set.
func (q Question) HasAnswer() bool {
	return q.CorrectAnswer != "" || q.SampleAnswer != "" || q.Answer != ""
}

// FlexInt is an integer that also decodes from a numeric JSON string, since
// generated payloads are not consistent about quoting numbers.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		*n = FlexInt(v)
		return nil
	}
	var v json.Number
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	i, err := v.Int64()
	if err != nil {
		f, ferr := v.Float64()
		if ferr != nil {
			return err
		}
		i = int64(f)
	}
	*n = FlexInt(i)
	return nil
}
