package paper

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// PromptInput is everything the generation prompt mentions.
type PromptInput struct {
	Board             string
	Grade             int
	Subject           string
	Topic             string
	PaperType         PaperType
	MCQCount          int
	ShortCount        int
	ShowAnswers       bool
	CurriculumContext string
}

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{"quote": jsonString}).Parse(`Create a challenging {{.Board}} Grade {{.Grade}} {{.Subject}} test on "{{.Topic}}".

Curriculum context: {{.CurriculumContext}}

Generate {{.MCQCount}} difficult multiple choice questions about {{.Topic}}.
Generate {{.ShortCount}} challenging short answer questions about {{.Topic}}.

Requirements:
- Create REAL exam questions with actual content about {{.Topic}}
- Make questions challenging and difficult level
- Each MCQ has 4 options (A, B, C, D) with one correct answer
- Each short answer question has "type": "short_answer" and a "sample_answer"
- Use actual facts, calculations, formulas related to {{.Topic}}
- No generic descriptions - create specific questions
- Test deep understanding of {{.Topic}} concepts
- Make questions that would appear in competitive exams

Return in JSON format:
{
    "test_info": {
        "board": {{quote .Board}},
        "grade": {{.Grade}},
        "subject": {{quote .Subject}},
        "topic": {{quote .Topic}},
        "paper_type": {{quote (print .PaperType)}},
        "total_questions": {{.Total}},
        "show_answers_on_screen": {{.ShowAnswers}}
    },
    "questions": [
        {
            "question_number": 1,
            "type": "mcq",
            "question": {{quote (print "Real challenging question about " .Topic)}},
            "options": {
                "A": "Option A",
                "B": "Option B",
                "C": "Option C",
                "D": "Option D"
            },
            "correct_answer": "A",
            "explanation": "Explanation"
        }
    ]
}`))

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

type promptData struct {
	PromptInput
	Total int
}

// BuildPrompt renders the generation prompt.
func BuildPrompt(in PromptInput) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, promptData{PromptInput: in, Total: in.MCQCount + in.ShortCount}); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return b.String(), nil
}
