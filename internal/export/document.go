// Package export turns a generated test into downloadable documents: a
// questions PDF, an answers PDF and an answer-key workbook.
package export

import (
	"fmt"
	"strings"

	"github.com/ii-tuitions/mocktest/internal/paper"
)

// Brand heads every document.
const Brand = "II Tuition Mock Test Generated"

// Style selects how a paragraph is rendered.
type Style int

const (
	StyleTitle Style = iota
	StyleSubtitle
	StyleInfo
	StyleHeading
	StyleBullet
	StyleQuestion
	StyleOption
	StyleAnswer
	StyleSpacer
)

// Paragraph is one block of a document. Label is rendered bold before Text.
type Paragraph struct {
	Style Style
	Label string
	Text  string
}

// Document is a linear list of paragraphs.
type Document struct {
	Title      string
	Accent     Color
	Paragraphs []Paragraph
}

// Color is an RGB text colour.
type Color struct{ R, G, B int }

var (
	darkBlue  = Color{0, 0, 139}
	darkGreen = Color{0, 100, 0}
)

// PlainText joins every paragraph, one per line.
func (d Document) PlainText() string {
	var b strings.Builder
	for _, p := range d.Paragraphs {
		if p.Style == StyleSpacer {
			continue
		}
		if p.Label != "" {
			b.WriteString(p.Label)
			b.WriteString(" ")
		}
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	return b.String()
}

var instructions = []string{
	"Read all questions carefully",
	"Choose the best answer for multiple choice questions",
	"Write clearly for descriptive answers",
	"Manage your time effectively",
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func header(p *paper.Paper, subtitleSuffix string) []Paragraph {
	info := p.Info
	subject := info.Subject
	if subject == "" {
		subject = "Subject"
	}
	grade := "N/A"
	if info.Grade > 0 {
		grade = fmt.Sprint(int(info.Grade))
	}
	return []Paragraph{
		{Style: StyleTitle, Text: Brand},
		{Style: StyleSubtitle, Text: subject + " Mock Test" + subtitleSuffix},
		{Style: StyleInfo, Text: fmt.Sprintf("Board: %s | Grade: %s | Topic: %s", orNA(info.Board), grade, orNA(info.Topic))},
		{Style: StyleInfo, Text: fmt.Sprintf("Paper Type: %s | Total Questions: %d", orNA(info.PaperType), info.Total(p))},
		{Style: StyleSpacer},
	}
}

func questionParagraphs(i int, q paper.Question) []Paragraph {
	out := []Paragraph{{Style: StyleQuestion, Label: fmt.Sprintf("Question %d:", i), Text: q.DisplayText()}}
	if q.IsMCQ() {
		for _, o := range q.SortedOptions() {
			out = append(out, Paragraph{Style: StyleOption, Label: o.Label + ")", Text: o.Text})
		}
	}
	return out
}

// QuestionsDocument lists the questions and options without answers.
func QuestionsDocument(p *paper.Paper) Document {
	doc := Document{Title: "Mock Test Questions", Accent: darkBlue, Paragraphs: header(p, "")}
	doc.Paragraphs = append(doc.Paragraphs, Paragraph{Style: StyleHeading, Text: "Instructions:"})
	for _, line := range instructions {
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{Style: StyleBullet, Text: line})
	}
	doc.Paragraphs = append(doc.Paragraphs, Paragraph{Style: StyleSpacer})

	for i, q := range p.Questions {
		doc.Paragraphs = append(doc.Paragraphs, questionParagraphs(i+1, q)...)
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{Style: StyleSpacer})
	}
	return doc
}

// AnswersDocument repeats each question with its answer, or the
// not-generated placeholder, and any explanation.
func AnswersDocument(p *paper.Paper) Document {
	doc := Document{Title: "Mock Test Answer Key", Accent: darkGreen, Paragraphs: header(p, " - Answer Key")}

	for i, q := range p.Questions {
		doc.Paragraphs = append(doc.Paragraphs, questionParagraphs(i+1, q)...)
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{Style: StyleAnswer, Label: q.AnswerLabel() + ":", Text: q.AnswerKey()})
		if q.Explanation != "" {
			doc.Paragraphs = append(doc.Paragraphs, Paragraph{Style: StyleAnswer, Label: "Explanation:", Text: q.Explanation})
		}
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{Style: StyleSpacer})
	}
	return doc
}

// Filename kinds.
const (
	KindQuestions = "questions"
	KindAnswers   = "answers"
	KindAnswerKey = "answer_key"
)

var unsafeFilename = strings.NewReplacer("/", "_", `\`, "_", `"`, "_", "\n", "_", "\r", "_")

// Filename is the download name for kind, e.g.
// mock_test_questions_Science_grade_8.pdf.
func Filename(kind string, p *paper.Paper) string {
	ext := ".pdf"
	if kind == KindAnswerKey {
		ext = ".xlsx"
	}
	subject := unsafeFilename.Replace(p.Info.Subject)
	return fmt.Sprintf("mock_test_%s_%s_grade_%d%s", kind, subject, int(p.Info.Grade), ext)
}
