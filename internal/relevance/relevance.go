// Package relevance judges whether a free-text topic plausibly belongs to a
// subject using per-subject keyword sets.
package relevance

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeywordSource supplies the keyword set for a subject.
type KeywordSource interface {
	Keywords(subject string) []string
}

// Verdict is the outcome of Classify. Keywords is always the selected
// subject's own keyword set, even when a fallback produced the match.
type Verdict struct {
	Relevant bool     `json:"relevant"`
	Keywords []string `json:"keywords"`
}

// scienceParts are searched when a Science topic misses the Science keywords.
var scienceParts = []string{"Physics", "Chemistry", "Biology"}

// mathFallback terms match Mathematics topics by plain containment.
var mathFallback = []string{"hypothesis", "data", "analysis", "statistics", "probability", "graph", "chart"}

const suggestionsPerColumn = 8

// Classifier applies the keyword heuristic against a KeywordSource.
type Classifier struct {
	src KeywordSource
}

// NewClassifier returns a Classifier reading keywords from src.
func NewClassifier(src KeywordSource) *Classifier {
	return &Classifier{src: src}
}

// Classify reports whether topic looks like it belongs to subject. A blank
// topic or an empty subject is never flagged.
//
// A keyword matches when it is contained in the normalized topic or the
// topic is contained in it. The check is deliberately loose: short keywords
// such as "ion" match many unrelated topics.
func (c *Classifier) Classify(topic, subject string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(topic))
	if normalized == "" || subject == "" {
		return Verdict{Relevant: true, Keywords: []string{}}
	}

	own := c.src.Keywords(subject)
	if own == nil {
		own = []string{}
	}

	matched := containsEither(normalized, own)

	if !matched && subject == "Science" {
		for _, part := range scienceParts {
			if containsEither(normalized, c.src.Keywords(part)) {
				matched = true
				break
			}
		}
	}

	if !matched && subject == "Mathematics" {
		for _, term := range mathFallback {
			if strings.Contains(normalized, term) {
				matched = true
				break
			}
		}
	}

	return Verdict{Relevant: matched, Keywords: own}
}

func containsEither(topic string, keywords []string) bool {
	for _, kw := range keywords {
		k := strings.ToLower(kw)
		if strings.Contains(topic, k) || strings.Contains(k, topic) {
			return true
		}
	}
	return false
}

// Suggestions splits the verdict's keywords at their midpoint and returns up
// to eight title-cased entries from the front of each half.
func Suggestions(v Verdict) (left, right []string) {
	caser := cases.Title(language.English)
	mid := len(v.Keywords) / 2

	left = make([]string, 0, suggestionsPerColumn)
	for _, kw := range v.Keywords[:min(mid, suggestionsPerColumn)] {
		left = append(left, caser.String(kw))
	}

	right = make([]string, 0, suggestionsPerColumn)
	for _, kw := range v.Keywords[mid:min(mid+suggestionsPerColumn, len(v.Keywords))] {
		right = append(right, caser.String(kw))
	}
	return left, right
}
