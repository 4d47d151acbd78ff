// Package quiz runs the user actions of the create page: checking the form,
// generating a test and testing the backend connection.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ii-tuitions/mocktest/internal/ai"
	"github.com/ii-tuitions/mocktest/internal/archive"
	"github.com/ii-tuitions/mocktest/internal/curriculum"
	"github.com/ii-tuitions/mocktest/internal/paper"
	"github.com/ii-tuitions/mocktest/internal/relevance"
)

const defaultMaxTokens = 4000

// Service generates tests.
type Service struct {
	catalog    *curriculum.Catalog
	classifier *relevance.Classifier
	provider   ai.Provider
	archive    archive.Store
	validator  *formValidator
	maxTokens  int
	model      string
	strict     bool
}

// Option configures a Service.
type Option func(*Service)

// WithArchive records every generated test in store.
func WithArchive(store archive.Store) Option {
	return func(s *Service) {
		s.archive = store
	}
}

// WithMaxTokens sets the generation token limit.
func WithMaxTokens(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(s *Service) {
		s.model = model
	}
}

// WithStrictPayload makes payload validation issues fail generation instead
// of only being logged.
func WithStrictPayload(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// NewService creates a Service over catalog and provider.
func NewService(catalog *curriculum.Catalog, provider ai.Provider, opts ...Option) *Service {
	s := &Service{
		catalog:    catalog,
		classifier: relevance.NewClassifier(catalog),
		provider:   provider,
		validator:  newFormValidator(),
		maxTokens:  defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the curriculum the service validates against.
func (s *Service) Catalog() *curriculum.Catalog { return s.catalog }

// ProviderName names the configured backend.
func (s *Service) ProviderName() string { return s.provider.Name() }

// CheckTopic classifies topic against subject and returns the suggestion
// columns for an off-subject verdict.
func (s *Service) CheckTopic(topic, subject string) (relevance.Verdict, [2][]string) {
	v := s.classifier.Classify(topic, subject)
	if v.Relevant {
		return v, [2][]string{{}, {}}
	}
	left, right := relevance.Suggestions(v)
	return v, [2][]string{left, right}
}

// Validate returns a *ValidationError describing everything wrong with f, or
// nil.
func (s *Service) Validate(f Form) error {
	f = f.Normalized()
	fields := s.validator.fields(f)
	if fields == nil {
		fields = make(map[string]string)
	}

	if _, bad := fields["board"]; !bad && !s.catalog.HasBoard(f.Board) {
		fields["board"] = fmt.Sprintf("board %q is not offered", f.Board)
	}
	_, badBoard := fields["board"]
	_, badGrade := fields["grade"]
	_, badSubject := fields["subject"]
	if !badBoard && !badGrade && !badSubject && !s.catalog.HasSubject(f.Board, f.Grade, f.Subject) {
		fields["subject"] = fmt.Sprintf("%s is not offered for %s Grade %d", f.Subject, f.Board, f.Grade)
	}

	var verdict *relevance.Verdict
	if _, badTopic := fields["topic"]; !badTopic && f.Subject != "" {
		v := s.classifier.Classify(f.Topic, f.Subject)
		if !v.Relevant {
			fields["topic"] = OffSubjectMessage(f.Topic, f.Subject)
			verdict = &v
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields, Verdict: verdict}
}

// Summarize builds the create page's validation summary for a partially
// filled form.
func (s *Service) Summarize(f Form) Summary {
	f = f.Normalized()
	var sum Summary

	boardOK := s.catalog.HasBoard(f.Board)
	if boardOK {
		sum.Checks = append(sum.Checks, Check{"Board", StatusSuccess, "Selected: " + f.Board})
	} else {
		sum.Checks = append(sum.Checks, Check{"Board", StatusError, "Please select a board"})
	}

	gradeOK := f.Grade >= curriculum.MinGrade && f.Grade <= curriculum.MaxGrade
	if gradeOK {
		sum.Checks = append(sum.Checks, Check{"Grade", StatusSuccess, fmt.Sprintf("Selected: Grade %d", f.Grade)})
	} else {
		sum.Checks = append(sum.Checks, Check{"Grade", StatusError, "Please select a grade"})
	}

	subjectOK := boardOK && gradeOK && s.catalog.HasSubject(f.Board, f.Grade, f.Subject)
	switch {
	case subjectOK:
		sum.Checks = append(sum.Checks, Check{"Subject", StatusSuccess, "Selected: " + f.Subject})
	case boardOK && gradeOK:
		sum.Checks = append(sum.Checks, Check{"Subject", StatusError, "Please select a subject"})
	default:
		sum.Checks = append(sum.Checks, Check{"Subject", StatusWarning, "Select board and grade first"})
	}

	switch {
	case subjectOK && f.Topic != "":
		v, suggestions := s.CheckTopic(f.Topic, f.Subject)
		sum.Verdict = &v
		sum.Suggestions = suggestions
		if v.Relevant {
			sum.Checks = append(sum.Checks, Check{"Topic", StatusSuccess, fmt.Sprintf("'%s' is valid for %s", f.Topic, f.Subject)})
		} else {
			sum.Checks = append(sum.Checks, Check{"Topic", StatusError, OffSubjectMessage(f.Topic, f.Subject)})
		}
	case subjectOK:
		sum.Checks = append(sum.Checks, Check{"Topic", StatusError, "Please enter a topic"})
	default:
		sum.Checks = append(sum.Checks, Check{"Topic", StatusWarning, "Select subject first"})
	}

	return sum
}

// Generate validates f, asks the backend for a test and accepts the reply.
// sessionID is stored with the archived paper and may be empty.
func (s *Service) Generate(ctx context.Context, sessionID string, f Form) (*paper.Paper, error) {
	f = f.Normalized()
	if err := s.Validate(f); err != nil {
		return nil, err
	}

	req := paper.RequestFor(f.PaperType, f.ShowAnswers)
	prompt, err := paper.BuildPrompt(paper.PromptInput{
		Board:             f.Board,
		Grade:             f.Grade,
		Subject:           f.Subject,
		Topic:             f.Topic,
		PaperType:         f.PaperType,
		MCQCount:          req.MCQCount,
		ShortCount:        req.ShortCount,
		ShowAnswers:       f.ShowAnswers,
		CurriculumContext: s.catalog.Context(f.Board, f.Subject, f.Grade),
	})
	if err != nil {
		return nil, err
	}

	log := slog.With("provider", s.provider.Name(), "board", f.Board, "grade", f.Grade, "subject", f.Subject, "topic", f.Topic)

	resp, err := s.provider.Complete(ctx, ai.UserMessage(prompt, s.model, s.maxTokens))
	if err != nil {
		log.Error("generation request failed", "error", err)
		return nil, fmt.Errorf("generating test: %w", err)
	}

	p, err := paper.Accept(resp.Content, req)
	if err != nil {
		log.Error("could not accept generated test", "error", err, "response_bytes", len(resp.Content))
		return nil, err
	}
	fillInfo(p, f)

	issues, err := paper.Check(p, req)
	if err != nil {
		log.Warn("payload schema check failed", "error", err)
	}
	if len(issues) > 0 {
		msgs := make([]string, 0, len(issues))
		for _, is := range issues {
			msgs = append(msgs, is.String())
		}
		if s.strict {
			log.Error("generated test rejected", "issues", msgs)
			return nil, fmt.Errorf("%w: %s", paper.ErrMalformedResponse, strings.Join(msgs, "; "))
		}
		log.Warn("generated test has issues", "issues", msgs)
	}

	if s.archive != nil {
		if entry, err := archive.NewEntry(sessionID, p); err != nil {
			log.Warn("archive entry not built", "error", err)
		} else if err := s.archive.Record(ctx, entry); err != nil {
			log.Warn("archive record failed", "error", err)
		}
	}

	log.Info("test generated",
		"questions", len(p.Questions),
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
	)
	return p, nil
}

// fillInfo copies form values into test_info fields the backend left empty.
func fillInfo(p *paper.Paper, f Form) {
	if p.Info.Board == "" {
		p.Info.Board = f.Board
	}
	if p.Info.Grade == 0 {
		p.Info.Grade = paper.FlexInt(f.Grade)
	}
	if p.Info.Subject == "" {
		p.Info.Subject = f.Subject
	}
	if p.Info.Topic == "" {
		p.Info.Topic = f.Topic
	}
	if p.Info.PaperType == "" {
		p.Info.PaperType = string(f.PaperType)
	}
}

// GeneratedCount reports how many tests the archive holds, or 0 without an
// archive.
func (s *Service) GeneratedCount(ctx context.Context) int {
	if s.archive == nil {
		return 0
	}
	n, err := s.archive.Count(ctx)
	if err != nil {
		slog.Warn("archive count failed", "error", err)
		return 0
	}
	return n
}

// Connection test messages.
const (
	MsgConnectionOK    = "API connection successful"
	MsgNotConfigured   = "API key not configured"
	MsgAuthentication  = "API Authentication failed - check your API key"
	MsgRateLimited     = "API rate limit exceeded - try again later"
	connectionErrorFmt = "Connection Error: %v"
)

// TestConnection sends a minimal request and reports whether the backend
// accepted it, with a message for the user.
func (s *Service) TestConnection(ctx context.Context) (bool, string) {
	err := s.provider.HealthCheck(ctx)
	if err == nil {
		return true, MsgConnectionOK
	}
	slog.Warn("connection test failed", "provider", s.provider.Name(), "error", err)
	return false, connectionMessage(err)
}

func connectionMessage(err error) string {
	var apiErr *ai.APIError
	var connErr *ai.ConnectionError
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		return MsgNotConfigured
	case errors.Is(err, ai.ErrAuthentication):
		return MsgAuthentication
	case errors.Is(err, ai.ErrRateLimited):
		return MsgRateLimited
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return fmt.Sprintf("API Error %d: %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Sprintf("API Error: %d", apiErr.StatusCode)
	case errors.As(err, &connErr):
		return fmt.Sprintf(connectionErrorFmt, connErr.Err)
	default:
		return fmt.Sprintf(connectionErrorFmt, err)
	}
}
