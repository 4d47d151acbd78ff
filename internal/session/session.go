package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ii-tuitions/mocktest/internal/paper"
	"github.com/ii-tuitions/mocktest/internal/quiz"
)

// ErrNotFound is returned by Get for an unknown or expired session.
var ErrNotFound = errors.New("session not found")

// Session is one visitor's state.
type Session struct {
	ID        string       `json:"id"`
	Page      Page         `json:"page"`
	Form      quiz.Form    `json:"form"`
	Paper     *paper.Paper `json:"paper,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// New returns a fresh session on the home page.
func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		Page:      PageHome,
		UpdatedAt: time.Now(),
	}
}

// Navigate applies a and moves to the resulting page. On error the session
// is unchanged.
func (s *Session) Navigate(a Action) error {
	next, err := Transition(s.Page, a)
	if err != nil {
		return err
	}
	s.Page = next
	return nil
}

// Generated stores p and moves to the test page.
func (s *Session) Generated(p *paper.Paper) error {
	if err := s.Navigate(ActionGenerated); err != nil {
		return err
	}
	s.Paper = p
	return nil
}

// HasPaper reports whether a test has been generated in this session.
func (s *Session) HasPaper() bool {
	return s.Paper != nil
}

// Store persists sessions between requests.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
