// Package archive records every accepted test so the home page can report
// how many have been generated.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ii-tuitions/mocktest/internal/paper"
	"github.com/ii-tuitions/mocktest/internal/platform/config"
)

// Entry is one recorded test.
type Entry struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"session_id,omitempty"`
	Board         string          `json:"board"`
	Grade         int             `json:"grade"`
	Subject       string          `json:"subject"`
	Topic         string          `json:"topic"`
	PaperType     string          `json:"paper_type"`
	QuestionCount int             `json:"question_count"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Store persists entries.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Count(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// NewEntry describes p for the archive.
func NewEntry(sessionID string, p *paper.Paper) (Entry, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return Entry{}, fmt.Errorf("encoding paper: %w", err)
	}
	return Entry{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		Board:         p.Info.Board,
		Grade:         int(p.Info.Grade),
		Subject:       p.Info.Subject,
		Topic:         p.Info.Topic,
		PaperType:     p.Info.PaperType,
		QuestionCount: len(p.Questions),
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Open returns the store selected by cfg.Archive.Driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Archive.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.Archive.SQLitePath)
	case "postgres":
		return OpenPostgres(ctx, cfg.Database)
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.Archive.Driver)
	}
}

func prepare(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if len(e.Payload) == 0 {
		e.Payload = json.RawMessage("{}")
	}
	return e
}
