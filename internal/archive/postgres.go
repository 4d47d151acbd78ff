package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/ii-tuitions/mocktest/internal/platform/config"
	"github.com/ii-tuitions/mocktest/internal/platform/database"
)

const dbTimeout = 5 * time.Second

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS generated_tests (
		id             UUID PRIMARY KEY,
		session_id     TEXT NOT NULL DEFAULT '',
		board          TEXT NOT NULL,
		grade          INTEGER NOT NULL,
		subject        TEXT NOT NULL,
		topic          TEXT NOT NULL,
		paper_type     TEXT NOT NULL,
		question_count INTEGER NOT NULL,
		payload        JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_generated_tests_created_at ON generated_tests(created_at)`,
}

// PostgresStore is a PostgreSQL-backed archive.
type PostgresStore struct {
	db *database.DB
}

// OpenPostgres connects with cfg and creates the table if needed.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*PostgresStore, error) {
	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewPostgresStore(ctx, db)
}

// NewPostgresStore wraps an open pool and creates the table if needed.
func NewPostgresStore(ctx context.Context, db *database.DB) (*PostgresStore, error) {
	if db == nil || db.Pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if err := db.EnsureSchema(ctx, postgresSchema...); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Record(ctx context.Context, e Entry) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	e = prepare(e)
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO generated_tests
		 (id, session_id, board, grade, subject, topic, paper_type, question_count, payload, created_at)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10)`,
		e.ID, e.SessionID, e.Board, e.Grade, e.Subject, e.Topic, e.PaperType, e.QuestionCount,
		string(e.Payload), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert generated test: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var n int
	if err := s.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM generated_tests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count generated tests: %w", err)
	}
	return n, nil
}

// Recent returns up to limit entries, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `SELECT id::text, session_id, board, grade, subject, topic, paper_type, question_count, payload::text, created_at
		FROM generated_tests ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query generated tests: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			payload string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Board, &e.Grade, &e.Subject, &e.Topic,
			&e.PaperType, &e.QuestionCount, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generated test: %w", err)
		}
		e.Payload = []byte(payload)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HealthCheck pings the database.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
