package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS generated_tests (
    id             TEXT PRIMARY KEY,
    session_id     TEXT NOT NULL DEFAULT '',
    board          TEXT NOT NULL,
    grade          INTEGER NOT NULL,
    subject        TEXT NOT NULL,
    topic          TEXT NOT NULL,
    paper_type     TEXT NOT NULL,
    question_count INTEGER NOT NULL,
    payload        TEXT NOT NULL,
    created_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generated_tests_created_at ON generated_tests(created_at);
`

// SQLiteStore is a single-file archive.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	e = prepare(e)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generated_tests
		 (id, session_id, board, grade, subject, topic, paper_type, question_count, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Board, e.Grade, e.Subject, e.Topic, e.PaperType, e.QuestionCount,
		string(e.Payload), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert generated test: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generated_tests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count generated tests: %w", err)
	}
	return n, nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, board, grade, subject, topic, paper_type, question_count, payload, created_at
		 FROM generated_tests ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generated tests: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			payload string
			created time.Time
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Board, &e.Grade, &e.Subject, &e.Topic,
			&e.PaperType, &e.QuestionCount, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan generated test: %w", err)
		}
		e.Payload = []byte(payload)
		e.CreatedAt = created
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// HealthCheck pings the database file.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
