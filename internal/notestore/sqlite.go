package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	email      TEXT PRIMARY KEY,
	note       TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore keeps notes in a SQLite database, one row per email.
type SQLiteStore struct {
	conn *sql.DB
}

// Compile-time interface checks.
var (
	_ Store    = (*SQLiteStore)(nil)
	_ Searcher = (*SQLiteStore)(nil)
)

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("notestore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: apply schema: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Get returns the note for email, or "" when no row exists.
func (s *SQLiteStore) Get(ctx context.Context, email string) (string, error) {
	var note string
	err := s.conn.QueryRowContext(ctx, `SELECT note FROM notes WHERE email = ?`, email).Scan(&note)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("notestore: get: %w", err)
	}
	return note, nil
}

// Set upserts the note for email.
func (s *SQLiteStore) Set(ctx context.Context, email, note string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO notes (email, note, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			note       = excluded.note,
			updated_at = excluded.updated_at
	`, email, note, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("notestore: upsert: %w", err)
	}
	return nil
}

// Snapshot returns every stored note.
func (s *SQLiteStore) Snapshot(ctx context.Context) (Notes, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT email, note FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("notestore: snapshot: %w", err)
	}
	defer rows.Close()
	out := Notes{}
	for rows.Next() {
		var email, note string
		if err := rows.Scan(&email, &note); err != nil {
			return nil, err
		}
		out[email] = note
	}
	return out, rows.Err()
}

// Search performs a LIKE match on email and note text.
func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := s.conn.QueryContext(ctx, `
		SELECT email, note
		FROM notes
		WHERE email LIKE ? OR note LIKE ?
		ORDER BY email
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("notestore: search: %w", err)
	}
	defer rows.Close()
	out := []Match{}
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Email, &m.Note); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Import upserts every note in a single transaction. It is used to seed the
// database from an existing JSON snapshot.
func (s *SQLiteStore) Import(ctx context.Context, notes Notes) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("notestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO notes (email, note, updated_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("notestore: prepare import: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for email, note := range notes {
		if _, err := stmt.ExecContext(ctx, email, note, now); err != nil {
			return fmt.Errorf("notestore: import %q: %w", email, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
