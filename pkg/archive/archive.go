// Package archive stores imported trace documents in SQLite for
// offline querying across sessions.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/eren/chronotrace/pkg/trace"
)

// SessionInfo describes an imported session.
type SessionInfo struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	SourcePath string    `json:"source_path"`
	ImportedAt time.Time `json:"imported_at"`
	EventCount int       `json:"event_count"`
	StartTs    int64     `json:"start_ts"`
	EndTs      int64     `json:"end_ts"`
}

// Stats summarizes a completed import.
type Stats struct {
	SessionID int64
	Events    int
	Span      int64
}

// EventFilter narrows an Events query. Zero values leave the
// corresponding dimension unfiltered.
type EventFilter struct {
	Name   string
	MinDur int64
	Limit  int
}

// Archive is a SQLite-backed store of imported trace sessions.
type Archive struct {
	db        *sql.DB
	validator *trace.Validator
}

// Open opens or creates an archive database.
func Open(dbPath string) (*Archive, error) {
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	a := &Archive{
		db:        db,
		validator: trace.NewValidator(),
	}

	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("Archive opened")
	return a, nil
}

// initSchema creates database tables
func (a *Archive) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			source_path TEXT NOT NULL,
			imported_at INTEGER NOT NULL,
			event_count INTEGER NOT NULL,
			start_ts INTEGER NOT NULL,
			end_ts INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_imported ON sessions(imported_at);

		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			ts INTEGER NOT NULL,
			dur INTEGER NOT NULL,
			tid INTEGER NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);
		CREATE INDEX IF NOT EXISTS idx_events_name ON events(name);
	`

	_, err := a.db.Exec(schema)
	return err
}

// Import parses and validates a trace file, then inserts the session
// and all of its events in a single transaction.
func (a *Archive) Import(name, tracePath string) (Stats, error) {
	data, err := os.ReadFile(tracePath)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read trace file: %w", err)
	}

	if err := a.validator.Validate(data); err != nil {
		return Stats{}, fmt.Errorf("trace document is not importable: %w", err)
	}

	doc, err := trace.Parse(data)
	if err != nil {
		return Stats{}, err
	}

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(tracePath), filepath.Ext(tracePath))
	}

	summary := doc.Summarize()

	tx, err := a.db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO sessions (name, source_path, imported_at, event_count, start_ts, end_ts) VALUES (?, ?, ?, ?, ?, ?)",
		name, tracePath, time.Now().Unix(), summary.Events, summary.Start, summary.End,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to insert session: %w", err)
	}

	sessionID, err := result.LastInsertId()
	if err != nil {
		return Stats{}, err
	}

	for _, event := range doc.TraceEvents {
		_, err := tx.Exec(
			"INSERT INTO events (session_id, name, ts, dur, tid) VALUES (?, ?, ?, ?, ?)",
			sessionID, event.Name, event.Ts, event.Dur, event.Tid,
		)
		if err != nil {
			return Stats{}, fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("failed to commit import: %w", err)
	}

	log.Info().
		Str("name", name).
		Int64("sessionId", sessionID).
		Int("events", summary.Events).
		Msg("Trace imported")

	return Stats{
		SessionID: sessionID,
		Events:    summary.Events,
		Span:      summary.Span(),
	}, nil
}

// Sessions lists imported sessions, newest first.
func (a *Archive) Sessions() ([]SessionInfo, error) {
	rows, err := a.db.Query(`
		SELECT id, name, source_path, imported_at, event_count, start_ts, end_ts
		FROM sessions
		ORDER BY imported_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var importedAt int64
		if err := rows.Scan(&info.ID, &info.Name, &info.SourcePath, &importedAt, &info.EventCount, &info.StartTs, &info.EndTs); err != nil {
			return nil, err
		}
		info.ImportedAt = time.Unix(importedAt, 0)
		sessions = append(sessions, info)
	}

	return sessions, rows.Err()
}

// Events returns a session's events matching the filter, ordered by
// start time.
func (a *Archive) Events(sessionID int64, filter EventFilter) ([]trace.Event, error) {
	query := "SELECT name, ts, dur, tid FROM events WHERE session_id = ?"
	args := []interface{}{sessionID}

	if filter.Name != "" {
		query += " AND name = ?"
		args = append(args, filter.Name)
	}
	if filter.MinDur > 0 {
		query += " AND dur >= ?"
		args = append(args, filter.MinDur)
	}
	query += " ORDER BY ts ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []trace.Event
	for rows.Next() {
		event := trace.Event{Cat: "function", Ph: "X"}
		if err := rows.Scan(&event.Name, &event.Ts, &event.Dur, &event.Tid); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// Close closes the archive
func (a *Archive) Close() error {
	return a.db.Close()
}
