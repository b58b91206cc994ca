package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aretw0/mentor/pkg/domain"
)

// Store implements ports.SnapshotStore on a SQLite database.
// One row per session holds the JSON snapshot.
type Store struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and ensures the schema exists.
// Use ":memory:" for a throwaway database.
func New(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to reach sqlite database: %w", err)
	}
	if err := createTables(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Store{conn: conn}, nil
}

func createTables(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			section_id TEXT NOT NULL,
			snapshot   TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Save inserts or replaces the snapshot of a session.
func (s *Store) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	updated := snap.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = s.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO sessions (session_id, section_id, snapshot, updated_at) VALUES (?, ?, ?, ?)",
		sessionID, snap.SectionID, string(data), updated.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load retrieves the snapshot of a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var data string
	err := s.conn.QueryRowContext(ctx,
		"SELECT snapshot FROM sessions WHERE session_id = ?",
		sessionID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.States == nil {
		snap.States = make(map[string]domain.NodeState)
	}
	if snap.Solution == nil {
		snap.Solution = domain.NewSolution()
	}
	return &snap, nil
}

// Delete removes a session row.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns session IDs, most recently updated first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT session_id FROM sessions ORDER BY updated_at DESC, session_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

// ListBySection returns the sessions opened on a section, most recent first.
func (s *Store) ListBySection(ctx context.Context, sectionID string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT session_id FROM sessions WHERE section_id = ? ORDER BY updated_at DESC, session_id",
		sectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}
