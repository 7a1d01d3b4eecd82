// Package store persists ingested activity events in SQLite. The timeline
// core never touches the store; the server writes events here on receipt
// and reads them back as immutable records for layout recomputation.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/ibare/baden/internal/core/event"
	"github.com/ibare/baden/internal/util"
)

// EventStore defines the persistence interface the server depends on.
type EventStore interface {
	EnsureProject(id, name string) error
	ListProjects() ([]Project, error)

	StoreEvent(rec *event.Record) error
	GetEvents(projectId, date string) ([]event.Record, error)
	GetRecentEvents(projectId string, limit int) ([]event.Record, error)

	Close() error
}

// Project is one monitored project.
type Project struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// SQLiteStore implements EventStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewSQLiteStore opens (and initializes) an event store at dbPath. An empty
// path defaults to ~/.baden/events.db.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".baden", "events.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	// WAL keeps readers unblocked while agents post events
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	util.LogDebugf("Opened event store at %s", dbPath)
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		type TEXT NOT NULL,
		project_id TEXT NOT NULL REFERENCES projects(id),
		rule_id TEXT,
		severity TEXT,
		file TEXT,
		line INTEGER,
		message TEXT,
		detail TEXT,
		action TEXT,
		agent TEXT,
		step TEXT,
		duration_ms INTEGER,
		prompt TEXT,
		summary TEXT,
		result TEXT,
		task_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_events_project_time ON events(project_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_events_rule ON events(rule_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// EnsureProject creates the project row if it does not exist.
func (s *SQLiteStore) EnsureProject(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		name = id
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO projects (id, name) VALUES (?, ?)`,
		id, name,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure project: %w", err)
	}
	return nil
}

// ListProjects returns all known projects.
func (s *SQLiteStore) ListProjects() ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, created_at FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.Id, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

const eventColumns = `id, timestamp, type, project_id, rule_id, severity, file, line,
	message, detail, action, agent, step, duration_ms, prompt, summary, result, task_id`

// StoreEvent persists one event record. Records are immutable; a duplicate
// id is an error.
func (s *SQLiteStore) StoreEvent(rec *event.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Id, rec.Timestamp, rec.Type, rec.ProjectId, rec.RuleId, rec.Severity,
		rec.File, rec.Line, rec.Message, rec.Detail, rec.Action, rec.Agent,
		rec.Step, rec.DurationMs, rec.Prompt, rec.Summary, rec.Result, rec.TaskId,
	)
	if err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}
	return nil
}

// GetEvents returns a project's events for one day ("2006-01-02"), or all of
// the project's events when date is empty. Ordered by timestamp ascending,
// ties by insertion order (rowid).
func (s *SQLiteStore) GetEvents(projectId, date string) ([]event.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + eventColumns + ` FROM events WHERE project_id = ?`
	args := []interface{}{projectId}
	if date != "" {
		query += ` AND date(timestamp) = ?`
		args = append(args, date)
	}
	query += ` ORDER BY timestamp ASC, rowid ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetRecentEvents returns the newest events for a project, oldest first.
func (s *SQLiteStore) GetRecentEvents(projectId string, limit int) ([]event.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT `+eventColumns+` FROM (
			SELECT `+eventColumns+`, rowid FROM events WHERE project_id = ?
			ORDER BY timestamp DESC, rowid DESC LIMIT ?
		 ) ORDER BY timestamp ASC, rowid ASC`,
		projectId, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]event.Record, error) {
	var events []event.Record
	for rows.Next() {
		var rec event.Record
		if err := rows.Scan(
			&rec.Id, &rec.Timestamp, &rec.Type, &rec.ProjectId, &rec.RuleId,
			&rec.Severity, &rec.File, &rec.Line, &rec.Message, &rec.Detail,
			&rec.Action, &rec.Agent, &rec.Step, &rec.DurationMs, &rec.Prompt,
			&rec.Summary, &rec.Result, &rec.TaskId,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, rec)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NowTimestamp returns the canonical RFC3339 timestamp the server assigns
// to events on receipt.
func NowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
