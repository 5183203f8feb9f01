// Package journal keeps a local append-only record of in-flight session
// events in SQLite. If the process dies mid-workout, the journal is the only
// evidence of sets that never reached persistence. Entries for a session are
// cleared once it finalizes or is cancelled.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Event kinds recorded in the journal.
const (
	EventSet     = "set"
	EventDefer   = "defer"
	EventResolve = "resolve"
)

// Journal is the local session-event journal.
type Journal struct {
	db *sql.DB
}

// Entry is one journaled session event.
type Entry struct {
	SessionID  uuid.UUID `json:"session_id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	Kind       string    `json:"kind"`
	Weight     float64   `json:"weight,omitempty"`
	Reps       int       `json:"reps,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Open opens (or creates) the journal database at dir/journal.db.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS session_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id  TEXT NOT NULL,
		exercise_id TEXT NOT NULL,
		kind        TEXT NOT NULL,
		weight      REAL NOT NULL DEFAULT 0,
		reps        INTEGER NOT NULL DEFAULT 0,
		recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends one event.
func (j *Journal) Record(e Entry) error {
	_, err := j.db.Exec(
		`INSERT INTO session_events (session_id, exercise_id, kind, weight, reps) VALUES (?, ?, ?, ?, ?)`,
		e.SessionID.String(), e.ExerciseID.String(), e.Kind, e.Weight, e.Reps,
	)
	return err
}

// Entries returns all journaled events for a session, in recording order.
func (j *Journal) Entries(sessionID uuid.UUID) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT session_id, exercise_id, kind, weight, reps, recorded_at
		 FROM session_events WHERE session_id = ? ORDER BY id ASC`,
		sessionID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var e Entry
		var sid, eid string
		if err := rows.Scan(&sid, &eid, &e.Kind, &e.Weight, &e.Reps, &e.RecordedAt); err != nil {
			return nil, err
		}
		if e.SessionID, err = uuid.Parse(sid); err != nil {
			return nil, fmt.Errorf("corrupt session id %q: %w", sid, err)
		}
		if e.ExerciseID, err = uuid.Parse(eid); err != nil {
			return nil, fmt.Errorf("corrupt exercise id %q: %w", eid, err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// OpenSessions returns the IDs of sessions that still have journaled events —
// sessions that were never finalized or cancelled.
func (j *Journal) OpenSessions() ([]uuid.UUID, error) {
	rows, err := j.db.Query(`SELECT DISTINCT session_id FROM session_events ORDER BY session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []uuid.UUID
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(sid)
		if err != nil {
			return nil, fmt.Errorf("corrupt session id %q: %w", sid, err)
		}
		result = append(result, id)
	}
	return result, rows.Err()
}

// Clear removes all events for a session.
func (j *Journal) Clear(sessionID uuid.UUID) error {
	_, err := j.db.Exec(`DELETE FROM session_events WHERE session_id = ?`, sessionID.String())
	return err
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
