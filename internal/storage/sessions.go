package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaioguedesm/chronofit/internal/models"
	"github.com/kaioguedesm/chronofit/internal/session"
)

// Compile-time check: DB satisfies the engine's persistence collaborator.
var _ session.Persistence = (*DB)(nil)

// SaveSession persists a finalized session record. The insert is idempotent
// on the session ID, so a retried finalize never produces a second row.
func (db *DB) SaveSession(ctx context.Context, rec session.Record) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, plan_id, name, started_at, ended_at, duration_min)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO NOTHING`,
		rec.SessionID, rec.UserID, rec.PlanID, rec.Name,
		rec.StartedAt, rec.EndedAt, rec.DurationMinutes)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// SaveExerciseCompletion persists one per-exercise completion record.
func (db *DB) SaveExerciseCompletion(ctx context.Context, sessionID uuid.UUID, sum session.ExerciseSummary) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO session_exercises (session_id, exercise_id, name, completed_sets, avg_weight)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (session_id, exercise_id) DO NOTHING`,
		sessionID, sum.ExerciseID, sum.Name, sum.CompletedSets, sum.AverageWeight)
	if err != nil {
		return fmt.Errorf("inserting session exercise: %w", err)
	}
	return nil
}

// QuerySessions retrieves finalized sessions in a time range, newest first.
func (db *DB) QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.SessionRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, plan_id, name, started_at, ended_at, duration_min
		 FROM sessions
		 WHERE started_at >= $1 AND started_at < $2 AND user_id = $3
		 ORDER BY started_at DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionRow
	for rows.Next() {
		var s models.SessionRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.PlanID, &s.Name,
			&s.StartedAt, &s.EndedAt, &s.DurationMinutes); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SessionDetail is a finalized session with its per-exercise records.
type SessionDetail struct {
	models.SessionRow
	Exercises []models.SessionExerciseRow `json:"exercises"`
}

// GetSession retrieves a single finalized session with all completion
// records.
func (db *DB) GetSession(ctx context.Context, sessionID uuid.UUID, userID int) (*SessionDetail, error) {
	var s models.SessionRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, plan_id, name, started_at, ended_at, duration_min
		 FROM sessions
		 WHERE id = $1 AND user_id = $2`,
		sessionID, userID).Scan(&s.ID, &s.UserID, &s.PlanID, &s.Name,
		&s.StartedAt, &s.EndedAt, &s.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	detail := &SessionDetail{SessionRow: s}

	rows, err := db.Pool.Query(ctx,
		`SELECT session_id, exercise_id, name, completed_sets, avg_weight
		 FROM session_exercises
		 WHERE session_id = $1
		 ORDER BY name ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.SessionExerciseRow
		if err := rows.Scan(&r.SessionID, &r.ExerciseID, &r.Name,
			&r.CompletedSets, &r.AverageWeight); err != nil {
			return nil, fmt.Errorf("scanning session exercise: %w", err)
		}
		detail.Exercises = append(detail.Exercises, r)
	}
	return detail, rows.Err()
}
