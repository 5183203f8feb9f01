package session

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ExerciseSummary is the per-exercise completion record produced at finalize.
// AverageWeight is nil when no set was recorded.
type ExerciseSummary struct {
	ExerciseID    uuid.UUID `json:"exercise_id"`
	Name          string    `json:"name"`
	CompletedSets int       `json:"completed_sets"`
	AverageWeight *float64  `json:"average_weight,omitempty"`
}

// Record is the finalized session handed to persistence.
type Record struct {
	SessionID       uuid.UUID         `json:"session_id"`
	UserID          int               `json:"user_id"`
	PlanID          uuid.UUID         `json:"plan_id"`
	Name            string            `json:"name"`
	StartedAt       time.Time         `json:"started_at"`
	EndedAt         time.Time         `json:"ended_at"`
	DurationMinutes int               `json:"duration_minutes"`
	Exercises       []ExerciseSummary `json:"exercises"`
}

// WeeklyStats is the rollup returned by the aggregation collaborator.
type WeeklyStats struct {
	WorkoutsThisWeek int `json:"workouts_this_week"`
	MinutesThisWeek  int `json:"minutes_this_week"`
}

// Mood is optional post-workout mood metadata supplied by the caller.
type Mood struct {
	Mood      string `json:"mood"`
	Intensity int    `json:"intensity"`
}

// Result is the outcome of a successful finalize. Stats is nil and Message
// empty when the corresponding best-effort collaborator failed or was absent.
type Result struct {
	Record  Record       `json:"record"`
	Stats   *WeeklyStats `json:"stats,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Persistence receives the finalized session record and its per-exercise
// completion records.
type Persistence interface {
	SaveSession(ctx context.Context, rec Record) error
	SaveExerciseCompletion(ctx context.Context, sessionID uuid.UUID, sum ExerciseSummary) error
}

// Aggregator is notified of a completed workout and returns updated rollup
// statistics for display. Best-effort: its failure never fails a finalize.
type Aggregator interface {
	WorkoutCompleted(ctx context.Context, userID int, planID, sessionID uuid.UUID, durationMinutes int) (*WeeklyStats, error)
}

// Motivator supplies an optional post-workout message keyed by mood metadata.
// Best-effort: its failure or absence never fails a finalize.
type Motivator interface {
	PostWorkoutMessage(ctx context.Context, mood string, intensity int, workoutName string, exerciseCount int) (string, error)
}

// Finalize closes the session: computes the duration in whole rounded
// minutes, builds the session record with per-exercise summaries, writes it
// through the persistence collaborator, and notifies aggregation and
// motivation best-effort. If the primary session write fails the session
// stays open so the caller can retry; a second call after success returns
// ErrSessionAlreadyClosed.
func (e *Engine) Finalize(ctx context.Context, endedAt time.Time, mood *Mood) (*Result, error) {
	if e.closed {
		return nil, ErrSessionAlreadyClosed
	}

	rec := Record{
		SessionID:       e.id,
		UserID:          e.userID,
		PlanID:          e.planID,
		Name:            e.name,
		StartedAt:       e.startedAt,
		EndedAt:         endedAt,
		DurationMinutes: int(math.Round(endedAt.Sub(e.startedAt).Minutes())),
	}
	for _, ex := range e.plan {
		p := e.progress[ex.ID]
		if p.CompletedSets() == 0 {
			continue
		}
		var sum float64
		for _, s := range p.Sets {
			sum += s.Weight
		}
		avg := sum / float64(len(p.Sets))
		rec.Exercises = append(rec.Exercises, ExerciseSummary{
			ExerciseID:    ex.ID,
			Name:          ex.Name,
			CompletedSets: len(p.Sets),
			AverageWeight: &avg,
		})
	}

	if e.collab.Persistence != nil {
		if err := e.collab.Persistence.SaveSession(ctx, rec); err != nil {
			// The session stays open; the user must not lose a finished
			// workout, so the caller can retry.
			return nil, fmt.Errorf("saving session record: %w", err)
		}
	}

	e.closed = true
	e.rest.Cancel()

	res := &Result{Record: rec}

	if e.collab.Persistence != nil {
		for _, sum := range rec.Exercises {
			if err := e.collab.Persistence.SaveExerciseCompletion(ctx, e.id, sum); err != nil {
				e.log.Warn("saving exercise completion failed",
					"session_id", e.id, "exercise_id", sum.ExerciseID, "error", err)
			}
		}
	}

	if e.collab.Aggregator != nil {
		stats, err := e.collab.Aggregator.WorkoutCompleted(ctx, e.userID, e.planID, e.id, rec.DurationMinutes)
		if err != nil {
			e.log.Warn("workout aggregation failed", "session_id", e.id, "error", err)
		} else {
			res.Stats = stats
		}
	}

	if e.collab.Motivator != nil && mood != nil {
		msg, err := e.collab.Motivator.PostWorkoutMessage(ctx, mood.Mood, mood.Intensity, e.name, len(e.plan))
		if err != nil {
			e.log.Warn("motivational message fetch failed", "session_id", e.id, "error", err)
		} else {
			res.Message = msg
		}
	}

	return res, nil
}

// Cancel closes the session without producing any persistence effects.
func (e *Engine) Cancel() error {
	if e.closed {
		return ErrSessionClosed
	}
	e.closed = true
	e.rest.Cancel()
	return nil
}
