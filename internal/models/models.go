// Package models holds the typed rows exchanged with the store. Remote data
// never crosses into the engine untyped: plan rows are validated here and
// converted into session.Exercise values at the plan-store boundary.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kaioguedesm/chronofit/internal/session"
)

// PlanRow is a workout plan header.
type PlanRow struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PlanExerciseRow is one exercise of a plan, in plan order.
type PlanExerciseRow struct {
	ID           uuid.UUID `json:"id"`
	PlanID       uuid.UUID `json:"plan_id"`
	Position     int       `json:"position"`
	Name         string    `json:"name"`
	TargetSets   int       `json:"target_sets"`
	TargetReps   string    `json:"target_reps"`
	TargetWeight *float64  `json:"target_weight,omitempty"`
	RestSeconds  int       `json:"rest_seconds"`
	Notes        string    `json:"notes,omitempty"`
	MuscleGroup  string    `json:"muscle_group,omitempty"`
}

// Validate checks the row is usable as a session exercise.
func (r PlanExerciseRow) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("plan exercise has no ID")
	}
	if r.Name == "" {
		return fmt.Errorf("plan exercise %s has no name", r.ID)
	}
	if r.TargetSets < 1 {
		return fmt.Errorf("plan exercise %q has target sets %d, want >= 1", r.Name, r.TargetSets)
	}
	if r.RestSeconds < 0 {
		return fmt.Errorf("plan exercise %q has negative rest duration", r.Name)
	}
	return nil
}

// Exercise converts the row into the engine's exercise type.
func (r PlanExerciseRow) Exercise() session.Exercise {
	return session.Exercise{
		ID:           r.ID,
		Name:         r.Name,
		TargetSets:   r.TargetSets,
		TargetReps:   r.TargetReps,
		TargetWeight: r.TargetWeight,
		RestSeconds:  r.RestSeconds,
		Notes:        r.Notes,
		MuscleGroup:  r.MuscleGroup,
	}
}

// SessionRow is a finalized workout session.
type SessionRow struct {
	ID              uuid.UUID `json:"id"`
	UserID          int       `json:"user_id"`
	PlanID          uuid.UUID `json:"plan_id"`
	Name            string    `json:"name"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

// SessionExerciseRow is a per-exercise completion record of a finalized
// session.
type SessionExerciseRow struct {
	SessionID     uuid.UUID `json:"session_id"`
	ExerciseID    uuid.UUID `json:"exercise_id"`
	Name          string    `json:"name"`
	CompletedSets int       `json:"completed_sets"`
	AverageWeight *float64  `json:"average_weight,omitempty"`
}
