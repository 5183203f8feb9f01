// Package session implements the workout session execution engine: an
// in-memory state machine that drives a user through an ordered exercise
// sequence, tracking per-set progress, rest countdowns, and deferred
// (skipped) exercises grouped by muscle group. The engine is headless —
// it never blocks on user interaction and talks to storage, aggregation,
// and motivation collaborators only through interfaces at Finalize.
package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// UngroupedKey is the sentinel muscle-group key for exercises without a tag.
const UngroupedKey = "ungrouped"

// Exercise is one entry of a workout plan. It is immutable for the lifetime
// of a session.
type Exercise struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	TargetSets   int       `json:"target_sets"`
	TargetReps   string    `json:"target_reps"`
	TargetWeight *float64  `json:"target_weight,omitempty"`
	RestSeconds  int       `json:"rest_seconds,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	MuscleGroup  string    `json:"muscle_group,omitempty"`
}

// GroupKey returns the exercise's muscle-group key, falling back to the
// ungrouped sentinel when no tag is set.
func (e Exercise) GroupKey() string {
	if e.MuscleGroup == "" {
		return UngroupedKey
	}
	return e.MuscleGroup
}

// SetRecord is one completed set.
type SetRecord struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// Progress tracks completed sets for a single exercise. It is created lazily
// on the first completed set. len(Sets) never exceeds the exercise's target.
type Progress struct {
	ExerciseID uuid.UUID   `json:"exercise_id"`
	Sets       []SetRecord `json:"sets"`
}

// CompletedSets returns the number of sets recorded so far.
func (p *Progress) CompletedSets() int {
	if p == nil {
		return 0
	}
	return len(p.Sets)
}

// deferredExercise is one entry in a muscle group's deferred set.
type deferredExercise struct {
	ex         Exercise
	count      int // 1 or 2, never more
	deferredAt time.Time
}

// Engine owns all mutable state of one workout session. It is not safe for
// concurrent use; callers serialize access (one user, one action at a time).
type Engine struct {
	id        uuid.UUID
	userID    int
	planID    uuid.UUID
	name      string
	startedAt time.Time

	plan      []Exercise // as fetched from the plan store, never mutated
	sequence  []Exercise // working sequence, may grow via reinsertion
	pos       int
	progress  map[uuid.UUID]*Progress
	deferred  map[string][]deferredExercise
	processed map[string]bool // groups that already had their reinsertion pass
	rest      restTimer
	closed    bool

	collab Collaborators
	log    *slog.Logger
	now    func() time.Time
}

// Collaborators are the external services the engine notifies at Finalize.
// Any of them may be nil; a nil collaborator is skipped.
type Collaborators struct {
	Persistence Persistence
	Aggregator  Aggregator
	Motivator   Motivator
}

// New creates an engine for the given plan exercises. The exercise list must
// be non-empty, every exercise must have a unique ID, a name, and a positive
// target set count — the plan store boundary hands the engine typed, validated
// data only.
func New(userID int, planID uuid.UUID, name string, exercises []Exercise, collab Collaborators, log *slog.Logger) (*Engine, error) {
	if len(exercises) == 0 {
		return nil, fmt.Errorf("session: plan has no exercises")
	}
	seen := make(map[uuid.UUID]bool, len(exercises))
	for i, ex := range exercises {
		if ex.ID == uuid.Nil {
			return nil, fmt.Errorf("session: exercise %d has no ID", i)
		}
		if seen[ex.ID] {
			return nil, fmt.Errorf("session: duplicate exercise ID %s", ex.ID)
		}
		seen[ex.ID] = true
		if ex.Name == "" {
			return nil, fmt.Errorf("session: exercise %s has no name", ex.ID)
		}
		if ex.TargetSets < 1 {
			return nil, fmt.Errorf("session: exercise %q has target sets %d, want >= 1", ex.Name, ex.TargetSets)
		}
		if ex.RestSeconds < 0 {
			return nil, fmt.Errorf("session: exercise %q has negative rest duration", ex.Name)
		}
	}
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		id:        uuid.New(),
		userID:    userID,
		planID:    planID,
		name:      name,
		plan:      append([]Exercise(nil), exercises...),
		sequence:  append([]Exercise(nil), exercises...),
		progress:  make(map[uuid.UUID]*Progress),
		deferred:  make(map[string][]deferredExercise),
		processed: make(map[string]bool),
		collab:    collab,
		log:       log,
		now:       time.Now,
	}
	e.startedAt = e.now()
	return e, nil
}

// ID returns the session identity.
func (e *Engine) ID() uuid.UUID { return e.id }

// StartedAt returns the session start timestamp.
func (e *Engine) StartedAt() time.Time { return e.startedAt }

// Closed reports whether the session has been finalized or cancelled.
func (e *Engine) Closed() bool { return e.closed }

// Current returns the exercise at the current position. ok is false when the
// working sequence is empty (every exercise permanently skipped).
func (e *Engine) Current() (ex Exercise, ok bool) {
	if len(e.sequence) == 0 {
		return Exercise{}, false
	}
	return e.sequence[e.pos], true
}

// Complete reports whether every exercise still present in the working
// sequence has all target sets completed. It does not depend on position:
// reinsertion can extend the sequence behind the position pointer.
func (e *Engine) Complete() bool {
	for _, ex := range e.sequence {
		if e.progress[ex.ID].CompletedSets() < ex.TargetSets {
			return false
		}
	}
	return true
}

// ExerciseState is one working-sequence slot in a state snapshot.
type ExerciseState struct {
	Exercise
	CompletedSets int         `json:"completed_sets"`
	Sets          []SetRecord `json:"sets,omitempty"`
	Deferred      bool        `json:"deferred,omitempty"`
	DeferCount    int         `json:"defer_count,omitempty"`
}

// State is a JSON-able snapshot of the session for display layers.
type State struct {
	SessionID   uuid.UUID       `json:"session_id"`
	PlanID      uuid.UUID       `json:"plan_id"`
	Name        string          `json:"name"`
	StartedAt   time.Time       `json:"started_at"`
	Position    int             `json:"position"`
	Exercises   []ExerciseState `json:"exercises"`
	RestSeconds int             `json:"rest_seconds"`
	Complete    bool            `json:"complete"`
	Closed      bool            `json:"closed"`
}

// Snapshot returns a copy of the current session state.
func (e *Engine) Snapshot() State {
	st := State{
		SessionID:   e.id,
		PlanID:      e.planID,
		Name:        e.name,
		StartedAt:   e.startedAt,
		Position:    e.pos,
		RestSeconds: e.rest.Remaining(),
		Complete:    e.Complete(),
		Closed:      e.closed,
	}
	for _, ex := range e.sequence {
		es := ExerciseState{Exercise: ex}
		if p := e.progress[ex.ID]; p != nil {
			es.CompletedSets = len(p.Sets)
			es.Sets = append([]SetRecord(nil), p.Sets...)
		}
		if d, ok := e.deferredEntry(ex.GroupKey(), ex.ID); ok {
			es.Deferred = true
			es.DeferCount = d.count
		}
		st.Exercises = append(st.Exercises, es)
	}
	return st
}

// deferredEntry looks up an exercise's entry in its group's deferred set.
func (e *Engine) deferredEntry(key string, id uuid.UUID) (deferredExercise, bool) {
	for _, d := range e.deferred[key] {
		if d.ex.ID == id {
			return d, true
		}
	}
	return deferredExercise{}, false
}

// removeDeferred drops an exercise from its group's deferred set, if present.
func (e *Engine) removeDeferred(key string, id uuid.UUID) {
	entries := e.deferred[key]
	for i, d := range entries {
		if d.ex.ID == id {
			e.deferred[key] = append(entries[:i], entries[i+1:]...)
			if len(e.deferred[key]) == 0 {
				delete(e.deferred, key)
			}
			return
		}
	}
}
