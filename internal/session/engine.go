package session

import (
	"github.com/google/uuid"
)

// CompleteSet records one (weight, reps) set for the exercise at the current
// position. When the exercise declares a rest duration and sets remain, the
// rest timer is armed. Fully completing an exercise advances the position,
// unless it is the last slot of the working sequence — callers observe
// overall completion through Complete, not through position.
func (e *Engine) CompleteSet(exerciseID uuid.UUID, weight float64, reps int) error {
	if e.closed {
		return ErrSessionClosed
	}
	if len(e.sequence) == 0 {
		return ErrExerciseNotCurrent
	}
	cur := e.sequence[e.pos]
	if exerciseID != cur.ID {
		return ErrExerciseNotCurrent
	}

	p := e.progress[cur.ID]
	if p.CompletedSets() >= cur.TargetSets {
		return ErrExerciseAlreadyComplete
	}
	if p == nil {
		p = &Progress{ExerciseID: cur.ID}
		e.progress[cur.ID] = p
	}
	p.Sets = append(p.Sets, SetRecord{Weight: weight, Reps: reps})

	// A completed set pulls the exercise out of its group's deferred set:
	// a completed exercise is never reintroduced.
	e.removeDeferred(cur.GroupKey(), cur.ID)

	done := len(p.Sets) == cur.TargetSets
	if !done && cur.RestSeconds > 0 {
		e.rest.Arm(cur.RestSeconds)
	}
	if done && e.pos < len(e.sequence)-1 {
		e.pos++
	}
	return nil
}

// DeferResult describes the outcome of a successful defer.
type DeferResult struct {
	// Reinserted is the number of deferred exercises re-added to the working
	// sequence because the current exercise was the last of its muscle group
	// for this pass. Zero when no reinsertion was triggered.
	Reinserted int `json:"reinserted"`
}

// DeferCurrent skips the exercise at the current position, recording it in
// its muscle group's deferred set and advancing past it. When the skipped
// exercise is the last of its group for this pass, the group's deferred,
// still-incomplete exercises are reinserted into the working sequence in
// their original relative order — at most once per group per session.
//
// A second defer of the same exercise returns ErrAlreadyDeferredOnce with no
// state change; the caller must resolve it through ResolveDefer.
func (e *Engine) DeferCurrent() (DeferResult, error) {
	if e.closed {
		return DeferResult{}, ErrSessionClosed
	}
	if len(e.sequence) == 0 {
		return DeferResult{}, ErrExerciseNotCurrent
	}
	cur := e.sequence[e.pos]
	if e.progress[cur.ID].CompletedSets() >= cur.TargetSets {
		// Completed exercises cannot be deferred.
		return DeferResult{}, ErrExerciseAlreadyComplete
	}

	key := cur.GroupKey()
	if d, ok := e.deferredEntry(key, cur.ID); ok && d.count >= 1 {
		return DeferResult{}, ErrAlreadyDeferredOnce
	}

	e.deferred[key] = append(e.deferred[key], deferredExercise{
		ex:         cur,
		count:      1,
		deferredAt: e.now(),
	})

	var res DeferResult
	if e.lastOfGroup(key) && !e.processed[key] {
		res.Reinserted = e.reinsertGroup(key)
	}

	if e.pos < len(e.sequence)-1 {
		e.pos++
	}
	// No rest is owed for a skipped exercise.
	e.rest.Cancel()
	return res, nil
}

// ResolveDefer resolves a second defer of the current exercise after the
// caller obtained (or declined) the user's confirmation. With abandon true
// the exercise is permanently excluded: dropped from its group's deferred set
// and removed from the working sequence entirely. With abandon false the skip
// is still honored for this pass, but the exercise keeps its deferred entry
// unchanged — there is no further automatic re-offer in this session.
func (e *Engine) ResolveDefer(abandon bool) error {
	if e.closed {
		return ErrSessionClosed
	}
	if len(e.sequence) == 0 {
		return ErrNoPendingDefer
	}
	cur := e.sequence[e.pos]
	key := cur.GroupKey()
	if _, ok := e.deferredEntry(key, cur.ID); !ok {
		return ErrNoPendingDefer
	}

	e.rest.Cancel()
	if !abandon {
		if e.pos < len(e.sequence)-1 {
			e.pos++
		}
		return nil
	}

	e.removeDeferred(key, cur.ID)
	e.removeFromSequence(cur.ID)
	return nil
}

// lastOfGroup reports whether the current exercise is the last of its muscle
// group for this pass: the following sequence slot belongs to a different
// group, or there is no following slot.
func (e *Engine) lastOfGroup(key string) bool {
	if e.pos == len(e.sequence)-1 {
		return true
	}
	return e.sequence[e.pos+1].GroupKey() != key
}

// reinsertGroup appends the group's deferred, not-yet-completed exercises to
// the working sequence in their original relative order and marks the group
// processed. Returns the number of exercises reinserted.
func (e *Engine) reinsertGroup(key string) int {
	var toReinsert []Exercise
	for _, d := range e.deferred[key] {
		if e.progress[d.ex.ID].CompletedSets() >= d.ex.TargetSets {
			continue
		}
		toReinsert = append(toReinsert, d.ex)
	}
	if len(toReinsert) == 0 {
		return 0
	}
	e.sequence = append(e.sequence, toReinsert...)
	e.processed[key] = true
	return len(toReinsert)
}

// removeFromSequence drops every occurrence of an exercise from the working
// sequence, adjusting the position so it lands on the exercise that followed
// the removed current slot.
func (e *Engine) removeFromSequence(id uuid.UUID) {
	seq := e.sequence[:0]
	pos := e.pos
	for i, ex := range e.sequence {
		if ex.ID == id {
			if i < e.pos {
				pos--
			}
			continue
		}
		seq = append(seq, ex)
	}
	e.sequence = seq
	if pos >= len(e.sequence) {
		pos = len(e.sequence) - 1
	}
	if pos < 0 {
		pos = 0
	}
	e.pos = pos
}
