package session

import (
	"errors"
	"testing"
)

// TestRestTimerArmsBetweenSets verifies the rest timer arms after a set when
// more sets remain, counts down to zero by whole seconds, and self-clears.
func TestRestTimerArmsBetweenSets(t *testing.T) {
	a := makeExercise("A", 2, "", 3)
	e := newTestEngine(t, a)

	mustCompleteSet(t, e, 60, 10)
	if got := e.RestRemaining(); got != 3 {
		t.Fatalf("rest remaining = %d, want 3", got)
	}

	for want := 2; want >= 0; want-- {
		if got := e.TickRest(); got != want {
			t.Errorf("TickRest = %d, want %d", got, want)
		}
	}
	if e.RestActive() {
		t.Error("timer still active after reaching zero")
	}
	if got := e.TickRest(); got != 0 {
		t.Errorf("TickRest on idle timer = %d, want 0", got)
	}
}

// TestRestTimerNotArmedOnFinalSet verifies no rest is armed when the
// completed set was the exercise's last.
func TestRestTimerNotArmedOnFinalSet(t *testing.T) {
	a := makeExercise("A", 1, "", 90)
	b := makeExercise("B", 1, "", 0)
	e := newTestEngine(t, a, b)

	mustCompleteSet(t, e, 60, 10)
	if e.RestActive() {
		t.Error("rest armed after the final set of an exercise")
	}
}

// TestRestTimerCancelEarly verifies the consumer can cancel the countdown
// with no other side effects.
func TestRestTimerCancelEarly(t *testing.T) {
	a := makeExercise("A", 2, "", 60)
	e := newTestEngine(t, a)

	mustCompleteSet(t, e, 60, 10)
	if err := e.CancelRest(); err != nil {
		t.Fatalf("CancelRest: %v", err)
	}
	if e.RestActive() {
		t.Error("timer active after cancel")
	}
	st := e.Snapshot()
	if got := st.Exercises[0].CompletedSets; got != 1 {
		t.Errorf("completed sets = %d, want 1 (cancel must not touch progress)", got)
	}
}

// TestRestTimerClearedOnDefer verifies no rest is owed for a skipped
// exercise.
func TestRestTimerClearedOnDefer(t *testing.T) {
	a := makeExercise("A", 2, "legs", 60)
	b := makeExercise("B", 1, "chest", 0)
	e := newTestEngine(t, a, b)

	mustCompleteSet(t, e, 60, 10)
	if !e.RestActive() {
		t.Fatal("rest not armed")
	}
	if _, err := e.DeferCurrent(); err != nil {
		t.Fatalf("defer: %v", err)
	}
	if e.RestActive() {
		t.Error("rest still counting after defer")
	}
}

// TestRestTimerDoesNotBlockOperations verifies CompleteSet and DeferCurrent
// are accepted while the countdown runs, and that completing a set re-arms
// the timer.
func TestRestTimerDoesNotBlockOperations(t *testing.T) {
	a := makeExercise("A", 3, "", 45)
	e := newTestEngine(t, a)

	mustCompleteSet(t, e, 60, 10)
	e.TickRest()
	if got := e.RestRemaining(); got != 44 {
		t.Fatalf("rest remaining = %d, want 44", got)
	}

	// Next set lands mid-countdown; the timer re-arms from the full value.
	mustCompleteSet(t, e, 60, 9)
	if got := e.RestRemaining(); got != 45 {
		t.Errorf("rest remaining after re-arm = %d, want 45", got)
	}
}

// TestCancelRestOnClosedSession verifies timer operations respect the closed
// state.
func TestCancelRestOnClosedSession(t *testing.T) {
	e := newTestEngine(t, makeExercise("A", 1, "", 30))
	if err := e.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := e.CancelRest(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("CancelRest(closed) = %v, want ErrSessionClosed", err)
	}
	if got := e.TickRest(); got != 0 {
		t.Errorf("TickRest(closed) = %d, want 0", got)
	}
}
