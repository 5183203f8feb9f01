package journal

import (
	"testing"

	"github.com/google/uuid"
)

// TestRecordAndEntries verifies events round-trip in recording order.
func TestRecordAndEntries(t *testing.T) {
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	sid := uuid.New()
	ex1, ex2 := uuid.New(), uuid.New()

	events := []Entry{
		{SessionID: sid, ExerciseID: ex1, Kind: EventSet, Weight: 60, Reps: 10},
		{SessionID: sid, ExerciseID: ex2, Kind: EventDefer},
		{SessionID: sid, ExerciseID: ex1, Kind: EventSet, Weight: 62.5, Reps: 8},
	}
	for _, e := range events {
		if err := j.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Entries(sid)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("entries = %d, want 3", len(got))
	}
	if got[0].Weight != 60 || got[0].Reps != 10 || got[0].Kind != EventSet {
		t.Errorf("first entry = %+v, want 60kg x10 set", got[0])
	}
	if got[1].Kind != EventDefer || got[1].ExerciseID != ex2 {
		t.Errorf("second entry = %+v, want defer of ex2", got[1])
	}
	if got[2].Weight != 62.5 {
		t.Errorf("third entry weight = %v, want 62.5", got[2].Weight)
	}
}

// TestClearRemovesOnlyTargetSession verifies Clear scopes to one session.
func TestClearRemovesOnlyTargetSession(t *testing.T) {
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	s1, s2 := uuid.New(), uuid.New()
	for _, sid := range []uuid.UUID{s1, s2} {
		if err := j.Record(Entry{SessionID: sid, ExerciseID: uuid.New(), Kind: EventSet, Weight: 50, Reps: 5}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if err := j.Clear(s1); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, err := j.Entries(s1)
	if err != nil {
		t.Fatalf("Entries(s1): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("entries after clear = %d, want 0", len(got))
	}

	open, err := j.OpenSessions()
	if err != nil {
		t.Fatalf("OpenSessions: %v", err)
	}
	if len(open) != 1 || open[0] != s2 {
		t.Errorf("open sessions = %v, want [%s]", open, s2)
	}
}

// TestOpenSessionsEmpty verifies a fresh journal reports no open sessions.
func TestOpenSessionsEmpty(t *testing.T) {
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	open, err := j.OpenSessions()
	if err != nil {
		t.Fatalf("OpenSessions: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("open sessions = %v, want none", open)
	}
}
