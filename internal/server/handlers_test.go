package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/kaioguedesm/chronofit/internal/session"
)

const testAPIKey = "test-key"

func testServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(nil, nil, nil, testAPIKey, log)
}

// seedSession registers a live engine for the given exercises and returns its
// session ID.
func seedSession(t *testing.T, s *Server, exercises []session.Exercise) uuid.UUID {
	t.Helper()
	eng, err := session.New(1, uuid.New(), "Test Day", exercises, session.Collaborators{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	s.mgr.Add(eng)
	t.Cleanup(func() { s.mgr.Remove(eng.ID()) })
	return eng.ID()
}

func benchPress() session.Exercise {
	return session.Exercise{
		ID:          uuid.New(),
		Name:        "Bench Press",
		TargetSets:  2,
		TargetReps:  "8-10",
		RestSeconds: 90,
		MuscleGroup: "chest",
	}
}

func doJSON(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestCompleteSetHandler verifies a set POST records progress and returns the
// updated session state.
func TestCompleteSetHandler(t *testing.T) {
	s := testServer(t)
	ex := benchPress()
	id := seedSession(t, s, []session.Exercise{ex})

	rec := doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/sets", id), map[string]any{
		"exercise_id": ex.ID,
		"weight":      80.0,
		"reps":        8,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var state session.State
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if got := state.Exercises[0].CompletedSets; got != 1 {
		t.Errorf("completed sets = %d, want 1", got)
	}
	if state.RestSeconds != 90 {
		t.Errorf("rest seconds = %d, want 90", state.RestSeconds)
	}
}

// TestCompleteSetWrongExercise verifies a set for a non-current exercise is
// rejected with 422.
func TestCompleteSetWrongExercise(t *testing.T) {
	s := testServer(t)
	id := seedSession(t, s, []session.Exercise{benchPress()})

	rec := doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/sets", id), map[string]any{
		"exercise_id": uuid.New(),
		"weight":      80.0,
		"reps":        8,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422; body: %s", rec.Code, rec.Body.String())
	}
}

// TestCompleteSetUnknownSession verifies an unknown session ID returns 404.
func TestCompleteSetUnknownSession(t *testing.T) {
	s := testServer(t)

	rec := doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/sets", uuid.New()), map[string]any{
		"exercise_id": uuid.New(),
		"weight":      80.0,
		"reps":        8,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestDeferHandlerConfirmation verifies the second defer of an exercise
// returns 409 with confirm_required so the client can prompt the user.
func TestDeferHandlerConfirmation(t *testing.T) {
	s := testServer(t)
	ex := benchPress()
	id := seedSession(t, s, []session.Exercise{ex})

	rec := doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/defer", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first defer status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/defer", id), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second defer status = %d, want 409; body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ConfirmRequired bool `json:"confirm_required"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.ConfirmRequired {
		t.Error("confirm_required = false, want true")
	}
}

// TestResolveDeferAbandon verifies abandoning through the HTTP surface drops
// the exercise from the working sequence.
func TestResolveDeferAbandon(t *testing.T) {
	s := testServer(t)
	ex := benchPress()
	other := session.Exercise{
		ID: uuid.New(), Name: "Squat", TargetSets: 3, TargetReps: "5", MuscleGroup: "legs",
	}
	id := seedSession(t, s, []session.Exercise{ex, other})

	doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/defer", id), nil)

	// The sequence is now [Bench, Squat, Bench]; walk back to the reinserted
	// bench by deferring the squat too, then hitting the 409 on the bench.
	doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/defer", id), nil)
	rec := doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/defer", id), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("defer status = %d, want 409; body: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/defer/resolve", id), map[string]any{
		"abandon": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var state session.State
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	for _, es := range state.Exercises {
		if es.ID == ex.ID {
			t.Errorf("abandoned exercise %q still in sequence", es.Name)
		}
	}
}

// TestCancelRestHandler verifies the rest countdown can be cancelled early.
func TestCancelRestHandler(t *testing.T) {
	s := testServer(t)
	ex := benchPress()
	id := seedSession(t, s, []session.Exercise{ex})

	doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/sets", id), map[string]any{
		"exercise_id": ex.ID, "weight": 80.0, "reps": 8,
	})

	rec := doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/rest/cancel", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var state session.State
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if state.RestSeconds != 0 {
		t.Errorf("rest seconds = %d, want 0", state.RestSeconds)
	}
}

// TestFinalizeHandler verifies finalize closes the session, returns the
// record, and removes it from the live set.
func TestFinalizeHandler(t *testing.T) {
	s := testServer(t)
	ex := benchPress()
	id := seedSession(t, s, []session.Exercise{ex})

	doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/sets", id), map[string]any{
		"exercise_id": ex.ID, "weight": 80.0, "reps": 8,
	})
	doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/sets", id), map[string]any{
		"exercise_id": ex.ID, "weight": 80.0, "reps": 8,
	})

	rec := doJSON(s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/finalize", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var result session.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if len(result.Record.Exercises) != 1 {
		t.Fatalf("exercise summaries = %d, want 1", len(result.Record.Exercises))
	}
	if got := result.Record.Exercises[0].CompletedSets; got != 2 {
		t.Errorf("completed sets = %d, want 2", got)
	}
	if s.mgr.Len() != 0 {
		t.Errorf("live sessions after finalize = %d, want 0", s.mgr.Len())
	}
}

// TestCancelSessionHandler verifies DELETE discards the live session.
func TestCancelSessionHandler(t *testing.T) {
	s := testServer(t)
	id := seedSession(t, s, []session.Exercise{benchPress()})

	rec := doJSON(s, http.MethodDelete, fmt.Sprintf("/api/v1/sessions/%s", id), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body: %s", rec.Code, rec.Body.String())
	}
	if s.mgr.Len() != 0 {
		t.Errorf("live sessions after cancel = %d, want 0", s.mgr.Len())
	}
}

// TestGetLiveSession verifies GET on a live session returns its snapshot
// without auth.
func TestGetLiveSession(t *testing.T) {
	s := testServer(t)
	id := seedSession(t, s, []session.Exercise{benchPress()})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/sessions/%s", id), nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var state session.State
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if state.SessionID != id {
		t.Errorf("session ID = %s, want %s", state.SessionID, id)
	}
}

// TestMutatingRoutesRequireAPIKey verifies session mutations reject requests
// without an API key.
func TestMutatingRoutesRequireAPIKey(t *testing.T) {
	s := testServer(t)
	id := seedSession(t, s, []session.Exercise{benchPress()})

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/defer", id), nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestManagerDoUnknown verifies Do on an unregistered ID fails with the
// not-found sentinel.
func TestManagerDoUnknown(t *testing.T) {
	m := NewManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := m.Do(uuid.New(), func(*session.Engine) error { return nil })
	if err != ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
