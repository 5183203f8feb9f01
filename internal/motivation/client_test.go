package motivation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestPostWorkoutMessage verifies the request payload and response decoding.
func TestPostWorkoutMessage(t *testing.T) {
	var got messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/message" {
			t.Errorf("request = %s %s, want POST /api/v1/message", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(messageResponse{Message: "Keep it up!"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	msg, err := c.PostWorkoutMessage(context.Background(), "great", 4, "Push Day", 6)
	if err != nil {
		t.Fatalf("PostWorkoutMessage: %v", err)
	}
	if msg != "Keep it up!" {
		t.Errorf("message = %q, want %q", msg, "Keep it up!")
	}
	if got.Mood != "great" || got.MoodIntensity != 4 {
		t.Errorf("mood = %q/%d, want great/4", got.Mood, got.MoodIntensity)
	}
	if got.WorkoutName != "Push Day" || got.ExerciseCount != 6 {
		t.Errorf("workout = %q/%d, want Push Day/6", got.WorkoutName, got.ExerciseCount)
	}
}

// TestPostWorkoutMessageServerError verifies non-200 responses become errors
// (the engine downgrades them to a missing message).
func TestPostWorkoutMessageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.PostWorkoutMessage(context.Background(), "tired", 1, "Leg Day", 4); err == nil {
		t.Error("expected error for 503 response")
	}
}
