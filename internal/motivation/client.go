// Package motivation is the client for the post-workout message service.
// The service is strictly best-effort: the session engine tolerates its
// absence and every failure here degrades to "no message".
package motivation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kaioguedesm/chronofit/internal/session"
)

// Client calls the motivation service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: Client satisfies the engine's motivator collaborator.
var _ session.Motivator = (*Client)(nil)

// NewClient creates a Client targeting the given base URL. A non-positive
// timeout falls back to 10 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type messageRequest struct {
	Mood          string `json:"mood"`
	MoodIntensity int    `json:"mood_intensity"`
	WorkoutName   string `json:"workout_name"`
	ExerciseCount int    `json:"exercise_count"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// PostWorkoutMessage fetches a motivational message for the finished workout.
func (c *Client) PostWorkoutMessage(ctx context.Context, mood string, intensity int, workoutName string, exerciseCount int) (string, error) {
	payload, err := json.Marshal(messageRequest{
		Mood:          mood,
		MoodIntensity: intensity,
		WorkoutName:   workoutName,
		ExerciseCount: exerciseCount,
	})
	if err != nil {
		return "", fmt.Errorf("motivation: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/message", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("motivation: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("motivation: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("motivation: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("motivation: service returned %d: %s", resp.StatusCode, body)
	}

	var mr messageResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return "", fmt.Errorf("motivation: decode response: %w", err)
	}
	return mr.Message, nil
}
