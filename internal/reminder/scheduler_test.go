package reminder

import (
	"log/slog"
	"sync"
	"testing"
	"time"
)

type captureNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *captureNotifier) Notify(message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// TestInvalidScheduleRejected verifies a bad cron spec fails at construction.
func TestInvalidScheduleRejected(t *testing.T) {
	_, err := New([]Entry{{Schedule: "not a cron spec", Message: "x"}}, &captureNotifier{}, slog.Default())
	if err == nil {
		t.Error("expected error for invalid schedule")
	}
}

// TestSchedulerFires verifies an every-second entry delivers through the
// notifier and that Stop halts delivery.
func TestSchedulerFires(t *testing.T) {
	n := &captureNotifier{}
	s, err := New([]Entry{{Schedule: "@every 1s", Message: "train!"}}, n, slog.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.Start()
	deadline := time.After(5 * time.Second)
	for n.count() == 0 {
		select {
		case <-deadline:
			s.Stop()
			t.Fatal("reminder never fired")
		case <-time.After(50 * time.Millisecond):
		}
	}
	s.Stop()

	n.mu.Lock()
	got := n.messages[0]
	n.mu.Unlock()
	if got != "train!" {
		t.Errorf("message = %q, want %q", got, "train!")
	}
}
