// Package reminder schedules recurring workout reminders. The scheduler owns
// its cron instance and every timer it creates; Stop tears them all down —
// nothing ambient survives the scheduler's lifecycle.
package reminder

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron"
)

// Notifier delivers a reminder message. Delivery transport is a collaborator
// concern; the default just logs.
type Notifier interface {
	Notify(message string) error
}

// LogNotifier writes reminders to the log.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(message string) error {
	n.Log.Info("workout reminder", "message", message)
	return nil
}

// Entry is one scheduled reminder.
type Entry struct {
	Schedule string // cron spec, e.g. "0 0 18 * * MON"
	Message  string
}

// Scheduler runs reminder entries on their cron schedules.
type Scheduler struct {
	c        *cron.Cron
	notifier Notifier
	log      *slog.Logger
}

// New creates a scheduler with all entries registered. Invalid schedules are
// rejected up front so a bad config fails at startup, not at fire time.
func New(entries []Entry, notifier Notifier, log *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		c:        cron.New(),
		notifier: notifier,
		log:      log,
	}
	for i, e := range entries {
		msg := e.Message
		if err := s.c.AddFunc(e.Schedule, func() { s.fire(msg) }); err != nil {
			return nil, fmt.Errorf("reminder %d (%q): %w", i, e.Schedule, err)
		}
	}
	return s, nil
}

func (s *Scheduler) fire(message string) {
	if err := s.notifier.Notify(message); err != nil {
		s.log.Warn("reminder delivery failed", "message", message, "error", err)
	}
}

// Start begins running the schedules in their own goroutine.
func (s *Scheduler) Start() {
	s.c.Start()
}

// Stop cancels all scheduled timers. Safe to call once at shutdown.
func (s *Scheduler) Stop() {
	s.c.Stop()
}
