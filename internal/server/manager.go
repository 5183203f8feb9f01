package server

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kaioguedesm/chronofit/internal/session"
)

// ErrSessionNotFound is returned when a live session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns all live (not yet finalized) session engines. Each engine is
// guarded by its own mutex so the single-caller contract of the engine holds
// even with concurrent HTTP requests, and each gets a one-second ticker
// goroutine that drives the rest countdown.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*liveSession
	log      *slog.Logger
}

type liveSession struct {
	mu     sync.Mutex
	engine *session.Engine
	stop   chan struct{}
}

// NewManager creates an empty manager.
func NewManager(log *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*liveSession),
		log:      log,
	}
}

// Add registers a freshly started engine and starts its rest ticker.
func (m *Manager) Add(eng *session.Engine) {
	ls := &liveSession{engine: eng, stop: make(chan struct{})}
	m.mu.Lock()
	m.sessions[eng.ID()] = ls
	m.mu.Unlock()
	go m.tickRest(ls)
}

// tickRest decrements the session's rest countdown once per second. The tick
// only ever touches the timer, so it cannot race with set/defer operations
// beyond the mutex it shares with them.
func (m *Manager) tickRest(ls *liveSession) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ls.stop:
			return
		case <-t.C:
			ls.mu.Lock()
			ls.engine.TickRest()
			closed := ls.engine.Closed()
			ls.mu.Unlock()
			if closed {
				return
			}
		}
	}
}

// Do runs fn against the engine of the given live session, holding its lock.
func (m *Manager) Do(id uuid.UUID, fn func(*session.Engine) error) error {
	m.mu.Lock()
	ls, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	return fn(ls.engine)
}

// Remove drops a closed session and stops its ticker. Unknown IDs are a
// no-op.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	ls, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if ok {
		close(ls.stop)
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
