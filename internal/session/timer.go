package session

// restTimer is the rest countdown between sets. It is advisory display state
// only: it never blocks CompleteSet or DeferCurrent, and its tick never
// touches exercise progress, the working sequence, or the deferred registry.
type restTimer struct {
	remaining int // whole seconds; 0 means idle
}

// Arm starts (or restarts) the countdown from the given number of seconds.
func (t *restTimer) Arm(seconds int) {
	if seconds <= 0 {
		return
	}
	t.remaining = seconds
}

// Tick counts down one second. Reaching zero clears the timer to idle.
func (t *restTimer) Tick() {
	if t.remaining > 0 {
		t.remaining--
	}
}

// Cancel clears the timer to idle immediately.
func (t *restTimer) Cancel() {
	t.remaining = 0
}

// Active reports whether a countdown is running.
func (t *restTimer) Active() bool { return t.remaining > 0 }

// Remaining returns the seconds left, 0 when idle.
func (t *restTimer) Remaining() int { return t.remaining }

// TickRest advances the rest countdown by one second and returns the
// remaining seconds. It is a no-op on a closed session or an idle timer.
func (e *Engine) TickRest() int {
	if e.closed {
		return 0
	}
	e.rest.Tick()
	return e.rest.Remaining()
}

// RestRemaining returns the seconds left on the rest countdown, 0 when idle.
func (e *Engine) RestRemaining() int { return e.rest.Remaining() }

// RestActive reports whether a rest countdown is running.
func (e *Engine) RestActive() bool { return e.rest.Active() }

// CancelRest stops the rest countdown early with no other side effects.
func (e *Engine) CancelRest() error {
	if e.closed {
		return ErrSessionClosed
	}
	e.rest.Cancel()
	return nil
}
