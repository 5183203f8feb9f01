package session

import "errors"

// Sentinel errors returned by engine operations. All are recoverable caller
// conditions; a rejected operation leaves session state unchanged.
var (
	// ErrSessionClosed is returned by any operation invoked after the
	// session has been finalized or cancelled.
	ErrSessionClosed = errors.New("session is closed")

	// ErrExerciseNotCurrent is returned when CompleteSet targets an exercise
	// other than the one at the current position.
	ErrExerciseNotCurrent = errors.New("exercise is not the current exercise")

	// ErrExerciseAlreadyComplete is returned when a set is recorded beyond
	// the exercise's target set count, or a fully completed exercise is
	// deferred.
	ErrExerciseAlreadyComplete = errors.New("exercise already completed all sets")

	// ErrAlreadyDeferredOnce is returned when the current exercise was
	// already deferred once. It is a confirmation prompt, not a hard
	// failure: the caller resolves it with ResolveDefer.
	ErrAlreadyDeferredOnce = errors.New("exercise already deferred once, confirmation required")

	// ErrSessionAlreadyClosed is returned by a second Finalize call.
	ErrSessionAlreadyClosed = errors.New("session already finalized")

	// ErrNoPendingDefer is returned by ResolveDefer when the current
	// exercise has no deferred entry to resolve.
	ErrNoPendingDefer = errors.New("no deferred exercise awaiting confirmation")
)
