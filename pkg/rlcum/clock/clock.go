// Package clock abstracts the single fire-once, cancellable timer the
// UM-RLC entity needs for t-Reordering, so that tests can drive it with a
// virtual clock instead of real time.
package clock

import "time"

// Timer is a cancellable handle for a single scheduled callback. Cancel is
// idempotent; calling it after the timer has already fired or been
// cancelled is a no-op.
type Timer interface {
	Cancel()
}

// Clock schedules fire-once callbacks. If the scheduled instant has already
// passed by the time the underlying mechanism gets to it, firing anyway is
// legal.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the production Clock, backed by real wall-clock time.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc schedules f to run after d using time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	t := time.AfterFunc(d, f)
	return systemTimer{t}
}

type systemTimer struct{ t *time.Timer }

func (s systemTimer) Cancel() { s.t.Stop() }
