// Package clock abstracts timer scheduling so the market simulator can run
// against wall time in production and a manually advanced clock in tests.
package clock

import "time"

type Timer interface {
	// Stop prevents the callback from firing. It reports whether the
	// callback was still pending.
	Stop() bool
}

type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn to run after d. fn runs on the scheduler's
	// goroutine for the system clock and inline during Advance for the
	// manual clock.
	AfterFunc(d time.Duration, fn func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// System returns the wall-clock implementation.
func System() Clock { return systemClock{} }
