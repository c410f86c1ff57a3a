// Package backoff implements the adaptive delay escalator used to pace
// requests after throttling-relevant failures (429 and 5xx responses).
package backoff

import (
	"sync"
	"time"
)

// DefaultInitial is the delay applied after the first consecutive failure.
const DefaultInitial = time.Second

// Escalator tracks the current backoff delay for one request manager.
// The delay starts at zero, jumps to the initial value on the first
// throttling-relevant failure, doubles on each consecutive failure up to
// the cap, and resets to zero on any settle that is not itself a failure.
// Safe for concurrent use.
type Escalator struct {
	mu      sync.Mutex
	current time.Duration
	initial time.Duration
	max     time.Duration
}

// New creates an escalator. A non-positive initial falls back to
// DefaultInitial; the cap is raised to the initial value if it is smaller.
func New(initial, max time.Duration) *Escalator {
	if initial <= 0 {
		initial = DefaultInitial
	}
	if max < initial {
		max = initial
	}
	return &Escalator{initial: initial, max: max}
}

// Current returns the backoff delay that the next dispatch must add to the
// minimum inter-request interval.
func (e *Escalator) Current() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Escalate doubles the delay (seeding it with the initial value when it is
// zero), caps it, and returns the new value.
func (e *Escalator) Escalate() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == 0 {
		e.current = e.initial
	} else {
		e.current *= 2
		if e.current > e.max {
			e.current = e.max
		}
	}
	return e.current
}

// Reset clears the delay back to zero.
func (e *Escalator) Reset() {
	e.mu.Lock()
	e.current = 0
	e.mu.Unlock()
}
