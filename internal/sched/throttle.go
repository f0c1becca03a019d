package sched

import (
	"sync"
	"time"
)

// Throttle coalesces bursts of calls into a single trailing-edge invocation:
// the first Call in a quiet period schedules the wrapped function to run once
// the window elapses, and further Calls inside the window are absorbed. The
// function therefore observes the state current at the moment the window
// closes, which is what bounds write amplification from rapid edits.
type Throttle struct {
	clock  Clock
	window time.Duration
	fn     func()

	mu      sync.Mutex
	pending Timer
}

// NewThrottle creates a throttle around fn with the given window.
// A nil clock defaults to the real clock.
func NewThrottle(clock Clock, window time.Duration, fn func()) *Throttle {
	if clock == nil {
		clock = RealClock{}
	}
	return &Throttle{clock: clock, window: window, fn: fn}
}

// Call requests an invocation. If one is already scheduled the call is
// absorbed into it.
func (t *Throttle) Call() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		return
	}
	t.pending = t.clock.AfterFunc(t.window, func() {
		t.mu.Lock()
		t.pending = nil
		t.mu.Unlock()
		t.fn()
	})
}

// Flush runs the wrapped function immediately if an invocation is scheduled,
// canceling the timer. It is a no-op when nothing is pending.
func (t *Throttle) Flush() {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()
	if pending != nil && pending.Stop() {
		t.fn()
	}
}

// Pending reports whether an invocation is currently scheduled.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// Debouncer delays a call until a quiet period has elapsed: every Call
// cancels the previously scheduled invocation and schedules a new one. Only
// the last call in a burst runs.
type Debouncer struct {
	clock  Clock
	window time.Duration

	mu      sync.Mutex
	pending Timer
}

// NewDebouncer creates a debouncer with the given quiet window.
// A nil clock defaults to the real clock.
func NewDebouncer(clock Clock, window time.Duration) *Debouncer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Debouncer{clock: clock, window: window}
}

// Call schedules fn after the quiet window, replacing any not-yet-fired
// previously scheduled function.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = d.clock.AfterFunc(d.window, func() {
		d.mu.Lock()
		d.pending = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops any scheduled invocation.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
