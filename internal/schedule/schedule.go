// Package schedule holds the timer abstraction used for debouncing, so time
// can be driven manually in tests instead of waiting on real clocks.
package schedule

import (
	"sync"
	"time"
)

// Timer is a pending scheduled call.
type Timer interface {
	// Stop cancels the call. It reports false if the call already ran or was stopped.
	Stop() bool
}

// Scheduler runs f once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real schedules on the runtime timers.
type Real struct{}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer delays a call until delay has passed without another Call.
// Only the trailing call of a burst runs.
type Debouncer struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   time.Duration
	pending Timer
	fn      func()
}

func NewDebouncer(sched Scheduler, delay time.Duration) *Debouncer {
	if sched == nil {
		sched = Real{}
	}
	return &Debouncer{sched: sched, delay: delay}
}

// Call supersedes any pending call with f.
func (d *Debouncer) Call(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = d.sched.AfterFunc(d.delay, f)
	d.fn = f
}

// Flush runs the pending call now instead of waiting out the delay. It
// reports whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	pending, f := d.pending, d.fn
	d.pending, d.fn = nil, nil
	d.mu.Unlock()

	if pending == nil || !pending.Stop() {
		return false
	}
	f()
	return true
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
		d.pending, d.fn = nil, nil
	}
}
