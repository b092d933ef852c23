// Package debounce turns bursts of input events into a single delayed commit.
package debounce

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultDelay is the quiet period before a search query is committed.
const DefaultDelay = 500 * time.Millisecond

var (
	commitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalogue_debounce_commits_total",
		Help: "Total number of debounced values committed",
	})

	cancelsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalogue_debounce_cancels_total",
		Help: "Total number of pending commits superseded or cancelled",
	})
)

// Debouncer holds at most one pending delayed commit.
//
// Every Input cancels the pending commit and schedules a new one with the
// latest value. There is no maximum wait: continuous input defers the commit
// indefinitely.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	commit  func(T)
	timer   *time.Timer
	pending T
	armed   bool
	gen     uint64
}

// New creates a debouncer that calls commit with the latest value after delay.
// A non-positive delay falls back to DefaultDelay.
func New[T any](delay time.Duration, commit func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{
		delay:  delay,
		commit: commit,
	}
}

// Delay returns the configured quiet period.
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Input records v as the pending value and restarts the timer.
func (d *Debouncer[T]) Input(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	d.pending = v
	d.armed = true
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

// fire commits the pending value if no newer input arrived since gen was scheduled.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if !d.armed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.armed = false
	d.timer = nil
	d.mu.Unlock()

	commitsTotal.Inc()
	d.commit(v)
}

// Pending returns the value waiting to be committed, if any.
func (d *Debouncer[T]) Pending() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.armed
}

// Cancel drops the pending commit without calling commit.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.armed = false
}

// Flush commits the pending value immediately, if there is one.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if !d.armed {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	v := d.pending
	d.armed = false
	d.gen++
	d.mu.Unlock()

	commitsTotal.Inc()
	d.commit(v)
}

func (d *Debouncer[T]) stopLocked() {
	if d.timer == nil {
		return
	}
	if d.timer.Stop() && d.armed {
		cancelsTotal.Inc()
	}
	d.timer = nil
	d.gen++
}
