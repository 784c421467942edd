package state

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debouncer collapses bursts of values into one trailing write: every Push
// restarts the quiet period, and only the last value pushed is written once
// the period elapses without another Push.
type Debouncer[T any] struct {
	clock clock.Clock
	quiet time.Duration
	write func(T)

	mu      sync.Mutex
	timer   *clock.Timer
	gen     uint64
	pending T
	dirty   bool
	stopped bool
}

func NewDebouncer[T any](clk clock.Clock, quiet time.Duration, write func(T)) *Debouncer[T] {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer[T]{
		clock: clk,
		quiet: quiet,
		write: write,
	}
}

func (d *Debouncer[T]) Push(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = value
	d.dirty = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}

	gen := d.gen
	d.timer = d.clock.AfterFunc(d.quiet, func() { d.fire(gen) })
}

// Flush writes the pending value now, if there is one.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	value, ok := d.take()
	d.mu.Unlock()

	if ok {
		d.write(value)
	}
}

// Stop drops the pending value and ignores later pushes.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.take()
	d.stopped = true
}

// Pending reports whether a write is waiting for the quiet period.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// superseded by a later Push, Flush or Stop
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	value, ok := d.take()
	d.mu.Unlock()

	if ok {
		d.write(value)
	}
}

// take must be called with mu held.
func (d *Debouncer[T]) take() (T, bool) {
	var zero T
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	if !d.dirty {
		return zero, false
	}
	value := d.pending
	d.pending = zero
	d.dirty = false
	return value, true
}
