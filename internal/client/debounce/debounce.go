// Package debounce delays a call until input has been quiet for a fixed
// window. Each Trigger supersedes the previous one; a superseded call never
// runs, even if its timer already fired and is waiting to run.
package debounce

import (
	"sync"
	"time"
)

type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

type Debouncer struct {
	delay time.Duration
	after AfterFunc

	mu    sync.Mutex
	gen   uint64
	timer Timer
	wg    sync.WaitGroup
}

type Option func(*Debouncer)

// WithAfterFunc replaces the scheduler; tests use it to fire timers by hand.
func WithAfterFunc(f AfterFunc) Option {
	return func(d *Debouncer) { d.after = f }
}

func New(delay time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{
		delay: delay,
		after: func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger cancels any pending call and schedules fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen

	d.wg.Add(1)
	d.timer = d.after(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops the pending call, if any, and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.timer != nil
	d.stopLocked()
	d.gen++
	return pending
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Wait blocks until no scheduled call is outstanding.
func (d *Debouncer) Wait() {
	d.wg.Wait()
}

func (d *Debouncer) stopLocked() {
	if d.timer == nil {
		return
	}
	// a timer that already fired releases its own wait slot
	if d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
}
