// Package debounce coalesces rapid edit events into one delayed call,
// with an epoch counter to drop calls superseded before they fire.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a scheduled call runs.
const DefaultDelay = 650 * time.Millisecond

// Debouncer holds at most one pending call. Schedule replaces the pending
// call and restarts the quiet period; Invalidate bumps the epoch so
// anything scheduled before it can never run. The zero value is not
// usable; call New.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	epoch uint64
	timer *time.Timer
}

// New creates a debouncer with the given quiet period. Non-positive
// delays fall back to DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Delay reports the configured quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule replaces any pending call with fn. The call runs after the
// quiet period on the timer goroutine, unless the epoch moves first.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	epoch := d.epoch
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stale := epoch != d.epoch
		if !stale {
			d.timer = nil
		}
		d.mu.Unlock()
		if !stale {
			fn()
		}
	})
}

// Invalidate cancels the pending call and bumps the epoch. A timer that
// already fired but has not yet checked the epoch is dropped too.
func (d *Debouncer) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.epoch++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels any pending call at teardown.
func (d *Debouncer) Stop() {
	d.Invalidate()
}
