package filter

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a filter change is applied.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer collapses bursts of triggers into a single call made after a
// quiet period. Only the most recently triggered function runs.
type Debouncer struct {
	wait time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer. A non-positive wait uses DefaultDebounce.
func NewDebouncer(wait time.Duration) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer{wait: wait}
}

// Trigger schedules fn, discarding any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		// A newer Trigger or Stop may have raced with this timer firing.
		stale := gen != d.gen
		if !stale {
			d.timer = nil
		}
		d.mu.Unlock()
		if !stale {
			fn()
		}
	})
}

// Stop cancels the pending call, if any, and reports whether one was
// cancelled.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}
