package geocode

import (
	"sync"
	"time"
)

// MinQueryLength is the shortest address fragment worth resolving.
const MinQueryLength = 3

// Debouncer coalesces rapid address keystrokes into a single resolve.
// Every Trigger resets the timer; only the last input before a quiet
// period fires. Inputs below MinQueryLength cancel any pending fire.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

// NewDebouncer builds a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn(input) after the quiet period, replacing any
// previously scheduled call. Short inputs cancel instead of scheduling.
func (d *Debouncer) Trigger(input string, fn func(string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if len(input) < MinQueryLength {
		return
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.gen == gen
		d.mu.Unlock()
		if current {
			fn(input)
		}
	})
}

// Stop cancels any pending fire.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
