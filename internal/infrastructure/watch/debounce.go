// Package watch re-evaluates tracked files when they change on disk.
package watch

import (
	"sort"
	"sync"
	"time"
)

// Debouncer coalesces rapid change events into a single callback invocation
// carrying the latest event per path.
type Debouncer struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	pending  map[string]ChangeEvent
	callback func([]ChangeEvent)
}

// NewDebouncer creates a debouncer with the given window duration.
func NewDebouncer(window time.Duration, callback func([]ChangeEvent)) *Debouncer {
	return &Debouncer{
		window:   window,
		pending:  make(map[string]ChangeEvent),
		callback: callback,
	}
}

// Trigger records ev and resets the timer. The callback fires once the window
// elapses with no further triggers.
func (d *Debouncer) Trigger(ev ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[ev.Path] = ev
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	batch := make([]ChangeEvent, 0, len(d.pending))
	for _, ev := range d.pending {
		batch = append(batch, ev)
	}
	d.pending = make(map[string]ChangeEvent)
	d.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	d.callback(batch)
}

// Stop cancels any pending callback and drops queued events.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = make(map[string]ChangeEvent)
}
