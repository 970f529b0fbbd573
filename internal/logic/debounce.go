package logic

import (
	"sync"
	"time"
)

// Debouncer drops button edges that follow the last accepted edge on the
// same button too closely. Safe for concurrent use.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	last   map[ButtonID]time.Time
}

// NewDebouncer creates a Debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		last:   make(map[ButtonID]time.Time),
	}
}

// Accept reports whether an edge on button at now should be acted on.
// An edge is accepted when more than the window has passed since the last
// accepted edge for that button (the first edge on a button is always
// accepted). Rejected edges leave the state untouched, so a long burst of
// bounces cannot keep pushing the window forward.
func (d *Debouncer) Accept(button ButtonID, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	// A clock that went backwards yields a negative delta and is rejected.
	if last, ok := d.last[button]; ok && now.Sub(last) <= d.window {
		return false
	}
	d.last[button] = now
	return true
}

// LastAccepted returns the time of the last accepted edge for button.
func (d *Debouncer) LastAccepted(button ButtonID) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.last[button]
	return t, ok
}
