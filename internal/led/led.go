// Package led maps motor states onto the RGB status LED.
package led

import (
	"sync"

	"github.com/sweeney/motor-sensor/internal/logic"
)

// Color is the on/off setting of each LED die.
type Color struct {
	R bool
	G bool
	B bool
}

// Named colors used by the status LED.
var (
	Dark   = Color{}
	Green  = Color{G: true}
	Yellow = Color{R: true, G: true}
	Red    = Color{R: true}
)

// ForState returns the LED color for a motor state.
func ForState(s logic.MotorState) Color {
	switch s {
	case logic.StateMoving:
		return Green
	case logic.StateStopped:
		return Yellow
	case logic.StateIdle:
		return Red
	default:
		return Dark
	}
}

// Driver sets the physical LED.
type Driver interface {
	Set(c Color) error
}

// Fake records every color set, for test assertions.
type Fake struct {
	mu     sync.Mutex
	colors []Color

	// SetError, if set, will be returned by Set.
	SetError error
}

// Set records c.
func (f *Fake) Set(c Color) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.mu.Lock()
	f.colors = append(f.colors, c)
	f.mu.Unlock()
	return nil
}

// Colors returns a copy of the recorded colors.
func (f *Fake) Colors() []Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Color, len(f.colors))
	copy(out, f.colors)
	return out
}

// Last returns the most recent color, or Dark if none was set.
func (f *Fake) Last() Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.colors) == 0 {
		return Dark
	}
	return f.colors[len(f.colors)-1]
}
