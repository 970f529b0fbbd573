package gpio

import (
	"sync"
	"time"

	"github.com/sweeney/motor-sensor/internal/logic"
)

// FakeButtons is a test double for the button lines. It hands scripted
// edges to the handler the same way the GPIO event goroutine would.
type FakeButtons struct {
	handler EdgeHandler

	mu        sync.Mutex
	delivered []logic.ButtonEdge
}

// NewFakeButtons creates FakeButtons that deliver to handler.
func NewFakeButtons(handler EdgeHandler) *FakeButtons {
	return &FakeButtons{handler: handler}
}

// Press delivers a single edge.
func (f *FakeButtons) Press(button logic.ButtonID, at time.Time) {
	edge := logic.ButtonEdge{Button: button, Time: at}
	f.mu.Lock()
	f.delivered = append(f.delivered, edge)
	f.mu.Unlock()
	f.handler(edge)
}

// Bounce delivers n edges gap apart, starting at at, the way a worn
// contact chatters on a single press.
func (f *FakeButtons) Bounce(button logic.ButtonID, at time.Time, n int, gap time.Duration) {
	for i := 0; i < n; i++ {
		f.Press(button, at.Add(time.Duration(i)*gap))
	}
}

// Delivered returns a copy of every edge handed to the handler.
func (f *FakeButtons) Delivered() []logic.ButtonEdge {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]logic.ButtonEdge, len(f.delivered))
	copy(out, f.delivered)
	return out
}
