package logic

import (
	"sync"
	"time"
)

// Config holds the timing and classification parameters of a Machine.
type Config struct {
	// TickPeriod is credited to the movement counter per moving tick.
	TickPeriod time.Duration
	// IdleTimeout is how long the motor may stay stopped before idling.
	IdleTimeout time.Duration
	// IdleCredit is added to the idle counter each time an alert fires.
	IdleCredit time.Duration
	// Debounce is the per-button quiet window.
	Debounce time.Duration
	// Band classifies samples as stationary.
	Band Band
}

// DefaultConfig returns the stock parameters: 100ms ticks, 10s idle timeout,
// 300ms idle credit per alert, 200ms debounce and DefaultBand.
func DefaultConfig() Config {
	return Config{
		TickPeriod:  100 * time.Millisecond,
		IdleTimeout: 10 * time.Second,
		IdleCredit:  300 * time.Millisecond,
		Debounce:    200 * time.Millisecond,
		Band:        DefaultBand,
	}
}

// Machine tracks the motor state and its counters.
//
// State, the idle reference and the counters form one shared region: button
// edges arrive from GPIO event goroutines while ticks arrive from the polling
// loop. Every exported method runs its whole transition under mu.
type Machine struct {
	mu        sync.Mutex
	cfg       Config
	debounce  *Debouncer
	state     MotorState
	reference time.Time // start of the current stationary stretch
	counters  Counters
}

// NewMachine creates a Machine in the Off state.
func NewMachine(cfg Config) *Machine {
	return &Machine{
		cfg:      cfg,
		debounce: NewDebouncer(cfg.Debounce),
		state:    StateOff,
	}
}

// Press applies a button edge. Edges rejected by the debouncer and edges
// from unknown buttons produce no events and change nothing.
func (m *Machine) Press(edge ButtonEdge) []Event {
	if !edge.Button.Valid() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.debounce.Accept(edge.Button, edge.Time) {
		return nil
	}

	switch edge.Button {
	case ButtonPower:
		return m.togglePower(edge.Time)
	case ButtonTripClose:
		return m.closeTrip(edge.Time)
	}
	return nil
}

func (m *Machine) togglePower(now time.Time) []Event {
	if m.state == StateOff {
		m.state = StateStopped
		m.reference = now
		return []Event{m.event(EventPowerOn, now)}
	}
	m.state = StateOff
	return []Event{m.event(EventPowerOff, now)}
}

// closeTrip is applied in every state, Off included.
func (m *Machine) closeTrip(now time.Time) []Event {
	m.counters.Trips++
	trip := &Trip{
		Count:    m.counters.Trips,
		Movement: m.counters.Movement,
		Idle:     m.counters.Idle,
		Time:     now,
	}
	m.counters.Movement = 0
	m.counters.Idle = 0

	e := m.event(EventTrip, now)
	e.Trip = trip
	return []Event{e}
}

// Tick applies one classified sensor sample taken at now. Ticks while the
// motor is off are ignored; callers should skip the sensor read entirely
// when Powered reports false.
func (m *Machine) Tick(sample Sample, now time.Time) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateOff {
		return nil
	}

	if !m.cfg.Band.Stationary(sample) {
		m.counters.Movement += m.cfg.TickPeriod
		if m.state == StateMoving {
			return nil
		}
		m.state = StateMoving
		return []Event{m.event(EventMoving, now)}
	}

	switch m.state {
	case StateMoving:
		m.state = StateStopped
		m.reference = now
		return []Event{m.event(EventStopped, now)}

	case StateStopped, StateIdle:
		if now.Sub(m.reference) < m.cfg.IdleTimeout {
			return nil
		}
		// The alert re-fires on every tick for as long as the timeout holds.
		var events []Event
		entered := m.state == StateStopped
		m.state = StateIdle
		m.counters.Idle += m.cfg.IdleCredit
		if entered {
			events = append(events, m.event(EventIdle, now))
		}
		return append(events, m.event(EventAlert, now))
	}
	return nil
}

// Powered reports whether the motor is on, i.e. whether the next tick
// needs a sensor sample.
func (m *Machine) Powered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.On()
}

// Snapshot returns a copy of the current state and counters.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// IdleReference returns the time the current stationary stretch began.
func (m *Machine) IdleReference() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reference
}

// Config returns the parameters the machine was built with.
func (m *Machine) Config() Config {
	return m.cfg
}

func (m *Machine) snapshot() Snapshot {
	return Snapshot{State: m.state, Counters: m.counters}
}

func (m *Machine) event(t EventType, now time.Time) Event {
	return Event{Timestamp: now, Type: t, Snapshot: m.snapshot()}
}
