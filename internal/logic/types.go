// Package logic contains the motor activity state machine and the pure
// classification and debounce rules that feed it.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// MotorState represents the operating state of the motor.
type MotorState string

const (
	StateOff     MotorState = "OFF"
	StateMoving  MotorState = "MOVING"
	StateStopped MotorState = "STOPPED"
	StateIdle    MotorState = "IDLE"
)

// On reports whether the motor is powered (any state other than Off).
func (s MotorState) On() bool {
	switch s {
	case StateMoving, StateStopped, StateIdle:
		return true
	default:
		return false
	}
}

// ButtonID identifies one of the two physical push buttons.
type ButtonID string

const (
	ButtonPower     ButtonID = "POWER"
	ButtonTripClose ButtonID = "TRIP_CLOSE"
)

// Valid reports whether b names a known button.
func (b ButtonID) Valid() bool {
	return b == ButtonPower || b == ButtonTripClose
}

// ButtonEdge is a single rising edge delivered by the button hardware.
type ButtonEdge struct {
	Button ButtonID
	Time   time.Time
}

// SampleMax is the largest reading a 12-bit analog input can produce.
const SampleMax = 4095

// Sample is a raw two-axis reading from the positional sensor.
type Sample struct {
	X uint16
	Y uint16
}

// EventType represents something the state machine did.
type EventType string

const (
	EventPowerOn  EventType = "POWER_ON"
	EventPowerOff EventType = "POWER_OFF"
	EventMoving   EventType = "MOVING"
	EventStopped  EventType = "STOPPED"
	EventIdle     EventType = "IDLE"
	EventAlert    EventType = "IDLE_ALERT"
	EventTrip     EventType = "TRIP_CLOSED"
)

// Counters are the operational metrics owned by the machine.
type Counters struct {
	// Movement accumulates one tick period per tick classified as moving.
	Movement time.Duration
	// Idle accumulates a fixed credit per idle alert, not elapsed time.
	Idle time.Duration
	// Trips is the number of closed trips. Never decremented.
	Trips int
}

// Snapshot is a read-only view of the machine. It is a value type,
// so consumers cannot mutate machine state through it.
type Snapshot struct {
	State MotorState
	Counters
}

// Trip is the record emitted when a trip is closed. Movement and Idle hold
// the accumulator values at the moment of closing, before they are reset.
type Trip struct {
	Count    int
	Movement time.Duration
	Idle     time.Duration
	Time     time.Time
}

// Event represents a transition or side effect to be logged and published.
// Snapshot reflects the machine after the event was applied.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Snapshot  Snapshot
	Trip      *Trip // set for EventTrip only
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Snapshot  Snapshot
}
