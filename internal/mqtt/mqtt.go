// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/motor-sensor/internal/logic"
)

// Topic is the MQTT topic for motor events.
const Topic = "vehicle/motor/sensor/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "vehicle/motor/sensor/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a motor event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Motor MotorPayload `json:"motor"`
}

// MotorPayload contains the motor event details.
type MotorPayload struct {
	Timestamp  string       `json:"timestamp"`
	Event      string       `json:"event"`
	State      string       `json:"state"`
	MovementMs int64        `json:"movement_ms"`
	IdleMs     int64        `json:"idle_ms"`
	Trips      int          `json:"trips"`
	Trip       *TripPayload `json:"trip,omitempty"`
}

// TripPayload is the trip log record carried by TRIP_CLOSED events.
type TripPayload struct {
	Count      int   `json:"count"`
	MovementMs int64 `json:"movement_ms"`
	IdleMs     int64 `json:"idle_ms"`
}

// FormatPayload creates the JSON payload for a motor event.
func FormatPayload(event logic.Event) ([]byte, error) {
	snap := event.Snapshot
	payload := Payload{
		Motor: MotorPayload{
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339),
			Event:      string(event.Type),
			State:      string(snap.State),
			MovementMs: snap.Movement.Milliseconds(),
			IdleMs:     snap.Idle.Milliseconds(),
			Trips:      snap.Trips,
		},
	}
	if event.Trip != nil {
		payload.Motor.Trip = &TripPayload{
			Count:      event.Trip.Count,
			MovementMs: event.Trip.Movement.Milliseconds(),
			IdleMs:     event.Trip.Idle.Milliseconds(),
		}
	}
	return json.Marshal(payload)
}

// qosFor returns the delivery guarantee for an event. Trip records are the
// trip log and are sent at-least-once; state changes are superseded by the
// next one and go at-most-once.
func qosFor(event logic.Event) byte {
	if event.Type == logic.EventTrip {
		return 1
	}
	return 0
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
