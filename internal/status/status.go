// Package status provides a thread-safe status tracker for the motor-sensor daemon.
// It is read by HTTP handlers, the websocket hub and the heartbeat publisher.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/motor-sensor/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs        int64
	DebounceMs    int64
	IdleTimeoutMs int64
	HeartbeatMs   int64
	Broker        string
	HTTPPort      string
	WSBroker      string // Websocket broker URL for browser MQTT (empty = disabled)
	Tone          string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Motor         logic.Snapshot
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTBuffered  int
	MQTTDropped   int
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Consumption is the movement counter expressed in litres, one per second
// of movement.
func (s Snapshot) Consumption() float64 {
	return s.Motor.Movement.Seconds()
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Motor:     logic.Snapshot{State: logic.StateOff},
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the latest machine snapshot and reports whether it differs
// from the previous one. Called by the polling loop on every tick.
func (t *Tracker) Update(motor logic.Snapshot) bool {
	t.mu.Lock()
	changed := t.snap.Motor != motor
	t.snap.Motor = motor
	t.mu.Unlock()
	return changed
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTPending records the publisher's offline buffer depth.
func (t *Tracker) SetMQTTPending(buffered, dropped int) {
	t.mu.Lock()
	t.snap.MQTTBuffered = buffered
	t.snap.MQTTDropped = dropped
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
