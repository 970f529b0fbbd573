package main

import (
	"context"
	"errors"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/motor-sensor/internal/adc"
	"github.com/sweeney/motor-sensor/internal/alert"
	"github.com/sweeney/motor-sensor/internal/led"
	"github.com/sweeney/motor-sensor/internal/logic"
	"github.com/sweeney/motor-sensor/internal/mqtt"
	"github.com/sweeney/motor-sensor/internal/status"
)

// notifier is told after every tick that the tracker may have changed.
type notifier interface {
	Notify()
}

// pendingReporter is implemented by publishers that buffer while offline.
type pendingReporter interface {
	Pending() (buffered, dropped int)
}

// loop owns the polling cycle. Button edges are applied to the machine on
// the GPIO goroutines; their events arrive here on pressed for logging and
// publishing. Everything else happens on the run goroutine.
type loop struct {
	machine    *logic.Machine
	sensor     adc.Reader
	pressed    <-chan []logic.Event
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	leds       led.Driver
	alerter    *alert.Sequencer
	notifier   notifier
	heartbeat  time.Duration
	now        func() time.Time

	ctx      context.Context
	hb       *logic.Heartbeat
	lastLED  led.Color
	ledKnown bool
}

func (l *loop) run(tick <-chan time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.ctx = ctx
	l.hb = logic.NewHeartbeat(l.now())
	l.present()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			cancel()
			l.drainPressed()
			l.shutdown(s)
			return nil

		case events := <-l.pressed:
			l.handle(events)
			l.present()

		case <-tick:
			// Edges that arrived before this tick are reported first.
			l.drainPressed()

			t := l.now()
			if l.machine.Powered() {
				sample, err := l.sensor.Read()
				if err != nil {
					log.Printf("adc read error: %v", err)
				} else {
					l.handle(l.machine.Tick(sample, t))
				}
			}

			if hbData := l.hb.Check(t, l.heartbeat, l.machine.Snapshot()); hbData != nil {
				l.publishHeartbeat(hbData)
			}

			l.present()
		}
	}
}

func (l *loop) drainPressed() {
	for {
		select {
		case events := <-l.pressed:
			l.handle(events)
		default:
			return
		}
	}
}

// handle logs and publishes events, and sounds the buzzer for idle alerts.
func (l *loop) handle(events []logic.Event) {
	for _, event := range events {
		snap := event.Snapshot
		log.Printf("event: %s (state=%s movement=%v idle=%v trips=%d)",
			event.Type, snap.State, snap.Movement, snap.Idle, snap.Trips)
		if event.Trip != nil {
			log.Printf("trip: #%d movement=%v idle=%v", event.Trip.Count, event.Trip.Movement, event.Trip.Idle)
		}

		if err := l.publisher.Publish(event); err != nil {
			log.Printf("publish error: %v", err)
			// Don't crash on publish failure
		}

		if event.Type == logic.EventAlert {
			l.soundAlert()
		}
	}
}

// soundAlert plays the idle pattern on the loop goroutine. The tick that
// raised the alert lasts for the whole pattern, so the next tick (and the
// next idle credit) comes only after the buzzer has finished.
func (l *loop) soundAlert() {
	if l.alerter == nil {
		return
	}
	err := l.alerter.Play(l.ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("alert error: %v", err)
	}
}

func (l *loop) publishHeartbeat(hbData *logic.HeartbeatData) {
	snap := hbData.Snapshot
	log.Printf("heartbeat: uptime=%v state=%s movement=%v idle=%v trips=%d",
		hbData.Uptime, snap.State, snap.Movement, snap.Idle, snap.Trips)

	hbEvent := mqtt.SystemEvent{
		Timestamp: hbData.Timestamp,
		Event:     "HEARTBEAT",
	}
	if l.tracker != nil {
		l.refreshConnection()
		// Refresh network info for heartbeat
		if net := readNetworkInfo(); net != nil {
			l.tracker.SetNetwork(net)
		}
		l.tracker.Update(snap)
		hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
	}
	if err := l.publisher.PublishSystem(hbEvent); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

// present pushes the machine snapshot to the tracker, LED and web clients.
func (l *loop) present() {
	snap := l.machine.Snapshot()

	if l.tracker != nil {
		l.tracker.Update(snap)
		l.refreshConnection()
	}

	if l.leds != nil {
		c := led.ForState(snap.State)
		if !l.ledKnown || c != l.lastLED {
			if err := l.leds.Set(c); err != nil {
				log.Printf("led error: %v", err)
			} else {
				l.lastLED = c
				l.ledKnown = true
			}
		}
	}

	if l.notifier != nil {
		l.notifier.Notify()
	}
}

func (l *loop) refreshConnection() {
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
	if p, ok := l.publisher.(pendingReporter); ok {
		l.tracker.SetMQTTPending(p.Pending())
	}
}

func (l *loop) shutdown(s os.Signal) {
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}

	if l.leds != nil {
		if err := l.leds.Set(led.Dark); err != nil {
			log.Printf("led error: %v", err)
		}
	}

	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if l.tracker != nil {
		l.tracker.Update(l.machine.Snapshot())
		l.refreshConnection()
		event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", signalName)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}
