// Command motor-sensor tracks motor activity from a two-axis position sensor
// and two push buttons, drives the status LED and idle buzzer, and publishes
// state changes and trip records to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/motor-sensor/internal/adc"
	"github.com/sweeney/motor-sensor/internal/alert"
	"github.com/sweeney/motor-sensor/internal/config"
	"github.com/sweeney/motor-sensor/internal/gpio"
	"github.com/sweeney/motor-sensor/internal/logic"
	"github.com/sweeney/motor-sensor/internal/mqtt"
	"github.com/sweeney/motor-sensor/internal/status"
	"github.com/sweeney/motor-sensor/internal/web"
)

// pressedBuffer is how many button transitions may queue for the loop.
const pressedBuffer = 16

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	printState := flag.Bool("print-state", false, "Print one sensor sample and its classification, then exit")
	fv := registerFlags(flag.CommandLine, config.Default())

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	fv.apply(flag.CommandLine, &cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: invalid config: %v", err)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// flagValues holds the command-line overrides. Only flags the user actually
// set are applied, so file and environment values survive unset flags.
type flagValues struct {
	poll        *time.Duration
	debounce    *time.Duration
	idleTimeout *time.Duration
	broker      *string
	heartbeat   *time.Duration
	httpAddr    *string
	wsBroker    *string
	tone        *string
	pinPower    *int
	pinTrip     *int
}

func registerFlags(fs *flag.FlagSet, def config.Config) *flagValues {
	return &flagValues{
		poll:        fs.Duration("poll", def.Poll, "Sensor polling interval (one tick)"),
		debounce:    fs.Duration("debounce", def.Debounce, "Button debounce window"),
		idleTimeout: fs.Duration("idle-timeout", def.IdleTimeout, "Stationary time before the idle alert"),
		broker:      fs.String("broker", def.Broker, "MQTT broker address"),
		heartbeat:   fs.Duration("heartbeat", def.Heartbeat, "Heartbeat interval (0 to disable)"),
		httpAddr:    fs.String("http", def.HTTPAddr, "HTTP status address (empty to disable)"),
		wsBroker:    fs.String("ws-broker", def.WSBroker, `MQTT websocket URL shown on the status page ("=broker" derives from --broker, "off" disables)`),
		tone:        fs.String("tone", def.Tone, "Idle alert backend: gpio, speaker or none"),
		pinPower:    fs.Int("pin-power", def.PinPower, "GPIO line for the power button"),
		pinTrip:     fs.Int("pin-trip", def.PinTrip, "GPIO line for the trip-close button"),
	}
}

func (fv *flagValues) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "poll":
			cfg.Poll = *fv.poll
		case "debounce":
			cfg.Debounce = *fv.debounce
		case "idle-timeout":
			cfg.IdleTimeout = *fv.idleTimeout
		case "broker":
			cfg.Broker = *fv.broker
		case "heartbeat":
			cfg.Heartbeat = *fv.heartbeat
		case "http":
			cfg.HTTPAddr = *fv.httpAddr
		case "ws-broker":
			cfg.WSBroker = *fv.wsBroker
		case "tone":
			cfg.Tone = *fv.tone
		case "pin-power":
			cfg.PinPower = *fv.pinPower
		case "pin-trip":
			cfg.PinTrip = *fv.pinTrip
		}
	})
}

func run(cfg config.Config, printState bool) error {
	// Initialize the position sensor
	sensor, err := adc.NewIIOReader(cfg.IIODir, cfg.ADCDevice, cfg.ADCX, cfg.ADCY)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}
	defer sensor.Close()

	machineCfg := cfg.Machine()

	// Print state mode
	if printState {
		sample, err := sensor.Read()
		if err != nil {
			return fmt.Errorf("read adc: %w", err)
		}
		fmt.Println(describeSample(sample, machineCfg.Band))
		return nil
	}

	machine := logic.NewMachine(machineCfg)
	pressed := make(chan []logic.Event, pressedBuffer)

	board, err := gpio.Open(cfg.Chip, cfg.Pins(), pressHandler(machine, pressed), time.Now)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer board.Close()

	tones, closeTones, err := toneBackend(cfg.Tone, board)
	if err != nil {
		return fmt.Errorf("init tone: %w", err)
	}
	defer closeTones()

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(cfg.Broker)
	defer publisher.Close()

	wsBroker := resolveWSBroker(cfg.WSBroker, cfg.Broker)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:        cfg.Poll.Milliseconds(),
		DebounceMs:    cfg.Debounce.Milliseconds(),
		IdleTimeoutMs: cfg.IdleTimeout.Milliseconds(),
		HeartbeatMs:   cfg.Heartbeat.Milliseconds(),
		Broker:        cfg.Broker,
		HTTPPort:      cfg.HTTPAddr,
		WSBroker:      wsBroker,
		Tone:          cfg.Tone,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	var live notifier
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		live = srv
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: poll=%v debounce=%v idle_timeout=%v band=%d..%d broker=%s heartbeat=%v tone=%s",
		cfg.Poll, cfg.Debounce, cfg.IdleTimeout, cfg.BandMin, cfg.BandMax, cfg.Broker, cfg.Heartbeat, cfg.Tone)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop{
		machine:    machine,
		sensor:     sensor,
		pressed:    pressed,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		leds:       board,
		alerter:    alert.NewSequencer(tones),
		notifier:   live,
		heartbeat:  cfg.Heartbeat,
		now:        time.Now,
	}
	return l.run(ticker.C, sigCh)
}

// pressHandler applies a button edge to the machine on the caller's
// goroutine and queues any resulting events for the loop. It never blocks
// the GPIO event goroutine.
func pressHandler(machine *logic.Machine, pressed chan<- []logic.Event) gpio.EdgeHandler {
	return func(edge logic.ButtonEdge) {
		events := machine.Press(edge)
		if len(events) == 0 {
			return
		}
		select {
		case pressed <- events:
		default:
			log.Printf("button events dropped, loop busy: %d", len(events))
		}
	}
}

// toneBackend picks the idle alert output.
func toneBackend(name string, board *gpio.Board) (alert.ToneGenerator, func(), error) {
	switch name {
	case config.ToneSpeaker:
		sp, err := alert.NewSpeaker()
		if err != nil {
			return nil, nil, err
		}
		return sp, func() { sp.Close() }, nil
	case config.ToneNone:
		return alert.Silent{}, func() {}, nil
	default:
		return board, func() {}, nil
	}
}

// describeSample renders a sample and its classification for --print-state.
func describeSample(s logic.Sample, band logic.Band) string {
	class := "MOVING"
	if band.Stationary(s) {
		class = "STATIONARY"
	}
	return fmt.Sprintf("X: %d, Y: %d, %s", s.X, s.Y, class)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
