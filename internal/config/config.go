// Package config loads daemon settings from defaults, an optional YAML file
// and MOTOR_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v2"

	"github.com/sweeney/motor-sensor/internal/adc"
	"github.com/sweeney/motor-sensor/internal/gpio"
	"github.com/sweeney/motor-sensor/internal/logic"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "MOTOR_"

// Tone backends.
const (
	ToneGPIO    = "gpio"
	ToneSpeaker = "speaker"
	ToneNone    = "none"
)

// Config contains every tunable of the daemon.
type Config struct {
	Poll        time.Duration `yaml:"poll" env:"POLL"`
	Debounce    time.Duration `yaml:"debounce" env:"DEBOUNCE"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	IdleCredit  time.Duration `yaml:"idle_credit" env:"IDLE_CREDIT"`
	BandMin     uint16        `yaml:"band_min" env:"BAND_MIN"`
	BandMax     uint16        `yaml:"band_max" env:"BAND_MAX"`

	Broker    string        `yaml:"broker" env:"BROKER"`
	Heartbeat time.Duration `yaml:"heartbeat" env:"HEARTBEAT"`
	HTTPAddr  string        `yaml:"http" env:"HTTP"`
	WSBroker  string        `yaml:"ws_broker" env:"WS_BROKER"`

	Chip       string `yaml:"chip" env:"CHIP"`
	PinPower   int    `yaml:"pin_power" env:"PIN_POWER"`
	PinTrip    int    `yaml:"pin_trip" env:"PIN_TRIP"`
	PinBuzzer  int    `yaml:"pin_buzzer" env:"PIN_BUZZER"`
	PinLEDR    int    `yaml:"pin_led_r" env:"PIN_LED_R"`
	PinLEDG    int    `yaml:"pin_led_g" env:"PIN_LED_G"`
	PinLEDB    int    `yaml:"pin_led_b" env:"PIN_LED_B"`
	Tone       string `yaml:"tone" env:"TONE"`

	IIODir    string `yaml:"iio_dir" env:"IIO_DIR"`
	ADCDevice string `yaml:"adc_device" env:"ADC_DEVICE"`
	ADCX      int    `yaml:"adc_x" env:"ADC_X"`
	ADCY      int    `yaml:"adc_y" env:"ADC_Y"`
}

// Default returns the stock configuration.
func Default() Config {
	mc := logic.DefaultConfig()
	pins := gpio.DefaultPins()
	return Config{
		Poll:        mc.TickPeriod,
		Debounce:    mc.Debounce,
		IdleTimeout: mc.IdleTimeout,
		IdleCredit:  mc.IdleCredit,
		BandMin:     mc.Band.Min,
		BandMax:     mc.Band.Max,

		Broker:    "tcp://192.168.1.200:1883",
		Heartbeat: 15 * time.Minute,
		HTTPAddr:  ":80",
		WSBroker:  "=broker",

		Chip:       gpio.DefaultChip,
		PinPower:   pins.Power,
		PinTrip:    pins.Trip,
		PinBuzzer:  pins.Buzzer,
		PinLEDR:    pins.LEDR,
		PinLEDG:    pins.LEDG,
		PinLEDB:    pins.LEDB,
		Tone:       ToneGPIO,

		IIODir:    adc.DefaultIIODir,
		ADCDevice: adc.DefaultDevice,
		ADCX:      adc.DefaultChannelX,
		ADCY:      adc.DefaultChannelY,
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := env.Parse(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

// Parse overlays YAML data onto cfg. Keys absent from data keep their
// current values.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate reports every setting that cannot work, joined into one error.
func (c Config) Validate() error {
	var errs []error
	if c.Poll <= 0 {
		errs = append(errs, fmt.Errorf("poll must be positive, got %v", c.Poll))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %v", c.Debounce))
	}
	if c.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("idle_timeout must be positive, got %v", c.IdleTimeout))
	}
	if c.IdleCredit < 0 {
		errs = append(errs, fmt.Errorf("idle_credit must not be negative, got %v", c.IdleCredit))
	}
	if c.BandMin >= c.BandMax {
		errs = append(errs, fmt.Errorf("band_min (%d) must be below band_max (%d)", c.BandMin, c.BandMax))
	}
	if c.BandMax > logic.SampleMax+1 {
		errs = append(errs, fmt.Errorf("band_max (%d) beyond the 12-bit range", c.BandMax))
	}
	switch c.Tone {
	case ToneGPIO, ToneSpeaker, ToneNone:
	default:
		errs = append(errs, fmt.Errorf("tone must be %s, %s or %s, got %q", ToneGPIO, ToneSpeaker, ToneNone, c.Tone))
	}
	if err := c.Pins().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Machine returns the state machine parameters.
func (c Config) Machine() logic.Config {
	return logic.Config{
		TickPeriod:  c.Poll,
		IdleTimeout: c.IdleTimeout,
		IdleCredit:  c.IdleCredit,
		Debounce:    c.Debounce,
		Band:        logic.Band{Min: c.BandMin, Max: c.BandMax},
	}
}

// Pins returns the GPIO wiring.
func (c Config) Pins() gpio.Pins {
	return gpio.Pins{
		Power:   c.PinPower,
		Trip:    c.PinTrip,
		Buzzer:  c.PinBuzzer,
		LEDR:    c.PinLEDR,
		LEDG:    c.PinLEDG,
		LEDB:    c.PinLEDB,
	}
}
