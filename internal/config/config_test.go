package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/sweeney/motor-sensor/internal/logic"
)

const testYaml = `
poll: 50ms
idle_timeout: 30s
band_min: 1900
band_max: 2300
broker: tcp://10.0.0.5:1883
tone: none
pin_power: 17
`

func TestDefaults(t *testing.T) {
	Convey("default config", t, func() {
		cfg := Default()

		So(cfg.Validate(), ShouldBeNil)

		Convey("matches the stock machine parameters", func() {
			So(cfg.Machine(), ShouldResemble, logic.DefaultConfig())
		})
	})
}

func TestConfigParsing(t *testing.T) {
	Convey("parsing is successful", t, func() {
		cfg := Default()
		err := Parse([]byte(testYaml), &cfg)
		So(err, ShouldBeNil)

		Convey("durations are parsed", func() {
			So(cfg.Poll, ShouldEqual, 50*time.Millisecond)
			So(cfg.IdleTimeout, ShouldEqual, 30*time.Second)
		})

		Convey("band is set", func() {
			So(cfg.Machine().Band, ShouldResemble, logic.Band{Min: 1900, Max: 2300})
		})

		Convey("unset keys keep defaults", func() {
			So(cfg.Debounce, ShouldEqual, 200*time.Millisecond)
			So(cfg.PinTrip, ShouldEqual, Default().PinTrip)
		})

		Convey("pins are overridden", func() {
			So(cfg.Pins().Power, ShouldEqual, 17)
		})
	})

	Convey("unknown keys are rejected", t, func() {
		cfg := Default()
		err := Parse([]byte("polling: 5s\n"), &cfg)
		So(err, ShouldNotBeNil)
	})
}

func TestLoad(t *testing.T) {
	Convey("loading from file and environment", t, func() {
		path := filepath.Join(t.TempDir(), "motor.yaml")
		So(os.WriteFile(path, []byte(testYaml), 0o644), ShouldBeNil)

		Convey("file values apply", func() {
			cfg, err := Load(path)
			So(err, ShouldBeNil)
			So(cfg.Broker, ShouldEqual, "tcp://10.0.0.5:1883")
			So(cfg.Tone, ShouldEqual, ToneNone)
		})

		Convey("environment overrides the file", func() {
			setenv("MOTOR_BROKER", "tcp://broker:1883")
			setenv("MOTOR_IDLE_TIMEOUT", "5s")

			cfg, err := Load(path)
			So(err, ShouldBeNil)
			So(cfg.Broker, ShouldEqual, "tcp://broker:1883")
			So(cfg.IdleTimeout, ShouldEqual, 5*time.Second)
			So(cfg.Poll, ShouldEqual, 50*time.Millisecond)
		})

		Convey("a bad environment value fails", func() {
			setenv("MOTOR_POLL", "soon")

			_, err := Load(path)
			So(err, ShouldNotBeNil)
		})

		Convey("a missing file fails", func() {
			_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
			So(err, ShouldNotBeNil)
		})
	})

	Convey("no file means defaults", t, func() {
		cfg, err := Load("")
		So(err, ShouldBeNil)
		So(cfg.Poll, ShouldEqual, 100*time.Millisecond)
	})
}

func TestValidate(t *testing.T) {
	Convey("invalid settings are reported", t, func() {
		cases := []struct {
			name   string
			modify func(c *Config)
		}{
			{"zero poll", func(c *Config) { c.Poll = 0 }},
			{"negative debounce", func(c *Config) { c.Debounce = -time.Millisecond }},
			{"zero idle timeout", func(c *Config) { c.IdleTimeout = 0 }},
			{"negative credit", func(c *Config) { c.IdleCredit = -time.Second }},
			{"empty band", func(c *Config) { c.BandMin = 2200; c.BandMax = 2200 }},
			{"band beyond 12bit", func(c *Config) { c.BandMax = 5000 }},
			{"unknown tone", func(c *Config) { c.Tone = "trumpet" }},
			{"duplicate pins", func(c *Config) { c.PinLEDG = c.PinLEDR }},
		}

		for _, tc := range cases {
			tc := tc
			Convey(tc.name, func() {
				cfg := Default()
				tc.modify(&cfg)
				So(cfg.Validate(), ShouldNotBeNil)
			})
		}
	})

	Convey("every problem is reported at once", t, func() {
		cfg := Default()
		cfg.Poll = 0
		cfg.Tone = "trumpet"
		cfg.PinLEDG = cfg.PinLEDR

		err := cfg.Validate()
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "poll must be positive")
		So(err.Error(), ShouldContainSubstring, "tone must be")
		So(err.Error(), ShouldContainSubstring, "used for both")
	})
}

// setenv sets an environment variable for the current Convey leaf only.
func setenv(key, value string) {
	os.Setenv(key, value)
	Reset(func() { os.Unsetenv(key) })
}
