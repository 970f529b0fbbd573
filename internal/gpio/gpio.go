// Package gpio provides button, LED and buzzer access with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"

	"github.com/sweeney/motor-sensor/internal/logic"
)

// EdgeHandler receives raw button edges. It is called from the GPIO event
// goroutine, so it must not block.
type EdgeHandler func(logic.ButtonEdge)

// DefaultChip is the GPIO character device used when none is configured.
const DefaultChip = "gpiochip0"

// Default pin definitions (BCM numbering)
const (
	DefaultPinPower   = 5  // button A
	DefaultPinTrip    = 6  // button B
	DefaultPinBuzzer  = 10 // alert buzzer
	DefaultPinLEDR    = 13
	DefaultPinLEDG    = 11
	DefaultPinLEDB    = 12
)

// Pins is the board wiring.
type Pins struct {
	Power   int
	Trip    int
	Buzzer  int
	LEDR    int
	LEDG    int
	LEDB    int
}

// DefaultPins returns the stock wiring.
func DefaultPins() Pins {
	return Pins{
		Power:   DefaultPinPower,
		Trip:    DefaultPinTrip,
		Buzzer:  DefaultPinBuzzer,
		LEDR:    DefaultPinLEDR,
		LEDG:    DefaultPinLEDG,
		LEDB:    DefaultPinLEDB,
	}
}

// Validate checks that every pin is non-negative and used once.
func (p Pins) Validate() error {
	named := []struct {
		name string
		pin  int
	}{
		{"power", p.Power},
		{"trip", p.Trip},
		{"buzzer", p.Buzzer},
		{"led-r", p.LEDR},
		{"led-g", p.LEDG},
		{"led-b", p.LEDB},
	}
	seen := make(map[int]string, len(named))
	for _, n := range named {
		if n.pin < 0 {
			return fmt.Errorf("pin %s: invalid number %d", n.name, n.pin)
		}
		if other, ok := seen[n.pin]; ok {
			return fmt.Errorf("pin %d used for both %s and %s", n.pin, other, n.name)
		}
		seen[n.pin] = n.name
	}
	return nil
}
