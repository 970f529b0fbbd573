//go:build linux

package gpio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/motor-sensor/internal/alert"
	"github.com/sweeney/motor-sensor/internal/led"
	"github.com/sweeney/motor-sensor/internal/logic"
)

// Board drives the buttons, RGB LED and alert buzzer through the Linux GPIO
// character device. It implements led.Driver and alert.ToneGenerator.
type Board struct {
	chip    *gpiocdev.Chip
	buttons []*gpiocdev.Line
	leds    *gpiocdev.Lines
	buzzers map[alert.Channel]*gpiocdev.Line

	toneMu sync.Mutex
}

// Open requests all lines on chipName. Button lines are inputs with pull-up
// and rising-edge detection; each edge is passed to onEdge stamped with now().
func Open(chipName string, pins Pins, onEdge EdgeHandler, now func() time.Time) (*Board, error) {
	if err := pins.Validate(); err != nil {
		return nil, err
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	b := &Board{chip: chip, buzzers: make(map[alert.Channel]*gpiocdev.Line)}

	buttonFor := map[int]logic.ButtonID{
		pins.Power: logic.ButtonPower,
		pins.Trip:  logic.ButtonTripClose,
	}
	handler := func(evt gpiocdev.LineEvent) {
		if id, ok := buttonFor[evt.Offset]; ok {
			onEdge(logic.ButtonEdge{Button: id, Time: now()})
		}
	}

	for _, pin := range []int{pins.Power, pins.Trip} {
		line, err := chip.RequestLine(pin,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithRisingEdge,
			gpiocdev.WithEventHandler(handler))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request button pin %d: %w", pin, err)
		}
		b.buttons = append(b.buttons, line)
	}

	b.leds, err = chip.RequestLines([]int{pins.LEDR, pins.LEDG, pins.LEDB}, gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request led pins: %w", err)
	}

	buzzer, err := chip.RequestLine(pins.Buzzer, gpiocdev.AsOutput(0))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pins.Buzzer, err)
	}
	b.buzzers[alert.ChannelA] = buzzer

	return b, nil
}

// Set drives the RGB LED.
func (b *Board) Set(c led.Color) error {
	if err := b.leds.SetValues([]int{bit(c.R), bit(c.G), bit(c.B)}); err != nil {
		return fmt.Errorf("set leds: %w", err)
	}
	return nil
}

// PlayTone toggles the buzzer line as a square wave at hz for d.
// hz <= 0 keeps the line low for d.
func (b *Board) PlayTone(ctx context.Context, ch alert.Channel, hz int, d time.Duration) error {
	line, ok := b.buzzers[ch]
	if !ok {
		return fmt.Errorf("no buzzer on channel %s", ch)
	}

	b.toneMu.Lock()
	defer b.toneMu.Unlock()

	deadline := time.NewTimer(d)
	defer deadline.Stop()

	if hz <= 0 {
		select {
		case <-deadline.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	half := time.Second / time.Duration(2*hz)
	ticker := time.NewTicker(half)
	defer ticker.Stop()

	level := 0
	for {
		select {
		case <-deadline.C:
			return line.SetValue(0)
		case <-ctx.Done():
			line.SetValue(0)
			return ctx.Err()
		case <-ticker.C:
			level ^= 1
			if err := line.SetValue(level); err != nil {
				return fmt.Errorf("buzzer %s: %w", ch, err)
			}
		}
	}
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-down (matching Pi boot defaults)
// before closing to ensure clean state for system shutdown/reboot.
func (b *Board) Close() error {
	var errs []error

	for _, line := range b.buttons {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if b.leds != nil {
		if err := b.leds.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure led pins: %w", err))
		}
		if err := b.leds.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close led pins: %w", err))
		}
	}
	for ch, line := range b.buzzers {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure buzzer %s: %w", ch, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close buzzer %s: %w", ch, err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func bit(on bool) int {
	if on {
		return 1
	}
	return 0
}
