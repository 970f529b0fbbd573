//go:build !linux

package gpio

import (
	"context"
	"errors"
	"time"

	"github.com/sweeney/motor-sensor/internal/alert"
	"github.com/sweeney/motor-sensor/internal/led"
)

// Board is not available on non-Linux platforms.
type Board struct{}

// Open returns an error on non-Linux platforms.
func Open(chipName string, pins Pins, onEdge EdgeHandler, now func() time.Time) (*Board, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (b *Board) Set(led.Color) error {
	return errors.New("gpio: not supported")
}

// PlayTone is not implemented on non-Linux platforms.
func (b *Board) PlayTone(context.Context, alert.Channel, int, time.Duration) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *Board) Close() error {
	return nil
}
