// Package adc reads the two-axis position sensor.
// The real implementation uses the Linux IIO sysfs interface.
// The fake implementation allows testing without hardware.
package adc

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sweeney/motor-sensor/internal/logic"
)

// Reader reads raw samples from the sensor.
type Reader interface {
	// Read returns one X/Y sample in the 0..logic.SampleMax range.
	Read() (logic.Sample, error)

	// Close releases sensor resources.
	Close() error
}

// DefaultIIODir is where the kernel exposes IIO devices.
const DefaultIIODir = "/sys/bus/iio/devices"

// Default device and channel definitions
const (
	DefaultDevice   = "iio:device0"
	DefaultChannelX = 1
	DefaultChannelY = 0
)

// IIOReader reads two ADC channels of an IIO device through sysfs.
type IIOReader struct {
	xPath string
	yPath string
}

// NewIIOReader creates a reader for channels chX and chY of device under dir.
// Both channel files must exist.
func NewIIOReader(dir, device string, chX, chY int) (*IIOReader, error) {
	r := &IIOReader{
		xPath: channelPath(dir, device, chX),
		yPath: channelPath(dir, device, chY),
	}
	for _, p := range []string{r.xPath, r.yPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("open adc channel: %w", err)
		}
	}
	return r, nil
}

func channelPath(dir, device string, ch int) string {
	return filepath.Join(dir, device, fmt.Sprintf("in_voltage%d_raw", ch))
}

// Read returns the current X/Y sample.
func (r *IIOReader) Read() (logic.Sample, error) {
	x, err := readRaw(r.xPath)
	if err != nil {
		return logic.Sample{}, fmt.Errorf("read x: %w", err)
	}
	y, err := readRaw(r.yPath)
	if err != nil {
		return logic.Sample{}, fmt.Errorf("read y: %w", err)
	}
	return logic.Sample{X: x, Y: y}, nil
}

// Close is a no-op; sysfs attributes are opened per read.
func (r *IIOReader) Close() error {
	return nil
}

// readRaw parses a sysfs raw value. Values above the 12-bit range are
// clamped to logic.SampleMax so they still classify as movement.
func readRaw(path string) (uint16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	switch {
	case v < 0:
		return 0, nil
	case v > logic.SampleMax:
		return logic.SampleMax, nil
	}
	return uint16(v), nil
}
