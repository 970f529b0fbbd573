package adc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sweeney/motor-sensor/internal/logic"
)

// fakeIIO writes in_voltageN_raw files under a temp dir and returns the dir.
func fakeIIO(t *testing.T, values map[int]string) string {
	t.Helper()
	dir := t.TempDir()
	dev := filepath.Join(dir, DefaultDevice)
	if err := os.MkdirAll(dev, 0o755); err != nil {
		t.Fatal(err)
	}
	for ch, v := range values {
		if err := os.WriteFile(channelPath(dir, DefaultDevice, ch), []byte(v), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestIIOReaderRead(t *testing.T) {
	dir := fakeIIO(t, map[int]string{DefaultChannelX: "2048\n", DefaultChannelY: "1999\n"})

	r, err := NewIIOReader(dir, DefaultDevice, DefaultChannelX, DefaultChannelY)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	s, err := r.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.X != 2048 || s.Y != 1999 {
		t.Errorf("expected (2048, 1999), got (%d, %d)", s.X, s.Y)
	}
}

func TestIIOReaderFollowsFileChanges(t *testing.T) {
	dir := fakeIIO(t, map[int]string{0: "100", 1: "200"})
	r, err := NewIIOReader(dir, DefaultDevice, 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	os.WriteFile(channelPath(dir, DefaultDevice, 1), []byte("3000"), 0o644)

	s, _ := r.Read()
	if s.X != 3000 || s.Y != 100 {
		t.Errorf("expected (3000, 100), got (%d, %d)", s.X, s.Y)
	}
}

func TestIIOReaderClamps(t *testing.T) {
	dir := fakeIIO(t, map[int]string{0: "70000", 1: "-5"})
	r, err := NewIIOReader(dir, DefaultDevice, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := r.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.X != logic.SampleMax {
		t.Errorf("X: got %d, want %d", s.X, logic.SampleMax)
	}
	if s.Y != 0 {
		t.Errorf("Y: got %d, want 0", s.Y)
	}
	if logic.DefaultBand.Stationary(s) {
		t.Error("clamped sample should classify as moving")
	}
}

func TestIIOReaderMissingChannel(t *testing.T) {
	dir := fakeIIO(t, map[int]string{0: "100"})
	if _, err := NewIIOReader(dir, DefaultDevice, 1, 0); err == nil {
		t.Error("expected error for missing channel file")
	}
}

func TestIIOReaderGarbage(t *testing.T) {
	dir := fakeIIO(t, map[int]string{0: "abc", 1: "200"})
	r, err := NewIIOReader(dir, DefaultDevice, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Read(); err == nil {
		t.Error("expected parse error")
	}
}

func TestFakeReaderRead(t *testing.T) {
	samples := []logic.Sample{
		{X: 2048, Y: 2048},
		{X: 0, Y: 2048},
		{X: 4095, Y: 4095},
	}

	f := NewFakeReader(samples)

	for i, want := range samples {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("sample %d: expected %+v, got %+v", i, want, got)
		}
	}

	// Fourth read should repeat last sample
	got, _ := f.Read()
	if got != samples[2] {
		t.Errorf("sample 3 (repeat): expected %+v, got %+v", samples[2], got)
	}
	if f.Reads() != 4 {
		t.Errorf("Reads: got %d, want 4", f.Reads())
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	if _, err := f.Read(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]logic.Sample{{X: 1, Y: 1}})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderCloseAndReset(t *testing.T) {
	f := NewFakeReader([]logic.Sample{{X: 1, Y: 1}, {X: 2, Y: 2}})

	f.Read()
	f.Close()
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed {
		t.Error("Reset should clear Closed")
	}
	if s, _ := f.Read(); s.X != 1 {
		t.Errorf("after reset: expected first sample, got %+v", s)
	}
}
