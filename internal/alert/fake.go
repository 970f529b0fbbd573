package alert

import (
	"context"
	"sync"
	"time"
)

// FakeGenerator records tones for test assertions. It returns immediately
// unless Hold is set.
type FakeGenerator struct {
	mu    sync.Mutex
	tones []Tone

	// Hold, if set, blocks every PlayTone until it is closed or ctx ends.
	Hold chan struct{}

	// Started, if set, receives a value when a tone begins.
	Started chan Tone

	// PlayError, if set, will be returned by PlayTone.
	PlayError error
}

// NewFakeGenerator creates a FakeGenerator for testing.
func NewFakeGenerator() *FakeGenerator {
	return &FakeGenerator{}
}

// PlayTone records the tone.
func (f *FakeGenerator) PlayTone(ctx context.Context, ch Channel, hz int, d time.Duration) error {
	if f.PlayError != nil {
		return f.PlayError
	}

	t := Tone{Channel: ch, Hz: hz, Duration: d}
	f.mu.Lock()
	f.tones = append(f.tones, t)
	f.mu.Unlock()

	if f.Started != nil {
		f.Started <- t
	}
	if f.Hold != nil {
		select {
		case <-f.Hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Tones returns a copy of the recorded tones.
func (f *FakeGenerator) Tones() []Tone {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Tone, len(f.tones))
	copy(out, f.tones)
	return out
}

// Reset clears recorded tones.
func (f *FakeGenerator) Reset() {
	f.mu.Lock()
	f.tones = nil
	f.mu.Unlock()
}

// Silent is a ToneGenerator with no hardware behind it. It waits out each
// tone so loop timing matches a real buzzer.
type Silent struct{}

// PlayTone waits for d or until ctx is done.
func (Silent) PlayTone(ctx context.Context, _ Channel, _ int, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
