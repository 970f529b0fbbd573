// Package alert plays the idle warning pattern on a tone generator.
package alert

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Channel selects a buzzer. The board carries a single alert buzzer.
type Channel int

// ChannelA is the alert buzzer.
const ChannelA Channel = 0

// String returns "A" for the alert buzzer.
func (c Channel) String() string {
	if c == ChannelA {
		return "A"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// ToneGenerator plays a single tone and blocks until it has finished.
// A frequency of 0 is silence for the given duration.
type ToneGenerator interface {
	PlayTone(ctx context.Context, ch Channel, hz int, d time.Duration) error
}

// Tone is one step of a pattern.
type Tone struct {
	Channel  Channel
	Hz       int
	Duration time.Duration
}

// IdlePattern is the high-then-low warning played while the motor idles.
var IdlePattern = []Tone{
	{Channel: ChannelA, Hz: 400, Duration: 150 * time.Millisecond},
	{Channel: ChannelA, Hz: 250, Duration: 150 * time.Millisecond},
}

// PatternDuration returns the total playing time of p.
func PatternDuration(p []Tone) time.Duration {
	var d time.Duration
	for _, t := range p {
		d += t.Duration
	}
	return d
}

// ErrBusy is returned by Play when a pattern is already playing.
var ErrBusy = errors.New("alert: pattern already playing")

// Sequencer plays a fixed pattern. It is not re-entrant: overlapping calls
// are refused with ErrBusy instead of interleaving tones.
type Sequencer struct {
	gen     ToneGenerator
	pattern []Tone
	playing atomic.Bool
	played  atomic.Int64
}

// NewSequencer creates a Sequencer that plays IdlePattern on gen.
func NewSequencer(gen ToneGenerator) *Sequencer {
	return NewSequencerWithPattern(gen, IdlePattern)
}

// NewSequencerWithPattern creates a Sequencer for a custom pattern.
func NewSequencerWithPattern(gen ToneGenerator, pattern []Tone) *Sequencer {
	p := make([]Tone, len(pattern))
	copy(p, pattern)
	return &Sequencer{gen: gen, pattern: p}
}

// Play runs the pattern to completion, blocking the caller for
// PatternDuration. The first tone error aborts the rest of the pattern.
func (s *Sequencer) Play(ctx context.Context) error {
	if !s.playing.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.playing.Store(false)

	for _, t := range s.pattern {
		if err := s.gen.PlayTone(ctx, t.Channel, t.Hz, t.Duration); err != nil {
			return fmt.Errorf("play %dHz on %s: %w", t.Hz, t.Channel, err)
		}
	}
	s.played.Add(1)
	return nil
}

// Playing reports whether a pattern is in progress.
func (s *Sequencer) Playing() bool {
	return s.playing.Load()
}

// Played returns the number of patterns completed.
func (s *Sequencer) Played() int64 {
	return s.played.Load()
}

// Duration returns the total playing time of the pattern.
func (s *Sequencer) Duration() time.Duration {
	return PatternDuration(s.pattern)
}
