package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdlePatternHighThenLow(t *testing.T) {
	require.Len(t, IdlePattern, 2)
	assert.Greater(t, IdlePattern[0].Hz, IdlePattern[1].Hz)
	assert.Equal(t, 300*time.Millisecond, PatternDuration(IdlePattern))
}

func TestSequencerPlaysPattern(t *testing.T) {
	gen := NewFakeGenerator()
	s := NewSequencer(gen)

	require.NoError(t, s.Play(context.Background()))

	assert.Equal(t, []Tone{
		{Channel: ChannelA, Hz: 400, Duration: 150 * time.Millisecond},
		{Channel: ChannelA, Hz: 250, Duration: 150 * time.Millisecond},
	}, gen.Tones())
	assert.Equal(t, int64(1), s.Played())
	assert.False(t, s.Playing())
	assert.Equal(t, 300*time.Millisecond, s.Duration())
}

func TestSequencerRefusesOverlap(t *testing.T) {
	gen := NewFakeGenerator()
	gen.Hold = make(chan struct{})
	gen.Started = make(chan Tone, 4)
	s := NewSequencer(gen)

	done := make(chan error, 1)
	go func() { done <- s.Play(context.Background()) }()

	<-gen.Started
	assert.True(t, s.Playing())

	err := s.Play(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(gen.Hold)
	require.NoError(t, <-done)

	// Only the first pattern's two tones were played.
	assert.Len(t, gen.Tones(), 2)
	assert.Equal(t, int64(1), s.Played())
	assert.False(t, s.Playing())

	// And the guard is released afterwards.
	require.NoError(t, s.Play(context.Background()))
	assert.Equal(t, int64(2), s.Played())
}

func TestSequencerToneErrorAbortsPattern(t *testing.T) {
	gen := NewFakeGenerator()
	gen.PlayError = errors.New("line busy")
	s := NewSequencer(gen)

	err := s.Play(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line busy")
	assert.Contains(t, err.Error(), "400Hz on A")
	assert.Equal(t, int64(0), s.Played())
	assert.False(t, s.Playing())
}

func TestSequencerCancelled(t *testing.T) {
	gen := NewFakeGenerator()
	gen.Hold = make(chan struct{})
	s := NewSequencer(gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Play(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.Playing())
}

func TestSequencerPatternIsCopied(t *testing.T) {
	pattern := []Tone{{Channel: ChannelA, Hz: 300, Duration: time.Second}}
	gen := NewFakeGenerator()
	s := NewSequencerWithPattern(gen, pattern)

	pattern[0].Hz = 1

	require.NoError(t, s.Play(context.Background()))
	assert.Equal(t, 300, gen.Tones()[0].Hz)
}

func TestSilentWaits(t *testing.T) {
	start := time.Now()
	require.NoError(t, Silent{}.PlayTone(context.Background(), ChannelA, 400, 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSilentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Silent{}.PlayTone(ctx, ChannelA, 400, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChannelString(t *testing.T) {
	assert.Equal(t, "A", ChannelA.String())
	assert.Equal(t, "Channel(1)", Channel(1).String())
	assert.Equal(t, "Channel(7)", Channel(7).String())
}
