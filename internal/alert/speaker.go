//go:build speaker

package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
)

// SpeakerSampleRate is the output rate used for generated tones.
const SpeakerSampleRate = beep.SampleRate(44100)

// Speaker plays tones on the host sound card. Both channels share the
// single audio output.
type Speaker struct {
	mu   sync.Mutex
	rate beep.SampleRate
}

// NewSpeaker initialises the audio device.
func NewSpeaker() (*Speaker, error) {
	rate := SpeakerSampleRate
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &Speaker{rate: rate}, nil
}

// PlayTone plays a sine tone (or silence for hz == 0) and waits for it to end.
func (s *Speaker) PlayTone(ctx context.Context, _ Channel, hz int, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.rate.N(d)
	var src beep.Streamer
	if hz <= 0 {
		src = beep.Silence(n)
	} else {
		tone, err := generators.SineTone(s.rate, float64(hz))
		if err != nil {
			return fmt.Errorf("sine tone %dHz: %w", hz, err)
		}
		src = beep.Take(n, tone)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(src, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Close releases the audio device.
func (s *Speaker) Close() error {
	speaker.Close()
	return nil
}
