//go:build !speaker

package alert

import (
	"context"
	"errors"
	"time"
)

// Speaker is not available without the speaker build tag.
type Speaker struct{}

// NewSpeaker returns an error when built without audio support.
func NewSpeaker() (*Speaker, error) {
	return nil, errors.New("alert: speaker backend not built (rebuild with -tags speaker)")
}

// PlayTone is not implemented without the speaker build tag.
func (s *Speaker) PlayTone(context.Context, Channel, int, time.Duration) error {
	return errors.New("alert: speaker not supported")
}

// Close is not implemented without the speaker build tag.
func (s *Speaker) Close() error {
	return nil
}
