package adc

import (
	"errors"
	"sync"

	"github.com/sweeney/motor-sensor/internal/logic"
)

// FakeReader is a test double that returns scripted samples.
type FakeReader struct {
	mu sync.Mutex

	// Samples contains scripted readings to return.
	// Each call to Read() consumes the next sample.
	Samples []logic.Sample

	// index tracks current position in Samples
	index int

	// reads counts calls to Read
	reads int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []logic.Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (logic.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads++
	if f.ReadError != nil {
		return logic.Sample{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return logic.Sample{}, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample, nil
}

// Reads returns how many times Read was called.
func (f *FakeReader) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.mu.Lock()
	f.index = 0
	f.reads = 0
	f.Closed = false
	f.mu.Unlock()
}
