package input

import (
	"errors"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// FakeReader is a test double that returns scripted samples.
type FakeReader struct {
	// Samples contains scripted joystick readings.
	// Each call to Sample() consumes the next one.
	Samples []logic.Sample

	// index tracks current position in Samples
	index int

	// Calls counts Sample invocations
	Calls int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Sample()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []logic.Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Sample returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Sample() (logic.Sample, error) {
	f.Calls++
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

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Calls = 0
	f.Closed = false
}
