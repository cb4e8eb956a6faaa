//go:build !linux

package input

import (
	"errors"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(cfg Config) (*RealReader, error) {
	return nil, errors.New("input: not supported on this platform (requires Linux)")
}

// Sample is not implemented on non-Linux platforms.
func (r *RealReader) Sample() (logic.Sample, error) {
	return logic.Sample{}, errors.New("input: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}
