//go:build !linux

package led

import "errors"

// GPIOOutput is not available on non-Linux platforms.
type GPIOOutput struct{}

// NewGPIOOutput returns an error on non-Linux platforms.
func NewGPIOOutput(chip string, pin int) (*GPIOOutput, error) {
	return nil, errors.New("led: not supported on this platform (requires Linux)")
}

// SetValue is not implemented on non-Linux platforms.
func (g *GPIOOutput) SetValue(value int) error {
	return errors.New("led: not supported")
}

// Close is a no-op on non-Linux platforms.
func (g *GPIOOutput) Close() error {
	return nil
}
