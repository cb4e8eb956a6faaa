//go:build linux

package led

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOOutput drives the indicator through the GPIO character device.
type GPIOOutput struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewGPIOOutput requests pin on chip as an output, initially off.
func NewGPIOOutput(chip string, pin int) (*GPIOOutput, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := c.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request led pin %d: %w", pin, err)
	}

	return &GPIOOutput{chip: c, line: line}, nil
}

// SetValue drives the line.
func (g *GPIOOutput) SetValue(value int) error {
	return g.line.SetValue(value)
}

// Close turns the LED off and releases the line.
func (g *GPIOOutput) Close() error {
	var errs []error
	if err := g.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear led pin: %w", err))
	}
	if err := g.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close led pin: %w", err))
	}
	if err := g.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
