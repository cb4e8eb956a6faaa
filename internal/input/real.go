//go:build linux

package input

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// RealReader reads the joystick from the IIO ADC and the button from the
// Linux GPIO character device.
type RealReader struct {
	chip   *gpiocdev.Chip
	button *gpiocdev.Line
	adc    *ADC
	xCh    int
	yCh    int
}

// NewRealReader opens the button line and the ADC described by cfg.
func NewRealReader(cfg Config) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// The button pulls the line low when pressed.
	button, err := chip.RequestLine(cfg.ButtonPin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", cfg.ButtonPin, err)
	}

	return &RealReader{
		chip:   chip,
		button: button,
		adc:    NewADC(cfg.IIODir, cfg.ADCMax),
		xCh:    cfg.XChannel,
		yCh:    cfg.YChannel,
	}, nil
}

// Sample reads both axes and the button.
// Inverts raw GPIO: raw 0 = pressed.
func (r *RealReader) Sample() (logic.Sample, error) {
	x, err := r.adc.Read(r.xCh)
	if err != nil {
		return logic.Sample{}, err
	}

	y, err := r.adc.Read(r.yCh)
	if err != nil {
		return logic.Sample{}, err
	}

	raw, err := r.button.Value()
	if err != nil {
		return logic.Sample{}, fmt.Errorf("read button pin: %w", err)
	}

	return logic.Sample{X: x, Y: y, Pressed: raw == 0}, nil
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error

	if r.button != nil {
		if err := r.button.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
