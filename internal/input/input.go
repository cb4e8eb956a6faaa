// Package input reads the joystick and its push button.
// The real implementation uses the Linux IIO ADC and GPIO character device.
// The fake implementation allows testing without hardware.
package input

import "github.com/sweeney/stick-mouse/internal/logic"

// Reader reads one raw joystick sample.
type Reader interface {
	// Sample returns both axes in 0..4095 and the logical button state.
	// The raw button line is active-low: raw 0 = pressed.
	Sample() (logic.Sample, error)

	// Close releases input resources.
	Close() error
}

// Defaults for a Pi Zero with an ADS1015-class ADC on the IIO bus.
const (
	DefaultChip      = "gpiochip0"
	DefaultButtonPin = 17
	DefaultIIODir    = "/sys/bus/iio/devices/iio:device0"
	DefaultXChannel  = 0
	DefaultYChannel  = 1
	DefaultADCMax    = logic.AxisMax
)

// Config selects the hardware lines.
type Config struct {
	Chip      string
	ButtonPin int
	IIODir    string
	XChannel  int
	YChannel  int
	ADCMax    int
}
