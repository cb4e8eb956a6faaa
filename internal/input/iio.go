package input

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// ADC reads raw channel values from an IIO device directory.
type ADC struct {
	dir string
	max int
}

// NewADC returns an ADC rooted at dir. Channel readings in 0..max are
// rescaled onto 0..4095; max <= 0 means the device is already 12-bit.
func NewADC(dir string, max int) *ADC {
	if max <= 0 {
		max = logic.AxisMax
	}
	return &ADC{dir: dir, max: max}
}

// Read returns channel ch rescaled to 0..4095.
func (a *ADC) Read(ch int) (uint16, error) {
	path := filepath.Join(a.dir, fmt.Sprintf("in_voltage%d_raw", ch))
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read adc channel %d: %w", ch, err)
	}

	raw, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse adc channel %d: %w", ch, err)
	}

	return scale(raw, a.max), nil
}

func scale(raw, max int) uint16 {
	if raw < 0 {
		raw = 0
	}
	if raw > max {
		raw = max
	}
	if max == logic.AxisMax {
		return uint16(raw)
	}
	return uint16(raw * logic.AxisMax / max)
}
