package logic

// Analog axis geometry for a 12-bit ADC.
const (
	AxisMax      = 4095
	AxisCenter   = 2048
	AxisDeadzone = 100

	// AxisLimit bounds the normalized output in both directions.
	AxisLimit = 127
)

// Normalize maps a raw ADC reading onto [-127, 127] with a deadzone around
// the center. Readings within AxisDeadzone of the center map to 0; the rest
// are scaled linearly so each half of the travel spans the full range.
func Normalize(raw uint16) int8 {
	v := int(raw)
	var out int
	switch {
	case v > AxisCenter+AxisDeadzone:
		out = (v - AxisCenter - AxisDeadzone) * AxisLimit / (AxisMax - AxisCenter - AxisDeadzone)
	case v < AxisCenter-AxisDeadzone:
		out = (v - AxisCenter + AxisDeadzone) * AxisLimit / (AxisCenter - AxisDeadzone)
	default:
		return 0
	}
	return int8(clamp(out, -AxisLimit, AxisLimit))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
