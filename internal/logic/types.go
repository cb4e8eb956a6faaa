// Package logic contains the pure input-arbitration logic for the joystick mouse.
// This package has NO hardware dependencies (no GPIO, ADC, USB, MQTT, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Level is a joystick sensitivity tier. Lower levels are more sensitive.
type Level uint8

const (
	LevelHigh Level = 1
	LevelMed  Level = 2
	LevelLow  Level = 3
)

// DefaultLevel is the sensitivity level at startup.
const DefaultLevel = LevelMed

// divisors maps each level to the divisor applied to normalized joystick deltas.
var divisors = [...]int{LevelHigh: 5, LevelMed: 10, LevelLow: 30}

// Valid reports whether l is one of the three defined levels.
func (l Level) Valid() bool {
	return l >= LevelHigh && l <= LevelLow
}

// Next returns the level a long-press cycles to. LOW wraps to HIGH.
func (l Level) Next() Level {
	n := l + 1
	if n > LevelLow {
		return LevelHigh
	}
	return n
}

// Divisor returns the X axis divisor for the level.
func (l Level) Divisor() int {
	if !l.Valid() {
		return divisors[DefaultLevel]
	}
	return divisors[l]
}

// YDivisor returns the Y axis divisor. The two more sensitive levels damp
// vertical motion by an extra factor of 4.
func (l Level) YDivisor() int {
	if l == LevelHigh || l == LevelMed {
		return l.Divisor() * 4
	}
	return l.Divisor()
}

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "HIGH"
	case LevelMed:
		return "MED"
	case LevelLow:
		return "LOW"
	}
	return "UNKNOWN"
}

// Report is one HID mouse report handed to the output sink.
type Report struct {
	Buttons uint8
	DX      int8
	DY      int8
	Wheel   int8
	Pan     int8
}

// ButtonLeft is the left button bit in Report.Buttons.
const ButtonLeft uint8 = 0x01

// Command is a validated host-injected mouse event.
type Command struct {
	Buttons uint8
	DX      int8
	DY      int8
	Wheel   int8
	Pan     int8
}

// Sample is one reading of the physical inputs.
type Sample struct {
	X       uint16 // raw ADC, 0..4095
	Y       uint16 // raw ADC, 0..4095
	Pressed bool   // already inverted from the active-low line
}

// Source identifies which branch of the arbiter produced a tick's outcome.
type Source string

const (
	SourceNone     Source = ""
	SourceCommand  Source = "COMMAND"
	SourceBlocked  Source = "BLOCKED"
	SourceMotion   Source = "MOTION"
	SourceClick    Source = "CLICK"
	SourceReadFail Source = "READ_ERROR"
)

// Decision is the outcome of one arbiter tick.
type Decision struct {
	Time      time.Time
	Source    Source
	Report    Report
	Emit      bool // a report was computed for this tick
	Delivered bool // the sink accepted the report
	Level     Level
	// LevelChange is set when the sensitivity controller cycled on this tick.
	LevelChange *LevelEvent
}

// LevelEvent records a sensitivity cycle.
type LevelEvent struct {
	Timestamp time.Time
	From      Level
	To        Level
}

// EventCounts tracks arbiter outcomes since startup.
type EventCounts struct {
	Commands     int
	Motion       int
	Clicks       int
	Blocked      int
	Dropped      int
	LevelChanges int
	ReadErrors   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
	Level     Level
}
