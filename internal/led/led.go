// Package led drives the status indicator. The blink interval follows the
// USB device lifecycle: fast while not mounted, 1s when configured by a host,
// slow while the bus is suspended.
package led

import (
	"sync"
	"time"
)

// State is the USB lifecycle state the indicator reflects.
type State int

const (
	NotMounted State = iota
	Mounted
	Suspended
)

// Blink intervals per state.
const (
	IntervalNotMounted = 250 * time.Millisecond
	IntervalMounted    = 1000 * time.Millisecond
	IntervalSuspended  = 2500 * time.Millisecond
)

func (s State) String() string {
	switch s {
	case NotMounted:
		return "NOT_MOUNTED"
	case Mounted:
		return "MOUNTED"
	case Suspended:
		return "SUSPENDED"
	}
	return "UNKNOWN"
}

// Interval returns the blink interval for s.
func (s State) Interval() time.Duration {
	switch s {
	case Mounted:
		return IntervalMounted
	case Suspended:
		return IntervalSuspended
	}
	return IntervalNotMounted
}

// Output is a binary indicator line.
type Output interface {
	SetValue(value int) error
}

// Blinker toggles an Output on a fixed interval. An interval of 0 disables
// blinking and leaves the output where it is.
type Blinker struct {
	out      Output
	interval time.Duration
	start    time.Time
	on       bool
}

// NewBlinker creates a Blinker in the not-mounted state, timed from now.
func NewBlinker(out Output, now time.Time) *Blinker {
	return &Blinker{out: out, interval: IntervalNotMounted, start: now}
}

// SetInterval changes the blink interval.
func (b *Blinker) SetInterval(d time.Duration) {
	b.interval = d
}

// SetState selects the interval for s.
func (b *Blinker) SetState(s State) {
	b.interval = s.Interval()
}

// Interval returns the current blink interval.
func (b *Blinker) Interval() time.Duration {
	return b.interval
}

// Tick writes and toggles the output once the interval has elapsed since the
// previous toggle. It returns the write error, if any.
func (b *Blinker) Tick(now time.Time) error {
	if b.interval <= 0 {
		return nil
	}
	if now.Sub(b.start) < b.interval {
		return nil
	}
	b.start = b.start.Add(b.interval)

	v := 0
	if b.on {
		v = 1
	}
	b.on = !b.on
	return b.out.SetValue(v)
}

// FakeOutput records every value written.
type FakeOutput struct {
	mu     sync.Mutex
	Values []int
	Err    error
}

// SetValue records value.
func (f *FakeOutput) SetValue(value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Values = append(f.Values, value)
	return nil
}
