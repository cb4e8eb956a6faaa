package hid

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// Sink names accepted by the run command.
const (
	SinkGadget = "gadget"
	SinkLog    = "log"
)

// GatedSink forwards reports only while the USB host has configured the
// device. Ready starts false.
type GatedSink struct {
	next  logic.Sink
	ready atomic.Bool
}

// NewGatedSink wraps next.
func NewGatedSink(next logic.Sink) *GatedSink {
	return &GatedSink{next: next}
}

// SetReady records whether the host can currently take reports.
func (g *GatedSink) SetReady(ready bool) {
	g.ready.Store(ready)
}

// Ready returns the last value passed to SetReady.
func (g *GatedSink) Ready() bool {
	return g.ready.Load()
}

// TrySend forwards r when ready.
func (g *GatedSink) TrySend(r logic.Report) bool {
	if !g.ready.Load() {
		return false
	}
	return g.next.TrySend(r)
}

// LogSink logs every report instead of writing it to a device.
// Used when running off-target.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// TrySend logs r at debug level and always succeeds.
func (s *LogSink) TrySend(r logic.Report) bool {
	s.logger.Debug("hid report",
		"buttons", r.Buttons,
		"dx", r.DX,
		"dy", r.DY,
		"wheel", r.Wheel,
		"pan", r.Pan)
	return true
}

// FakeSink is a test double that records reports.
type FakeSink struct {
	mu sync.Mutex

	// NotReady makes TrySend refuse reports.
	NotReady bool

	// Reports contains every accepted report in order.
	Reports []logic.Report

	// Attempts counts TrySend calls, accepted or not.
	Attempts int
}

// NewFakeSink creates a ready FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// TrySend records r unless NotReady is set.
func (f *FakeSink) TrySend(r logic.Report) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Attempts++
	if f.NotReady {
		return false
	}
	f.Reports = append(f.Reports, r)
	return true
}

// Sent returns a copy of accepted reports.
func (f *FakeSink) Sent() []logic.Report {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]logic.Report, len(f.Reports))
	copy(out, f.Reports)
	return out
}

// Reset clears recorded state.
func (f *FakeSink) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Reports = nil
	f.Attempts = 0
	f.NotReady = false
}
