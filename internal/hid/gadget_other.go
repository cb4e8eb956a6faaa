//go:build !linux

package hid

import (
	"errors"
	"log/slog"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// DefaultDevice is the HID function node created by the gadget.
const DefaultDevice = "/dev/hidg0"

// GadgetSink is not available on non-Linux platforms.
type GadgetSink struct{}

// OpenGadget returns an error on non-Linux platforms.
func OpenGadget(path string, logger *slog.Logger) (*GadgetSink, error) {
	return nil, errors.New("hid: gadget not supported on this platform (requires Linux)")
}

// TrySend always fails on non-Linux platforms.
func (g *GadgetSink) TrySend(r logic.Report) bool {
	return false
}

// Close is a no-op on non-Linux platforms.
func (g *GadgetSink) Close() error {
	return nil
}
