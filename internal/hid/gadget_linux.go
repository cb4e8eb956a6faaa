//go:build linux

package hid

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// DefaultDevice is the HID function node created by the gadget.
const DefaultDevice = "/dev/hidg0"

// GadgetSink writes reports to a USB gadget HID device without blocking.
type GadgetSink struct {
	fd     int
	path   string
	logger *slog.Logger
}

// OpenGadget opens the HID gadget device for non-blocking writes.
func OpenGadget(path string, logger *slog.Logger) (*GadgetSink, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open hid gadget %s: %w", path, err)
	}
	return &GadgetSink{fd: fd, path: path, logger: logger}, nil
}

// TrySend writes one report. It returns false when the endpoint is still
// busy with the previous report or the host has gone away.
func (g *GadgetSink) TrySend(r logic.Report) bool {
	n, err := unix.Write(g.fd, Encode(r))
	if err != nil {
		if !errors.Is(err, unix.EAGAIN) {
			g.logger.Debug("hid write failed", "device", g.path, "error", err)
		}
		return false
	}
	return n == ReportSize
}

// Close releases the device.
func (g *GadgetSink) Close() error {
	if err := unix.Close(g.fd); err != nil {
		return fmt.Errorf("close hid gadget: %w", err)
	}
	return nil
}
