package command

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// DefaultTTY is the CDC-ACM function node created by the gadget.
const DefaultTTY = "/dev/ttyGS0"

// TTY is a serial device switched to raw mode for the life of the handle.
type TTY struct {
	f     *os.File
	state *term.State
}

// OpenTTY opens path and puts it in raw mode so bytes arrive unbuffered and
// unechoed.
func OpenTTY(path string) (*TTY, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open tty %s: %w", path, err)
	}

	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		f.Close()
		return nil, fmt.Errorf("open tty %s: not a terminal", path)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("set raw mode on %s: %w", path, err)
	}

	return &TTY{f: f, state: state}, nil
}

func (t *TTY) Read(p []byte) (int, error) {
	return t.f.Read(p)
}

func (t *TTY) Write(p []byte) (int, error) {
	return t.f.Write(p)
}

// Close restores the original terminal mode and closes the device.
func (t *TTY) Close() error {
	var errs []error
	if err := term.Restore(int(t.f.Fd()), t.state); err != nil {
		errs = append(errs, fmt.Errorf("restore tty: %w", err))
	}
	if err := t.f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close tty: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
