package led

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultUDCRoot is where the kernel lists USB device controllers.
const DefaultUDCRoot = "/sys/class/udc"

// UDC reads the controller state from sysfs.
type UDC struct {
	root string
	name string
}

// NewUDC returns a reader for controller name under root. An empty name
// picks the first controller found when State is called.
func NewUDC(root, name string) *UDC {
	if root == "" {
		root = DefaultUDCRoot
	}
	return &UDC{root: root, name: name}
}

// State returns the raw controller state, e.g. "configured" or "suspended".
func (u *UDC) State() (string, error) {
	name := u.name
	if name == "" {
		entries, err := os.ReadDir(u.root)
		if err != nil {
			return "", fmt.Errorf("list udc: %w", err)
		}
		if len(entries) == 0 {
			return "", errors.New("list udc: no controller found")
		}
		name = entries[0].Name()
	}

	data, err := os.ReadFile(filepath.Join(u.root, name, "state"))
	if err != nil {
		return "", fmt.Errorf("read udc state: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// StateFromUDC maps a controller state to the indicator state. Only a
// configured controller counts as mounted.
func StateFromUDC(s string) State {
	switch s {
	case "configured":
		return Mounted
	case "suspended":
		return Suspended
	}
	return NotMounted
}
