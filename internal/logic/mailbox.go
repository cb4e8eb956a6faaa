package logic

import (
	"sync"
	"time"
)

// Mailbox holds at most one pending injected command and the time the most
// recent command arrived. Writers are the command channels; the arbiter is
// the only reader. A new command overwrites an unconsumed one.
type Mailbox struct {
	mu         sync.Mutex
	pending    Command
	present    bool
	receivedAt time.Time
	received   bool
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Deposit stores cmd as the pending command and stamps its arrival time.
func (m *Mailbox) Deposit(cmd Command, now time.Time) {
	m.mu.Lock()
	m.pending = cmd
	m.present = true
	m.receivedAt = now
	m.received = true
	m.mu.Unlock()
}

// Take returns the pending command and clears it. The second return is
// false when nothing is pending.
func (m *Mailbox) Take() (Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return Command{}, false
	}
	m.present = false
	return m.pending, true
}

// Pending reports whether an unconsumed command is waiting.
func (m *Mailbox) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present
}

// LastReceived returns the arrival time of the most recent command. It
// persists after the command is consumed. ok is false if no command has
// ever been deposited.
func (m *Mailbox) LastReceived() (at time.Time, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receivedAt, m.received
}

// Blocking reports whether now falls inside the block window that follows
// the most recent command. Until a command has arrived there is no window,
// so the joystick is live from the first tick after boot.
func (m *Mailbox) Blocking(now time.Time, window time.Duration) bool {
	at, ok := m.LastReceived()
	if !ok {
		return false
	}
	return now.Sub(at) < window
}
