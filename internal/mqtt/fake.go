package mqtt

import (
	"sync"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// FakePublisher records published events for test assertions. Exported
// fields may be read directly once the code under test has stopped.
type FakePublisher struct {
	mu sync.Mutex

	Events         []logic.LevelEvent
	Payloads       [][]byte
	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// OnCommand, if set, handles payloads passed to Command, as the command
	// topic subscription does on a real broker.
	OnCommand CommandHandler
	Replies   []string

	// PublishError and PublishSystemError, if set, are returned instead of
	// recording.
	PublishError       error
	PublishSystemError error

	// Stall, if set, makes every publish wait until it is closed, like a
	// broker that is slow to acknowledge.
	Stall chan struct{}

	Closed    bool
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the level event and its payload.
func (f *FakePublisher) Publish(event logic.LevelEvent) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}

	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event and its payload.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

func (f *FakePublisher) wait() {
	if f.Stall != nil {
		<-f.Stall
	}
}

// Command delivers payload as if it arrived on TopicCommand and records the
// reply that would be published on TopicReply.
func (f *FakePublisher) Command(payload []byte) string {
	if f.OnCommand == nil {
		return ""
	}
	reply := f.OnCommand(payload)

	f.mu.Lock()
	f.Replies = append(f.Replies, reply)
	f.mu.Unlock()
	return reply
}

// SystemEventNames returns the Event field of each recorded system event.
func (f *FakePublisher) SystemEventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		names[i] = e.Event
	}
	return names
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected returns Connected.
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Reset clears everything recorded and any injected errors.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Replies = nil
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Closed = false
	f.Connected = false
}
