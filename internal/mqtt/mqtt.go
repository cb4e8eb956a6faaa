// Package mqtt publishes sensitivity and lifecycle events and accepts
// injected command records over a broker. Publisher has a fake for tests.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// Topics used by the daemon.
const (
	Topic        = "input/stick-mouse/events"
	TopicSystem  = "input/stick-mouse/system"
	TopicCommand = "input/stick-mouse/command"
	TopicReply   = "input/stick-mouse/reply"
)

// Event names. Level events go to Topic, the rest to TopicSystem.
const (
	EventLevelChanged = "LEVEL_CHANGED"
	EventStartup      = "STARTUP"
	EventShutdown     = "SHUTDOWN"
	EventHeartbeat    = "HEARTBEAT"
	EventOffline      = "OFFLINE"
	EventReconnected  = "RECONNECTED"
)

// Publisher is the daemon's view of the broker. Publish errors are
// reported and never fatal.
type Publisher interface {
	Publish(event logic.LevelEvent) error
	PublishSystem(event SystemEvent) error
	Close() error
}

// ConnectionStatus reports whether the broker connection is up.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandHandler decodes one command record and returns its reply.
type CommandHandler func(payload []byte) string

// SystemEvent is a lifecycle message. When RawPayload is non-nil it is sent
// unchanged; the status snapshot events use it.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // signal name, SHUTDOWN only
	RawPayload []byte
	Retained   bool
}

// Payload is the body published on Topic.
type Payload struct {
	Mouse MousePayload `json:"mouse"`
}

type MousePayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// FormatPayload renders a level change.
func FormatPayload(event logic.LevelEvent) ([]byte, error) {
	return json.Marshal(Payload{Mouse: MousePayload{
		Timestamp: rfc3339(event.Timestamp),
		Event:     EventLevelChanged,
		From:      event.From.String(),
		To:        event.To.String(),
	}})
}

// SystemPayload is the short form used by OFFLINE and RECONNECTED, which
// carry no status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload returns event.RawPayload if set, else the short form.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{System: SystemPayloadInner{
		Timestamp: rfc3339(event.Timestamp),
		Event:     event.Event,
		Reason:    event.Reason,
	}})
}

func rfc3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
