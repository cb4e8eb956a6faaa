// Package status tracks live daemon state for the HTTP page and the MQTT
// lifecycle events. All methods are safe for concurrent use.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// NetworkInfo describes the host network as reported by the pi-helper
// environment. It is kept here so status does not depend on mqtt.
type NetworkInfo struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// CommandCounts mirrors the command channel's outcome counters.
type CommandCounts struct {
	Accepted       int `json:"accepted"`
	FormatErrors   int `json:"format_errors"`
	ProtocolErrors int `json:"protocol_errors"`
}

// Config is the effective configuration, shown as-is.
type Config struct {
	TickMs      int64  `json:"tick_ms"`
	BlockMs     int64  `json:"block_ms"`
	HoldMs      int64  `json:"hold_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Jitter      string `json:"jitter"`
	Sink        string `json:"sink"`
	TTY         string `json:"tty,omitempty"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

// Snapshot is a copy of the tracked state at one instant.
type Snapshot struct {
	Level         logic.Level
	Blocking      bool
	Counts        logic.EventCounts
	Commands      CommandCounts
	USBState      string
	SinkReady     bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime is Now minus StartTime.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker is written by the run loop and read by everything else.
type Tracker struct {
	mu    sync.RWMutex
	state Snapshot
	now   func() time.Time
}

// NewTracker starts tracking at the default sensitivity level.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		state: Snapshot{Level: logic.DefaultLevel, StartTime: startTime, Config: cfg},
		now:   time.Now,
	}
}

func (t *Tracker) set(fn func(*Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.state)
}

// Update records the arbiter's level, block window and counters.
func (t *Tracker) Update(level logic.Level, blocking bool, counts logic.EventCounts) {
	t.set(func(s *Snapshot) {
		s.Level, s.Blocking, s.Counts = level, blocking, counts
	})
}

// SetCommandCounts records the command channel counters.
func (t *Tracker) SetCommandCounts(c CommandCounts) {
	t.set(func(s *Snapshot) { s.Commands = c })
}

// SetUSB records the controller state and whether the sink accepts reports.
func (t *Tracker) SetUSB(state string, ready bool) {
	t.set(func(s *Snapshot) { s.USBState, s.SinkReady = state, ready })
}

func (t *Tracker) SetMQTTConnected(connected bool) {
	t.set(func(s *Snapshot) { s.MQTTConnected = connected })
}

func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.set(func(s *Snapshot) { s.Network = info })
}

// Snapshot copies the state and stamps Now from the tracker's clock.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.state
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
