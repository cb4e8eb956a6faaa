package status

import (
	"encoding/json"
	"time"
)

// StatusJSON wraps the document under a single "status" key.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner is the document served on /index.json and published as the
// payload of system events. Event and Reason are set for events only.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Level         string        `json:"level"`
	Blocking      bool          `json:"blocking"`
	USB           USBStatus     `json:"usb"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Counts        CountsJSON    `json:"event_counts"`
	Commands      CommandCounts `json:"command_counts"`
	Network       *NetworkInfo  `json:"network,omitempty"`
	Config        Config        `json:"config"`
}

type USBStatus struct {
	State string `json:"state"`
	Ready bool   `json:"ready"`
}

type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON has the field set of logic.EventCounts, so one converts
// directly to the other.
type CountsJSON struct {
	Commands     int `json:"commands"`
	Motion       int `json:"motion"`
	Clicks       int `json:"clicks"`
	Blocked      int `json:"blocked"`
	Dropped      int `json:"dropped"`
	LevelChanges int `json:"level_changes"`
	ReadErrors   int `json:"read_errors"`
}

func document(snap Snapshot) StatusJSON {
	usb := snap.USBState
	if usb == "" {
		usb = "unknown"
	}
	var network *NetworkInfo
	if snap.Network != nil {
		n := *snap.Network
		network = &n
	}

	return StatusJSON{Status: StatusInner{
		Level:         snap.Level.String(),
		Blocking:      snap.Blocking,
		USB:           USBStatus{State: usb, Ready: snap.SinkReady},
		UptimeSeconds: int64(snap.Uptime() / time.Second),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts:        CountsJSON(snap.Counts),
		Commands:      snap.Commands,
		Network:       network,
		Config:        snap.Config,
	}}
}

// FormatJSON renders the indented document for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(document(snap), "", "  ")
	return data
}

// FormatStatusEvent renders the compact document for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	doc := document(snap)
	doc.Status.Event = event
	doc.Status.Reason = reason
	data, _ := json.Marshal(doc)
	return data
}
