package mqtt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/stick-mouse/internal/logic"
)

var testTime = time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)

func TestFormatPayload(t *testing.T) {
	event := logic.LevelEvent{
		Timestamp: testTime,
		From:      logic.LevelMed,
		To:        logic.LevelLow,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"mouse":{"timestamp":"2026-02-02T22:18:12Z","event":"LEVEL_CHANGED","from":"MED","to":"LOW"}}`
	if string(payload) != want {
		t.Errorf("payload:\n got %s\nwant %s", payload, want)
	}
}

func TestFormatPayloadAllTransitions(t *testing.T) {
	tests := []struct {
		from, to logic.Level
		wantFrom string
		wantTo   string
	}{
		{logic.LevelHigh, logic.LevelMed, "HIGH", "MED"},
		{logic.LevelMed, logic.LevelLow, "MED", "LOW"},
		{logic.LevelLow, logic.LevelHigh, "LOW", "HIGH"},
	}

	for _, tt := range tests {
		t.Run(tt.wantFrom+"_"+tt.wantTo, func(t *testing.T) {
			payload, err := FormatPayload(logic.LevelEvent{Timestamp: time.Now(), From: tt.from, To: tt.to})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if parsed.Mouse.From != tt.wantFrom || parsed.Mouse.To != tt.wantTo {
				t.Errorf("got %s->%s, want %s->%s", parsed.Mouse.From, parsed.Mouse.To, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestFormatSystemPayload(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: testTime,
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != want {
		t.Errorf("payload:\n got %s\nwant %s", payload, want)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, _ := FormatSystemPayload(SystemEvent{Timestamp: testTime, Event: "RECONNECTED"})

	want := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"RECONNECTED"}}`
	if string(payload) != want {
		t.Errorf("payload:\n got %s\nwant %s", payload, want)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"HEARTBEAT"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "HEARTBEAT", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.Publish(logic.LevelEvent{Timestamp: testTime, From: logic.LevelMed, To: logic.LevelLow}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.PublishSystem(SystemEvent{Timestamp: testTime, Event: "STARTUP"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 || len(f.Payloads) != 1 {
		t.Fatalf("expected 1 event and payload, got %d/%d", len(f.Events), len(f.Payloads))
	}
	if names := f.SystemEventNames(); len(names) != 1 || names[0] != "STARTUP" {
		t.Errorf("unexpected system events: %v", names)
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")
	f.PublishSystemError = errors.New("simulated system error")

	if err := f.Publish(logic.LevelEvent{}); err == nil {
		t.Error("expected error")
	}
	if err := f.PublishSystem(SystemEvent{}); err == nil {
		t.Error("expected system error")
	}
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("expected nothing recorded on error")
	}
}

func TestFakePublisherCloseAndReset(t *testing.T) {
	f := NewFakePublisher()
	f.Connected = true
	f.Publish(logic.LevelEvent{})
	f.Close()

	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed || f.Connected || len(f.Events) != 0 {
		t.Error("Reset should clear all recorded state")
	}
}

func TestFakePublisherCommand(t *testing.T) {
	f := NewFakePublisher()
	if reply := f.Command([]byte("55 0 0 0 0 0 0")); reply != "" {
		t.Errorf("expected no reply without a handler, got %q", reply)
	}

	var got []string
	f.OnCommand = func(payload []byte) string {
		got = append(got, string(payload))
		return logic.ReplyOK
	}
	if reply := f.Command([]byte("55 0 0 0 0 0 0")); reply != logic.ReplyOK {
		t.Errorf("reply: got %q", reply)
	}
	if len(got) != 1 || len(f.Replies) != 1 || f.Replies[0] != logic.ReplyOK {
		t.Errorf("handler calls %v, replies %v", got, f.Replies)
	}
}

// doneToken is a completed paho token.
type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

// fakeClient implements the subset of paho.Client the publisher uses.
type fakeClient struct {
	paho.Client
	open       bool
	published  []pendingMsg
	subscribed map[string]paho.MessageHandler
}

func newFakeClient(open bool) *fakeClient {
	return &fakeClient{open: open, subscribed: map[string]paho.MessageHandler{}}
}

func (c *fakeClient) IsConnectionOpen() bool { return c.open }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	var b []byte
	switch v := payload.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	}
	c.published = append(c.published, pendingMsg{topic: topic, payload: b, qos: qos, retained: retained})
	return doneToken{}
}

func (c *fakeClient) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	c.subscribed[topic] = cb
	return doneToken{}
}

// fakeMessage implements paho.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func newTestPublisher(client *fakeClient, onCommand CommandHandler) *RealPublisher {
	p := newPublisher(Options{
		BufferSize: 3,
		OnCommand:  onCommand,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        func() time.Time { return testTime },
	})
	p.client = client
	return p
}

func TestRealPublisherSendsWhenConnected(t *testing.T) {
	client := newFakeClient(true)
	p := newTestPublisher(client, nil)

	if err := p.Publish(logic.LevelEvent{Timestamp: testTime, From: logic.LevelMed, To: logic.LevelLow}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{Timestamp: testTime, Event: "STARTUP", Retained: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.published) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(client.published))
	}
	if m := client.published[0]; m.topic != Topic || m.qos != 0 || m.retained {
		t.Errorf("level event: unexpected %s qos=%d retained=%v", m.topic, m.qos, m.retained)
	}
	if m := client.published[1]; m.topic != TopicSystem || m.qos != 1 || !m.retained {
		t.Errorf("system event: unexpected %s qos=%d retained=%v", m.topic, m.qos, m.retained)
	}
	if p.Buffered() != 0 {
		t.Errorf("expected nothing buffered, got %d", p.Buffered())
	}
}

func TestRealPublisherBuffersAndReplays(t *testing.T) {
	client := newFakeClient(false)
	p := newTestPublisher(client, nil)

	for i := 0; i < 4; i++ {
		p.PublishSystem(SystemEvent{Timestamp: testTime, Event: "HEARTBEAT", Reason: string(rune('a' + i))})
	}
	if len(client.published) != 0 {
		t.Fatalf("expected nothing sent while disconnected, got %d", len(client.published))
	}
	if p.Buffered() != 3 {
		t.Errorf("expected buffer capped at 3, got %d", p.Buffered())
	}

	client.open = true
	p.onConnect(client)

	if len(client.published) != 3 {
		t.Fatalf("expected 3 replayed messages, got %d", len(client.published))
	}
	// Oldest was dropped: replay starts at "b"
	var first SystemPayload
	json.Unmarshal(client.published[0].payload, &first)
	if first.System.Reason != "b" {
		t.Errorf("expected replay to start at reason b, got %q", first.System.Reason)
	}
	if p.Buffered() != 0 {
		t.Errorf("expected empty buffer after replay, got %d", p.Buffered())
	}
}

func TestRealPublisherReconnectedEvent(t *testing.T) {
	client := newFakeClient(true)
	p := newTestPublisher(client, nil)

	p.onConnect(client)
	if len(client.published) != 0 {
		t.Fatalf("first connect should publish nothing, got %d", len(client.published))
	}

	p.onConnect(client)
	if len(client.published) != 1 {
		t.Fatalf("expected RECONNECTED on second connect, got %d messages", len(client.published))
	}
	want := `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"RECONNECTED"}}`
	if got := string(client.published[0].payload); got != want {
		t.Errorf("payload:\n got %s\nwant %s", got, want)
	}
}

func TestRealPublisherCommandSubscription(t *testing.T) {
	client := newFakeClient(true)
	var received []string
	p := newTestPublisher(client, func(payload []byte) string {
		received = append(received, string(payload))
		return "ok\n"
	})

	p.onConnect(client)

	cb, ok := client.subscribed[TopicCommand]
	if !ok {
		t.Fatalf("expected subscription to %s", TopicCommand)
	}

	cb(client, fakeMessage{topic: TopicCommand, payload: []byte("55 1 10 -5 0 0 6")})

	if len(received) != 1 || received[0] != "55 1 10 -5 0 0 6" {
		t.Errorf("handler got %v", received)
	}
	if len(client.published) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(client.published))
	}
	if m := client.published[0]; m.topic != TopicReply || string(m.payload) != "ok\n" {
		t.Errorf("unexpected reply %s %q", m.topic, m.payload)
	}
}

func TestRealPublisherNoSubscriptionWithoutHandler(t *testing.T) {
	client := newFakeClient(true)
	p := newTestPublisher(client, nil)

	p.onConnect(client)
	if len(client.subscribed) != 0 {
		t.Errorf("expected no subscriptions, got %v", client.subscribed)
	}
}
