package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/stick-mouse/internal/hid"
	"github.com/sweeney/stick-mouse/internal/logic"
	"github.com/sweeney/stick-mouse/internal/status"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		TickMs:      1,
		BlockMs:     500,
		HoldMs:      1000,
		HeartbeatMs: 900000,
		Jitter:      "legacy",
		Sink:        "gadget",
		TTY:         "/dev/ttyGS0",
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, discard)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(logic.LevelLow, true, logic.EventCounts{Commands: 5, Motion: 2})
	tr.SetCommandCounts(status.CommandCounts{Accepted: 5, ProtocolErrors: 1})
	tr.SetUSB("configured", true)
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Level != "LOW" {
		t.Errorf("Level: got %q, want LOW", sj.Status.Level)
	}
	if !sj.Status.Blocking {
		t.Error("expected Blocking=true")
	}
	if sj.Status.USB.State != "configured" || !sj.Status.USB.Ready {
		t.Errorf("USB: got %+v", sj.Status.USB)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.Commands != 5 || sj.Status.Counts.Motion != 2 {
		t.Errorf("Counts: got %+v", sj.Status.Counts)
	}
	if sj.Status.Commands.ProtocolErrors != 1 {
		t.Errorf("Commands.ProtocolErrors: got %d, want 1", sj.Status.Commands.ProtocolErrors)
	}
	if sj.Status.Config.BlockMs != 500 {
		t.Errorf("Config.BlockMs: got %d, want 500", sj.Status.Config.BlockMs)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL)
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(logic.LevelHigh, false, logic.EventCounts{Clicks: 3})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	for _, want := range []string{"Stick Mouse", `<td id="level" class="on">HIGH</td>`, "live", "/dev/ttyGS0"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestDescriptorEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/descriptor.bin")
	if err != nil {
		t.Fatalf("GET /descriptor.bin: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != string(hid.ReportDescriptor) {
		t.Errorf("descriptor mismatch: got %d bytes, want %d", len(body), len(hid.ReportDescriptor))
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	sj1 := getJSON(t, ts.URL)
	if sj1.Status.Level != "MED" {
		t.Errorf("expected MED initially, got %q", sj1.Status.Level)
	}
	if sj1.Status.USB.State != "unknown" {
		t.Errorf("expected unknown USB state initially, got %q", sj1.Status.USB.State)
	}

	tr.Update(logic.LevelHigh, false, logic.EventCounts{LevelChanges: 2})
	tr.SetUSB("suspended", false)

	sj2 := getJSON(t, ts.URL)
	if sj2.Status.Level != "HIGH" {
		t.Errorf("Level: got %q, want HIGH", sj2.Status.Level)
	}
	if sj2.Status.USB.State != "suspended" || sj2.Status.USB.Ready {
		t.Errorf("USB: got %+v", sj2.Status.USB)
	}
	if sj2.Status.Counts.LevelChanges != 2 {
		t.Errorf("LevelChanges: got %d, want 2", sj2.Status.Counts.LevelChanges)
	}
}

func TestLiveStateNotCached(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/", "/index.json"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
			t.Errorf("%s Cache-Control: got %q, want no-store", path, cc)
		}
	}
}

func TestPostNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/index.json", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST /index.json: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{})
	srv := New("127.0.0.1:0", tr, discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunBadAddress(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{})
	srv := New("bad-address", tr, discard)

	if err := srv.Run(context.Background()); err == nil {
		t.Error("expected listen error")
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{59*time.Second + 900*time.Millisecond, "59s"},
		{61 * time.Second, "1m 1s"},
		{time.Hour + 5*time.Second, "1h 0m 5s"},
		{50*time.Hour + 3*time.Minute, "2d 2h 3m 0s"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%v): got %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatMs(t *testing.T) {
	if got := formatMs(0); got != "disabled" {
		t.Errorf("formatMs(0): got %q", got)
	}
	if got := formatMs(900000); got != "15m0s" {
		t.Errorf("formatMs(900000): got %q, want 15m0s", got)
	}
	if got := formatMs(500); got != "500ms" {
		t.Errorf("formatMs(500): got %q, want 500ms", got)
	}
}
