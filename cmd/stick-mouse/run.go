package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/stick-mouse/internal/command"
	"github.com/sweeney/stick-mouse/internal/hid"
	"github.com/sweeney/stick-mouse/internal/input"
	"github.com/sweeney/stick-mouse/internal/led"
	"github.com/sweeney/stick-mouse/internal/logging"
	"github.com/sweeney/stick-mouse/internal/logic"
	"github.com/sweeney/stick-mouse/internal/mqtt"
	"github.com/sweeney/stick-mouse/internal/status"
	"github.com/sweeney/stick-mouse/internal/web"
)

// Run is called by kong for the run command.
func (r *RunCmd) Run(logger *slog.Logger) error {
	level := logic.Level(r.Level)
	if !level.Valid() {
		return fmt.Errorf("invalid level %d: want 1, 2 or 3", r.Level)
	}
	seed := r.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	jitter, err := logic.NewJitter(r.Jitter, seed)
	if err != nil {
		return err
	}

	reader, err := input.NewRealReader(r.Input.config())
	if err != nil {
		return fmt.Errorf("init input: %w", err)
	}
	defer reader.Close()

	var next logic.Sink
	switch r.Sink {
	case hid.SinkGadget:
		g, err := hid.OpenGadget(r.HID, logger)
		if err != nil {
			return fmt.Errorf("init sink: %w", err)
		}
		defer g.Close()
		next = g
	case hid.SinkLog:
		next = hid.NewLogSink(logger)
	default:
		return fmt.Errorf("unknown sink %q", r.Sink)
	}
	gate := hid.NewGatedSink(next)
	gateUSB := r.Sink == hid.SinkGadget
	if !gateUSB {
		gate.SetReady(true)
	}

	mailbox := logic.NewMailbox()
	channel := command.New(mailbox, time.Now, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if r.TTY != "" {
		tty, err := command.OpenTTY(r.TTY)
		if err != nil {
			return fmt.Errorf("init command channel: %w", err)
		}
		defer stopChannel(cancel, tty)
		go func() {
			if err := channel.Run(ctx, tty); err != nil {
				logger.Warn("command channel stopped", "tty", r.TTY, "error", err)
			}
		}()
		logger.Info("command channel listening", "tty", r.TTY)
	}

	var publisher mqtt.Publisher = nopPublisher{}
	var mqttStatus mqtt.ConnectionStatus
	if r.MQTT.Broker != "" {
		p, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:     r.MQTT.Broker,
			ClientID:   r.MQTT.ClientID,
			BufferSize: r.MQTT.BufferSize,
			OnCommand:  channel.Handle,
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		// The tick path only enqueues; broker round trips happen in Async.
		async := mqtt.NewAsync(p, mqtt.DefaultQueueSize, logger)
		defer async.Close()
		publisher, mqttStatus = async, p
	}

	var blinker *led.Blinker
	if r.LED.Pin >= 0 {
		out, err := led.NewGPIOOutput(r.LED.Chip, r.LED.Pin)
		if err != nil {
			logger.Warn("status led unavailable", "pin", r.LED.Pin, "error", err)
		} else {
			defer out.Close()
			blinker = led.NewBlinker(out, time.Now())
		}
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      r.Tick.Milliseconds(),
		BlockMs:     r.Block.Milliseconds(),
		HoldMs:      r.Hold.Milliseconds(),
		HeartbeatMs: r.Heartbeat.Milliseconds(),
		Jitter:      r.Jitter,
		Sink:        r.Sink,
		TTY:         r.TTY,
		Broker:      r.MQTT.Broker,
		HTTPAddr:    r.HTTP,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      mqtt.EventStartup,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, mqtt.EventStartup, ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		logger.Warn("failed to publish startup event", "error", err)
	}

	if r.HTTP != "" {
		srv := web.New(r.HTTP, tracker, logger)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	arbiter := logic.NewArbiter(logic.Config{
		BlockWindow: r.Block,
		Hold:        r.Hold,
		Level:       level,
	}, mailbox, reader, gate, jitter, time.Now())

	l := &loop{
		arbiter:    arbiter,
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		channel:    channel,
		usb:        led.NewUDC(r.LED.UDCRoot, r.LED.UDC),
		gate:       gate,
		gateUSB:    gateUSB,
		blinker:    blinker,
		heartbeat:  r.Heartbeat,
		logger:     logger,
		now:        time.Now,
	}
	l.pollUSB()

	logger.Info("started",
		"tick", r.Tick, "block", r.Block, "hold", r.Hold, "level", level,
		"jitter", r.Jitter, "sink", r.Sink, "broker", r.MQTT.Broker, "heartbeat", r.Heartbeat)

	ticker := time.NewTicker(r.Tick)
	defer ticker.Stop()
	usbTicker := time.NewTicker(r.LED.Poll)
	defer usbTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return l.run(ticker.C, usbTicker.C, sigCh)
}

// usbState reports the raw UDC state.
type usbState interface {
	State() (string, error)
}

// loop owns everything touched on the tick path. Only run's goroutine uses it.
type loop struct {
	arbiter    *logic.Arbiter
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	channel    *command.Channel
	usb        usbState
	gate       *hid.GatedSink
	gateUSB    bool
	blinker    *led.Blinker
	heartbeat  time.Duration
	logger     *slog.Logger
	now        func() time.Time

	usbRaw      string
	usbFailing  bool
	readFailing bool
}

func (l *loop) run(tick, usbPoll <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			l.shutdown(s)
			return nil

		case <-usbPoll:
			l.pollUSB()

		case <-tick:
			l.tick(l.now())
		}
	}
}

func (l *loop) tick(t time.Time) {
	d, err := l.arbiter.Tick(t)
	if err != nil {
		// Logged once per failure streak.
		if !l.readFailing {
			l.logger.Warn("input read error", "error", err)
		}
		l.readFailing = true
	} else if l.readFailing {
		l.logger.Info("input read recovered")
		l.readFailing = false
	}

	if d.Emit && !d.Delivered {
		l.logger.Log(context.Background(), logging.LevelTrace, "report dropped", "source", d.Source)
	}

	if ev := d.LevelChange; ev != nil {
		l.logger.Info("sensitivity changed", "from", ev.From, "to", ev.To)
		if err := l.publisher.Publish(*ev); err != nil {
			l.logger.Warn("publish error", "error", err)
		}
	}

	if hb := l.arbiter.CheckHeartbeat(t, l.heartbeat); hb != nil {
		l.logger.Info("heartbeat",
			"uptime", hb.Uptime, "level", hb.Level,
			"commands", hb.Counts.Commands, "motion", hb.Counts.Motion, "clicks", hb.Counts.Clicks,
			"blocked", hb.Counts.Blocked, "dropped", hb.Counts.Dropped)

		event := mqtt.SystemEvent{
			Timestamp: hb.Timestamp,
			Event:     mqtt.EventHeartbeat,
		}
		if l.tracker != nil {
			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				l.tracker.SetNetwork(net)
			}
			l.updateTracker(t)
			event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), mqtt.EventHeartbeat, "")
		}
		if err := l.publisher.PublishSystem(event); err != nil {
			l.logger.Warn("heartbeat publish error", "error", err)
		}
	}

	if l.blinker != nil {
		if err := l.blinker.Tick(t); err != nil {
			l.logger.Debug("led write error", "error", err)
		}
	}

	l.updateTracker(t)
}

func (l *loop) updateTracker(t time.Time) {
	if l.tracker == nil {
		return
	}
	l.tracker.Update(l.arbiter.Level(), l.arbiter.Blocking(t), l.arbiter.EventCountsSnapshot())
	if l.channel != nil {
		c := l.channel.Counts()
		l.tracker.SetCommandCounts(status.CommandCounts{
			Accepted:       c.Accepted,
			FormatErrors:   c.FormatErrors,
			ProtocolErrors: c.ProtocolErrors,
		})
	}
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

// pollUSB refreshes the controller state. With the gadget sink, reports are
// only offered to the host while the controller is configured.
func (l *loop) pollUSB() {
	if l.usb == nil {
		return
	}
	raw, err := l.usb.State()
	if err != nil {
		if !l.usbFailing {
			l.logger.Debug("usb state unavailable", "error", err)
		}
		raw = ""
	}
	l.usbFailing = err != nil

	if raw != l.usbRaw {
		l.logger.Info("usb state changed", "from", l.usbRaw, "to", raw)
		l.usbRaw = raw
	}

	state := led.StateFromUDC(raw)
	if l.gateUSB {
		l.gate.SetReady(state == led.Mounted)
	}
	if l.blinker != nil {
		l.blinker.SetState(state)
	}
	if l.tracker != nil {
		l.tracker.SetUSB(raw, l.gate.Ready())
	}
}

func (l *loop) shutdown(s os.Signal) {
	l.logger.Info("shutting down", "signal", s)
	signalName := "UNKNOWN"
	switch s {
	case syscall.SIGINT:
		signalName = "SIGINT"
	case syscall.SIGTERM:
		signalName = "SIGTERM"
	}

	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     mqtt.EventShutdown,
		Reason:    signalName,
		Retained:  true,
	}
	if l.tracker != nil {
		l.updateTracker(event.Timestamp)
		event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), mqtt.EventShutdown, signalName)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		l.logger.Warn("failed to publish shutdown event", "error", err)
	}
}

// stopChannel ends the command channel's context before closing its device,
// so Run sees a clean stop rather than a read error.
func stopChannel(cancel context.CancelFunc, dev io.Closer) error {
	cancel()
	return dev.Close()
}

// nopPublisher stands in when no broker is configured.
type nopPublisher struct{}

func (nopPublisher) Publish(logic.LevelEvent) error { return nil }

func (nopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }

func (nopPublisher) Close() error { return nil }

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
