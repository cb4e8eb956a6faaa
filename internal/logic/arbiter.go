package logic

import "time"

// DefaultBlockWindow is how long joystick input stays suppressed after an
// injected command arrives.
const DefaultBlockWindow = 500 * time.Millisecond

// Sampler reads the physical inputs. It is only called on ticks that fall
// through to the joystick path.
type Sampler interface {
	Sample() (Sample, error)
}

// Sink delivers reports to the host. TrySend returns false when the
// transport is not ready; the report is then dropped.
type Sink interface {
	TrySend(r Report) bool
}

// Config holds arbiter tuning.
type Config struct {
	BlockWindow time.Duration
	Hold        time.Duration
	Level       Level
}

// Arbiter chooses, once per tick, between a pending injected command, the
// block window and joystick-derived motion or click. It emits at most one
// report per tick.
type Arbiter struct {
	cfg           Config
	mailbox       *Mailbox
	sens          *Sensitivity
	jitter        Jitter
	sampler       Sampler
	sink          Sink
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewArbiter wires an arbiter. A nil jitter means NoJitter. Zero durations
// in cfg fall back to the defaults.
func NewArbiter(cfg Config, mailbox *Mailbox, sampler Sampler, sink Sink, jitter Jitter, startTime time.Time) *Arbiter {
	if cfg.BlockWindow <= 0 {
		cfg.BlockWindow = DefaultBlockWindow
	}
	if cfg.Hold <= 0 {
		cfg.Hold = DefaultHold
	}
	if jitter == nil {
		jitter = NoJitter
	}
	return &Arbiter{
		cfg:           cfg,
		mailbox:       mailbox,
		sens:          NewSensitivity(cfg.Level, cfg.Hold),
		jitter:        jitter,
		sampler:       sampler,
		sink:          sink,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Tick runs one arbitration step at time now. The returned error is the
// sampler's; the tick then emits nothing.
func (a *Arbiter) Tick(now time.Time) (Decision, error) {
	d, err := a.decide(now)
	d.Time = now
	d.Level = a.sens.Level()

	if d.Emit {
		d.Delivered = a.sink.TrySend(d.Report)
		if !d.Delivered {
			a.eventCounts.Dropped++
		}
	}
	a.count(d)
	return d, err
}

func (a *Arbiter) decide(now time.Time) (Decision, error) {
	// Injected command first; consumed whether or not the sink takes it
	if cmd, ok := a.mailbox.Take(); ok {
		return Decision{
			Source: SourceCommand,
			Emit:   true,
			Report: Report{
				Buttons: cmd.Buttons,
				DX:      a.perturb(cmd.DX),
				DY:      a.perturb(cmd.DY),
				Wheel:   cmd.Wheel,
				Pan:     cmd.Pan,
			},
		}, nil
	}

	if a.mailbox.Blocking(now, a.cfg.BlockWindow) {
		return Decision{Source: SourceBlocked}, nil
	}

	s, err := a.sampler.Sample()
	if err != nil {
		return Decision{Source: SourceReadFail}, err
	}

	d := Decision{LevelChange: a.sens.Update(s.Pressed, now)}
	level := a.sens.Level()

	mouseX := int(Normalize(s.X)) / level.Divisor()
	mouseY := int(Normalize(s.Y)) / level.YDivisor()

	switch {
	case mouseX != 0 || mouseY != 0:
		d.Source = SourceMotion
		d.Emit = true
		d.Report = Report{DX: int8(mouseX), DY: int8(mouseY)}
	case s.Pressed && !a.sens.Cycled():
		d.Source = SourceClick
		d.Emit = true
		d.Report = Report{Buttons: ButtonLeft}
	}
	return d, nil
}

func (a *Arbiter) perturb(v int8) int8 {
	return int8(clamp(int(v)+a.jitter.Offset(v), -AxisLimit, AxisLimit))
}

func (a *Arbiter) count(d Decision) {
	switch d.Source {
	case SourceCommand:
		a.eventCounts.Commands++
	case SourceBlocked:
		a.eventCounts.Blocked++
	case SourceMotion:
		a.eventCounts.Motion++
	case SourceClick:
		a.eventCounts.Clicks++
	case SourceReadFail:
		a.eventCounts.ReadErrors++
	}
	if d.LevelChange != nil {
		a.eventCounts.LevelChanges++
	}
}

// Level returns the current sensitivity level.
func (a *Arbiter) Level() Level {
	return a.sens.Level()
}

// Blocking reports whether joystick input is currently suppressed.
func (a *Arbiter) Blocking(now time.Time) bool {
	return a.mailbox.Blocking(now, a.cfg.BlockWindow)
}

// EventCountsSnapshot returns a copy of the outcome counters.
func (a *Arbiter) EventCountsSnapshot() EventCounts {
	return a.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (a *Arbiter) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(a.lastHeartbeat) < interval {
		return nil
	}

	a.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(a.startTime),
		Counts:    a.eventCounts,
		Level:     a.sens.Level(),
	}
}
