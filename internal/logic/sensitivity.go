package logic

import "time"

// DefaultHold is how long the button must be held to cycle the level.
const DefaultHold = 1000 * time.Millisecond

// Sensitivity tracks button hold duration and cycles the sensitivity level
// once per sustained press.
type Sensitivity struct {
	hold       time.Duration
	level      Level
	pressStart time.Time
	cycled     bool
	lastPress  bool
}

// NewSensitivity creates a controller starting at the given level. An
// invalid level falls back to DefaultLevel.
func NewSensitivity(initial Level, hold time.Duration) *Sensitivity {
	if !initial.Valid() {
		initial = DefaultLevel
	}
	return &Sensitivity{
		hold:  hold,
		level: initial,
	}
}

// Update advances the state machine with one button sample. It returns a
// LevelEvent when the level cycled on this sample, nil otherwise.
func (s *Sensitivity) Update(pressed bool, now time.Time) *LevelEvent {
	var ev *LevelEvent

	switch {
	case pressed && !s.lastPress:
		// Press edge: restart the hold timer
		s.pressStart = now
		s.cycled = false
	case pressed && !s.cycled && now.Sub(s.pressStart) >= s.hold:
		from := s.level
		s.level = s.level.Next()
		s.cycled = true
		ev = &LevelEvent{Timestamp: now, From: from, To: s.level}
	}

	s.lastPress = pressed
	return ev
}

// Level returns the current sensitivity level.
func (s *Sensitivity) Level() Level {
	return s.level
}

// Cycled reports whether the current (or most recent) press already cycled
// the level. Ordinary clicks are suppressed while it is set.
func (s *Sensitivity) Cycled() bool {
	return s.cycled
}
