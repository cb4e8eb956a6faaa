package logic

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Jitter perturbs an injected delta so commanded motion is not perfectly linear.
type Jitter interface {
	// Offset returns the amount added to v.
	Offset(v int8) int
}

// JitterFunc adapts a function to the Jitter interface.
type JitterFunc func(v int8) int

// Offset calls f(v).
func (f JitterFunc) Offset(v int8) int { return f(v) }

// NoJitter leaves injected deltas untouched.
var NoJitter = JitterFunc(func(int8) int { return 0 })

// proportion is the share of the commanded delta added to the perturbation.
const proportion = 0.03

// LegacyJitter reproduces the firmware's perturbation:
// trunc(rand%2 - 2 + v*0.03). It is biased negative, landing in [-2, 0]
// for small deltas.
type LegacyJitter struct {
	rng *rand.Rand
}

// NewLegacyJitter creates a LegacyJitter seeded from seed.
func NewLegacyJitter(seed uint64) *LegacyJitter {
	return &LegacyJitter{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Offset implements Jitter.
func (j *LegacyJitter) Offset(v int8) int {
	return int(float64(j.rng.IntN(2)) - 2 + float64(v)*proportion)
}

// SymmetricJitter draws from {-1, 0, 1} and adds round(v*0.03).
type SymmetricJitter struct {
	rng *rand.Rand
}

// NewSymmetricJitter creates a SymmetricJitter seeded from seed.
func NewSymmetricJitter(seed uint64) *SymmetricJitter {
	return &SymmetricJitter{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Offset implements Jitter.
func (j *SymmetricJitter) Offset(v int8) int {
	return j.rng.IntN(3) - 1 + int(math.Round(float64(v)*proportion))
}

// Jitter mode names accepted by NewJitter.
const (
	JitterLegacy    = "legacy"
	JitterSymmetric = "symmetric"
	JitterNone      = "none"
)

// NewJitter returns the Jitter for a mode name.
func NewJitter(mode string, seed uint64) (Jitter, error) {
	switch mode {
	case JitterLegacy, "":
		return NewLegacyJitter(seed), nil
	case JitterSymmetric:
		return NewSymmetricJitter(seed), nil
	case JitterNone:
		return NoJitter, nil
	}
	return nil, fmt.Errorf("unknown jitter mode %q", mode)
}
