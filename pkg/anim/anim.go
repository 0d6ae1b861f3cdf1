// Package anim implements the quarter-turn rotation that plays whenever a
// new snapshot replaces the old one.
//
// The animation is a countdown. [State.Restart] sets the counter to
// [Frames]; each [State.Tick] lowers it by one until it reaches zero. The
// counter maps to a rotation angle that sweeps from 3π/4 down to π/4, one
// quarter turn, which the cube package reduces modulo π/2.
package anim

import (
	"fmt"
	"math"
	"strings"
)

// Frames is the number of ticks in one rotation.
const Frames = 15

// Status reports whether the animation is playing.
type Status int

const (
	Idle Status = iota
	Animating
)

func (s Status) String() string {
	if s == Animating {
		return "animating"
	}
	return "idle"
}

// Easing remaps the linear progress p in [0, 1].
type Easing func(p float64) float64

// Linear leaves progress unchanged.
func Linear(p float64) float64 { return p }

// CubicInOut accelerates through the first half and decelerates through
// the second.
func CubicInOut(p float64) float64 {
	p *= 2
	if p <= 1 {
		return p * p * p / 2
	}
	p -= 2
	return (p*p*p + 2) / 2
}

// ParseEasing resolves an easing by name. The empty string selects Linear.
func ParseEasing(name string) (Easing, error) {
	switch strings.ToLower(name) {
	case "", "linear":
		return Linear, nil
	case "cubic", "cubic-in-out", "cubic_in_out":
		return CubicInOut, nil
	}
	return nil, fmt.Errorf("unknown easing %q", name)
}

// State is the animation counter. The zero value is idle.
type State struct {
	Counter int
}

// Restart begins a new rotation from the top.
func (s *State) Restart() { s.Counter = Frames }

// Tick advances one frame and reports whether the animation is still
// running afterwards. Ticking an idle state does nothing.
func (s *State) Tick() bool {
	if s.Counter <= 0 {
		s.Counter = 0
		return false
	}
	s.Counter--
	return s.Counter > 0
}

// Running reports whether frames remain.
func (s State) Running() bool { return s.Counter > 0 }

// Status returns Animating while frames remain, Idle otherwise.
func (s State) Status() Status {
	if s.Running() {
		return Animating
	}
	return Idle
}

// Progress is the fraction of the rotation still to play, 1 at restart and
// 0 when idle.
func (s State) Progress() float64 {
	return float64(s.Counter) / Frames
}

// Angle returns the linear rotation angle for the current counter.
func (s State) Angle() float64 {
	return s.AngleWith(Linear)
}

// AngleWith returns the rotation angle after passing progress through e.
// A nil easing is linear.
func (s State) AngleWith(e Easing) float64 {
	p := s.Progress()
	if e != nil {
		p = e(p)
	}
	return p*math.Pi/2 + math.Pi/4
}
