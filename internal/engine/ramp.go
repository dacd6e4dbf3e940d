package engine

import (
	"time"

	"ddosim/internal/model"
)

// Ramp tracks how long the current attack vector has been active and
// converts that into a 0..1 intensity factor. Selecting VectorNone clears
// the clock immediately; there is no ramp-down curve.
type Ramp struct {
	duration time.Duration
	start    time.Time
	active   bool
}

// NewRamp creates a ramp controller saturating after duration.
func NewRamp(duration time.Duration) *Ramp {
	if duration <= 0 {
		duration = time.Millisecond
	}
	return &Ramp{duration: duration}
}

// Select records a vector change at now. Any non-none vector restarts the
// clock; none stands the ramp down.
func (r *Ramp) Select(v model.AttackVector, now time.Time) {
	if v == model.VectorNone {
		r.active = false
		r.start = time.Time{}
		return
	}
	r.active = true
	r.start = now
}

// Factor returns the current ramp factor in [0,1].
func (r *Ramp) Factor(now time.Time) float64 {
	if !r.active {
		return 0
	}
	f := float64(now.Sub(r.start)) / float64(r.duration)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
