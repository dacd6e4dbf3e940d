// Mission state machine layered on top of the drift tick.
package mission

import (
	"time"

	"ddosim/internal/model"
)

// Status of a challenge run.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusActive  Status = "active"
	StatusVictory Status = "victory"
	StatusFailed  Status = "failed"
)

// Challenge is a static mission definition: hold the goal against the
// named vector for the full duration.
type Challenge struct {
	ID             string
	Name           string
	Description    string
	Vector         model.AttackVector
	Duration       time.Duration
	Goal           func(model.MetricsSnapshot) bool
	FailureMessage string
}

// Run is one mutable instance of a challenge in progress.
type Run struct {
	challenge Challenge
	status    Status
	remaining int
	startedAt time.Time
	grace     time.Duration
}

// Start creates an Active run for ch. The caller is responsible for the
// start side effects (clearing history, disabling mitigations, selecting
// the challenge vector).
func Start(ch Challenge, now time.Time, grace time.Duration) *Run {
	return &Run{
		challenge: ch,
		status:    StatusActive,
		remaining: int(ch.Duration / time.Second),
		startedAt: now,
		grace:     grace,
	}
}

// Challenge returns the static definition backing this run.
func (r *Run) Challenge() Challenge { return r.challenge }

// Status returns the run's current state.
func (r *Run) Status() Status { return r.status }

// Remaining returns the countdown in whole seconds.
func (r *Run) Remaining() int { return r.remaining }

// CountdownTick advances the one-second countdown. Reaching zero yields
// Victory on countdown expiry alone; the goal is not re-checked at the
// final instant. Returns true when the status changed.
func (r *Run) CountdownTick() bool {
	if r.status != StatusActive {
		return false
	}
	if r.remaining > 0 {
		r.remaining--
	}
	if r.remaining <= 0 {
		r.status = StatusVictory
		return true
	}
	return false
}

// Evaluate checks the goal against the snapshot produced in the same
// drift tick. A failing goal only fails the run once the grace window
// since attack start has elapsed, so transient noise cannot lose a
// mission instantly. Returns true when the status changed.
func (r *Run) Evaluate(snap model.MetricsSnapshot, now time.Time) bool {
	if r.status != StatusActive {
		return false
	}
	if r.challenge.Goal(snap) {
		return false
	}
	if now.Sub(r.startedAt) <= r.grace {
		return false
	}
	r.status = StatusFailed
	return true
}
