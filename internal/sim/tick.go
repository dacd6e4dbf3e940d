package sim

import (
	"context"
	"time"

	"ddosim/internal/logging"
	"ddosim/internal/metrics"
	"ddosim/internal/mission"
	"ddosim/internal/model"
)

// Run drives the drift tick and the one-second mission countdown until
// the context is done. The two cadences are independent timers: mission
// countdown accuracy does not depend on the drift cadence.
func (c *Controller) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulation loop", "tick_interval", c.tuning.TickInterval)

	drift := time.NewTicker(c.tuning.TickInterval)
	defer drift.Stop()
	countdown := time.NewTicker(time.Second)
	defer countdown.Stop()

	for {
		select {
		case <-drift.C:
			c.tick(ctx)
		case <-countdown.C:
			c.countdownTick()
		case <-ctx.Done():
			log.Info("stopping simulation loop")
			return
		}
	}
}

// tick computes the next snapshot, retains it, writes it out, and lets
// the mission observe the snapshot produced in this same tick. Writer
// errors are logged and never stop the loop.
func (c *Controller) tick(ctx context.Context) {
	log := logging.FromContext(ctx)

	c.mu.Lock()
	prev, ok := c.history.Latest()
	if !ok {
		prev = c.tuning.Baseline(c.runID, c.now())
	}
	now := c.now()
	snap := c.eng.Drift(prev, c.vector, c.toggles, c.ramp.Factor(now), now)
	c.history.Append(snap)

	if c.run != nil && c.run.Evaluate(snap, now) {
		c.metricsInc(func(m *metrics.Metrics) { m.MissionsFailed.Inc() })
		c.logf(model.LogError, "mission failed: %s", c.run.Challenge().FailureMessage)
	}

	state := c.stateLocked()
	c.mu.Unlock()

	c.metricsInc(func(m *metrics.Metrics) {
		m.TicksTotal.Inc()
		m.ObserveSnapshot(snap.CPU, snap.Efficiency, snap.RPS)
	})

	if err := c.writer.Write(snap); err != nil {
		log.Error("snapshot write failed", "err", err)
	}
	if sw, ok := c.writer.(StateWriter); ok {
		if err := sw.WriteState(state); err != nil {
			log.Error("state write failed", "err", err)
		}
	}
}

// countdownTick advances the mission countdown once per second while a
// run is Active. Victory triggers on countdown expiry.
func (c *Controller) countdownTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil || c.run.Status() != mission.StatusActive {
		return
	}
	if c.run.CountdownTick() {
		c.metricsInc(func(m *metrics.Metrics) { m.MissionsWon.Inc() })
		c.logf(model.LogSuccess, "mission %q accomplished", c.run.Challenge().Name)
	}
}
