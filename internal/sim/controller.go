// Controller owning all mutable simulation state.
//
// Every mutation of vector, mitigations, history, and mission status goes
// through a controller method so the coupled side effects (mission start
// clears mitigations and history, vector changes reset the ramp) live in
// one place.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ddosim/internal/analysis"
	"ddosim/internal/engine"
	"ddosim/internal/logging"
	"ddosim/internal/metrics"
	"ddosim/internal/mission"
	"ddosim/internal/model"
)

// Controller drives the drift engine and the mission state machine and
// fans results out to the configured writer.
type Controller struct {
	runID    string
	tuning   engine.Tuning
	eng      *engine.Engine
	ramp     *engine.Ramp
	vector   model.AttackVector
	toggles  model.MitigationSet
	history  *model.History
	simlog   *model.Log
	run      *mission.Run
	analyzer *analysis.Client
	lastEval *analysis.Assessment
	writer   SnapshotWriter
	metrics  *metrics.Metrics
	rng      *rand.Rand
	now      func() time.Time
	mu       sync.Mutex
}

// NewController seeds a controller at baseline with no attack selected.
// analyzer and m may be nil; analysis then always falls back and no
// prometheus series are updated.
func NewController(runID string, tuning engine.Tuning, writer SnapshotWriter, analyzer *analysis.Client, m *metrics.Metrics) *Controller {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	c := &Controller{
		runID:    runID,
		tuning:   tuning,
		eng:      engine.New(runID, tuning, rng),
		ramp:     engine.NewRamp(tuning.RampDuration),
		vector:   model.VectorNone,
		toggles:  model.NewMitigationSet(),
		history:  model.NewHistory(tuning.HistorySize),
		simlog:   model.NewLog(tuning.LogSize),
		analyzer: analyzer,
		writer:   writer,
		metrics:  m,
		rng:      rng,
		now:      time.Now,
	}
	c.history.Append(tuning.Baseline(runID, c.now()))
	c.logf(model.LogInfo, "simulation initialized, run %s", runID)
	return c
}

// SelectVector switches the active attack vector. Any switch resets the
// ramp clock; selecting none stands the attack down immediately.
func (c *Controller) SelectVector(v model.AttackVector) error {
	if !v.Valid() {
		return fmt.Errorf("unknown attack vector %q", v)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectVectorLocked(v)
	return nil
}

func (c *Controller) selectVectorLocked(v model.AttackVector) {
	c.vector = v
	c.ramp.Select(v, c.now())
	if v == model.VectorNone {
		c.logf(model.LogInfo, "attack stood down")
		return
	}
	c.logf(model.LogWarn, "%s attack selected, ramping over %s", v, c.tuning.RampDuration)
}

// SetMitigation enables or disables one mitigation toggle.
func (c *Controller) SetMitigation(m model.Mitigation, enabled bool) error {
	if !m.Valid() {
		return fmt.Errorf("unknown mitigation %q", m)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toggles[m] = enabled
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	c.logf(model.LogInfo, "mitigation %s %s", m, state)
	return nil
}

// ToggleMitigation flips one mitigation and returns its new state.
func (c *Controller) ToggleMitigation(m model.Mitigation) (bool, error) {
	if !m.Valid() {
		return false, fmt.Errorf("unknown mitigation %q", m)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toggles[m] = !c.toggles[m]
	state := "disabled"
	if c.toggles[m] {
		state = "enabled"
	}
	c.logf(model.LogInfo, "mitigation %s %s", m, state)
	return c.toggles[m], nil
}

// StartMission begins the identified challenge. Side effects: history and
// mitigations are cleared and the challenge's vector is selected, which
// also resets the ramp clock. Restarting from Victory or Failed re-enters
// through the same path.
func (c *Controller) StartMission(id string) error {
	ch, ok := mission.ByID(id)
	if !ok {
		return fmt.Errorf("unknown challenge %q", id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.Clear()
	c.history.Append(c.tuning.Baseline(c.runID, c.now()))
	c.toggles = model.NewMitigationSet()
	c.run = mission.Start(ch, c.now(), c.tuning.GraceWindow)
	c.selectVectorLocked(ch.Vector)
	c.metricsInc(func(m *metrics.Metrics) { m.MissionsStarted.Inc() })
	c.logf(model.LogWarn, "mission %q started: %s", ch.Name, ch.Description)
	return nil
}

// AbortMission returns the mission to Idle and clears history, vector,
// and mitigations.
func (c *Controller) AbortMission() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return
	}
	c.run = nil
	c.resetLocked("mission aborted")
}

// Reset performs the manual full reset: baseline history, no attack, all
// mitigations off, mission cleared. The last analysis result is kept; a
// stale advisory is acceptable.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.run = nil
	c.resetLocked("simulation reset")
}

func (c *Controller) resetLocked(reason string) {
	c.history.Clear()
	c.history.Append(c.tuning.Baseline(c.runID, c.now()))
	c.toggles = model.NewMitigationSet()
	c.vector = model.VectorNone
	c.ramp.Select(model.VectorNone, c.now())
	c.logf(model.LogInfo, "%s", reason)
}

// RunAnalysis fires an advisory analysis request for the newest snapshots.
// It returns an error only when there is not yet enough history; the
// request itself is fire-and-forget and never blocks the tick loop.
func (c *Controller) RunAnalysis(ctx context.Context) error {
	c.mu.Lock()
	if c.history.Len() < c.tuning.AnalysisMinHistory {
		n := c.history.Len()
		c.mu.Unlock()
		return fmt.Errorf("need %d snapshots for analysis, have %d", c.tuning.AnalysisMinHistory, n)
	}
	tail := c.history.Tail(c.tuning.AnalysisWindow)
	vector := c.vector
	enabled := c.toggles.Enabled()
	c.logf(model.LogInfo, "analysis requested")
	c.mu.Unlock()

	c.metricsInc(func(m *metrics.Metrics) { m.AnalysisRequestsTotal.Inc() })

	go func() {
		log := logging.FromContext(ctx)
		client := c.analyzer
		var (
			result analysis.Assessment
			err    error
		)
		if client == nil {
			result, err = analysis.Fallback(), fmt.Errorf("no analysis client configured")
		} else {
			result, err = client.Analyze(ctx, tail, vector, enabled)
		}
		c.mu.Lock()
		c.lastEval = &result
		if err != nil {
			c.metricsInc(func(m *metrics.Metrics) { m.AnalysisFailuresTotal.Inc() })
			c.logf(model.LogWarn, "analysis fell back to neutral result: %v", err)
		} else {
			c.logf(model.LogSuccess, "analysis complete: %s risk", result.RiskScore)
		}
		c.mu.Unlock()
		if err != nil {
			log.Warn("analysis failed open", "err", err)
		}
	}()
	return nil
}

// State returns the operator-facing view of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	s := State{
		RunID:       c.runID,
		Vector:      c.vector,
		RampFactor:  c.ramp.Factor(c.now()),
		Mitigations: c.toggles.Clone(),
		Mission:     MissionView{Status: mission.StatusIdle},
		Assessment:  c.lastEval,
		HistoryLen:  c.history.Len(),
	}
	if c.run != nil {
		ch := c.run.Challenge()
		s.Mission = MissionView{
			Status:      c.run.Status(),
			ChallengeID: ch.ID,
			Name:        ch.Name,
			Description: ch.Description,
			Remaining:   c.run.Remaining(),
		}
		if c.run.Status() == mission.StatusFailed {
			s.Mission.Message = ch.FailureMessage
		}
	}
	return s
}

// History returns a copy of the retained snapshots, oldest first.
func (c *Controller) History() []model.MetricsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Items()
}

// LogEntries returns a copy of the simulation log, oldest first.
func (c *Controller) LogEntries() []model.LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.simlog.Items()
}

// Assessment returns the latest advisory analysis result, if any.
func (c *Controller) Assessment() *analysis.Assessment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEval
}

// Challenges lists the available mission definitions.
func (c *Controller) Challenges() []mission.Challenge {
	return mission.Catalog()
}

// logf records a simulation log entry and forwards it to the writer when
// it supports events. Callers hold the mutex.
func (c *Controller) logf(level model.LogLevel, format string, args ...any) {
	entry := model.LogEntry{Time: c.now(), Level: level, Message: fmt.Sprintf(format, args...)}
	c.simlog.Append(entry)
	if ew, ok := c.writer.(EventWriter); ok {
		_ = ew.WriteEvent(entry)
	}
}

func (c *Controller) metricsInc(fn func(*metrics.Metrics)) {
	if c.metrics != nil {
		fn(c.metrics)
	}
}
