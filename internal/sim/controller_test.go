package sim

import (
	"context"
	"testing"
	"time"

	"ddosim/internal/engine"
	"ddosim/internal/mission"
	"ddosim/internal/model"
)

// mockWriter records everything the controller emits.
type mockWriter struct {
	snapshots []model.MetricsSnapshot
	events    []model.LogEntry
	states    []State
}

func (w *mockWriter) Write(s model.MetricsSnapshot) error { w.snapshots = append(w.snapshots, s); return nil }
func (w *mockWriter) WriteEvent(e model.LogEntry) error   { w.events = append(w.events, e); return nil }
func (w *mockWriter) WriteState(s State) error            { w.states = append(w.states, s); return nil }

func testController(w SnapshotWriter) (*Controller, time.Time) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewController("run-test", engine.DefaultTuning(), w, nil, nil)
	c.now = func() time.Time { return start }
	return c, start
}

func TestController_TickAppendsAndWrites(t *testing.T) {
	w := &mockWriter{}
	c, _ := testController(w)

	c.tick(context.Background())

	if c.history.Len() != 2 {
		t.Fatalf("expected baseline plus one tick, got %d", c.history.Len())
	}
	if len(w.snapshots) != 1 {
		t.Fatalf("expected one written snapshot, got %d", len(w.snapshots))
	}
	if len(w.states) != 1 {
		t.Fatalf("expected one written state, got %d", len(w.states))
	}
	if w.snapshots[0].RunID != "run-test" {
		t.Fatalf("snapshot missing run id: %+v", w.snapshots[0])
	}
}

func TestController_SelectVectorStartsRamp(t *testing.T) {
	w := &mockWriter{}
	c, start := testController(w)

	if err := c.SelectVector(model.VectorVolumetric); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if f := c.State().RampFactor; f != 0 {
		t.Fatalf("ramp should start at 0, got %f", f)
	}
	c.now = func() time.Time { return start.Add(4 * time.Second) }
	if f := c.State().RampFactor; f != 0.5 {
		t.Fatalf("ramp should be 0.5 after 4s, got %f", f)
	}

	if err := c.SelectVector(model.AttackVector("smurf")); err == nil {
		t.Fatalf("unknown vector accepted")
	}
}

func TestController_StartMissionSideEffects(t *testing.T) {
	w := &mockWriter{}
	c, _ := testController(w)

	// Dirty the controller first so the reset-on-start is observable.
	if err := c.SetMitigation(model.MitigationWAF, true); err != nil {
		t.Fatalf("set mitigation failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		c.tick(context.Background())
	}

	if err := c.StartMission("flood-wall"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if c.history.Len() != 1 {
		t.Fatalf("mission start must reset history to baseline, got %d", c.history.Len())
	}
	s := c.State()
	if s.Vector != model.VectorVolumetric {
		t.Fatalf("expected challenge vector selected, got %s", s.Vector)
	}
	for m, on := range s.Mitigations {
		if on {
			t.Fatalf("mitigation %s survived mission start", m)
		}
	}
	if s.Mission.Status != mission.StatusActive || s.Mission.Remaining != 60 {
		t.Fatalf("unexpected mission view: %+v", s.Mission)
	}

	if err := c.StartMission("no-such-id"); err == nil {
		t.Fatalf("unknown challenge accepted")
	}
}

func TestController_CountdownToVictory(t *testing.T) {
	w := &mockWriter{}
	c, _ := testController(w)

	if err := c.StartMission("handshake-storm"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for i := 0; i < 30; i++ {
		c.countdownTick()
	}
	s := c.State()
	if s.Mission.Status != mission.StatusVictory {
		t.Fatalf("expected victory after full countdown, got %s", s.Mission.Status)
	}

	found := false
	for _, e := range w.events {
		if e.Level == model.LogSuccess {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a success log entry, got %+v", w.events)
	}
}

func TestController_MissionFailsAfterGrace(t *testing.T) {
	w := &mockWriter{}
	c, start := testController(w)

	if err := c.StartMission("flood-wall"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Saturate the service so the drifted snapshot cannot meet the goal,
	// then evaluate past the grace window.
	c.history.Clear()
	c.history.Append(model.MetricsSnapshot{
		RunID:      "run-test",
		RPS:        50000,
		CPU:        100,
		Memory:     100,
		ResponseMS: 5000,
		ErrorRate:  100,
		Bandwidth:  100,
		Efficiency: 0,
		Timestamp:  start,
	})
	c.now = func() time.Time { return start.Add(10 * time.Second) }
	c.tick(context.Background())

	s := c.State()
	if s.Mission.Status != mission.StatusFailed {
		t.Fatalf("expected failed mission, got %s", s.Mission.Status)
	}
	if s.Mission.Message == "" {
		t.Fatalf("failed mission should carry its failure message")
	}
}

func TestController_ResetSemantics(t *testing.T) {
	w := &mockWriter{}
	c, _ := testController(w)

	if err := c.StartMission("layer7-lockdown"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		c.tick(context.Background())
	}
	c.Reset()

	s := c.State()
	if s.Vector != model.VectorNone {
		t.Fatalf("reset must stand the attack down, got %s", s.Vector)
	}
	if s.Mission.Status != mission.StatusIdle {
		t.Fatalf("reset must clear the mission, got %s", s.Mission.Status)
	}
	if c.history.Len() != 1 {
		t.Fatalf("reset must reseed baseline history, got %d", c.history.Len())
	}
}

func TestController_RunAnalysisRequiresHistory(t *testing.T) {
	w := &mockWriter{}
	c, _ := testController(w)

	if err := c.RunAnalysis(context.Background()); err == nil {
		t.Fatalf("expected an error with only the baseline snapshot")
	}

	for i := 0; i < 5; i++ {
		c.tick(context.Background())
	}
	if err := c.RunAnalysis(context.Background()); err != nil {
		t.Fatalf("expected analysis to be accepted, got %v", err)
	}
}

func TestController_ToggleMitigation(t *testing.T) {
	w := &mockWriter{}
	c, _ := testController(w)

	on, err := c.ToggleMitigation(model.MitigationCDN)
	if err != nil || !on {
		t.Fatalf("expected first toggle to enable, got %v %v", on, err)
	}
	on, err = c.ToggleMitigation(model.MitigationCDN)
	if err != nil || on {
		t.Fatalf("expected second toggle to disable, got %v %v", on, err)
	}
	if _, err := c.ToggleMitigation(model.Mitigation("tarpit")); err == nil {
		t.Fatalf("unknown mitigation accepted")
	}
}
