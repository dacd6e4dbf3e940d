package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ddosim/internal/model"
)

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "simple.yaml")
	content := `
name: example
description: basic test scenario
phases:
  - name: open
    vector: volumetric
    duration_s: 10
  - name: close
    vector: none
    duration_s: 5
    mitigations: [cdn]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	sc, err := Load(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if sc.Name != "example" {
		t.Fatalf("unexpected name %s", sc.Name)
	}
	if len(sc.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(sc.Phases))
	}
	if sc.Phases[0].Vector != model.VectorVolumetric {
		t.Fatalf("unexpected vector %s", sc.Phases[0].Vector)
	}
	if sc.Phases[1].Mitigations[0] != model.MitigationCDN {
		t.Fatalf("unexpected mitigation %s", sc.Phases[1].Mitigations[0])
	}
}

func TestValidate_RejectsBadPhases(t *testing.T) {
	bad := []Scenario{
		{Name: "empty"},
		{Name: "vector", Phases: []Phase{{Name: "p", Vector: "smurf", DurationS: 1}}},
		{Name: "duration", Phases: []Phase{{Name: "p", Vector: model.VectorNone, DurationS: 0}}},
		{Name: "mitigation", Phases: []Phase{{Name: "p", Vector: model.VectorNone, DurationS: 1, Mitigations: []model.Mitigation{"tarpit"}}}},
	}
	for _, s := range bad {
		if err := s.Validate(); err == nil {
			t.Fatalf("scenario %q should not validate", s.Name)
		}
	}
}

func TestBuiltInArcs(t *testing.T) {
	for name, arc := range BuiltIn() {
		if arc.Description == "" {
			t.Fatalf("arc %s missing description", name)
		}
		if err := arc.Validate(); err != nil {
			t.Fatalf("arc %s invalid: %v", name, err)
		}
		last := arc.Phases[len(arc.Phases)-1]
		if last.Vector != model.VectorNone {
			t.Fatalf("arc %s does not stand down at the end", name)
		}
	}
}

type scriptedControls struct {
	vectors     []model.AttackVector
	mitigations []model.Mitigation
}

func (c *scriptedControls) SelectVector(v model.AttackVector) error {
	c.vectors = append(c.vectors, v)
	return nil
}

func (c *scriptedControls) SetMitigation(m model.Mitigation, enabled bool) error {
	if enabled {
		c.mitigations = append(c.mitigations, m)
	}
	return nil
}

func TestPlayer_RunsPhasesInOrder(t *testing.T) {
	s := &Scenario{
		Name: "test",
		Phases: []Phase{
			{Name: "a", Vector: model.VectorVolumetric, DurationS: 1},
			{Name: "b", Vector: model.VectorApplication, DurationS: 1, Mitigations: []model.Mitigation{model.MitigationWAF}},
		},
	}
	c := &scriptedControls{}
	p := NewPlayer(s, c)
	p.sleep = func(context.Context, time.Duration) bool { return true }

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []model.AttackVector{model.VectorVolumetric, model.VectorApplication, model.VectorNone}
	if len(c.vectors) != len(want) {
		t.Fatalf("expected %d vector selections, got %v", len(want), c.vectors)
	}
	for i, v := range want {
		if c.vectors[i] != v {
			t.Fatalf("selection %d: expected %s, got %s", i, v, c.vectors[i])
		}
	}
	if len(c.mitigations) != 1 || c.mitigations[0] != model.MitigationWAF {
		t.Fatalf("expected WAF enabled during phase b, got %v", c.mitigations)
	}
}

func TestPlayer_StopsOnCancel(t *testing.T) {
	s := &Scenario{
		Name: "test",
		Phases: []Phase{
			{Name: "a", Vector: model.VectorVolumetric, DurationS: 60},
			{Name: "b", Vector: model.VectorApplication, DurationS: 60},
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &scriptedControls{}
	if err := NewPlayer(s, c).Run(ctx); err == nil {
		t.Fatalf("expected context error")
	}
	if len(c.vectors) != 1 {
		t.Fatalf("expected only the first phase selection, got %v", c.vectors)
	}
}
