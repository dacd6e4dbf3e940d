package scenario

import (
	"context"
	"time"

	"ddosim/internal/logging"
	"ddosim/internal/model"
)

// Controls is the slice of the controller surface a player needs.
type Controls interface {
	SelectVector(model.AttackVector) error
	SetMitigation(model.Mitigation, bool) error
}

// Player steps a scenario's phases against the controls on a wall-clock
// schedule.
type Player struct {
	scenario *Scenario
	controls Controls
	sleep    func(context.Context, time.Duration) bool
}

// NewPlayer creates a player for the scenario.
func NewPlayer(s *Scenario, c Controls) *Player {
	return &Player{scenario: s, controls: c, sleep: sleepCtx}
}

// Run plays all phases in order, then stands the attack down. It returns
// early when ctx is cancelled or a control call fails.
func (p *Player) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	log.Info("scenario starting", "name", p.scenario.Name, "phases", len(p.scenario.Phases))

	for _, phase := range p.scenario.Phases {
		log.Info("scenario phase", "phase", phase.Name, "vector", phase.Vector, "duration", phase.Duration())
		if err := p.controls.SelectVector(phase.Vector); err != nil {
			return err
		}
		for _, m := range phase.Mitigations {
			if err := p.controls.SetMitigation(m, true); err != nil {
				return err
			}
		}
		if !p.sleep(ctx, phase.Duration()) {
			return ctx.Err()
		}
	}

	log.Info("scenario complete", "name", p.scenario.Name)
	return p.controls.SelectVector(model.VectorNone)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
