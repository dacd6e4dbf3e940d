package engine

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"ddosim/internal/model"
)

// zeroJitterTuning removes the random bands so single-tick arithmetic is
// exact.
func zeroJitterTuning() Tuning {
	t := DefaultTuning()
	t.RPSJitter = 0
	t.MemoryJitter = 0
	t.ResponseJitter = 0
	t.ErrorJitter = 0
	t.BandwidthJitter = 0
	t.DiversityJitter = 0
	return t
}

func testEngine(tn Tuning) *Engine {
	return New("run-test", tn, rand.New(rand.NewSource(1)))
}

func TestDrift_StaysWithinBounds(t *testing.T) {
	tn := DefaultTuning()
	eng := testEngine(tn)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	vectors := append([]model.AttackVector{model.VectorNone}, model.Vectors...)
	for _, v := range vectors {
		snap := tn.Baseline("run-test", now)
		toggles := model.NewMitigationSet()
		for i, m := range model.Mitigations {
			toggles[m] = i%2 == 0
		}
		for i := 0; i < 200; i++ {
			now = now.Add(time.Second)
			snap = eng.Drift(snap, v, toggles, 1, now)
			if snap.RPS < 0 || snap.RPS > tn.MaxRPS {
				t.Fatalf("vector %s tick %d: rps %f out of range", v, i, snap.RPS)
			}
			if snap.ResponseMS < 10 || snap.ResponseMS > tn.MaxResponseMS {
				t.Fatalf("vector %s tick %d: response %f out of range", v, i, snap.ResponseMS)
			}
			for name, val := range map[string]float64{
				"cpu":        snap.CPU,
				"memory":     snap.Memory,
				"error_rate": snap.ErrorRate,
				"bandwidth":  snap.Bandwidth,
				"diversity":  snap.IPDiversity,
				"efficiency": snap.Efficiency,
			} {
				if val < 0 || val > 100 {
					t.Fatalf("vector %s tick %d: %s %f out of range", v, i, name, val)
				}
			}
		}
	}
}

func TestDrift_VolumetricRaisesLoad(t *testing.T) {
	tn := zeroJitterTuning()
	eng := testEngine(tn)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	snap := tn.Baseline("run-test", now)
	snap = eng.Drift(snap, model.VectorVolumetric, model.NewMitigationSet(), 1, now)

	wantRPS := tn.BaselineRPS + tn.Attacks[model.VectorVolumetric].RPS
	if snap.RPS != wantRPS {
		t.Fatalf("expected rps %f, got %f", wantRPS, snap.RPS)
	}
	if snap.CPU <= tn.BaselineCPU {
		t.Fatalf("expected cpu above baseline, got %f", snap.CPU)
	}
}

func TestDrift_RampScalesContribution(t *testing.T) {
	tn := zeroJitterTuning()
	eng := testEngine(tn)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	base := tn.Baseline("run-test", now)
	half := eng.Drift(base, model.VectorVolumetric, model.NewMitigationSet(), 0.5, now)
	wantRPS := tn.BaselineRPS + tn.Attacks[model.VectorVolumetric].RPS*0.5
	if half.RPS != wantRPS {
		t.Fatalf("expected half-ramp rps %f, got %f", wantRPS, half.RPS)
	}
}

func TestDrift_CDNBandwidthRelief(t *testing.T) {
	tn := zeroJitterTuning()
	eng := testEngine(tn)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	base := tn.Baseline("run-test", now)

	unmit := eng.Drift(base, model.VectorVolumetric, model.NewMitigationSet(), 1, now)
	toggles := model.NewMitigationSet()
	toggles[model.MitigationCDN] = true
	mit := eng.Drift(base, model.VectorVolumetric, toggles, 1, now)

	unmitContrib := unmit.Bandwidth - tn.BaselineBandwidth
	mitContrib := mit.Bandwidth - tn.BaselineBandwidth
	want := round1(tn.BaselineBandwidth+unmitContrib*0.05) - tn.BaselineBandwidth
	if math.Abs(mitContrib-want) > 1e-9 {
		t.Fatalf("expected CDN to cut bandwidth contribution to 5%%: unmitigated %f, mitigated %f", unmitContrib, mitContrib)
	}
}

func TestDrift_WAFLowersCPUUnderApplicationAttack(t *testing.T) {
	tn := zeroJitterTuning()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	run := func(toggles model.MitigationSet) model.MetricsSnapshot {
		eng := testEngine(tn)
		snap := tn.Baseline("run-test", now)
		for i := 0; i < 30; i++ {
			snap = eng.Drift(snap, model.VectorApplication, toggles, 1, now.Add(time.Duration(i)*time.Second))
		}
		return snap
	}

	plain := run(model.NewMitigationSet())
	waf := model.NewMitigationSet()
	waf[model.MitigationWAF] = true
	guarded := run(waf)

	if guarded.CPU >= plain.CPU {
		t.Fatalf("expected WAF to lower steady-state cpu: plain %f, waf %f", plain.CPU, guarded.CPU)
	}
	if guarded.ErrorRate >= plain.ErrorRate {
		t.Fatalf("expected WAF to lower error rate: plain %f, waf %f", plain.ErrorRate, guarded.ErrorRate)
	}
}

func TestDrift_UntargetedMitigationOnlyCosts(t *testing.T) {
	tn := zeroJitterTuning()
	eng := testEngine(tn)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	base := tn.Baseline("run-test", now)

	// WAF targets application attacks only; under a volumetric flood it
	// still charges its flat efficiency and CPU cost.
	toggles := model.NewMitigationSet()
	toggles[model.MitigationWAF] = true
	snap := eng.Drift(base, model.VectorVolumetric, toggles, 1, now)
	plain := eng.Drift(base, model.VectorVolumetric, model.NewMitigationSet(), 1, now)

	if snap.RPS != plain.RPS {
		t.Fatalf("untargeted mitigation must not relieve rps: %f vs %f", snap.RPS, plain.RPS)
	}
	wantLoss := tn.Mitigations[model.MitigationWAF].EfficiencyLoss
	if snap.Efficiency != 100-wantLoss {
		t.Fatalf("expected efficiency %f, got %f", 100-wantLoss, snap.Efficiency)
	}
}

func TestDrift_IdleConvergesToBaseline(t *testing.T) {
	tn := zeroJitterTuning()
	eng := testEngine(tn)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	snap := model.MetricsSnapshot{
		RunID:       "run-test",
		RPS:         30000,
		CPU:         95,
		Memory:      88,
		ResponseMS:  3000,
		ErrorRate:   40,
		Bandwidth:   90,
		IPDiversity: 20,
		Efficiency:  10,
		Timestamp:   now,
	}
	for i := 0; i < 60; i++ {
		snap = eng.Drift(snap, model.VectorNone, model.NewMitigationSet(), 0, now.Add(time.Duration(i)*time.Second))
	}

	// Per-tick rounding stalls a few units from the exact baseline.
	if math.Abs(snap.RPS-tn.BaselineRPS) > 5 {
		t.Fatalf("rps did not converge to baseline: %f", snap.RPS)
	}
	if math.Abs(snap.ResponseMS-tn.BaselineResponseMS) > 1 {
		t.Fatalf("response did not converge to baseline: %f", snap.ResponseMS)
	}
	if math.Abs(snap.Memory-tn.BaselineMemory) > 1 {
		t.Fatalf("memory did not converge to baseline: %f", snap.Memory)
	}
	// The idle CPU floor is baseline plus the load term for baseline rps.
	idleCPU := tn.BaselineCPU + tn.BaselineRPS*tn.CPURPSFactor
	if math.Abs(snap.CPU-idleCPU) > 1 {
		t.Fatalf("cpu did not settle at its idle floor %f: %f", idleCPU, snap.CPU)
	}
	if math.Abs(snap.IPDiversity-tn.BaselineDiversity) > 1 {
		t.Fatalf("diversity did not converge to baseline: %f", snap.IPDiversity)
	}
	if snap.Efficiency != 100 {
		t.Fatalf("efficiency did not recover: %f", snap.Efficiency)
	}
}

func TestDrift_EfficiencyPenalties(t *testing.T) {
	tn := zeroJitterTuning()
	eng := testEngine(tn)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	snap := tn.Baseline("run-test", now)
	snap.ResponseMS = 1000
	snap.ErrorRate = 20

	next := eng.Drift(snap, model.VectorNone, model.NewMitigationSet(), 0, now)

	// One idle tick pulls both fields a quarter of the way back before the
	// penalty applies.
	resp := 1000 + (tn.BaselineResponseMS-1000)*tn.IdleRecovery
	errs := 20 + (tn.BaselineErrorRate-20)*tn.IdleRecovery
	want := 100.0
	want -= (resp - tn.ResponsePenaltyThresholdMS) * tn.ResponsePenaltyPerMS
	want -= (errs - tn.ErrorPenaltyThreshold) * tn.ErrorPenaltyPerPct
	if next.Efficiency != round1(want) {
		t.Fatalf("expected efficiency %f, got %f", round1(want), next.Efficiency)
	}
}

func TestDrift_IPReputationRestoresDiversity(t *testing.T) {
	tn := zeroJitterTuning()
	eng := testEngine(tn)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	base := tn.Baseline("run-test", now)

	narrowed := eng.Drift(base, model.VectorVolumetric, model.NewMitigationSet(), 1, now)
	if narrowed.IPDiversity >= base.IPDiversity {
		t.Fatalf("expected diversity to narrow under attack, got %f", narrowed.IPDiversity)
	}

	toggles := model.NewMitigationSet()
	toggles[model.MitigationIPReputation] = true
	recovered := eng.Drift(narrowed, model.VectorVolumetric, toggles, 1, now)
	if recovered.IPDiversity <= narrowed.IPDiversity {
		t.Fatalf("expected reputation blocking to recover diversity, got %f", recovered.IPDiversity)
	}
}
