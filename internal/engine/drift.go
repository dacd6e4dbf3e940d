// Per-tick state transition for the simulated server metrics.
package engine

import (
	"math"
	"math/rand"
	"time"

	"ddosim/internal/model"
)

// Engine computes the next metrics snapshot from the previous one, the
// active attack vector, the enabled mitigations, and the ramp factor.
// Randomness comes exclusively from the injected source so tests can
// substitute a seeded one.
type Engine struct {
	tuning Tuning
	rng    *rand.Rand
	runID  string
}

// New creates an engine with the given tuning and random source.
func New(runID string, tuning Tuning, rng *rand.Rand) *Engine {
	return &Engine{tuning: tuning, rng: rng, runID: runID}
}

// Tuning returns the engine's constants.
func (e *Engine) Tuning() Tuning { return e.tuning }

// contribution is the attack's per-tick addition to each field after ramp
// scaling and mitigation relief.
type contribution struct {
	rps, bandwidth, responseMS, memory, errorRate float64
}

// Drift computes the next snapshot. Pure with respect to its inputs apart
// from the bounded jitter drawn from the engine's random source.
func (e *Engine) Drift(prev model.MetricsSnapshot, attack model.AttackVector, mitigations model.MitigationSet, ramp float64, now time.Time) model.MetricsSnapshot {
	t := e.tuning

	// Step 1: jitter so idle charts never flatline.
	rps := prev.RPS + e.jitter(t.RPSJitter)
	memory := prev.Memory + e.jitter(t.MemoryJitter)
	responseMS := prev.ResponseMS + e.jitter(t.ResponseJitter)
	errorRate := prev.ErrorRate + e.jitter(t.ErrorJitter)
	bandwidth := prev.Bandwidth + e.jitter(t.BandwidthJitter)

	// Steps 2+3: attack contribution scaled by ramp, relieved by targeted
	// mitigations, plus flat mitigation costs.
	var contrib contribution
	profile, underAttack := t.Attacks[attack]
	if underAttack {
		contrib = contribution{
			rps:        profile.RPS * ramp,
			bandwidth:  profile.Bandwidth * ramp,
			responseMS: profile.ResponseMS * ramp,
			memory:     profile.Memory * ramp,
			errorRate:  profile.ErrorRate * ramp,
		}
	}
	var efficiencyLoss, cpuOverhead float64
	stressCut := 1.0
	for _, m := range model.Mitigations {
		if !mitigations[m] {
			continue
		}
		mp := t.Mitigations[m]
		// Flat cost applies whether or not the mitigation is useful
		// against the current vector.
		efficiencyLoss += mp.EfficiencyLoss
		cpuOverhead += mp.CPUOverhead
		if !underAttack || !mp.Targeting(attack) {
			continue
		}
		contrib.rps *= mp.RPSFactor
		contrib.bandwidth *= mp.BandwidthFactor
		contrib.responseMS *= mp.ResponseFactor
		contrib.memory *= mp.MemoryFactor
		contrib.errorRate *= mp.ErrorFactor
		stressCut *= mp.CPUStressFactor
	}

	if underAttack {
		rps += contrib.rps
		bandwidth += contrib.bandwidth
		responseMS += contrib.responseMS
		memory += contrib.memory
		errorRate += contrib.errorRate
	} else {
		// Step 7: abrupt stand-down. Attack-inflated fields snap back
		// toward baseline instead of drifting from their inflated values.
		rps += (t.BaselineRPS - rps) * t.IdleRecovery
		responseMS += (t.BaselineResponseMS - responseMS) * t.IdleRecovery
		bandwidth += (t.BaselineBandwidth - bandwidth) * t.IdleRecovery
		errorRate += (t.BaselineErrorRate - errorRate) * t.IdleRecovery
		memory += (t.BaselineMemory - memory) * t.IdleRecovery
	}

	// Step 4: CPU target from load, memory pressure, attack stress, and
	// mitigation overhead.
	target := e.cpuTarget(rps, memory, attack, mitigations, ramp)

	// Step 5: drift toward the target, faster under attack than idle.
	speed := t.IdleDriftSpeed
	if underAttack {
		speed = t.AttackDriftSpeed
	}
	cpu := prev.CPU + (target-prev.CPU)*speed

	// Step 6: efficiency = remaining legitimate capacity.
	efficiency := 100 - efficiencyLoss
	if responseMS > t.ResponsePenaltyThresholdMS {
		efficiency -= (responseMS - t.ResponsePenaltyThresholdMS) * t.ResponsePenaltyPerMS
	}
	if errorRate > t.ErrorPenaltyThreshold {
		efficiency -= (errorRate - t.ErrorPenaltyThreshold) * t.ErrorPenaltyPerPct
	}

	// Step 8: origin diversity narrows under attack, recovers when idle
	// or when reputation blocking filters the concentrated sources.
	diversity := prev.IPDiversity + e.jitter(t.DiversityJitter)
	if underAttack && !mitigations[model.MitigationIPReputation] {
		diversity += (profile.Concentration - diversity) * t.DiversityPull * ramp
	} else {
		diversity += (t.BaselineDiversity - diversity) * t.DiversityPull
	}

	// Step 9: clamp, round, stamp.
	return model.MetricsSnapshot{
		RunID:       e.runID,
		Label:       now.Format("15:04:05"),
		RPS:         math.Round(clamp(rps, 0, t.MaxRPS)),
		CPU:         round1(clamp(cpu, 0, 100)),
		Memory:      round1(clamp(memory, 0, 100)),
		ResponseMS:  math.Round(clamp(responseMS, 10, t.MaxResponseMS)),
		ErrorRate:   round1(clamp(errorRate, 0, 100)),
		Bandwidth:   round1(clamp(bandwidth, 0, 100)),
		IPDiversity: round1(clamp(diversity, 0, 100)),
		Efficiency:  round1(clamp(efficiency, 0, 100)),
		Timestamp:   now,
	}
}

// cpuTarget computes the load-driven CPU level the metric drifts toward.
func (e *Engine) cpuTarget(rps, memory float64, attack model.AttackVector, mitigations model.MitigationSet, ramp float64) float64 {
	t := e.tuning
	target := t.BaselineCPU + rps*t.CPURPSFactor
	if memory > t.BaselineMemory {
		target += (memory - t.BaselineMemory) * t.CPUMemoryFactor
	}
	if profile, ok := t.Attacks[attack]; ok {
		cut := 1.0
		for _, m := range model.Mitigations {
			if mitigations[m] && t.Mitigations[m].Targeting(attack) {
				cut *= t.Mitigations[m].CPUStressFactor
			}
		}
		target += profile.CPUStress * ramp * cut
	}
	for _, m := range model.Mitigations {
		if mitigations[m] {
			target += t.Mitigations[m].CPUOverhead
		}
	}
	return clamp(target, 5, 100)
}

// jitter returns a uniform draw in [-band, band].
func (e *Engine) jitter(band float64) float64 {
	return (e.rng.Float64()*2 - 1) * band
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
