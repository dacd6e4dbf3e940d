// Tuning constants for the metrics drift engine.
package engine

import (
	"time"

	"ddosim/internal/model"
)

// AttackProfile holds one vector's per-tick metric contributions at full
// ramp, its CPU stress term, and the IP-diversity concentration it pulls
// the origin pool toward.
type AttackProfile struct {
	RPS           float64 `yaml:"rps"`
	Bandwidth     float64 `yaml:"bandwidth"`
	ResponseMS    float64 `yaml:"response_ms"`
	Memory        float64 `yaml:"memory"`
	ErrorRate     float64 `yaml:"error_rate"`
	CPUStress     float64 `yaml:"cpu_stress"`
	Concentration float64 `yaml:"concentration"`
}

// MitigationProfile holds one mitigation's flat operating costs and the
// multipliers it applies to attack contributions, but only while one of
// its target vectors is active. A factor of 1 leaves a field untouched.
type MitigationProfile struct {
	EfficiencyLoss  float64              `yaml:"efficiency_loss"`
	CPUOverhead     float64              `yaml:"cpu_overhead"`
	Targets         []model.AttackVector `yaml:"targets"`
	RPSFactor       float64              `yaml:"rps_factor"`
	BandwidthFactor float64              `yaml:"bandwidth_factor"`
	ResponseFactor  float64              `yaml:"response_factor"`
	MemoryFactor    float64              `yaml:"memory_factor"`
	ErrorFactor     float64              `yaml:"error_factor"`
	CPUStressFactor float64              `yaml:"cpu_stress_factor"`
}

// Targeting reports whether the profile's relief applies under v.
func (p MitigationProfile) Targeting(v model.AttackVector) bool {
	for _, t := range p.Targets {
		if t == v {
			return true
		}
	}
	return false
}

// Tuning collects every constant of the drift model. The defaults are the
// reference values; changing them changes scenario outcomes, so overrides
// belong in config, not code.
type Tuning struct {
	MaxRPS        float64 `yaml:"max_rps"`
	MaxResponseMS float64 `yaml:"max_response_ms"`

	BaselineRPS        float64 `yaml:"baseline_rps"`
	BaselineCPU        float64 `yaml:"baseline_cpu"`
	BaselineMemory     float64 `yaml:"baseline_memory"`
	BaselineResponseMS float64 `yaml:"baseline_response_ms"`
	BaselineErrorRate  float64 `yaml:"baseline_error_rate"`
	BaselineBandwidth  float64 `yaml:"baseline_bandwidth"`
	BaselineDiversity  float64 `yaml:"baseline_diversity"`

	RPSJitter       float64 `yaml:"rps_jitter"`
	MemoryJitter    float64 `yaml:"memory_jitter"`
	ResponseJitter  float64 `yaml:"response_jitter"`
	ErrorJitter     float64 `yaml:"error_jitter"`
	BandwidthJitter float64 `yaml:"bandwidth_jitter"`
	DiversityJitter float64 `yaml:"diversity_jitter"`

	// CPU moves toward its computed target faster under attack than it
	// recovers when idle.
	AttackDriftSpeed float64 `yaml:"attack_drift_speed"`
	IdleDriftSpeed   float64 `yaml:"idle_drift_speed"`
	// Fraction per tick by which rps/response/bandwidth snap back toward
	// baseline once the vector returns to none.
	IdleRecovery  float64 `yaml:"idle_recovery"`
	DiversityPull float64 `yaml:"diversity_pull"`

	CPURPSFactor    float64 `yaml:"cpu_rps_factor"`
	CPUMemoryFactor float64 `yaml:"cpu_memory_factor"`

	ResponsePenaltyThresholdMS float64 `yaml:"response_penalty_threshold_ms"`
	ResponsePenaltyPerMS       float64 `yaml:"response_penalty_per_ms"`
	ErrorPenaltyThreshold      float64 `yaml:"error_penalty_threshold"`
	ErrorPenaltyPerPct         float64 `yaml:"error_penalty_per_pct"`

	// Durations are overridden via the *_ms keys in the config layer;
	// yaml.v3 has no native duration decoding.
	RampDuration time.Duration `yaml:"-"`
	TickInterval time.Duration `yaml:"-"`
	GraceWindow  time.Duration `yaml:"-"`

	HistorySize        int `yaml:"history_size"`
	LogSize            int `yaml:"log_size"`
	AnalysisMinHistory int `yaml:"analysis_min_history"`
	AnalysisWindow     int `yaml:"analysis_window"`

	Attacks     map[model.AttackVector]AttackProfile   `yaml:"attacks"`
	Mitigations map[model.Mitigation]MitigationProfile `yaml:"mitigations"`
}

// DefaultTuning returns the reference constants.
func DefaultTuning() Tuning {
	return Tuning{
		MaxRPS:        50000,
		MaxResponseMS: 5000,

		BaselineRPS:        1200,
		BaselineCPU:        25,
		BaselineMemory:     40,
		BaselineResponseMS: 120,
		BaselineErrorRate:  0.5,
		BaselineBandwidth:  30,
		BaselineDiversity:  85,

		RPSJitter:       5,
		MemoryJitter:    0.25,
		ResponseJitter:  3,
		ErrorJitter:     0.05,
		BandwidthJitter: 0.5,
		DiversityJitter: 0.4,

		AttackDriftSpeed: 0.35,
		IdleDriftSpeed:   0.12,
		IdleRecovery:     0.25,
		DiversityPull:    0.2,

		CPURPSFactor:    0.0012,
		CPUMemoryFactor: 0.35,

		ResponsePenaltyThresholdMS: 500,
		ResponsePenaltyPerMS:       0.02,
		ErrorPenaltyThreshold:      10,
		ErrorPenaltyPerPct:         2.5,

		RampDuration: 8 * time.Second,
		TickInterval: time.Second,
		GraceWindow:  4500 * time.Millisecond,

		HistorySize:        40,
		LogSize:            50,
		AnalysisMinHistory: 5,
		AnalysisWindow:     10,

		Attacks: map[model.AttackVector]AttackProfile{
			model.VectorVolumetric: {
				RPS:           2600,
				Bandwidth:     4.5,
				ResponseMS:    90,
				CPUStress:     38,
				Concentration: 20,
			},
			model.VectorApplication: {
				RPS:           700,
				ResponseMS:    260,
				ErrorRate:     1.8,
				CPUStress:     30,
				Concentration: 35,
			},
			model.VectorResource: {
				ResponseMS:    340,
				Memory:        3.2,
				ErrorRate:     1.1,
				CPUStress:     45,
				Concentration: 60,
			},
			model.VectorProtocol: {
				RPS:           1500,
				Memory:        1.6,
				CPUStress:     26,
				Concentration: 30,
			},
		},
		Mitigations: map[model.Mitigation]MitigationProfile{
			model.MitigationRateLimiting: {
				EfficiencyLoss:  5,
				CPUOverhead:     3,
				Targets:         []model.AttackVector{model.VectorVolumetric, model.VectorApplication},
				RPSFactor:       0.35,
				BandwidthFactor: 1,
				ResponseFactor:  1,
				MemoryFactor:    1,
				ErrorFactor:     1,
				CPUStressFactor: 1,
			},
			model.MitigationCDN: {
				EfficiencyLoss:  4,
				CPUOverhead:     2,
				Targets:         []model.AttackVector{model.VectorVolumetric},
				RPSFactor:       0.05,
				BandwidthFactor: 0.05,
				ResponseFactor:  1,
				MemoryFactor:    1,
				ErrorFactor:     1,
				CPUStressFactor: 0.20,
			},
			model.MitigationWAF: {
				EfficiencyLoss:  6,
				CPUOverhead:     5,
				Targets:         []model.AttackVector{model.VectorApplication},
				RPSFactor:       0.25,
				BandwidthFactor: 1,
				ResponseFactor:  1,
				MemoryFactor:    1,
				ErrorFactor:     0.25,
				CPUStressFactor: 0.25,
			},
			model.MitigationCaptcha: {
				EfficiencyLoss:  8,
				CPUOverhead:     2,
				Targets:         []model.AttackVector{model.VectorApplication},
				RPSFactor:       0.40,
				BandwidthFactor: 1,
				ResponseFactor:  1,
				MemoryFactor:    1,
				ErrorFactor:     0.50,
				CPUStressFactor: 0.10,
			},
			model.MitigationLoadBalancing: {
				EfficiencyLoss:  3,
				CPUOverhead:     4,
				Targets:         []model.AttackVector{model.VectorResource, model.VectorProtocol},
				RPSFactor:       1,
				BandwidthFactor: 1,
				ResponseFactor:  0.45,
				MemoryFactor:    0.45,
				ErrorFactor:     1,
				CPUStressFactor: 0.40,
			},
			model.MitigationIPReputation: {
				EfficiencyLoss:  4,
				CPUOverhead:     3,
				Targets:         []model.AttackVector{model.VectorVolumetric, model.VectorProtocol},
				RPSFactor:       0.50,
				BandwidthFactor: 1,
				ResponseFactor:  1,
				MemoryFactor:    1,
				ErrorFactor:     1,
				CPUStressFactor: 1,
			},
		},
	}
}

// Baseline returns a snapshot at the idle reference values, ready to seed
// a fresh simulation run.
func (t Tuning) Baseline(runID string, now time.Time) model.MetricsSnapshot {
	return model.MetricsSnapshot{
		RunID:       runID,
		Label:       now.Format("15:04:05"),
		RPS:         t.BaselineRPS,
		CPU:         t.BaselineCPU,
		Memory:      t.BaselineMemory,
		ResponseMS:  t.BaselineResponseMS,
		ErrorRate:   t.BaselineErrorRate,
		Bandwidth:   t.BaselineBandwidth,
		IPDiversity: t.BaselineDiversity,
		Efficiency:  100,
		Timestamp:   now,
	}
}
