// Domain types for the load simulation: attack vectors, mitigations, snapshots.
package model

import (
	"os"
	"sort"
	"time"
)

// AttackVector identifies the currently simulated attack pattern.
type AttackVector string

const (
	VectorNone        AttackVector = "none"
	VectorVolumetric  AttackVector = "volumetric"
	VectorApplication AttackVector = "application"
	VectorResource    AttackVector = "resource"
	VectorProtocol    AttackVector = "protocol"
)

// Vectors lists all selectable attack vectors, VectorNone first.
var Vectors = []AttackVector{
	VectorNone,
	VectorVolumetric,
	VectorApplication,
	VectorResource,
	VectorProtocol,
}

// Valid reports whether v is a known attack vector.
func (v AttackVector) Valid() bool {
	for _, k := range Vectors {
		if v == k {
			return true
		}
	}
	return false
}

// Mitigation identifies one operator-toggleable defensive control.
type Mitigation string

const (
	MitigationRateLimiting  Mitigation = "rate_limiting"
	MitigationCDN           Mitigation = "cdn"
	MitigationWAF           Mitigation = "waf"
	MitigationCaptcha       Mitigation = "captcha"
	MitigationLoadBalancing Mitigation = "load_balancing"
	MitigationIPReputation  Mitigation = "ip_reputation"
)

// Mitigations lists the six independent toggles in display order.
var Mitigations = []Mitigation{
	MitigationRateLimiting,
	MitigationCDN,
	MitigationWAF,
	MitigationCaptcha,
	MitigationLoadBalancing,
	MitigationIPReputation,
}

// Valid reports whether m is a known mitigation.
func (m Mitigation) Valid() bool {
	for _, k := range Mitigations {
		if m == k {
			return true
		}
	}
	return false
}

// MitigationSet maps each mitigation to its enabled state.
type MitigationSet map[Mitigation]bool

// NewMitigationSet returns a set with every mitigation disabled.
func NewMitigationSet() MitigationSet {
	s := make(MitigationSet, len(Mitigations))
	for _, m := range Mitigations {
		s[m] = false
	}
	return s
}

// Clone returns an independent copy of the set.
func (s MitigationSet) Clone() MitigationSet {
	c := make(MitigationSet, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Enabled returns the names of enabled mitigations in stable sorted order.
func (s MitigationSet) Enabled() []string {
	var names []string
	for m, on := range s {
		if on {
			names = append(names, string(m))
		}
	}
	sort.Strings(names)
	return names
}

// MetricsSnapshot is one tick's worth of simulated server metrics.
// All fields are clamped and rounded by the drift engine before the
// snapshot is published; a snapshot is never mutated afterwards.
type MetricsSnapshot struct {
	RunID       string    `json:"run_id"`       // TAG
	Label       string    `json:"label"`        // wall-clock HH:MM:SS for charts
	RPS         float64   `json:"rps"`          // FIELD
	CPU         float64   `json:"cpu"`          // FIELD, percent
	Memory      float64   `json:"memory"`       // FIELD, percent
	ResponseMS  float64   `json:"response_ms"`  // FIELD
	ErrorRate   float64   `json:"error_rate"`   // FIELD, percent
	Bandwidth   float64   `json:"bandwidth"`    // FIELD, percent of link
	IPDiversity float64   `json:"ip_diversity"` // FIELD, percent
	Efficiency  float64   `json:"efficiency"`   // FIELD, percent
	Timestamp   time.Time `json:"ts"`           // TIME INDEX
}

// MetricsTableName holds the table name used when writing snapshots to
// GreptimeDB. It defaults to "load_metrics" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var MetricsTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "load_metrics"
}()

func (MetricsSnapshot) TableName() string {
	return MetricsTableName
}
