package mission

import (
	"time"

	"ddosim/internal/model"
)

// Catalog returns the built-in challenges. Goals are predicates over a
// single snapshot; the run must keep them true for the whole countdown.
func Catalog() []Challenge {
	return []Challenge{
		{
			ID:          "flood-wall",
			Name:        "Flood Wall",
			Description: "Survive a volumetric flood for 60s while keeping at least 40% efficiency.",
			Vector:      model.VectorVolumetric,
			Duration:    60 * time.Second,
			Goal: func(s model.MetricsSnapshot) bool {
				return s.Efficiency >= 40 && s.CPU < 95
			},
			FailureMessage: "The flood saturated the origin. Absorb volumetric traffic at the edge before it reaches you.",
		},
		{
			ID:          "layer7-lockdown",
			Name:        "Layer 7 Lockdown",
			Description: "Hold error rate under 10% and latency under 1.5s through a 45s application-layer attack.",
			Vector:      model.VectorApplication,
			Duration:    45 * time.Second,
			Goal: func(s model.MetricsSnapshot) bool {
				return s.ErrorRate < 10 && s.ResponseMS < 1500
			},
			FailureMessage: "Crafted requests slipped through to the application. Filter request patterns, not just volume.",
		},
		{
			ID:          "slow-burn",
			Name:        "Slow Burn",
			Description: "Keep memory below 90% and latency below 2s during a 45s resource-exhaustion attack.",
			Vector:      model.VectorResource,
			Duration:    45 * time.Second,
			Goal: func(s model.MetricsSnapshot) bool {
				return s.Memory < 90 && s.ResponseMS < 2000
			},
			FailureMessage: "Connection-state exhaustion starved the host. Spread stateful load across more capacity.",
		},
		{
			ID:          "handshake-storm",
			Name:        "Handshake Storm",
			Description: "Keep CPU under 85% for 30s while a protocol attack abuses connection setup.",
			Vector:      model.VectorProtocol,
			Duration:    30 * time.Second,
			Goal: func(s model.MetricsSnapshot) bool {
				return s.CPU < 85
			},
			FailureMessage: "Half-open handshakes pinned the CPU. Offload or rate-limit connection setup.",
		},
	}
}

// ByID finds a challenge in the catalog.
func ByID(id string) (Challenge, bool) {
	for _, c := range Catalog() {
		if c.ID == id {
			return c, true
		}
	}
	return Challenge{}, false
}
