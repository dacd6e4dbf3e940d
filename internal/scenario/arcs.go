package scenario

import "ddosim/internal/model"

// BuiltIn returns the predefined attack arcs.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"pulse-wave": {
			Name:        "Pulse Wave",
			Description: "Short volumetric bursts separated by quiet periods, defeating slow-reacting defenses.",
			Phases: []Phase{
				{Name: "burst-1", Vector: model.VectorVolumetric, DurationS: 30},
				{Name: "quiet-1", Vector: model.VectorNone, DurationS: 20},
				{Name: "burst-2", Vector: model.VectorVolumetric, DurationS: 30},
				{Name: "quiet-2", Vector: model.VectorNone, DurationS: 20},
				{Name: "burst-3", Vector: model.VectorVolumetric, DurationS: 30},
				{Name: "stand-down", Vector: model.VectorNone, DurationS: 10},
			},
		},
		"layered-assault": {
			Name:        "Layered Assault",
			Description: "Escalates through the stack: flood the pipe, then the application, then connection state.",
			Phases: []Phase{
				{Name: "flood", Vector: model.VectorVolumetric, DurationS: 45},
				{
					Name:        "edge-response",
					Description: "The defender brings the edge online mid-flood.",
					Vector:      model.VectorVolumetric,
					DurationS:   30,
					Mitigations: []model.Mitigation{model.MitigationCDN},
				},
				{Name: "pivot-layer7", Vector: model.VectorApplication, DurationS: 45},
				{Name: "exhaust", Vector: model.VectorResource, DurationS: 45},
				{Name: "stand-down", Vector: model.VectorNone, DurationS: 15},
			},
		},
		"handshake-siege": {
			Name:        "Handshake Siege",
			Description: "A sustained protocol attack met with progressively stronger filtering.",
			Phases: []Phase{
				{Name: "siege", Vector: model.VectorProtocol, DurationS: 40},
				{
					Name:        "balance",
					Vector:      model.VectorProtocol,
					DurationS:   40,
					Mitigations: []model.Mitigation{model.MitigationLoadBalancing},
				},
				{
					Name:        "filter",
					Vector:      model.VectorProtocol,
					DurationS:   40,
					Mitigations: []model.Mitigation{model.MitigationLoadBalancing, model.MitigationIPReputation},
				},
				{Name: "stand-down", Vector: model.VectorNone, DurationS: 10},
			},
		},
	}
}
