// Writer interfaces and the operator-facing state view.
package sim

import (
	"ddosim/internal/analysis"
	"ddosim/internal/mission"
	"ddosim/internal/model"
)

// SnapshotWriter receives each tick's metrics snapshot.
type SnapshotWriter interface {
	Write(model.MetricsSnapshot) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]model.MetricsSnapshot) error
}

// EventWriter receives simulation log entries, if supported.
type EventWriter interface {
	WriteEvent(model.LogEntry) error
}

// StateWriter receives the full operator state after each change, if
// supported. The TUI uses this to render controls and mission status.
type StateWriter interface {
	WriteState(State) error
}

// MissionView is the operator-visible summary of the current run.
type MissionView struct {
	Status      mission.Status `json:"status"`
	ChallengeID string         `json:"challenge_id,omitempty"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Remaining   int            `json:"remaining"`
	Message     string         `json:"message,omitempty"`
}

// State is the full control-surface view: what is selected, how far the
// ramp has progressed, and the latest advisory assessment.
type State struct {
	RunID       string               `json:"run_id"`
	Vector      model.AttackVector   `json:"vector"`
	RampFactor  float64              `json:"ramp_factor"`
	Mitigations model.MitigationSet  `json:"mitigations"`
	Mission     MissionView          `json:"mission"`
	Assessment  *analysis.Assessment `json:"assessment,omitempty"`
	HistoryLen  int                  `json:"history_len"`
}
