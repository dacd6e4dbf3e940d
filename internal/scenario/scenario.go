// Scripted attack scenarios: ordered phases of vectors and mitigations
// played against the controller without operator input.
package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ddosim/internal/model"
)

// Scenario defines an ordered sequence of attack phases.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Phase holds one stage: the vector to run, how long to hold it, and the
// mitigations the defender brings up when the phase starts. An empty
// mitigation list leaves the current toggles untouched.
type Phase struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Vector      model.AttackVector `yaml:"vector"`
	DurationS   int                `yaml:"duration_s"`
	Mitigations []model.Mitigation `yaml:"mitigations,omitempty"`
}

// Duration returns the phase length.
func (p Phase) Duration() time.Duration {
	return time.Duration(p.DurationS) * time.Second
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks phase vectors, durations, and mitigation names.
func (s *Scenario) Validate() error {
	if len(s.Phases) == 0 {
		return fmt.Errorf("scenario %q has no phases", s.Name)
	}
	for i, p := range s.Phases {
		if !p.Vector.Valid() {
			return fmt.Errorf("phase %d (%s): unknown vector %q", i, p.Name, p.Vector)
		}
		if p.DurationS <= 0 {
			return fmt.Errorf("phase %d (%s): duration must be positive", i, p.Name)
		}
		for _, m := range p.Mitigations {
			if !m.Valid() {
				return fmt.Errorf("phase %d (%s): unknown mitigation %q", i, p.Name, m)
			}
		}
	}
	return nil
}

// Resolve returns the built-in scenario with the given name, or loads the
// argument as a YAML file path.
func Resolve(nameOrPath string) (*Scenario, error) {
	if s, ok := BuiltIn()[nameOrPath]; ok {
		return &s, nil
	}
	return Load(nameOrPath)
}
