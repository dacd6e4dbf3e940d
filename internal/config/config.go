// YAML config loader with CUE validation integration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ddosim/internal/engine"
)

// TuningConfig overlays the engine tuning constants. Durations are
// expressed in milliseconds because yaml.v3 has no duration decoding.
type TuningConfig struct {
	engine.Tuning  `yaml:",inline"`
	RampDurationMS int `yaml:"ramp_duration_ms"`
	TickIntervalMS int `yaml:"tick_interval_ms"`
	GraceWindowMS  int `yaml:"grace_window_ms"`
}

// Config is the root simulation configuration.
type Config struct {
	RunID  string       `yaml:"run_id"`
	Listen string       `yaml:"listen"`
	Tuning TuningConfig `yaml:"tuning"`
}

// Default returns the configuration used when no file is given. RunID
// stays empty so the CLI generates a fresh id per run unless the
// operator pins one.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Tuning: TuningConfig{Tuning: engine.DefaultTuning()},
	}
}

// Load reads a YAML config, validates it against the CUE schema, and
// overlays it on the defaults. An empty configPath returns the defaults.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}
	return cfg, nil
}

// EngineTuning resolves the millisecond overrides into the tuning struct.
func (c *Config) EngineTuning() engine.Tuning {
	t := c.Tuning.Tuning
	if c.Tuning.RampDurationMS > 0 {
		t.RampDuration = time.Duration(c.Tuning.RampDurationMS) * time.Millisecond
	}
	if c.Tuning.TickIntervalMS > 0 {
		t.TickInterval = time.Duration(c.Tuning.TickIntervalMS) * time.Millisecond
	}
	if c.Tuning.GraceWindowMS > 0 {
		t.GraceWindow = time.Duration(c.Tuning.GraceWindowMS) * time.Millisecond
	}
	return t
}
