package ecology

import (
	"fmt"

	"github.com/mpurbo/ecosim/internal/core/geometry"
)

// ScenarioConfig describes a full simulation setup: the agent population,
// optional per-kind profile overrides, and the disaster to respond to.
type ScenarioConfig struct {
	Name      string                   `json:"name" yaml:"name"`
	Hazard    *PointConfig             `json:"hazard,omitempty" yaml:"hazard,omitempty"`
	MaxPasses int                      `json:"max_passes,omitempty" yaml:"max_passes,omitempty"`
	Parallel  bool                     `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Profiles  map[string]ProfileConfig `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	Agents    []AgentConfig            `json:"agents" yaml:"agents"`
}

// PointConfig is a 2D point in a scenario file.
type PointConfig struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vector converts the config point to a geometry value.
func (p PointConfig) Vector() geometry.Vector2 { return geometry.Vec(p.X, p.Y) }

// ProfileConfig overrides the movement constants of one kind.
type ProfileConfig struct {
	StepMagnitude       float64 `json:"step_magnitude" yaml:"step_magnitude"`
	SafetyRadiusSquared float64 `json:"safety_radius_sq" yaml:"safety_radius_sq"`
}

// AgentConfig describes one agent of the population.
type AgentConfig struct {
	Kind     string      `json:"kind" yaml:"kind"`
	Medium   string      `json:"medium" yaml:"medium"`
	Position PointConfig `json:"position" yaml:"position"`
}

// Validate checks the scenario for structural problems. Variant names are
// resolved here so a bad scenario fails before any agent is constructed.
func (c *ScenarioConfig) Validate() error {
	if len(c.Agents) == 0 {
		return fmt.Errorf("scenario %q has no agents", c.Name)
	}
	if c.MaxPasses < 0 {
		return fmt.Errorf("scenario %q: max_passes must not be negative", c.Name)
	}
	for name, p := range c.Profiles {
		if _, err := ParseKind(name); err != nil {
			return fmt.Errorf("scenario %q: profile override: %w", c.Name, err)
		}
		if p.StepMagnitude <= 0 || p.SafetyRadiusSquared <= 0 {
			return fmt.Errorf("scenario %q: profile for %q: %w", c.Name, name, ErrInvalidProfile)
		}
	}
	for i, a := range c.Agents {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("scenario %q: agent %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Validate resolves the agent's variant names.
func (a AgentConfig) Validate() error {
	if _, err := ParseKind(a.Kind); err != nil {
		return err
	}
	if _, err := ParseMedium(a.Medium); err != nil {
		return err
	}
	return nil
}

// EcosystemConfig maps the scenario knobs onto an ecosystem Config.
func (c *ScenarioConfig) EcosystemConfig() Config {
	cfg := DefaultConfig()
	if c.MaxPasses > 0 {
		cfg.MaxPasses = c.MaxPasses
	}
	cfg.Parallel = c.Parallel
	return cfg
}
