package ecology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mpurbo/ecosim/internal/core/events/bus"
	"github.com/mpurbo/ecosim/internal/core/observability/log"
)

// ParseScenario decodes a YAML scenario and validates it.
func ParseScenario(data []byte) (*ScenarioConfig, error) {
	var cfg ScenarioConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// Build materializes the scenario: a factory with the scenario's profile
// overrides, one agent per entry in declaration order, and an ecosystem over
// them. logger and eventBus may be nil, as in New.
func (c *ScenarioConfig) Build(logger log.Log, eventBus bus.EventBus) (*Ecosystem, error) {
	factory := NewFactory()
	for name, p := range c.Profiles {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		err = factory.OverrideProfile(kind, Profile{
			StepMagnitude:       p.StepMagnitude,
			SafetyRadiusSquared: p.SafetyRadiusSquared,
		})
		if err != nil {
			return nil, fmt.Errorf("profile for %q: %w", name, err)
		}
	}

	agents := make([]*Agent, 0, len(c.Agents))
	for i, ac := range c.Agents {
		kind, err := ParseKind(ac.Kind)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		medium, err := ParseMedium(ac.Medium)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		agent, err := factory.Create(kind, medium, ac.Position.Vector())
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		agents = append(agents, agent)
	}

	return New(agents, c.EcosystemConfig(), logger, eventBus), nil
}
