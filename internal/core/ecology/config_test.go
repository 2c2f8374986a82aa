package ecology

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpurbo/ecosim/internal/core/geometry"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const referenceScenarioYAML = `
name: reference
hazard: {x: 10, y: 10}
max_passes: 500
profiles:
  flyer: {step_magnitude: 14, safety_radius_sq: 100}
  swimmer: {step_magnitude: 10, safety_radius_sq: 75}
  runner: {step_magnitude: 6, safety_radius_sq: 200}
agents:
  - {kind: flyer, medium: air, position: {x: 14, y: 12}}
  - {kind: swimmer, medium: water, position: {x: 12, y: 8}}
  - {kind: runner, medium: ground, position: {x: 12, y: 8}}
`

func TestParseScenario(t *testing.T) {
	cfg, err := ParseScenario([]byte(referenceScenarioYAML))
	require.NoError(t, err)
	require.Equal(t, "reference", cfg.Name)
	require.NotNil(t, cfg.Hazard)
	require.Equal(t, geometry.Vec(10, 10), cfg.Hazard.Vector())
	require.Equal(t, 500, cfg.MaxPasses)
	require.Len(t, cfg.Agents, 3)
	require.Equal(t, ProfileConfig{StepMagnitude: 6, SafetyRadiusSquared: 200}, cfg.Profiles["runner"])
}

func TestParseScenarioRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no agents", `name: empty`},
		{"unknown kind", `
agents:
  - {kind: centaur, medium: ground, position: {x: 0, y: 0}}
`},
		{"unknown medium", `
agents:
  - {kind: runner, medium: lava, position: {x: 0, y: 0}}
`},
		{"unknown profile kind", `
profiles:
  centaur: {step_magnitude: 1, safety_radius_sq: 1}
agents:
  - {kind: runner, medium: ground, position: {x: 0, y: 0}}
`},
		{"non-positive profile", `
profiles:
  runner: {step_magnitude: 0, safety_radius_sq: 10}
agents:
  - {kind: runner, medium: ground, position: {x: 0, y: 0}}
`},
		{"negative pass cap", `
max_passes: -1
agents:
  - {kind: runner, medium: ground, position: {x: 0, y: 0}}
`},
		{"not yaml", `{{`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(c.yaml))
			require.Error(t, err)
		})
	}
}

func TestScenarioBuildAndRun(t *testing.T) {
	cfg, err := ParseScenario([]byte(referenceScenarioYAML))
	require.NoError(t, err)

	eco, err := cfg.Build(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 3, eco.Size())

	require.NoError(t, eco.OnDisaster(context.Background(), cfg.Hazard.Vector()))

	states := eco.Agents()
	require.Equal(t, geometry.Vec(28, 26), states[0].Position)
	require.Equal(t, geometry.Vec(22, -2), states[1].Position)
	require.Equal(t, geometry.Vec(24, -4), states[2].Position)
}

func TestLoadScenarioFromFile(t *testing.T) {
	path := t.TempDir() + "/scenario.yaml"
	writeFile(t, path, referenceScenarioYAML)

	cfg, err := LoadScenario(path)
	require.NoError(t, err)
	require.Equal(t, "reference", cfg.Name)

	_, err = LoadScenario(path + ".missing")
	require.Error(t, err)
}
