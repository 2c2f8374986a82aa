package ecology

import "github.com/mpurbo/ecosim/internal/core/geometry"

// Event types published on the ecosystem's event bus during a disaster
// response. Payload types below correspond one to one.
const (
	EventDisaster      = "ecosystem.disaster"
	EventAgentSafe     = "ecosystem.agent_safe"
	EventConverged     = "ecosystem.converged"
	EventNoConvergence = "ecosystem.no_convergence"

	eventSource = "ecosystem"
)

// DisasterPayload accompanies EventDisaster.
type DisasterPayload struct {
	Hazard geometry.Vector2 `json:"hazard"`
	Agents int              `json:"agents"`
}

// AgentSafePayload accompanies EventAgentSafe, emitted the moment an agent
// crosses its safety radius.
type AgentSafePayload struct {
	AgentID  string           `json:"agent_id"`
	Kind     string           `json:"kind"`
	Pass     int              `json:"pass"`
	Position geometry.Vector2 `json:"position"`
}

// ConvergedPayload accompanies EventConverged.
type ConvergedPayload struct {
	Passes int `json:"passes"`
}

// NoConvergencePayload accompanies EventNoConvergence.
type NoConvergencePayload struct {
	Passes int `json:"passes"`
}
