package ecology

import (
	"github.com/google/uuid"

	"github.com/mpurbo/ecosim/internal/core/geometry"
)

// Agent is a movable entity in the ecosystem. Kind, medium and profile are
// immutable after construction; position is the one mutable field, and only
// EvadeStep writes it. Agents never share mutable state.
type Agent struct {
	id       string
	kind     Kind
	medium   Medium
	profile  Profile
	position geometry.Vector2
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.id }

// Kind returns the agent's species variant.
func (a *Agent) Kind() Kind { return a.kind }

// Medium returns the agent's medium of locomotion.
func (a *Agent) Medium() Medium { return a.medium }

// Profile returns the agent's movement constants.
func (a *Agent) Profile() Profile { return a.profile }

// Position returns the agent's current position.
func (a *Agent) Position() geometry.Vector2 { return a.position }

// EvadeStep moves the agent one step away from the hazard: the medium hook
// runs first, then the agent is displaced by its step magnitude along the
// sign of each component of its offset from the hazard. An agent exactly at
// the hazard has a zero direction and does not move.
func (a *Agent) EvadeStep(hazard geometry.Vector2) {
	a.medium.ApplyTo(a)
	dir := a.position.Sub(hazard).Direction()
	a.position = a.position.Add(dir.Scale(a.profile.StepMagnitude))
}

// SafeFrom reports whether the agent is strictly beyond its safety radius
// from the hazard.
func (a *Agent) SafeFrom(hazard geometry.Vector2) bool {
	return a.position.SquaredDistanceTo(hazard) > a.profile.SafetyRadiusSquared
}

// AgentState is a read-only snapshot of one agent.
type AgentState struct {
	ID       string           `json:"id"`
	Kind     string           `json:"kind"`
	Medium   string           `json:"medium"`
	Position geometry.Vector2 `json:"position"`
}

// State snapshots the agent.
func (a *Agent) State() AgentState {
	return AgentState{
		ID:       a.id,
		Kind:     a.kind.String(),
		Medium:   a.medium.String(),
		Position: a.position,
	}
}

// Factory binds a kind to its profile and constructs agents atomically.
// Variant validation happens here, at construction time, so the simulation
// loop never sees a misconfigured agent.
type Factory struct {
	profiles [kindCount]Profile
}

// NewFactory returns a Factory with the built-in profile table.
func NewFactory() *Factory {
	return &Factory{profiles: defaultProfiles}
}

// OverrideProfile replaces the movement constants used for one kind.
func (f *Factory) OverrideProfile(k Kind, p Profile) error {
	if !k.Valid() {
		return ErrUnsupportedVariant
	}
	if !p.Valid() {
		return ErrInvalidProfile
	}
	f.profiles[k] = p
	return nil
}

// Create constructs an agent of the given kind in the given medium at the
// given starting position. It fails only when kind or medium is outside the
// supported variant set.
func (f *Factory) Create(kind Kind, medium Medium, position geometry.Vector2) (*Agent, error) {
	if !kind.Valid() {
		return nil, ErrUnsupportedVariant
	}
	if !medium.Valid() {
		return nil, ErrUnsupportedVariant
	}
	return &Agent{
		id:       uuid.NewString(),
		kind:     kind,
		medium:   medium,
		profile:  f.profiles[kind],
		position: position,
	}, nil
}
