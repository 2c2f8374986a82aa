package ecology

import "fmt"

// Kind is the closed variant set of agent species. Kind-specific behavior is
// data (a Profile), not a method hierarchy: dispatch is a switch over the
// variant, never virtual.
type Kind uint8

const (
	KindRunner Kind = iota
	KindFlyer
	KindSwimmer

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindRunner:
		return "runner"
	case KindFlyer:
		return "flyer"
	case KindSwimmer:
		return "swimmer"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the supported variants.
func (k Kind) Valid() bool { return k < kindCount }

// ParseKind resolves a kind name as it appears in scenario configs.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "runner":
		return KindRunner, nil
	case "flyer":
		return KindFlyer, nil
	case "swimmer":
		return KindSwimmer, nil
	default:
		return kindCount, fmt.Errorf("%w: kind %q", ErrUnsupportedVariant, name)
	}
}

// Profile holds the per-kind movement constants. Both values are fixed at
// agent construction and never change at runtime.
type Profile struct {
	// StepMagnitude is the displacement applied per axis on one evasive step.
	StepMagnitude float64
	// SafetyRadiusSquared is the squared distance from a hazard beyond which
	// an agent of this kind is safe.
	SafetyRadiusSquared float64
}

// Valid reports whether both constants are positive.
func (p Profile) Valid() bool {
	return p.StepMagnitude > 0 && p.SafetyRadiusSquared > 0
}

// defaultProfiles matches the reference scenario configuration.
var defaultProfiles = [kindCount]Profile{
	KindRunner:  {StepMagnitude: 6, SafetyRadiusSquared: 200},
	KindFlyer:   {StepMagnitude: 14, SafetyRadiusSquared: 100},
	KindSwimmer: {StepMagnitude: 10, SafetyRadiusSquared: 75},
}

// DefaultProfile returns the built-in movement constants for k.
// The zero Profile is returned for unknown kinds.
func DefaultProfile(k Kind) Profile {
	if !k.Valid() {
		return Profile{}
	}
	return defaultProfiles[k]
}
