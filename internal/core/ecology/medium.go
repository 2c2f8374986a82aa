package ecology

import "fmt"

// Medium is the environment an agent moves through. It is a closed variant
// set; adding a variant means extending the enum, String and ParseMedium.
type Medium uint8

const (
	MediumGround Medium = iota
	MediumAir
	MediumWater

	mediumCount
)

func (m Medium) String() string {
	switch m {
	case MediumGround:
		return "ground"
	case MediumAir:
		return "air"
	case MediumWater:
		return "water"
	default:
		return fmt.Sprintf("medium(%d)", uint8(m))
	}
}

// Valid reports whether m is one of the supported variants.
func (m Medium) Valid() bool { return m < mediumCount }

// ParseMedium resolves a medium name as it appears in scenario configs.
func ParseMedium(name string) (Medium, error) {
	switch name {
	case "ground":
		return MediumGround, nil
	case "air":
		return MediumAir, nil
	case "water":
		return MediumWater, nil
	default:
		return mediumCount, fmt.Errorf("%w: medium %q", ErrUnsupportedVariant, name)
	}
}

// ApplyTo is invoked once per evasive step, before the agent's own
// displacement. It is the hook through which an environment can dampen or
// amplify movement; no current variant does, so every case is a no-op.
func (m Medium) ApplyTo(a *Agent) {
	switch m {
	case MediumGround, MediumAir, MediumWater:
	}
}
