package ecology

import "errors"

// Core simulation errors
var (
	// Construction errors

	ErrUnsupportedVariant = errors.New("unsupported agent variant")
	ErrInvalidProfile     = errors.New("profile constants must be positive")

	// Disaster-response errors

	ErrNoConvergence      = errors.New("disaster response did not converge")
	ErrDisasterInProgress = errors.New("disaster response already in progress")
)
