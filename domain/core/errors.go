package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Probability errors
	ErrDomain = errors.New("probability must be between 0 and 1 (inclusive)")

	// Numerical errors
	ErrNoBracket          = errors.New("solver could not bracket the target value")
	ErrSeriesUnderflow    = errors.New("detection series left the float64 range")
	ErrSeriesNotConverged = errors.New("detection series did not converge")

	// Validation errors
	ErrInvalidModel            = errors.New("invalid detection model")
	ErrInvalidPulses           = fmt.Errorf("%w: pulse count must be at least 1", ErrInvalidModel)
	ErrInvalidDegreesOfFreedom = fmt.Errorf("%w: degrees of freedom must be at least 1", ErrInvalidModel)
	ErrInvalidThreshold        = fmt.Errorf("%w: threshold must be finite and non-negative", ErrInvalidModel)
	ErrInvalidSNR              = fmt.Errorf("%w: snr must be finite and non-negative", ErrInvalidModel)
	ErrUnknownVariant          = errors.New("unknown target variant")
)

// Error constructors with context
func NewDomainError(value float64) error {
	return fmt.Errorf("%w: value is %v", ErrDomain, value)
}

func NewNoBracketError(target, guess float64) error {
	return fmt.Errorf("%w: target %v from initial guess %v", ErrNoBracket, target, guess)
}

// Error checking helpers
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidModel) ||
		errors.Is(err, ErrUnknownVariant)
}

func IsConvergenceError(err error) bool {
	return errors.Is(err, ErrNoBracket) ||
		errors.Is(err, ErrSeriesUnderflow) ||
		errors.Is(err, ErrSeriesNotConverged)
}
