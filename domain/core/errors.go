package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrZeroFactor       = fmt.Errorf("%w: sensitivity factor must be non-zero", ErrInvalidParameter)
	ErrUnknownAxis      = fmt.Errorf("%w: unknown sweep axis", ErrInvalidParameter)
	ErrUnknownVariant   = fmt.Errorf("%w: unknown model variant", ErrInvalidParameter)
	ErrUnknownFormat    = fmt.Errorf("%w: unknown output format", ErrInvalidParameter)
	ErrNonFiniteResult  = fmt.Errorf("%w: parameters produce a non-finite diameter", ErrInvalidParameter)

	// Curve errors
	ErrEmptyCurve      = errors.New("curve has no samples")
	ErrCurveNotOrdered = errors.New("curve samples are not strictly increasing")
)

// NewValidationError reports a parameter that failed a domain check.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidParameter, field, reason)
}

// IsInputError reports whether err was caused by a caller-supplied value.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}
