package valuation

import (
	"errors"
	"fmt"
)

// RoleSubject / comparable index identify which property a validation error refers to.
const RoleSubject = "subject"

// ValidationError reports a malformed or missing required field on an input property.
// It aborts the whole request before any computation; the engine never returns a
// partial valuation.
type ValidationError struct {
	Role  string // "subject" or "comparable[i]"
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Role, e.Field, e.Msg)
}

func comparableRole(i int) string {
	return fmt.Sprintf("comparable[%d]", i)
}

// ErrInsufficientData is returned when a valuation is requested with zero comparables.
var ErrInsufficientData = errors.New("at least one comparable property is required")

// WarningDegenerateResult marks a result whose comparables were all clamped to zero by
// the normalizer. The result is still returned, with confidence 0.
const WarningDegenerateResult = "all comparables produced non-positive adjusted prices"
