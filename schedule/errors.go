/*
errors.go - Error types for the schedule engine

PURPOSE:
  All engine error types in one place. Callers match with errors.Is/As.

ERROR CATEGORIES:
  1. Validation errors - rejected input at the pattern write boundary
  2. Configuration errors - invariant violations found at read time
  3. Not-found errors - missing referenced records

The validation/configuration split matters: a biweekly pattern without an
anchor date is rejected with a ValidationError when written, but if one is
encountered during resolution anyway (direct data manipulation), that is a
ConfigurationError and a hard failure, never a silent default.

SEE ALSO:
  - validate.go: produces ValidationError
  - resolver.go: produces ConfigurationError
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateName is returned when a company name collides with an
	// existing one. Comparison is case-insensitive and covers inactive
	// companies too.
	ErrDuplicateName = errors.New("company name already in use")

	// ErrMissingAnchor is returned when a biweekly pattern has no anchor
	// date. At write time it surfaces inside a ValidationError; at read
	// time inside a ConfigurationError.
	ErrMissingAnchor = errors.New("biweekly pattern has no anchor date")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports invalid input at the write boundary with a
// field-level message. Invalid values are rejected, never coerced.
type ValidationError struct {
	Field   string
	Message string
	err     error // optional sentinel for errors.Is
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.err }

// ConfigurationError reports a record whose stored state violates an
// engine invariant. It propagates as a hard failure during resolution.
type ConfigurationError struct {
	Reason string
	err    error
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is a client-correctable rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
