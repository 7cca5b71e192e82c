/*
errors.go - Centralized error types for the payroll domain

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP statuses; see api/handlers.go.

ERROR CATEGORIES:
  1. Not-found errors  - Referenced TA / entry / ledger row is absent
  2. Validation errors - Business rule violations (non-positive hours, bad email)
  3. Store errors      - Underlying persistence failures, wrapped with %w

USAGE:
  if payroll.IsNotFound(err) { ... 404 ... }
  if payroll.IsClientError(err) { ... 400 ... }

NOTE ON CONSISTENCY:
  The two-step ledger+entries update in payment.go can leave the tables
  disagreeing if a write fails midway. That gap is architectural and is
  NOT modeled as an error class here; failed writes simply abort and
  surface the store error.
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTANotFound is returned when a referenced TA doesn't exist.
	ErrTANotFound = errors.New("ta not found")

	// ErrEntryNotFound is returned when a referenced time entry doesn't exist.
	ErrEntryNotFound = errors.New("time entry not found")

	// ErrLedgerRowNotFound is returned when a (ta, period) ledger row is
	// required but absent.
	ErrLedgerRowNotFound = errors.New("payroll ledger row not found")

	// ErrDuplicateEmail is returned when adding a TA whose email is taken.
	ErrDuplicateEmail = errors.New("a TA with this email already exists")

	// ErrEmptyPeriodKey is returned when an operation receives an empty
	// ta_id or pay_period key.
	ErrEmptyPeriodKey = errors.New("ta_id and pay_period are required")

	// ErrValidation is the root of all field validation failures.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a rejected field with a human-readable reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTANotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrLedgerRowNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrEmptyPeriodKey) ||
		errors.Is(err, ErrDuplicateEmail)
}
