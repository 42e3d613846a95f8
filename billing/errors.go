/*
errors.go - Error types for the billing engine

PURPOSE:
  The engine distinguishes two failure classes:

  1. Data-integrity errors: the input snapshot is inconsistent (a lesson
     references a party with no billing configuration). These are returned
     as errors, never retried, and never produce a partial table.
  2. Contract violations: malformed caller input (payment day outside 1..31,
     reversed reporting window, duplicate ids). These are programmer bugs
     and panic.

USAGE:
  if errors.Is(err, billing.ErrMissingBillingConfig) {
      var mc *billing.MissingBillingConfigError
      errors.As(err, &mc)
      // mc.Kind, mc.ID identify the offending party
  }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

// ErrMissingBillingConfig is returned when a lesson references a teacher or
// customer that has no payment-day configuration. The table build aborts.
var ErrMissingBillingConfig = errors.New("missing billing configuration")

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PartyKind tells which side of the billing relation an error refers to.
type PartyKind string

const (
	PartyTeacher  PartyKind = "teacher"
	PartyCustomer PartyKind = "customer"
)

// MissingBillingConfigError identifies the first party encountered (in lesson
// id order) that lacks a payment-day entry.
type MissingBillingConfigError struct {
	Kind PartyKind
	ID   int64
}

func (e *MissingBillingConfigError) Error() string {
	return fmt.Sprintf("missing billing configuration for %s %d", e.Kind, e.ID)
}

func (e *MissingBillingConfigError) Unwrap() error {
	return ErrMissingBillingConfig
}
