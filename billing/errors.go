/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The shop package wraps these with record identifiers where useful.

ERROR CATEGORIES:
  1. Not-found errors - A referenced record does not exist
  2. Invalid-argument errors - Negative amounts, non-positive hours,
     unrecognized item types

An unclassifiable engine type is NOT an error: rate resolution falls back
through the mechanic's rate and the outboard default instead of failing.
Errors propagate synchronously; the engine never substitutes a default
numeric result to mask one, and never retries.

USAGE:
  if billing.IsNotFound(err) {
      // 404
  }
*/
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCustomerNotFound is returned when a referenced customer doesn't exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrTicketNotFound is returned when a referenced ticket doesn't exist.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrEstimateNotFound is returned when a referenced estimate doesn't exist.
	ErrEstimateNotFound = errors.New("estimate not found")

	// ErrPartNotFound is returned when a referenced part doesn't exist.
	ErrPartNotFound = errors.New("part not found")

	// ErrMechanicNotFound is returned when a referenced mechanic doesn't exist.
	ErrMechanicNotFound = errors.New("mechanic not found")

	// ErrEngineNotFound is returned when a referenced engine doesn't exist.
	ErrEngineNotFound = errors.New("engine not found")

	// ErrBoatNotFound is returned when a referenced boat doesn't exist.
	ErrBoatNotFound = errors.New("boat not found")

	// ErrInvalidAmount is returned for zero or negative payment amounts and
	// negative charge amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidHours is returned when a labor entry has non-positive hours.
	ErrInvalidHours = errors.New("hours must be positive")

	// ErrInvalidItemType is returned when an estimate line item type is not
	// one of the recognized kinds.
	ErrInvalidItemType = errors.New("item type must be 'part' or 'labor'")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidAmountError reports the offending value alongside the sentinel.
type InvalidAmountError struct {
	Field  string
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Amount.String())
}

func (e *InvalidAmountError) Unwrap() error {
	return ErrInvalidAmount
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrEstimateNotFound) ||
		errors.Is(err, ErrPartNotFound) ||
		errors.Is(err, ErrMechanicNotFound) ||
		errors.Is(err, ErrEngineNotFound) ||
		errors.Is(err, ErrBoatNotFound)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidHours) ||
		errors.Is(err, ErrInvalidItemType)
}
