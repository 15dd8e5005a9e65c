/*
rates.go - Engine classification and labor rate resolution

PURPOSE:
  Labor is billed at different hourly rates depending on what kind of
  engine is being worked on. This file classifies an engine's free-text
  type label into one of the shop's rate classes and resolves the rate a
  labor entry should be stamped with.

RESOLUTION CHAIN (first match wins):
  1. Explicit override rate supplied by the caller
  2. Rate-table rate for the classified engine
  3. The mechanic's own stored hourly rate
  4. The table's outboard rate (last resort)

An unrecognized engine type is not an error; it just means steps 3 and 4
carry the resolution. The resolved rate is stamped onto the labor entry at
creation and never re-derived.

SEE ALSO:
  - types.go: RateTable definition and defaults
*/
package billing

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE CLASS
// =============================================================================

// EngineClass is one of the shop's rate classes. ClassNone means the engine
// label didn't match any class (or there was no engine at all).
type EngineClass string

const (
	ClassOutboard   EngineClass = "outboard"
	ClassInboard    EngineClass = "inboard"
	ClassSterndrive EngineClass = "sterndrive"
	ClassPWC        EngineClass = "pwc"
	ClassNone       EngineClass = ""
)

// ClassifyEngine matches an engine's free-text type label to a rate class,
// case-insensitively, by substring. Priority order matters: "inboard" is
// checked after "outboard" so "Outboard" doesn't classify as inboard.
func ClassifyEngine(label string) EngineClass {
	t := strings.ToLower(label)
	switch {
	case strings.Contains(t, "outboard"):
		return ClassOutboard
	case strings.Contains(t, "inboard"):
		return ClassInboard
	case strings.Contains(t, "stern"):
		return ClassSterndrive
	case strings.Contains(t, "pwc"), strings.Contains(t, "jetski"):
		return ClassPWC
	}
	return ClassNone
}

// =============================================================================
// RATE TABLE STORE - Single-record persistence
// =============================================================================

// RateTableStore persists the shop's single rate table. EnsureDefaults is
// run once by the surrounding application at startup; lookups afterward
// assume the record exists.
type RateTableStore interface {
	// EnsureRateDefaults creates the table with stock rates if absent.
	EnsureRateDefaults(ctx context.Context) error

	// LoadRates returns the current rate table.
	LoadRates(ctx context.Context) (RateTable, error)

	// SaveRates replaces the rate table. Existing labor entries keep the
	// rate they were stamped with.
	SaveRates(ctx context.Context, rates RateTable) error
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver resolves the hourly rate for a new labor entry against an
// explicit rate table. The table is injected, not loaded lazily, so a
// single read serves a whole resolution.
type Resolver struct {
	Rates RateTable
}

// NewResolver creates a resolver over the given rate table.
func NewResolver(rates RateTable) *Resolver {
	return &Resolver{Rates: rates}
}

// Resolve returns the rate to stamp onto a labor entry.
//
// engineLabel is the associated engine's type label; pass hasEngine=false
// when the ticket has no engine. mechanicRate is the mechanic's stored
// hourly rate, nil if none. override, when non-nil, wins verbatim over
// everything else.
func (r *Resolver) Resolve(engineLabel string, hasEngine bool, mechanicRate *decimal.Decimal, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}

	class := ClassNone
	if hasEngine {
		class = ClassifyEngine(engineLabel)
	}

	if rate, ok := r.Rates.Rate(class); ok {
		return rate
	}

	if mechanicRate != nil {
		return *mechanicRate
	}
	return r.Rates.Outboard
}
