/*
Package billing provides the pricing and tax computation engine.

PURPOSE:
  This package contains the shop's billing logic: turning itemized parts,
  labor, and equipment-sale records into a priced invoice (subtotal, tax,
  total), resolving hourly labor rates, and tracking payments against a
  ticket. Persistence and presentation live elsewhere; everything here is a
  pure or near-pure computation over already-fetched records.

KEY CONCEPTS IN THIS FILE (types.go):
  - ChargeLine: A single billable amount with a taxable flag
  - TaxProfile: The customer attributes that drive tax rules
  - Totals: The (subtotal, tax, total) triple written back onto a ticket
  - RateTable: Per-engine-class hourly labor rates
  - LaborEntry / PartUsage: Ticket child records as the engine sees them

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. One rounding rule: banker's rounding at 2 places, everywhere
  3. Recompute, don't patch: Totals are always replaced wholesale
  4. Stamped rates: A labor entry's rate is resolved once, at creation

SEE ALSO:
  - tax.go: Subtotal/tax/total computation
  - rates.go: Engine classification and rate resolution
  - aggregate.go: Snapshot-based totals aggregation
  - ledger.go: Append-only payment ledger
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TAX RATE - Fixed Louisiana sales tax
// =============================================================================

// TaxRate is the sales tax applied to taxable charges: 9.75%.
// Not configurable; the shop operates in a single jurisdiction.
var TaxRate = decimal.RequireFromString("0.0975")

// Round applies the engine's single rounding rule: banker's rounding at
// two decimal places. Every persisted currency value goes through this.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// MustParseDecimal parses a decimal string, returning zero on failure.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// TAX PROFILE - Customer attributes that drive tax rules
// =============================================================================

// TaxProfile carries the customer attributes the tax rules depend on.
// Exemption applies only when TaxExempt is set AND a certificate is on file.
type TaxProfile struct {
	TaxExempt         bool
	ExemptCertificate string
	OutOfState        bool
}

// Exempt reports whether the customer qualifies for full tax exemption.
func (p TaxProfile) Exempt() bool {
	return p.TaxExempt && p.ExemptCertificate != ""
}

// =============================================================================
// CHARGE LINE - A single billable amount
// =============================================================================

// ChargeLine is one billable amount on a ticket or estimate. Amount is
// non-negative; Taxable determines whether it enters the taxable base.
type ChargeLine struct {
	Amount  decimal.Decimal
	Taxable bool
}

// =============================================================================
// TOTALS - The computed invoice triple
// =============================================================================

// Totals is the computed (subtotal, tax, total) for a ticket or estimate.
// Totals start at zero when the owning record is created and are replaced
// wholesale on every recompute; they are never incrementally patched.
//
// INVARIANT: Total == Round(Subtotal + TaxAmount) after every recompute.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ZeroTotals returns the initial all-zero triple.
func ZeroTotals() Totals {
	return Totals{Subtotal: decimal.Zero, TaxAmount: decimal.Zero, Total: decimal.Zero}
}

// Equal reports whether two triples are numerically identical.
func (t Totals) Equal(o Totals) bool {
	return t.Subtotal.Equal(o.Subtotal) && t.TaxAmount.Equal(o.TaxAmount) && t.Total.Equal(o.Total)
}

// =============================================================================
// RATE TABLE - Per-engine-class hourly labor rates
// =============================================================================

// RateTable maps each engine class to an hourly labor rate. A single table
// exists per shop; the surrounding application seeds the defaults once at
// startup (see RateTableStore.EnsureRateDefaults) rather than on every lookup.
type RateTable struct {
	Outboard   decimal.Decimal
	Inboard    decimal.Decimal
	Sterndrive decimal.Decimal
	PWC        decimal.Decimal
}

// DefaultRateTable returns the shop's stock rates.
func DefaultRateTable() RateTable {
	return RateTable{
		Outboard:   decimal.NewFromInt(100),
		Inboard:    decimal.NewFromInt(120),
		Sterndrive: decimal.NewFromInt(120),
		PWC:        decimal.NewFromInt(120),
	}
}

// Rate returns the hourly rate for a class. ClassNone has no rate of its
// own; callers fall back through the resolution chain instead.
func (r RateTable) Rate(class EngineClass) (decimal.Decimal, bool) {
	switch class {
	case ClassOutboard:
		return r.Outboard, true
	case ClassInboard:
		return r.Inboard, true
	case ClassSterndrive:
		return r.Sterndrive, true
	case ClassPWC:
		return r.PWC, true
	}
	return decimal.Zero, false
}

// =============================================================================
// TICKET CHILD RECORDS - As the engine sees them
// =============================================================================

// PartUsage is a part attached to a ticket: quantity at a unit price, with
// the taxable flag taken from the part record (or its price override).
type PartUsage struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Taxable   bool
}

// Line converts the usage into a charge line (quantity * unit price).
func (p PartUsage) Line() ChargeLine {
	return ChargeLine{Amount: p.Quantity.Mul(p.UnitPrice), Taxable: p.Taxable}
}

// LaborEntry is a mechanic's work on a ticket. Rate is resolved once, when
// the entry is created, and never re-derived: changing the rate table
// afterward does not retroactively alter existing entries.
type LaborEntry struct {
	MechanicID int64
	Hours      decimal.Decimal
	Rate       decimal.Decimal
}

// Line converts the entry into a charge line. Labor is always taxable.
func (l LaborEntry) Line() ChargeLine {
	return ChargeLine{Amount: l.Hours.Mul(l.Rate), Taxable: true}
}

// EstimateItem is a manually entered estimate line: description, quantity,
// unit price. Estimate items are always taxable.
type EstimateItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Line converts the item into a charge line. Estimate lines are rounded
// per line; that rounded figure is also what gets stored on the line item.
func (e EstimateItem) Line() ChargeLine {
	return ChargeLine{Amount: Round(e.Quantity.Mul(e.UnitPrice)), Taxable: true}
}
