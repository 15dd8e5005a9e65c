/*
aggregate.go - Snapshot-based totals aggregation

PURPOSE:
  Assembles a ticket's or estimate's child records into a charge list,
  runs the tax computation, and produces the Totals triple to persist.

SNAPSHOT CONTRACT:
  The aggregator takes an explicit snapshot of child records rather than
  querying stores itself. Recomputation is therefore a read-then-write at
  the call site with no atomicity guarantee: two overlapping recomputes
  can race, and the later write wins. That is a property of the system,
  visible here on purpose, and the surrounding persistence layer is the
  place to address it if it ever matters.

RECOMPUTE-ON-DEMAND:
  Nothing here subscribes to change notifications. After mutating parts,
  labor, or line items, the caller must recompute explicitly; totals read
  before that are stale.

IDEMPOTENCE:
  Re-running either aggregation over an unchanged snapshot yields an
  identical triple.

SEE ALSO:
  - tax.go: The computation both variants delegate to
  - shop: The service that builds snapshots and writes totals back
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SNAPSHOTS
// =============================================================================

// TicketSnapshot is a point-in-time view of a ticket's billable children.
// EquipmentSale is the sale price of a new engine sold on the ticket, or
// zero when none is attached.
type TicketSnapshot struct {
	Parts         []PartUsage
	Labor         []LaborEntry
	EquipmentSale decimal.Decimal
}

// EstimateSnapshot is a point-in-time view of an estimate's line items.
// Estimates never carry an equipment sale.
type EstimateSnapshot struct {
	Items []EstimateItem
}

// =============================================================================
// AGGREGATION
// =============================================================================

// ComputeTicketTotals prices a ticket snapshot: parts at quantity times
// unit price with the part's taxable flag, labor at hours times the
// stamped rate (always taxable), plus the equipment sale if present.
//
// paymentMethod is passed through to the tax computation (where it is
// currently a no-op) and is persisted on the ticket by the caller.
func ComputeTicketTotals(profile TaxProfile, snap TicketSnapshot, paymentMethod string) Totals {
	lines := make([]ChargeLine, 0, len(snap.Parts)+len(snap.Labor))
	for _, p := range snap.Parts {
		lines = append(lines, p.Line())
	}
	for _, l := range snap.Labor {
		lines = append(lines, l.Line())
	}
	return ComputeTax(profile, lines, paymentMethod, snap.EquipmentSale)
}

// ComputeEstimateTotals prices an estimate snapshot. Every line item is
// taxable and there is never an equipment sale, so the out-of-state
// exclusion path is never exercised here.
func ComputeEstimateTotals(profile TaxProfile, snap EstimateSnapshot) Totals {
	lines := make([]ChargeLine, 0, len(snap.Items))
	for _, item := range snap.Items {
		lines = append(lines, item.Line())
	}
	return ComputeTax(profile, lines, "", decimal.Zero)
}
