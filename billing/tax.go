/*
tax.go - Subtotal, tax, and total computation

PURPOSE:
  The single place where the shop's tax rules live. Given a customer's tax
  profile and an itemized list of charges, produce the (subtotal, tax,
  total) triple for an invoice.

TAX RULES (checked in order):
  1. Tax-exempt customer with a certificate on file: no tax on anything.
  2. Out-of-state customer buying a new engine: the engine sale itself is
     not taxed, but other taxable items still are. The sale price stays in
     the subtotal either way.
  3. Default: 9.75% on every taxable item, engine sale included.

ROUNDING:
  Tax is rounded first, then the total, both with banker's rounding at two
  places. The total is always Round(subtotal + tax), not an independently
  rounded sum of lines.

SEE ALSO:
  - aggregate.go: Builds the charge list from ticket/estimate records
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// ComputeTax calculates subtotal, tax, and total for a transaction.
//
// lines is the ordered charge list; equipmentSale is the sale price of a
// new engine sold on this transaction, or zero. The sale price always
// contributes to the subtotal; whether it is taxed depends on the rules
// above.
//
// paymentMethod is accepted but currently has no effect on the numbers.
// It is kept in the signature because a cash-specific rule has been
// discussed but never adopted; callers already pass it.
func ComputeTax(profile TaxProfile, lines []ChargeLine, paymentMethod string, equipmentSale decimal.Decimal) Totals {
	_ = paymentMethod

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Amount)
	}
	if equipmentSale.IsPositive() {
		subtotal = subtotal.Add(equipmentSale)
	}

	// Rule 1: full exemption short-circuits everything else.
	if profile.Exempt() {
		return Totals{Subtotal: subtotal, TaxAmount: decimal.Zero, Total: subtotal}
	}

	taxable := decimal.Zero
	if profile.OutOfState && equipmentSale.IsPositive() {
		// Rule 2: the engine sale is exempt; other taxable items are not.
		for _, line := range lines {
			if line.Taxable {
				taxable = taxable.Add(line.Amount)
			}
		}
	} else {
		if equipmentSale.IsPositive() {
			taxable = equipmentSale
		}
		for _, line := range lines {
			if line.Taxable {
				taxable = taxable.Add(line.Amount)
			}
		}
	}

	taxAmount := Round(taxable.Mul(TaxRate))
	total := Round(subtotal.Add(taxAmount))

	return Totals{Subtotal: subtotal, TaxAmount: taxAmount, Total: total}
}
