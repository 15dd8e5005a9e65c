/*
ledger.go - Append-only payment ledger

PURPOSE:
  Records payments (deposits) against a ticket and computes the balance
  still due. Payments are the one part of billing that is a ledger in the
  strict sense: rows are appended, dated, and never mutated.

INVARIANTS:
  1. APPEND-ONLY: No Update, No Delete on payments.
  2. Amount must be positive; anything else is rejected up front.
  3. No balance check on append: overpayment is permitted, and balance
     due may go negative.

BALANCE DUE:
  balance = (persisted ticket total, or 0 if totals were never computed)
            - sum of payment amounts, rounded to 2 places.

SEE ALSO:
  - billing/store: In-memory PaymentStore for tests and dev
  - store/sqlite: Durable PaymentStore
*/
package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYMENT
// =============================================================================

// Payment is one dated payment against a ticket. Never mutated after
// creation.
type Payment struct {
	ID       string
	TicketID int64
	Amount   decimal.Decimal
	Date     time.Time
	Method   string
	Notes    string
}

// =============================================================================
// PAYMENT STORE
// =============================================================================

// PaymentStore persists payments. Append-only: implementations expose no
// update or delete.
type PaymentStore interface {
	// Append persists a payment.
	Append(ctx context.Context, p Payment) error

	// ListByTicket returns a ticket's payments ordered by date.
	ListByTicket(ctx context.Context, ticketID int64) ([]Payment, error)
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger records payments and derives balance due.
type Ledger struct {
	Store PaymentStore
}

// NewLedger creates a payment ledger over the given store.
func NewLedger(store PaymentStore) *Ledger {
	return &Ledger{Store: store}
}

// Record appends a payment of amount against the ticket, dated now.
// Fails with ErrInvalidAmount unless amount > 0. The outstanding balance
// is deliberately not checked.
func (l *Ledger) Record(ctx context.Context, ticketID int64, amount decimal.Decimal, method, notes string) (Payment, error) {
	if !amount.IsPositive() {
		return Payment{}, &InvalidAmountError{Field: "payment amount", Amount: amount}
	}

	p := Payment{
		ID:       uuid.NewString(),
		TicketID: ticketID,
		Amount:   amount,
		Date:     time.Now().UTC(),
		Method:   method,
		Notes:    notes,
	}
	if err := l.Store.Append(ctx, p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

// Payments returns the ticket's payment history, ordered by date.
func (l *Ledger) Payments(ctx context.Context, ticketID int64) ([]Payment, error) {
	return l.Store.ListByTicket(ctx, ticketID)
}

// BalanceDue computes total minus payments to date, rounded to 2 places.
// total is the persisted ticket total (zero if totals were never
// computed). The result may be negative.
func (l *Ledger) BalanceDue(ctx context.Context, ticketID int64, total decimal.Decimal) (decimal.Decimal, error) {
	payments, err := l.Store.ListByTicket(ctx, ticketID)
	if err != nil {
		return decimal.Zero, err
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return Round(total.Sub(paid)), nil
}
