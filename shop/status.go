/*
status.go - Ticket status lifecycle

PURPOSE:
  Tickets carry a workshop status from Open through Closed. The canonical
  set is the seven-state one below. An earlier release of the shop's
  software used only {Open, In Progress, Closed}; that variant is still
  accepted on input and normalized, so old data and old clients keep
  working.

TRANSITIONS:
  Any status may move to any other status. No legality check is performed;
  the front desk reorders work in ways no state chart predicts, and the
  shop has always relied on that freedom. The one side effect: moving to
  Closed stamps the closed date.
*/
package shop

import (
	"errors"
	"fmt"
)

// TicketStatus is a ticket's workshop status.
type TicketStatus string

const (
	StatusOpen             TicketStatus = "Open"
	StatusWorking          TicketStatus = "Working"
	StatusAwaitingParts    TicketStatus = "Awaiting Parts"
	StatusAwaitingCustomer TicketStatus = "Awaiting Customer"
	StatusAwaitingPayment  TicketStatus = "Awaiting Payment"
	StatusAwaitingPickup   TicketStatus = "Awaiting Pickup"
	StatusClosed           TicketStatus = "Closed"
)

// legacyStatuses maps the retired 3-state vocabulary onto the canonical
// set. "Open" and "Closed" map to themselves.
var legacyStatuses = map[string]TicketStatus{
	"In Progress": StatusWorking,
}

var canonicalStatuses = map[TicketStatus]bool{
	StatusOpen:             true,
	StatusWorking:          true,
	StatusAwaitingParts:    true,
	StatusAwaitingCustomer: true,
	StatusAwaitingPayment:  true,
	StatusAwaitingPickup:   true,
	StatusClosed:           true,
}

// ErrUnknownStatus is returned when a status string matches neither the
// canonical set nor the legacy vocabulary.
var ErrUnknownStatus = errors.New("unknown ticket status")

// NormalizeStatus maps a status string to the canonical set, translating
// legacy values. Unknown strings fail with ErrUnknownStatus.
func NormalizeStatus(s string) (TicketStatus, error) {
	if canonicalStatuses[TicketStatus(s)] {
		return TicketStatus(s), nil
	}
	if mapped, ok := legacyStatuses[s]; ok {
		return mapped, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}
