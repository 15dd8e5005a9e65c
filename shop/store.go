/*
store.go - Persistence interfaces for shop records

PURPOSE:
  Defines the interfaces between shop operations and the database. The
  billing engine itself never touches these; the Service reads through
  them, hands the engine a snapshot, and writes the result back.

CONTRACT NOTES:
  - Child-record readers return ordered sequences (insertion order).
  - SaveTicketTotals / SaveEstimateTotals replace the whole triple; there
    is no partial totals update.
  - Nothing here locks: reading children and writing totals are separate
    calls, and overlapping recomputes race with last-write-wins.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store (implements Store)
  - billing/store: In-memory payment and rate stores for engine tests
*/
package shop

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajunmarine/shop-engine/billing"
)

// =============================================================================
// RECORD STORES
// =============================================================================

// CustomerStore persists customers. Get fails with
// billing.ErrCustomerNotFound when the id is unknown.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c Customer) (int64, error)
	GetCustomer(ctx context.Context, id int64) (Customer, error)
	UpdateCustomer(ctx context.Context, c Customer) error
	ListCustomers(ctx context.Context) ([]Customer, error)
}

// BoatStore persists boats.
type BoatStore interface {
	CreateBoat(ctx context.Context, b Boat) (int64, error)
	GetBoat(ctx context.Context, id int64) (Boat, error)
	ListBoats(ctx context.Context, customerID int64) ([]Boat, error)
}

// EngineStore persists installed engines.
type EngineStore interface {
	CreateEngine(ctx context.Context, e Engine) (int64, error)
	GetEngine(ctx context.Context, id int64) (Engine, error)
	ListEngines(ctx context.Context, boatID int64) ([]Engine, error)
}

// MechanicStore persists mechanics.
type MechanicStore interface {
	CreateMechanic(ctx context.Context, m Mechanic) (int64, error)
	GetMechanic(ctx context.Context, id int64) (Mechanic, error)
	ListMechanics(ctx context.Context) ([]Mechanic, error)
}

// PartStore persists catalog parts.
type PartStore interface {
	CreatePart(ctx context.Context, p Part) (int64, error)
	GetPart(ctx context.Context, id int64) (Part, error)
	ListParts(ctx context.Context) ([]Part, error)
}

// NewEngineStore persists engine-sale inventory.
type NewEngineStore interface {
	StockNewEngine(ctx context.Context, e NewEngine) (int64, error)
	GetNewEngine(ctx context.Context, id int64) (NewEngine, error)
	// ListNewEngines filters by status when status != "".
	ListNewEngines(ctx context.Context, status NewEngineStatus) ([]NewEngine, error)
	// MarkEngineSold records the sale. Fails unless the engine is In Stock.
	MarkEngineSold(ctx context.Context, id int64, customerID int64, boatID *int64, salePrice decimal.Decimal, soldAt time.Time) error
}

// =============================================================================
// TICKET AND ESTIMATE STORES
// =============================================================================

// TicketStore persists tickets and their child records.
type TicketStore interface {
	CreateTicket(ctx context.Context, t Ticket) (int64, error)
	GetTicket(ctx context.Context, id int64) (Ticket, error)
	// ListTickets filters by status when status != "".
	ListTickets(ctx context.Context, status TicketStatus) ([]Ticket, error)
	// SetTicketStatus updates status; closedAt is non-nil only for Closed.
	SetTicketStatus(ctx context.Context, id int64, status TicketStatus, closedAt *time.Time) error

	AddTicketPart(ctx context.Context, tp TicketPart) (int64, error)
	// PartsOnTicket returns the ticket's parts joined with catalog data,
	// in insertion order.
	PartsOnTicket(ctx context.Context, ticketID int64) ([]TicketPartDetail, error)

	AddTicketLabor(ctx context.Context, tl TicketLabor) (int64, error)
	// LaborOnTicket returns the ticket's labor entries in insertion order.
	LaborOnTicket(ctx context.Context, ticketID int64) ([]TicketLabor, error)

	// SaveTicketTotals replaces the totals triple and payment method.
	SaveTicketTotals(ctx context.Context, ticketID int64, totals billing.Totals, paymentMethod string) error
}

// EstimateStore persists estimates and their line items.
type EstimateStore interface {
	CreateEstimate(ctx context.Context, e Estimate) (int64, error)
	GetEstimate(ctx context.Context, id int64) (Estimate, error)
	ListEstimates(ctx context.Context) ([]Estimate, error)

	AddEstimateLineItem(ctx context.Context, item EstimateLineItem) (int64, error)
	// EstimateLineItems returns line items in insertion order.
	EstimateLineItems(ctx context.Context, estimateID int64) ([]EstimateLineItem, error)

	// SaveEstimateTotals replaces the totals triple.
	SaveEstimateTotals(ctx context.Context, estimateID int64, totals billing.Totals) error
}

// =============================================================================
// COMPOSITE STORE
// =============================================================================

// Store is everything the shop service needs from persistence, including
// the billing engine's payment and rate-table stores.
type Store interface {
	CustomerStore
	BoatStore
	EngineStore
	MechanicStore
	PartStore
	NewEngineStore
	TicketStore
	EstimateStore
	billing.PaymentStore
	billing.RateTableStore
}
