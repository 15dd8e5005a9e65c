/*
service.go - Shop operations

PURPOSE:
  The Service is the one place shop operations are wired together: it
  validates input, reads records, feeds the billing engine snapshots, and
  writes results back. The HTTP layer is a thin shell over this type.

RECOMPUTE CONTRACT:
  Adding a part, labor entry, or line item does NOT update totals. Callers
  invoke RecomputeTicketTotals / RecomputeEstimateTotals explicitly after
  mutating children; until then the persisted totals are stale. The
  recompute itself is read-then-write with no lock: overlapping recomputes
  race, and the later write wins.

RATE STAMPING:
  AddTicketLabor resolves the hourly rate once, at creation, through
  billing.Resolver (override, then engine class, then the mechanic's own
  rate, then the outboard default). Later rate-table edits never touch
  existing entries.

SEE ALSO:
  - billing: The computations this service orchestrates
  - store/sqlite: The Store implementation behind it
*/
package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajunmarine/shop-engine/billing"
)

// Service wires shop stores to the billing engine.
type Service struct {
	store  Store
	ledger *billing.Ledger
}

// NewService creates a Service over the given store.
func NewService(store Store) *Service {
	return &Service{
		store:  store,
		ledger: billing.NewLedger(store),
	}
}

// EnsureRateDefaults seeds the labor rate table if absent. Run once at
// application startup.
func (s *Service) EnsureRateDefaults(ctx context.Context) error {
	return s.store.EnsureRateDefaults(ctx)
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (s *Service) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	id, err := s.store.CreateCustomer(ctx, c)
	if err != nil {
		return Customer{}, err
	}
	c.ID = id
	return c, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *Service) UpdateCustomer(ctx context.Context, c Customer) error {
	return s.store.UpdateCustomer(ctx, c)
}

func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.store.ListCustomers(ctx)
}

// =============================================================================
// BOATS, ENGINES, MECHANICS, PARTS
// =============================================================================

func (s *Service) CreateBoat(ctx context.Context, b Boat) (Boat, error) {
	if _, err := s.store.GetCustomer(ctx, b.CustomerID); err != nil {
		return Boat{}, err
	}
	id, err := s.store.CreateBoat(ctx, b)
	if err != nil {
		return Boat{}, err
	}
	b.ID = id
	return b, nil
}

func (s *Service) GetBoat(ctx context.Context, id int64) (Boat, error) {
	return s.store.GetBoat(ctx, id)
}

func (s *Service) ListBoats(ctx context.Context, customerID int64) ([]Boat, error) {
	return s.store.ListBoats(ctx, customerID)
}

func (s *Service) CreateEngine(ctx context.Context, e Engine) (Engine, error) {
	if _, err := s.store.GetBoat(ctx, e.BoatID); err != nil {
		return Engine{}, err
	}
	id, err := s.store.CreateEngine(ctx, e)
	if err != nil {
		return Engine{}, err
	}
	e.ID = id
	return e, nil
}

func (s *Service) GetEngine(ctx context.Context, id int64) (Engine, error) {
	return s.store.GetEngine(ctx, id)
}

func (s *Service) ListEngines(ctx context.Context, boatID int64) ([]Engine, error) {
	return s.store.ListEngines(ctx, boatID)
}

func (s *Service) CreateMechanic(ctx context.Context, m Mechanic) (Mechanic, error) {
	id, err := s.store.CreateMechanic(ctx, m)
	if err != nil {
		return Mechanic{}, err
	}
	m.ID = id
	return m, nil
}

func (s *Service) GetMechanic(ctx context.Context, id int64) (Mechanic, error) {
	return s.store.GetMechanic(ctx, id)
}

func (s *Service) ListMechanics(ctx context.Context) ([]Mechanic, error) {
	return s.store.ListMechanics(ctx)
}

func (s *Service) CreatePart(ctx context.Context, p Part) (Part, error) {
	if p.Price.IsNegative() {
		return Part{}, &billing.InvalidAmountError{Field: "part price", Amount: p.Price}
	}
	id, err := s.store.CreatePart(ctx, p)
	if err != nil {
		return Part{}, err
	}
	p.ID = id
	return p, nil
}

func (s *Service) GetPart(ctx context.Context, id int64) (Part, error) {
	return s.store.GetPart(ctx, id)
}

func (s *Service) ListParts(ctx context.Context) ([]Part, error) {
	return s.store.ListParts(ctx)
}

// =============================================================================
// NEW ENGINE INVENTORY
// =============================================================================

func (s *Service) StockNewEngine(ctx context.Context, e NewEngine) (NewEngine, error) {
	e.Status = EngineInStock
	id, err := s.store.StockNewEngine(ctx, e)
	if err != nil {
		return NewEngine{}, err
	}
	e.ID = id
	return e, nil
}

func (s *Service) ListNewEngines(ctx context.Context, status NewEngineStatus) ([]NewEngine, error) {
	return s.store.ListNewEngines(ctx, status)
}

func (s *Service) GetNewEngine(ctx context.Context, id int64) (NewEngine, error) {
	return s.store.GetNewEngine(ctx, id)
}

// SellNewEngine marks a stocked engine sold to a customer at a price. The
// recorded sale price is what ticket totals pick up as the equipment sale.
func (s *Service) SellNewEngine(ctx context.Context, engineID, customerID int64, boatID *int64, salePrice decimal.Decimal) error {
	if !salePrice.IsPositive() {
		return &billing.InvalidAmountError{Field: "sale price", Amount: salePrice}
	}
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return err
	}
	return s.store.MarkEngineSold(ctx, engineID, customerID, boatID, salePrice, time.Now().UTC())
}

// =============================================================================
// TICKETS
// =============================================================================

// CreateTicket opens a ticket: status Open, totals zero.
func (s *Service) CreateTicket(ctx context.Context, customerID, boatID int64, engineID *int64, description string) (Ticket, error) {
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return Ticket{}, err
	}

	t := Ticket{
		CustomerID:  customerID,
		BoatID:      boatID,
		EngineID:    engineID,
		Description: description,
		DateOpened:  time.Now().UTC(),
		Status:      StatusOpen,
		Totals:      billing.ZeroTotals(),
	}
	id, err := s.store.CreateTicket(ctx, t)
	if err != nil {
		return Ticket{}, err
	}
	t.ID = id
	return t, nil
}

func (s *Service) GetTicket(ctx context.Context, id int64) (Ticket, error) {
	return s.store.GetTicket(ctx, id)
}

// TicketDetails returns a ticket with its parts and labor, enriched with
// per-line totals the way invoices display them.
func (s *Service) TicketDetails(ctx context.Context, id int64) (TicketDetails, error) {
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return TicketDetails{}, err
	}

	details := TicketDetails{Ticket: t}
	if c, err := s.store.GetCustomer(ctx, t.CustomerID); err == nil {
		details.CustomerName = c.Name
	}
	if b, err := s.store.GetBoat(ctx, t.BoatID); err == nil {
		details.BoatMake, details.BoatModel = b.Make, b.Model
	}

	if details.Parts, err = s.store.PartsOnTicket(ctx, id); err != nil {
		return TicketDetails{}, err
	}
	if details.Labor, err = s.store.LaborOnTicket(ctx, id); err != nil {
		return TicketDetails{}, err
	}
	return details, nil
}

// ListTickets lists tickets, optionally filtered by status. The filter
// accepts legacy status names.
func (s *Service) ListTickets(ctx context.Context, statusFilter string) ([]Ticket, error) {
	var status TicketStatus
	if statusFilter != "" {
		var err error
		if status, err = NormalizeStatus(statusFilter); err != nil {
			return nil, err
		}
	}
	return s.store.ListTickets(ctx, status)
}

// SetTicketStatus moves a ticket to any status; no transition is
// rejected. Closing stamps the closed date.
func (s *Service) SetTicketStatus(ctx context.Context, id int64, statusStr string) error {
	status, err := NormalizeStatus(statusStr)
	if err != nil {
		return err
	}
	if _, err := s.store.GetTicket(ctx, id); err != nil {
		return err
	}

	var closedAt *time.Time
	if status == StatusClosed {
		now := time.Now().UTC()
		closedAt = &now
	}
	return s.store.SetTicketStatus(ctx, id, status, closedAt)
}

// AddTicketPart attaches a part to a ticket. priceOverride, when set, is
// recorded on the row; the catalog price still drives totals.
func (s *Service) AddTicketPart(ctx context.Context, ticketID, partID int64, quantity decimal.Decimal, priceOverride *decimal.Decimal) (TicketPart, error) {
	if !quantity.IsPositive() {
		return TicketPart{}, &billing.InvalidAmountError{Field: "quantity", Amount: quantity}
	}
	if _, err := s.store.GetTicket(ctx, ticketID); err != nil {
		return TicketPart{}, err
	}
	if _, err := s.store.GetPart(ctx, partID); err != nil {
		return TicketPart{}, err
	}

	tp := TicketPart{TicketID: ticketID, PartID: partID, Quantity: quantity, PriceOverride: priceOverride}
	id, err := s.store.AddTicketPart(ctx, tp)
	if err != nil {
		return TicketPart{}, err
	}
	tp.ID = id
	return tp, nil
}

// AddTicketLabor records a mechanic's work and stamps the resolved rate.
// rateOverride, when set, wins verbatim; otherwise the rate comes from the
// engine's class, then the mechanic's own rate, then the outboard default.
func (s *Service) AddTicketLabor(ctx context.Context, ticketID, mechanicID int64, hours decimal.Decimal, workDescription string, rateOverride *decimal.Decimal) (TicketLabor, error) {
	if !hours.IsPositive() {
		return TicketLabor{}, fmt.Errorf("%w: got %s", billing.ErrInvalidHours, hours)
	}

	t, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return TicketLabor{}, err
	}
	mech, err := s.store.GetMechanic(ctx, mechanicID)
	if err != nil {
		return TicketLabor{}, err
	}

	var engineLabel string
	hasEngine := false
	if t.EngineID != nil {
		if eng, err := s.store.GetEngine(ctx, *t.EngineID); err == nil {
			engineLabel, hasEngine = eng.Type, true
		}
	}

	rates, err := s.store.LoadRates(ctx)
	if err != nil {
		return TicketLabor{}, err
	}
	rate := billing.NewResolver(rates).Resolve(engineLabel, hasEngine, mech.HourlyRate, rateOverride)

	tl := TicketLabor{
		TicketID:        ticketID,
		MechanicID:      mechanicID,
		Hours:           hours,
		Rate:            rate,
		WorkDescription: workDescription,
	}
	id, err := s.store.AddTicketLabor(ctx, tl)
	if err != nil {
		return TicketLabor{}, err
	}
	tl.ID = id
	return tl, nil
}

// RecomputeTicketTotals rebuilds the ticket's totals from its current
// children and persists them along with the payment method. newEngineID,
// when set, attaches that engine's sale price as the equipment sale.
//
// This is the explicit recompute: nothing calls it automatically, and it
// holds no lock between reading children and writing totals.
func (s *Service) RecomputeTicketTotals(ctx context.Context, ticketID int64, paymentMethod string, newEngineID *int64) (billing.Totals, error) {
	t, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return billing.Totals{}, err
	}
	customer, err := s.store.GetCustomer(ctx, t.CustomerID)
	if err != nil {
		return billing.Totals{}, err
	}

	parts, err := s.store.PartsOnTicket(ctx, ticketID)
	if err != nil {
		return billing.Totals{}, err
	}
	labor, err := s.store.LaborOnTicket(ctx, ticketID)
	if err != nil {
		return billing.Totals{}, err
	}

	snap := billing.TicketSnapshot{EquipmentSale: decimal.Zero}
	for _, p := range parts {
		snap.Parts = append(snap.Parts, billing.PartUsage{
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
			Taxable:   p.Taxable,
		})
	}
	for _, l := range labor {
		snap.Labor = append(snap.Labor, billing.LaborEntry{
			MechanicID: l.MechanicID,
			Hours:      l.Hours,
			Rate:       l.Rate,
		})
	}
	if newEngineID != nil {
		if eng, err := s.store.GetNewEngine(ctx, *newEngineID); err == nil {
			snap.EquipmentSale = eng.SalePrice
		}
	}

	totals := billing.ComputeTicketTotals(customer.TaxProfile(), snap, paymentMethod)
	if err := s.store.SaveTicketTotals(ctx, ticketID, totals, paymentMethod); err != nil {
		return billing.Totals{}, err
	}
	return totals, nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

// AddPayment appends a payment against the ticket. Overpayment is not
// rejected.
func (s *Service) AddPayment(ctx context.Context, ticketID int64, amount decimal.Decimal, method, notes string) (billing.Payment, error) {
	if _, err := s.store.GetTicket(ctx, ticketID); err != nil {
		return billing.Payment{}, err
	}
	return s.ledger.Record(ctx, ticketID, amount, method, notes)
}

// TicketPayments returns the ticket's payments ordered by date.
func (s *Service) TicketPayments(ctx context.Context, ticketID int64) ([]billing.Payment, error) {
	if _, err := s.store.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.ledger.Payments(ctx, ticketID)
}

// BalanceDue is the persisted total minus payments to date; zero total if
// totals were never computed. May be negative.
func (s *Service) BalanceDue(ctx context.Context, ticketID int64) (decimal.Decimal, error) {
	t, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.ledger.BalanceDue(ctx, ticketID, t.Totals.Total)
}

// =============================================================================
// ESTIMATES
// =============================================================================

func (s *Service) CreateEstimate(ctx context.Context, e Estimate) (Estimate, error) {
	if _, err := s.store.GetCustomer(ctx, e.CustomerID); err != nil {
		return Estimate{}, err
	}
	e.DateCreated = time.Now().UTC()
	e.Totals = billing.ZeroTotals()
	id, err := s.store.CreateEstimate(ctx, e)
	if err != nil {
		return Estimate{}, err
	}
	e.ID = id
	return e, nil
}

// AddEstimateLineItem appends a manually priced line. The line total is
// rounded here, at insert, and that figure feeds later aggregation.
func (s *Service) AddEstimateLineItem(ctx context.Context, estimateID int64, itemType LineItemType, description string, quantity, unitPrice decimal.Decimal) (EstimateLineItem, error) {
	if itemType != ItemPart && itemType != ItemLabor {
		return EstimateLineItem{}, fmt.Errorf("%w: got %q", billing.ErrInvalidItemType, itemType)
	}
	if !quantity.IsPositive() {
		return EstimateLineItem{}, &billing.InvalidAmountError{Field: "quantity", Amount: quantity}
	}
	if unitPrice.IsNegative() {
		return EstimateLineItem{}, &billing.InvalidAmountError{Field: "unit price", Amount: unitPrice}
	}
	if _, err := s.store.GetEstimate(ctx, estimateID); err != nil {
		return EstimateLineItem{}, err
	}

	item := EstimateLineItem{
		EstimateID:  estimateID,
		ItemType:    itemType,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   billing.Round(quantity.Mul(unitPrice)),
	}
	id, err := s.store.AddEstimateLineItem(ctx, item)
	if err != nil {
		return EstimateLineItem{}, err
	}
	item.ID = id
	return item, nil
}

func (s *Service) EstimateDetails(ctx context.Context, id int64) (EstimateDetails, error) {
	e, err := s.store.GetEstimate(ctx, id)
	if err != nil {
		return EstimateDetails{}, err
	}

	details := EstimateDetails{Estimate: e}
	if c, err := s.store.GetCustomer(ctx, e.CustomerID); err == nil {
		details.CustomerName = c.Name
	}
	if details.Items, err = s.store.EstimateLineItems(ctx, id); err != nil {
		return EstimateDetails{}, err
	}
	return details, nil
}

func (s *Service) ListEstimates(ctx context.Context) ([]Estimate, error) {
	return s.store.ListEstimates(ctx)
}

// RecomputeEstimateTotals rebuilds the estimate's totals from its current
// line items and persists them. Estimates never carry an equipment sale.
func (s *Service) RecomputeEstimateTotals(ctx context.Context, estimateID int64) (billing.Totals, error) {
	e, err := s.store.GetEstimate(ctx, estimateID)
	if err != nil {
		return billing.Totals{}, err
	}
	customer, err := s.store.GetCustomer(ctx, e.CustomerID)
	if err != nil {
		return billing.Totals{}, err
	}
	items, err := s.store.EstimateLineItems(ctx, estimateID)
	if err != nil {
		return billing.Totals{}, err
	}

	snap := billing.EstimateSnapshot{}
	for _, item := range items {
		snap.Items = append(snap.Items, billing.EstimateItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	totals := billing.ComputeEstimateTotals(customer.TaxProfile(), snap)
	if err := s.store.SaveEstimateTotals(ctx, estimateID, totals); err != nil {
		return billing.Totals{}, err
	}
	return totals, nil
}

// =============================================================================
// LABOR RATES
// =============================================================================

func (s *Service) GetRates(ctx context.Context) (billing.RateTable, error) {
	return s.store.LoadRates(ctx)
}

func (s *Service) UpdateRates(ctx context.Context, rates billing.RateTable) error {
	for _, r := range []decimal.Decimal{rates.Outboard, rates.Inboard, rates.Sterndrive, rates.PWC} {
		if r.IsNegative() {
			return &billing.InvalidAmountError{Field: "labor rate", Amount: r}
		}
	}
	return s.store.SaveRates(ctx, rates)
}
