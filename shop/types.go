// Package shop implements the repair shop's records and operations:
// customers, boats, engines, mechanics, parts, repair tickets, estimates,
// and engine-sale inventory. It feeds the billing engine with snapshots of
// ticket/estimate children and writes the computed totals back.
package shop

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajunmarine/shop-engine/billing"
)

// =============================================================================
// PEOPLE AND EQUIPMENT
// =============================================================================

// Customer is a shop customer. The three tax fields drive the billing
// rules: exemption applies only when TaxExempt is set and a certificate
// is on file.
type Customer struct {
	ID                int64
	Name              string
	Phone             string
	Email             string
	Address           string
	TaxExempt         bool
	ExemptCertificate string
	OutOfState        bool
}

// TaxProfile extracts the billing-relevant attributes.
func (c Customer) TaxProfile() billing.TaxProfile {
	return billing.TaxProfile{
		TaxExempt:         c.TaxExempt,
		ExemptCertificate: c.ExemptCertificate,
		OutOfState:        c.OutOfState,
	}
}

// Boat belongs to a customer.
type Boat struct {
	ID         int64
	CustomerID int64
	Make       string
	Model      string
	Year       int
	Colors     [3]string
}

// Engine is an engine installed on a customer's boat. Type is a free-text
// label ("Outboard 115HP", "Mercruiser Sterndrive") that rate resolution
// classifies by substring. Outdrive applies to sterndrives only.
type Engine struct {
	ID       int64
	BoatID   int64
	Type     string
	HP       int
	Year     int
	Serial   string
	Outdrive string
	Notes    string
}

// Mechanic works tickets. HourlyRate is the mechanic's own rate, used as a
// fallback when an engine can't be classified; nil when not set.
type Mechanic struct {
	ID         int64
	Name       string
	HourlyRate *decimal.Decimal
	Phone      string
	Email      string
}

// Part is a catalog part. Taxable feeds straight into the charge line
// built for any ticket the part is used on.
type Part struct {
	ID           int64
	PartNumber   string
	Name         string
	Price        decimal.Decimal
	Taxable      bool
	SupplierName string
	SupplierCost decimal.Decimal
	RetailPrice  decimal.Decimal
}

// =============================================================================
// NEW ENGINE INVENTORY
// =============================================================================

// NewEngineStatus tracks a stocked engine through its sale.
type NewEngineStatus string

const (
	EngineInStock NewEngineStatus = "In Stock"
	EngineSold    NewEngineStatus = "Sold"
)

// NewEngine is a new engine held for sale. Once sold it records the buyer,
// the boat it went on, and the sale price the billing engine uses for the
// out-of-state exclusion.
type NewEngine struct {
	ID            int64
	HP            int
	Model         string
	Serial        string
	Status        NewEngineStatus
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	CustomerID    *int64
	BoatID        *int64
	DateSold      *time.Time
	Notes         string
}

// =============================================================================
// TICKETS
// =============================================================================

// Ticket is a repair job. Totals start at zero and are replaced wholesale
// by each recompute; they are not kept in sync with child mutations
// automatically.
type Ticket struct {
	ID            int64
	CustomerID    int64
	BoatID        int64
	EngineID      *int64
	Description   string
	CustomerNotes string
	DateOpened    time.Time
	DateClosed    *time.Time
	Status        TicketStatus
	Totals        billing.Totals
	PaymentMethod string
}

// TicketPart attaches a catalog part to a ticket. PriceOverride is
// recorded when the counter quotes a different price; totals are priced
// from the part record (matching the invoice the shop has always
// produced), so the override is history, not pricing input.
type TicketPart struct {
	ID            int64
	TicketID      int64
	PartID        int64
	Quantity      decimal.Decimal
	PriceOverride *decimal.Decimal
}

// TicketPartDetail is a ticket part joined with its catalog record, as
// read back for display and aggregation.
type TicketPartDetail struct {
	TicketPart
	PartNumber string
	PartName   string
	UnitPrice  decimal.Decimal
	Taxable    bool
}

// LineTotal is the part's contribution to the ticket subtotal.
func (d TicketPartDetail) LineTotal() decimal.Decimal {
	return d.Quantity.Mul(d.UnitPrice)
}

// TicketLabor is a mechanic's work on a ticket. Rate was resolved when the
// entry was created and is never re-derived.
type TicketLabor struct {
	ID              int64
	TicketID        int64
	MechanicID      int64
	MechanicName    string
	Hours           decimal.Decimal
	Rate            decimal.Decimal
	WorkDescription string
}

// LineTotal is the labor's contribution to the ticket subtotal.
func (l TicketLabor) LineTotal() decimal.Decimal {
	return l.Hours.Mul(l.Rate)
}

// TicketDetails is a ticket with its children, as served to callers.
type TicketDetails struct {
	Ticket
	CustomerName string
	BoatMake     string
	BoatModel    string
	Parts        []TicketPartDetail
	Labor        []TicketLabor
}

// =============================================================================
// ESTIMATES
// =============================================================================

// Estimate is a priced quote, often for an insurance claim. Like tickets,
// its totals are recomputed on demand, but estimates never reference an
// equipment sale.
type Estimate struct {
	ID               int64
	CustomerID       int64
	BoatID           *int64
	EngineID         *int64
	DateCreated      time.Time
	InsuranceCompany string
	ClaimNumber      string
	Notes            string
	Totals           billing.Totals
}

// LineItemType is the kind of estimate line.
type LineItemType string

const (
	ItemPart  LineItemType = "part"
	ItemLabor LineItemType = "labor"
)

// EstimateLineItem is a manually entered estimate line. LineTotal is
// rounded at insert time and is the amount that feeds aggregation.
type EstimateLineItem struct {
	ID          int64
	EstimateID  int64
	ItemType    LineItemType
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// EstimateDetails is an estimate with its line items.
type EstimateDetails struct {
	Estimate
	CustomerName string
	Items        []EstimateLineItem
}
