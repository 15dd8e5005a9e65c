/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ENCODING:
  Every currency amount, rate, quantity, and hour count crosses the wire
  as a JSON string ("242.06", "1.5"). Handlers parse with decimal; nothing
  here ever touches a float.

DATE ENCODING:
  RFC 3339 strings. Optional dates are omitempty.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - shop/types.go: The domain records these mirror
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajunmarine/shop-engine/billing"
	"github.com/cajunmarine/shop-engine/shop"
)

// =============================================================================
// COMMON
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TotalsDTO carries the subtotal/tax/total triple.
type TotalsDTO struct {
	Subtotal  string `json:"subtotal"`
	TaxAmount string `json:"tax_amount"`
	Total     string `json:"total"`
}

func toTotalsDTO(t billing.Totals) TotalsDTO {
	return TotalsDTO{
		Subtotal:  t.Subtotal.String(),
		TaxAmount: t.TaxAmount.String(),
		Total:     t.Total.String(),
	}
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmtTime(*t)
}

func fmtDecPtr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// =============================================================================
// CUSTOMERS
// =============================================================================

// CustomerDTO represents a customer in API responses.
type CustomerDTO struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Phone             string `json:"phone,omitempty"`
	Email             string `json:"email,omitempty"`
	Address           string `json:"address,omitempty"`
	TaxExempt         bool   `json:"tax_exempt"`
	ExemptCertificate string `json:"tax_exempt_certificate,omitempty"`
	OutOfState        bool   `json:"out_of_state"`
}

// CustomerRequest is the request to create or update a customer.
type CustomerRequest struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Address           string `json:"address"`
	TaxExempt         bool   `json:"tax_exempt"`
	ExemptCertificate string `json:"tax_exempt_certificate"`
	OutOfState        bool   `json:"out_of_state"`
}

func toCustomerDTO(c shop.Customer) CustomerDTO {
	return CustomerDTO{
		ID:                c.ID,
		Name:              c.Name,
		Phone:             c.Phone,
		Email:             c.Email,
		Address:           c.Address,
		TaxExempt:         c.TaxExempt,
		ExemptCertificate: c.ExemptCertificate,
		OutOfState:        c.OutOfState,
	}
}

// =============================================================================
// BOATS AND ENGINES
// =============================================================================

// BoatDTO represents a boat in API responses.
type BoatDTO struct {
	ID         int64    `json:"id"`
	CustomerID int64    `json:"customer_id"`
	Make       string   `json:"make,omitempty"`
	Model      string   `json:"model,omitempty"`
	Year       int      `json:"year,omitempty"`
	Colors     []string `json:"colors,omitempty"`
}

// BoatRequest is the request to register a boat.
type BoatRequest struct {
	CustomerID int64    `json:"customer_id"`
	Make       string   `json:"make"`
	Model      string   `json:"model"`
	Year       int      `json:"year"`
	Colors     []string `json:"colors"`
}

func toBoatDTO(b shop.Boat) BoatDTO {
	colors := []string{}
	for _, c := range b.Colors {
		if c != "" {
			colors = append(colors, c)
		}
	}
	return BoatDTO{
		ID:         b.ID,
		CustomerID: b.CustomerID,
		Make:       b.Make,
		Model:      b.Model,
		Year:       b.Year,
		Colors:     colors,
	}
}

// EngineDTO represents an installed engine in API responses.
type EngineDTO struct {
	ID       int64  `json:"id"`
	BoatID   int64  `json:"boat_id"`
	Type     string `json:"engine_type,omitempty"`
	HP       int    `json:"hp,omitempty"`
	Year     int    `json:"year,omitempty"`
	Serial   string `json:"serial_number,omitempty"`
	Outdrive string `json:"outdrive,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// EngineRequest is the request to register an installed engine.
type EngineRequest struct {
	BoatID   int64  `json:"boat_id"`
	Type     string `json:"engine_type"`
	HP       int    `json:"hp"`
	Year     int    `json:"year"`
	Serial   string `json:"serial_number"`
	Outdrive string `json:"outdrive"`
	Notes    string `json:"notes"`
}

func toEngineDTO(e shop.Engine) EngineDTO {
	return EngineDTO{
		ID:       e.ID,
		BoatID:   e.BoatID,
		Type:     e.Type,
		HP:       e.HP,
		Year:     e.Year,
		Serial:   e.Serial,
		Outdrive: e.Outdrive,
		Notes:    e.Notes,
	}
}

// =============================================================================
// MECHANICS AND PARTS
// =============================================================================

// MechanicDTO represents a mechanic in API responses.
type MechanicDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	HourlyRate string `json:"hourly_rate,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// MechanicRequest is the request to create a mechanic. HourlyRate is
// optional; when empty, the mechanic has no personal rate.
type MechanicRequest struct {
	Name       string `json:"name"`
	HourlyRate string `json:"hourly_rate"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

func toMechanicDTO(m shop.Mechanic) MechanicDTO {
	return MechanicDTO{
		ID:         m.ID,
		Name:       m.Name,
		HourlyRate: fmtDecPtr(m.HourlyRate),
		Phone:      m.Phone,
		Email:      m.Email,
	}
}

// PartDTO represents a catalog part in API responses.
type PartDTO struct {
	ID           int64  `json:"id"`
	PartNumber   string `json:"part_number,omitempty"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Taxable      bool   `json:"taxable"`
	SupplierName string `json:"supplier_name,omitempty"`
	SupplierCost string `json:"supplier_cost,omitempty"`
	RetailPrice  string `json:"retail_price,omitempty"`
}

// PartRequest is the request to create a catalog part.
type PartRequest struct {
	PartNumber   string `json:"part_number"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Taxable      *bool  `json:"taxable"`
	SupplierName string `json:"supplier_name"`
	SupplierCost string `json:"supplier_cost"`
	RetailPrice  string `json:"retail_price"`
}

func toPartDTO(p shop.Part) PartDTO {
	dto := PartDTO{
		ID:           p.ID,
		PartNumber:   p.PartNumber,
		Name:         p.Name,
		Price:        p.Price.String(),
		Taxable:      p.Taxable,
		SupplierName: p.SupplierName,
	}
	if !p.SupplierCost.IsZero() {
		dto.SupplierCost = p.SupplierCost.String()
	}
	if !p.RetailPrice.IsZero() {
		dto.RetailPrice = p.RetailPrice.String()
	}
	return dto
}

// =============================================================================
// NEW ENGINE INVENTORY
// =============================================================================

// NewEngineDTO represents a stocked engine in API responses.
type NewEngineDTO struct {
	ID            int64  `json:"id"`
	HP            int    `json:"hp,omitempty"`
	Model         string `json:"model,omitempty"`
	Serial        string `json:"serial_number,omitempty"`
	Status        string `json:"status"`
	PurchasePrice string `json:"purchase_price,omitempty"`
	SalePrice     string `json:"sale_price,omitempty"`
	CustomerID    *int64 `json:"customer_id,omitempty"`
	BoatID        *int64 `json:"boat_id,omitempty"`
	DateSold      string `json:"date_sold,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// StockEngineRequest is the request to add an engine to inventory.
type StockEngineRequest struct {
	HP            int    `json:"hp"`
	Model         string `json:"model"`
	Serial        string `json:"serial_number"`
	PurchasePrice string `json:"purchase_price"`
	Notes         string `json:"notes"`
}

// SellEngineRequest records a sale out of inventory.
type SellEngineRequest struct {
	CustomerID int64  `json:"customer_id"`
	BoatID     *int64 `json:"boat_id"`
	SalePrice  string `json:"sale_price"`
}

func toNewEngineDTO(e shop.NewEngine) NewEngineDTO {
	dto := NewEngineDTO{
		ID:         e.ID,
		HP:         e.HP,
		Model:      e.Model,
		Serial:     e.Serial,
		Status:     string(e.Status),
		CustomerID: e.CustomerID,
		BoatID:     e.BoatID,
		DateSold:   fmtTimePtr(e.DateSold),
		Notes:      e.Notes,
	}
	if !e.PurchasePrice.IsZero() {
		dto.PurchasePrice = e.PurchasePrice.String()
	}
	if !e.SalePrice.IsZero() {
		dto.SalePrice = e.SalePrice.String()
	}
	return dto
}

// =============================================================================
// TICKETS
// =============================================================================

// TicketDTO represents a repair ticket in API responses.
type TicketDTO struct {
	ID            int64     `json:"id"`
	CustomerID    int64     `json:"customer_id"`
	BoatID        int64     `json:"boat_id"`
	EngineID      *int64    `json:"engine_id,omitempty"`
	Description   string    `json:"description,omitempty"`
	CustomerNotes string    `json:"customer_notes,omitempty"`
	DateOpened    string    `json:"date_opened"`
	DateClosed    string    `json:"date_closed,omitempty"`
	Status        string    `json:"status"`
	Totals        TotalsDTO `json:"totals"`
	PaymentMethod string    `json:"payment_method,omitempty"`
}

// TicketDetailsDTO is a ticket with its parts, labor, and context.
type TicketDetailsDTO struct {
	TicketDTO
	CustomerName string           `json:"customer_name"`
	BoatMake     string           `json:"boat_make,omitempty"`
	BoatModel    string           `json:"boat_model,omitempty"`
	Parts        []TicketPartDTO  `json:"parts"`
	Labor        []TicketLaborDTO `json:"labor"`
}

// TicketPartDTO is a part used on a ticket, joined with catalog data.
type TicketPartDTO struct {
	ID            int64  `json:"id"`
	PartID        int64  `json:"part_id"`
	PartNumber    string `json:"part_number,omitempty"`
	PartName      string `json:"part_name"`
	Quantity      string `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	PriceOverride string `json:"price_override,omitempty"`
	Taxable       bool   `json:"taxable"`
	LineTotal     string `json:"line_total"`
}

// TicketLaborDTO is a labor entry on a ticket.
type TicketLaborDTO struct {
	ID              int64  `json:"id"`
	MechanicID      int64  `json:"mechanic_id"`
	MechanicName    string `json:"mechanic_name"`
	Hours           string `json:"hours"`
	Rate            string `json:"rate"`
	WorkDescription string `json:"work_description,omitempty"`
	LineTotal       string `json:"line_total"`
}

// CreateTicketRequest opens a repair ticket.
type CreateTicketRequest struct {
	CustomerID  int64  `json:"customer_id"`
	BoatID      int64  `json:"boat_id"`
	EngineID    *int64 `json:"engine_id"`
	Description string `json:"description"`
}

// SetStatusRequest moves a ticket to a new status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// AddTicketPartRequest attaches a catalog part to a ticket.
type AddTicketPartRequest struct {
	PartID        int64  `json:"part_id"`
	Quantity      string `json:"quantity"`
	PriceOverride string `json:"price_override"`
}

// AddTicketLaborRequest records a mechanic's hours on a ticket.
// RateOverride, when present, wins over every resolved rate.
type AddTicketLaborRequest struct {
	MechanicID      int64  `json:"mechanic_id"`
	Hours           string `json:"hours"`
	WorkDescription string `json:"work_description"`
	RateOverride    string `json:"rate_override"`
}

// RecomputeTotalsRequest triggers a totals recompute. NewEngineID, when
// set, folds that inventory engine's sale price into the ticket.
type RecomputeTotalsRequest struct {
	PaymentMethod string `json:"payment_method"`
	NewEngineID   *int64 `json:"new_engine_id"`
}

func toTicketDTO(t shop.Ticket) TicketDTO {
	return TicketDTO{
		ID:            t.ID,
		CustomerID:    t.CustomerID,
		BoatID:        t.BoatID,
		EngineID:      t.EngineID,
		Description:   t.Description,
		CustomerNotes: t.CustomerNotes,
		DateOpened:    fmtTime(t.DateOpened),
		DateClosed:    fmtTimePtr(t.DateClosed),
		Status:        string(t.Status),
		Totals:        toTotalsDTO(t.Totals),
		PaymentMethod: t.PaymentMethod,
	}
}

func toTicketDetailsDTO(d shop.TicketDetails) TicketDetailsDTO {
	parts := make([]TicketPartDTO, len(d.Parts))
	for i, p := range d.Parts {
		parts[i] = TicketPartDTO{
			ID:            p.ID,
			PartID:        p.PartID,
			PartNumber:    p.PartNumber,
			PartName:      p.PartName,
			Quantity:      p.Quantity.String(),
			UnitPrice:     p.UnitPrice.String(),
			PriceOverride: fmtDecPtr(p.PriceOverride),
			Taxable:       p.Taxable,
			LineTotal:     p.LineTotal().String(),
		}
	}
	labor := make([]TicketLaborDTO, len(d.Labor))
	for i, l := range d.Labor {
		labor[i] = TicketLaborDTO{
			ID:              l.ID,
			MechanicID:      l.MechanicID,
			MechanicName:    l.MechanicName,
			Hours:           l.Hours.String(),
			Rate:            l.Rate.String(),
			WorkDescription: l.WorkDescription,
			LineTotal:       l.LineTotal().String(),
		}
	}
	return TicketDetailsDTO{
		TicketDTO:    toTicketDTO(d.Ticket),
		CustomerName: d.CustomerName,
		BoatMake:     d.BoatMake,
		BoatModel:    d.BoatModel,
		Parts:        parts,
		Labor:        labor,
	}
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentDTO represents a recorded payment.
type PaymentDTO struct {
	ID       string `json:"id"`
	TicketID int64  `json:"ticket_id"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Method   string `json:"method,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// AddPaymentRequest records a payment against a ticket.
type AddPaymentRequest struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
	Notes  string `json:"notes"`
}

// BalanceDTO is the remaining balance on a ticket. Negative means the
// customer has overpaid.
type BalanceDTO struct {
	TicketID   int64  `json:"ticket_id"`
	BalanceDue string `json:"balance_due"`
}

func toPaymentDTO(p billing.Payment) PaymentDTO {
	return PaymentDTO{
		ID:       p.ID,
		TicketID: p.TicketID,
		Amount:   p.Amount.String(),
		Date:     fmtTime(p.Date),
		Method:   p.Method,
		Notes:    p.Notes,
	}
}

// =============================================================================
// ESTIMATES
// =============================================================================

// EstimateDTO represents an estimate in API responses.
type EstimateDTO struct {
	ID               int64     `json:"id"`
	CustomerID       int64     `json:"customer_id"`
	BoatID           *int64    `json:"boat_id,omitempty"`
	EngineID         *int64    `json:"engine_id,omitempty"`
	DateCreated      string    `json:"date_created"`
	InsuranceCompany string    `json:"insurance_company,omitempty"`
	ClaimNumber      string    `json:"claim_number,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Totals           TotalsDTO `json:"totals"`
}

// EstimateDetailsDTO is an estimate with its line items.
type EstimateDetailsDTO struct {
	EstimateDTO
	CustomerName string            `json:"customer_name"`
	Items        []EstimateItemDTO `json:"items"`
}

// EstimateItemDTO is a single estimate line.
type EstimateItemDTO struct {
	ID          int64  `json:"id"`
	ItemType    string `json:"item_type"`
	Description string `json:"description,omitempty"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// CreateEstimateRequest opens an estimate.
type CreateEstimateRequest struct {
	CustomerID       int64  `json:"customer_id"`
	BoatID           *int64 `json:"boat_id"`
	EngineID         *int64 `json:"engine_id"`
	InsuranceCompany string `json:"insurance_company"`
	ClaimNumber      string `json:"claim_number"`
	Notes            string `json:"notes"`
}

// AddEstimateItemRequest appends a line to an estimate.
type AddEstimateItemRequest struct {
	ItemType    string `json:"item_type"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

func toEstimateDTO(e shop.Estimate) EstimateDTO {
	return EstimateDTO{
		ID:               e.ID,
		CustomerID:       e.CustomerID,
		BoatID:           e.BoatID,
		EngineID:         e.EngineID,
		DateCreated:      fmtTime(e.DateCreated),
		InsuranceCompany: e.InsuranceCompany,
		ClaimNumber:      e.ClaimNumber,
		Notes:            e.Notes,
		Totals:           toTotalsDTO(e.Totals),
	}
}

func toEstimateItemDTO(item shop.EstimateLineItem) EstimateItemDTO {
	return EstimateItemDTO{
		ID:          item.ID,
		ItemType:    string(item.ItemType),
		Description: item.Description,
		Quantity:    item.Quantity.String(),
		UnitPrice:   item.UnitPrice.String(),
		LineTotal:   item.LineTotal.String(),
	}
}

// =============================================================================
// LABOR RATES
// =============================================================================

// RatesDTO is the shop labor rate table.
type RatesDTO struct {
	Outboard   string `json:"outboard"`
	Inboard    string `json:"inboard"`
	Sterndrive string `json:"sterndrive"`
	PWC        string `json:"pwc"`
}

func toRatesDTO(r billing.RateTable) RatesDTO {
	return RatesDTO{
		Outboard:   r.Outboard.String(),
		Inboard:    r.Inboard.String(),
		Sterndrive: r.Sterndrive.String(),
		PWC:        r.PWC.String(),
	}
}
