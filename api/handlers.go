/*
handlers.go - HTTP API handlers for the shop billing system

PURPOSE:
  Exposes the shop service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Customers:
    GET    /api/customers                 List customers
    POST   /api/customers                 Create customer
    GET    /api/customers/{id}            Get customer
    PUT    /api/customers/{id}            Update customer
    GET    /api/customers/{id}/boats      List customer boats

  Boats / engines:
    POST   /api/boats                     Register boat
    GET    /api/boats/{id}/engines        List installed engines
    POST   /api/engines                   Register installed engine

  Mechanics / parts:
    GET    /api/mechanics                 List mechanics
    POST   /api/mechanics                 Create mechanic
    GET    /api/parts                     List parts
    POST   /api/parts                     Create part

  Engine inventory:
    GET    /api/inventory/engines         List stocked engines (?status=)
    POST   /api/inventory/engines         Stock an engine
    POST   /api/inventory/engines/{id}/sell  Record a sale

  Tickets:
    GET    /api/tickets                   List tickets (?status=)
    POST   /api/tickets                   Open ticket
    GET    /api/tickets/{id}              Ticket with parts and labor
    PUT    /api/tickets/{id}/status       Change status
    POST   /api/tickets/{id}/parts        Attach part
    POST   /api/tickets/{id}/labor        Record labor
    POST   /api/tickets/{id}/totals       Recompute totals
    GET    /api/tickets/{id}/payments     List payments
    POST   /api/tickets/{id}/payments     Record payment
    GET    /api/tickets/{id}/balance      Remaining balance

  Estimates:
    GET    /api/estimates                 List estimates
    POST   /api/estimates                 Create estimate
    GET    /api/estimates/{id}            Estimate with line items
    POST   /api/estimates/{id}/items      Append line item
    POST   /api/estimates/{id}/totals     Recompute totals

  Rates:
    GET    /api/rates                     Labor rate table
    PUT    /api/rates                     Replace labor rate table

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, unparseable amounts, unknown statuses
  - 404: Record not found
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The API serves the shop's single workstation.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cajunmarine/shop-engine/billing"
	"github.com/cajunmarine/shop-engine/shop"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *shop.Service
}

// NewHandler creates a new handler backed by the given service.
func NewHandler(svc *shop.Service) *Handler {
	return &Handler{Service: svc}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps service errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case billing.IsClientError(err) || errors.Is(err, shop.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// parseAmount parses a required decimal field.
func parseAmount(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q", field, value)
	}
	return d, nil
}

// parseOptionalAmount parses an optional decimal field; empty means absent.
func parseOptionalAmount(field, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseAmount(field, value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns all customers.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.ListCustomers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCustomer creates a customer.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	c, err := h.Service.CreateCustomer(r.Context(), shop.Customer{
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		Address:           req.Address,
		TaxExempt:         req.TaxExempt,
		ExemptCertificate: req.ExemptCertificate,
		OutOfState:        req.OutOfState,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(c))
}

// GetCustomer returns a single customer.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer id", err)
		return
	}
	c, err := h.Service.GetCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

// UpdateCustomer replaces a customer's record, including the tax flags
// every later recompute will read.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer id", err)
		return
	}
	var req CustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c := shop.Customer{
		ID:                id,
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		Address:           req.Address,
		TaxExempt:         req.TaxExempt,
		ExemptCertificate: req.ExemptCertificate,
		OutOfState:        req.OutOfState,
	}
	if err := h.Service.UpdateCustomer(r.Context(), c); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

// ListCustomerBoats returns the customer's boats.
func (h *Handler) ListCustomerBoats(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer id", err)
		return
	}
	boats, err := h.Service.ListBoats(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]BoatDTO, len(boats))
	for i, b := range boats {
		dtos[i] = toBoatDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// BOAT AND ENGINE HANDLERS
// =============================================================================

// CreateBoat registers a boat for a customer.
func (h *Handler) CreateBoat(w http.ResponseWriter, r *http.Request) {
	var req BoatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b := shop.Boat{
		CustomerID: req.CustomerID,
		Make:       req.Make,
		Model:      req.Model,
		Year:       req.Year,
	}
	for i := 0; i < len(req.Colors) && i < 3; i++ {
		b.Colors[i] = req.Colors[i]
	}
	created, err := h.Service.CreateBoat(r.Context(), b)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBoatDTO(created))
}

// ListBoatEngines returns the engines installed on a boat.
func (h *Handler) ListBoatEngines(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid boat id", err)
		return
	}
	engines, err := h.Service.ListEngines(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]EngineDTO, len(engines))
	for i, e := range engines {
		dtos[i] = toEngineDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEngine registers an engine on a boat.
func (h *Handler) CreateEngine(w http.ResponseWriter, r *http.Request) {
	var req EngineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	created, err := h.Service.CreateEngine(r.Context(), shop.Engine{
		BoatID:   req.BoatID,
		Type:     req.Type,
		HP:       req.HP,
		Year:     req.Year,
		Serial:   req.Serial,
		Outdrive: req.Outdrive,
		Notes:    req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEngineDTO(created))
}

// =============================================================================
// MECHANIC AND PART HANDLERS
// =============================================================================

// ListMechanics returns all mechanics.
func (h *Handler) ListMechanics(w http.ResponseWriter, r *http.Request) {
	mechanics, err := h.Service.ListMechanics(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]MechanicDTO, len(mechanics))
	for i, m := range mechanics {
		dtos[i] = toMechanicDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMechanic creates a mechanic.
func (h *Handler) CreateMechanic(w http.ResponseWriter, r *http.Request) {
	var req MechanicRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	rate, err := parseOptionalAmount("hourly_rate", req.HourlyRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hourly rate", err)
		return
	}
	created, err := h.Service.CreateMechanic(r.Context(), shop.Mechanic{
		Name:       req.Name,
		HourlyRate: rate,
		Phone:      req.Phone,
		Email:      req.Email,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMechanicDTO(created))
}

// ListParts returns the parts catalog.
func (h *Handler) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.Service.ListParts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]PartDTO, len(parts))
	for i, p := range parts {
		dtos[i] = toPartDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePart creates a catalog part. Parts default to taxable; labor
// taxability lives with the tax rules, not here.
func (h *Handler) CreatePart(w http.ResponseWriter, r *http.Request) {
	var req PartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	price, err := parseAmount("price", req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid price", err)
		return
	}
	taxable := true
	if req.Taxable != nil {
		taxable = *req.Taxable
	}
	p := shop.Part{
		PartNumber:   req.PartNumber,
		Name:         req.Name,
		Price:        price,
		Taxable:      taxable,
		SupplierName: req.SupplierName,
	}
	if cost, err := parseOptionalAmount("supplier_cost", req.SupplierCost); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid supplier cost", err)
		return
	} else if cost != nil {
		p.SupplierCost = *cost
	}
	if retail, err := parseOptionalAmount("retail_price", req.RetailPrice); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid retail price", err)
		return
	} else if retail != nil {
		p.RetailPrice = *retail
	}
	created, err := h.Service.CreatePart(r.Context(), p)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPartDTO(created))
}

// =============================================================================
// ENGINE INVENTORY HANDLERS
// =============================================================================

// ListNewEngines returns stocked engines, optionally filtered by ?status=.
func (h *Handler) ListNewEngines(w http.ResponseWriter, r *http.Request) {
	status := shop.NewEngineStatus(r.URL.Query().Get("status"))
	engines, err := h.Service.ListNewEngines(r.Context(), status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]NewEngineDTO, len(engines))
	for i, e := range engines {
		dtos[i] = toNewEngineDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// StockNewEngine adds an engine to inventory.
func (h *Handler) StockNewEngine(w http.ResponseWriter, r *http.Request) {
	var req StockEngineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e := shop.NewEngine{
		HP:     req.HP,
		Model:  req.Model,
		Serial: req.Serial,
		Notes:  req.Notes,
	}
	if price, err := parseOptionalAmount("purchase_price", req.PurchasePrice); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid purchase price", err)
		return
	} else if price != nil {
		e.PurchasePrice = *price
	}
	created, err := h.Service.StockNewEngine(r.Context(), e)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNewEngineDTO(created))
}

// SellNewEngine records the sale of a stocked engine.
func (h *Handler) SellNewEngine(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid engine id", err)
		return
	}
	var req SellEngineRequest
	if !decodeBody(w, r, &req) {
		return
	}
	salePrice, err := parseAmount("sale_price", req.SalePrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale price", err)
		return
	}
	if err := h.Service.SellNewEngine(r.Context(), id, req.CustomerID, req.BoatID, salePrice); err != nil {
		writeDomainError(w, err)
		return
	}
	sold, err := h.Service.GetNewEngine(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNewEngineDTO(sold))
}

// =============================================================================
// TICKET HANDLERS
// =============================================================================

// ListTickets returns tickets, optionally filtered by ?status=.
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.Service.ListTickets(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]TicketDTO, len(tickets))
	for i, t := range tickets {
		dtos[i] = toTicketDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTicket opens a repair ticket.
func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := h.Service.CreateTicket(r.Context(), req.CustomerID, req.BoatID, req.EngineID, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTicketDTO(t))
}

// GetTicket returns a ticket with its parts and labor.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ticket id", err)
		return
	}
	details, err := h.Service.TicketDetails(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketDetailsDTO(details))
}

// SetTicketStatus moves a ticket to a new status. Any known status is
// reachable from any other; Closed stamps the close date.
func (h *Handler) SetTicketStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ticket id", err)
		return
	}
	var req SetStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Service.SetTicketStatus(r.Context(), id, req.Status); err != nil {
		writeDomainError(w, err)
		return
	}
	t, err := h.Service.GetTicket(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketDTO(t))
}

// AddTicketPart attaches a catalog part to a ticket.
func (h *Handler) AddTicketPart(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ticket id", err)
		return
	}
	var req AddTicketPartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	qty, err := parseAmount("quantity", req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quantity", err)
		return
	}
	override, err := parseOptionalAmount("price_override", req.PriceOverride)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid price override", err)
		return
	}
	tp, err := h.Service.AddTicketPart(r.Context(), id, req.PartID, qty, override)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       tp.ID,
		"part_id":  tp.PartID,
		"quantity": tp.Quantity.String(),
	})
}

// AddTicketLabor records a mechanic's hours on a ticket. The labor rate
// is resolved now and frozen on the entry.
func (h *Handler) AddTicketLabor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ticket id", err)
		return
	}
	var req AddTicketLaborRequest
	if !decodeBody(w, r, &req) {
		return
	}
	hours, err := parseAmount("hours", req.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours", err)
		return
	}
	override, err := parseOptionalAmount("rate_override", req.RateOverride)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rate override", err)
		return
	}
	tl, err := h.Service.AddTicketLabor(r.Context(), id, req.MechanicID, hours, req.WorkDescription, override)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          tl.ID,
		"mechanic_id": tl.MechanicID,
		"hours":       tl.Hours.String(),
		"rate":        tl.Rate.String(),
	})
}

// RecomputeTicketTotals recomputes and stores the ticket's totals.
func (h *Handler) RecomputeTicketTotals(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ticket id", err)
		return
	}
	var req RecomputeTotalsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	totals, err := h.Service.RecomputeTicketTotals(r.Context(), id, req.PaymentMethod, req.NewEngineID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsDTO(totals))
}

// ListTicketPayments returns a ticket's payments, oldest first.
func (h *Handler) ListTicketPayments(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ticket id", err)
		return
	}
	payments, err := h.Service.TicketPayments(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddPayment records a payment against a ticket. Overpayment is allowed.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ticket id", err)
		return
	}
	var req AddPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	p, err := h.Service.AddPayment(r.Context(), id, amount, req.Method, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

// GetBalance returns the ticket's remaining balance.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ticket id", err)
		return
	}
	balance, err := h.Service.BalanceDue(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{TicketID: id, BalanceDue: balance.String()})
}

// =============================================================================
// ESTIMATE HANDLERS
// =============================================================================

// ListEstimates returns all estimates.
func (h *Handler) ListEstimates(w http.ResponseWriter, r *http.Request) {
	estimates, err := h.Service.ListEstimates(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]EstimateDTO, len(estimates))
	for i, e := range estimates {
		dtos[i] = toEstimateDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEstimate opens an estimate.
func (h *Handler) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	var req CreateEstimateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := h.Service.CreateEstimate(r.Context(), shop.Estimate{
		CustomerID:       req.CustomerID,
		BoatID:           req.BoatID,
		EngineID:         req.EngineID,
		InsuranceCompany: req.InsuranceCompany,
		ClaimNumber:      req.ClaimNumber,
		Notes:            req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEstimateDTO(e))
}

// GetEstimate returns an estimate with its line items.
func (h *Handler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid estimate id", err)
		return
	}
	details, err := h.Service.EstimateDetails(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	items := make([]EstimateItemDTO, len(details.Items))
	for i, item := range details.Items {
		items[i] = toEstimateItemDTO(item)
	}
	writeJSON(w, http.StatusOK, EstimateDetailsDTO{
		EstimateDTO:  toEstimateDTO(details.Estimate),
		CustomerName: details.CustomerName,
		Items:        items,
	})
}

// AddEstimateItem appends a line item to an estimate.
func (h *Handler) AddEstimateItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid estimate id", err)
		return
	}
	var req AddEstimateItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	qty, err := parseAmount("quantity", req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quantity", err)
		return
	}
	price, err := parseAmount("unit_price", req.UnitPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid unit price", err)
		return
	}
	item, err := h.Service.AddEstimateLineItem(r.Context(), id, shop.LineItemType(req.ItemType), req.Description, qty, price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEstimateItemDTO(item))
}

// RecomputeEstimateTotals recomputes and stores the estimate's totals.
func (h *Handler) RecomputeEstimateTotals(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid estimate id", err)
		return
	}
	totals, err := h.Service.RecomputeEstimateTotals(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsDTO(totals))
}

// =============================================================================
// RATE HANDLERS
// =============================================================================

// GetRates returns the labor rate table.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Service.GetRates(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRatesDTO(rates))
}

// UpdateRates replaces the labor rate table. Existing labor entries keep
// the rate they were created with.
func (h *Handler) UpdateRates(w http.ResponseWriter, r *http.Request) {
	var req RatesDTO
	if !decodeBody(w, r, &req) {
		return
	}
	var rates billing.RateTable
	fields := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"outboard", req.Outboard, &rates.Outboard},
		{"inboard", req.Inboard, &rates.Inboard},
		{"sterndrive", req.Sterndrive, &rates.Sterndrive},
		{"pwc", req.PWC, &rates.PWC},
	}
	for _, f := range fields {
		d, err := parseAmount(f.name, f.value)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid rate", err)
			return
		}
		*f.dst = d
	}
	if err := h.Service.UpdateRates(r.Context(), rates); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRatesDTO(rates))
}
