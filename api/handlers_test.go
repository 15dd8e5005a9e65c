package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cajunmarine/shop-engine/api"
	"github.com/cajunmarine/shop-engine/shop"
	"github.com/cajunmarine/shop-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := shop.NewService(store)
	require.NoError(t, svc.EnsureRateDefaults(context.Background()))

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(svc)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createCustomer(t *testing.T, srv *httptest.Server, body map[string]any) int64 {
	t.Helper()
	var dto struct {
		ID int64 `json:"id"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/api/customers", body, &dto)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return dto.ID
}

func createTicket(t *testing.T, srv *httptest.Server, customerID int64) int64 {
	t.Helper()
	var dto struct {
		ID int64 `json:"id"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/api/tickets", map[string]any{
		"customer_id": customerID,
		"boat_id":     1,
		"description": "annual service",
	}, &dto)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return dto.ID
}

// =============================================================================
// CUSTOMER ENDPOINT TESTS
// =============================================================================

func TestCustomers_CreateAndGet(t *testing.T) {
	srv := newTestServer(t)

	id := createCustomer(t, srv, map[string]any{
		"name":         "T. Boudreaux",
		"phone":        "337-555-0101",
		"out_of_state": true,
	})

	var dto struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		OutOfState bool   `json:"out_of_state"`
	}
	resp := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/customers/%d", id), nil, &dto)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "T. Boudreaux", dto.Name)
	assert.True(t, dto.OutOfState)
}

func TestCustomers_CreateWithoutName_BadRequest(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/customers", map[string]any{"phone": "x"}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCustomers_GetUnknown_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/api/customers/999", nil, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// TICKET ENDPOINT TESTS
// =============================================================================

func TestTickets_FullFlow(t *testing.T) {
	// GIVEN: A customer, a part, and a mechanic
	// WHEN: Running a ticket through parts, labor, recompute, payment,
	//       and balance over HTTP
	// THEN: The numbers line up end to end

	srv := newTestServer(t)
	customerID := createCustomer(t, srv, map[string]any{"name": "T. Boudreaux"})
	ticketID := createTicket(t, srv, customerID)

	var part struct {
		ID int64 `json:"id"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/api/parts", map[string]any{
		"name":  "Water pump kit",
		"price": "50.00",
	}, &part)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var mech struct {
		ID int64 `json:"id"`
	}
	resp = doJSON(t, srv, http.MethodPost, "/api/mechanics", map[string]any{
		"name": "Ray Theriot",
	}, &mech)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tickets/%d/parts", ticketID), map[string]any{
		"part_id":  part.ID,
		"quantity": "1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tickets/%d/labor", ticketID), map[string]any{
		"mechanic_id": mech.ID,
		"hours":       "1.5",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var totals struct {
		Subtotal  string `json:"subtotal"`
		TaxAmount string `json:"tax_amount"`
		Total     string `json:"total"`
	}
	resp = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tickets/%d/totals", ticketID), map[string]any{
		"payment_method": "card",
	}, &totals)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// 50.00 part + 1.5h at the outboard default 100 = 200.00; all taxable
	assert.Equal(t, "200", totals.Subtotal)
	assert.Equal(t, "19.5", totals.TaxAmount)
	assert.Equal(t, "219.5", totals.Total)

	resp = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tickets/%d/payments", ticketID), map[string]any{
		"amount": "100.00",
		"method": "cash",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var balance struct {
		BalanceDue string `json:"balance_due"`
	}
	resp = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/tickets/%d/balance", ticketID), nil, &balance)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "119.5", balance.BalanceDue)
}

func TestTickets_StatusChangeAndClose(t *testing.T) {
	srv := newTestServer(t)
	customerID := createCustomer(t, srv, map[string]any{"name": "T. Boudreaux"})
	ticketID := createTicket(t, srv, customerID)

	var dto struct {
		Status     string `json:"status"`
		DateClosed string `json:"date_closed"`
	}
	resp := doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/tickets/%d/status", ticketID), map[string]any{
		"status": "In Progress",
	}, &dto)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Working", dto.Status)
	assert.Empty(t, dto.DateClosed)

	resp = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/tickets/%d/status", ticketID), map[string]any{
		"status": "Closed",
	}, &dto)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Closed", dto.Status)
	assert.NotEmpty(t, dto.DateClosed)
}

func TestTickets_UnknownStatus_BadRequest(t *testing.T) {
	srv := newTestServer(t)
	customerID := createCustomer(t, srv, map[string]any{"name": "T. Boudreaux"})
	ticketID := createTicket(t, srv, customerID)

	resp := doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/tickets/%d/status", ticketID), map[string]any{
		"status": "On Fire",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTickets_NegativePayment_BadRequest(t *testing.T) {
	srv := newTestServer(t)
	customerID := createCustomer(t, srv, map[string]any{"name": "T. Boudreaux"})
	ticketID := createTicket(t, srv, customerID)

	resp := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tickets/%d/payments", ticketID), map[string]any{
		"amount": "-5.00",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTickets_PaymentOnUnknownTicket_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/tickets/999/payments", map[string]any{
		"amount": "10.00",
	}, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// ESTIMATE ENDPOINT TESTS
// =============================================================================

func TestEstimates_CreateItemsRecompute(t *testing.T) {
	srv := newTestServer(t)
	customerID := createCustomer(t, srv, map[string]any{"name": "A. Hebert"})

	var est struct {
		ID int64 `json:"id"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/api/estimates", map[string]any{
		"customer_id":       customerID,
		"insurance_company": "Gulf Coast Mutual",
		"claim_number":      "GC-2231",
	}, &est)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/estimates/%d/items", est.ID), map[string]any{
		"item_type":  "labor",
		"quantity":   "4",
		"unit_price": "120.00",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var totals struct {
		Subtotal string `json:"subtotal"`
		Total    string `json:"total"`
	}
	resp = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/estimates/%d/totals", est.ID), nil, &totals)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// 480.00 * 0.0975 = 46.80
	assert.Equal(t, "480", totals.Subtotal)
	assert.Equal(t, "526.8", totals.Total)
}

func TestEstimates_BadItemType_BadRequest(t *testing.T) {
	srv := newTestServer(t)
	customerID := createCustomer(t, srv, map[string]any{"name": "A. Hebert"})

	var est struct {
		ID int64 `json:"id"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/api/estimates", map[string]any{
		"customer_id": customerID,
	}, &est)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/estimates/%d/items", est.ID), map[string]any{
		"item_type":  "materials",
		"quantity":   "1",
		"unit_price": "10.00",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// RATE ENDPOINT TESTS
// =============================================================================

func TestRates_GetAndUpdate(t *testing.T) {
	srv := newTestServer(t)

	var rates struct {
		Outboard string `json:"outboard"`
		Inboard  string `json:"inboard"`
	}
	resp := doJSON(t, srv, http.MethodGet, "/api/rates", nil, &rates)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "100", rates.Outboard)
	assert.Equal(t, "120", rates.Inboard)

	resp = doJSON(t, srv, http.MethodPut, "/api/rates", map[string]any{
		"outboard":   "110",
		"inboard":    "125",
		"sterndrive": "125",
		"pwc":        "130",
	}, &rates)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodGet, "/api/rates", nil, &rates)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "110", rates.Outboard)
}

// =============================================================================
// INVENTORY ENDPOINT TESTS
// =============================================================================

func TestInventory_StockAndSell(t *testing.T) {
	srv := newTestServer(t)
	customerID := createCustomer(t, srv, map[string]any{"name": "G. Fontenot"})

	var stocked struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/api/inventory/engines", map[string]any{
		"hp":    150,
		"model": "Mercury 150 FourStroke",
	}, &stocked)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "In Stock", stocked.Status)

	var sold struct {
		Status    string `json:"status"`
		SalePrice string `json:"sale_price"`
		DateSold  string `json:"date_sold"`
	}
	resp = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/inventory/engines/%d/sell", stocked.ID), map[string]any{
		"customer_id": customerID,
		"sale_price":  "12500.00",
	}, &sold)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Sold", sold.Status)
	assert.Equal(t, "12500", sold.SalePrice)
	assert.NotEmpty(t, sold.DateSold)
}
