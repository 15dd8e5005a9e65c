package shop_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cajunmarine/shop-engine/billing"
	"github.com/cajunmarine/shop-engine/shop"
	"github.com/cajunmarine/shop-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T) *shop.Service {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := shop.NewService(store)
	require.NoError(t, svc.EnsureRateDefaults(context.Background()))
	return svc
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func seedCustomer(t *testing.T, svc *shop.Service, c shop.Customer) shop.Customer {
	t.Helper()
	created, err := svc.CreateCustomer(context.Background(), c)
	require.NoError(t, err)
	return created
}

func seedBoat(t *testing.T, svc *shop.Service, customerID int64) shop.Boat {
	t.Helper()
	created, err := svc.CreateBoat(context.Background(), shop.Boat{
		CustomerID: customerID,
		Make:       "Skeeter",
		Model:      "ZX200",
		Year:       2019,
	})
	require.NoError(t, err)
	return created
}

func seedEngine(t *testing.T, svc *shop.Service, boatID int64, engineType string) shop.Engine {
	t.Helper()
	created, err := svc.CreateEngine(context.Background(), shop.Engine{
		BoatID: boatID,
		Type:   engineType,
		HP:     115,
	})
	require.NoError(t, err)
	return created
}

func seedMechanic(t *testing.T, svc *shop.Service, hourlyRate *decimal.Decimal) shop.Mechanic {
	t.Helper()
	created, err := svc.CreateMechanic(context.Background(), shop.Mechanic{
		Name:       "Ray Theriot",
		HourlyRate: hourlyRate,
	})
	require.NoError(t, err)
	return created
}

func seedPart(t *testing.T, svc *shop.Service, price string, taxable bool) shop.Part {
	t.Helper()
	created, err := svc.CreatePart(context.Background(), shop.Part{
		PartNumber: "WP-1234",
		Name:       "Water pump kit",
		Price:      dec(price),
		Taxable:    taxable,
	})
	require.NoError(t, err)
	return created
}

// newOpenTicket seeds a customer, boat, engine, and ticket in one go.
func newOpenTicket(t *testing.T, svc *shop.Service, c shop.Customer, engineType string) shop.Ticket {
	t.Helper()
	customer := seedCustomer(t, svc, c)
	boat := seedBoat(t, svc, customer.ID)
	var engineID *int64
	if engineType != "" {
		engine := seedEngine(t, svc, boat.ID, engineType)
		engineID = &engine.ID
	}
	ticket, err := svc.CreateTicket(context.Background(), customer.ID, boat.ID, engineID, "lower unit service")
	require.NoError(t, err)
	return ticket
}

// =============================================================================
// TICKET LIFECYCLE TESTS
// =============================================================================

func TestCreateTicket_OpensWithZeroTotals(t *testing.T) {
	svc := newTestService(t)

	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "Outboard 115HP")

	assert.Equal(t, shop.StatusOpen, ticket.Status)
	assert.True(t, ticket.Totals.Equal(billing.ZeroTotals()))
	assert.False(t, ticket.DateOpened.IsZero())
	assert.Nil(t, ticket.DateClosed)
}

func TestCreateTicket_UnknownCustomer(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateTicket(context.Background(), 999, 1, nil, "")

	assert.ErrorIs(t, err, billing.ErrCustomerNotFound)
}

func TestSetTicketStatus_AnyTransitionAllowed(t *testing.T) {
	// GIVEN: An open ticket
	// WHEN: Jumping Open -> Awaiting Pickup -> Working, skipping stages
	// THEN: Every move succeeds; no transition is rejected

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")

	require.NoError(t, svc.SetTicketStatus(ctx, ticket.ID, "Awaiting Pickup"))
	require.NoError(t, svc.SetTicketStatus(ctx, ticket.ID, "Working"))

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.StatusWorking, got.Status)
}

func TestSetTicketStatus_ClosedStampsDate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")

	require.NoError(t, svc.SetTicketStatus(ctx, ticket.ID, "Closed"))

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.StatusClosed, got.Status)
	require.NotNil(t, got.DateClosed)
	assert.False(t, got.DateClosed.IsZero())
}

func TestSetTicketStatus_ReopeningKeepsClosedDate(t *testing.T) {
	// GIVEN: A closed ticket
	// WHEN: Reopening it
	// THEN: The move succeeds; the old closed date stays on the record

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")

	require.NoError(t, svc.SetTicketStatus(ctx, ticket.ID, "Closed"))
	require.NoError(t, svc.SetTicketStatus(ctx, ticket.ID, "Open"))

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.StatusOpen, got.Status)
	assert.NotNil(t, got.DateClosed)
}

func TestSetTicketStatus_LegacyNameNormalized(t *testing.T) {
	// GIVEN: A client still using the retired "In Progress" status
	// THEN: It lands as Working

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")

	require.NoError(t, svc.SetTicketStatus(ctx, ticket.ID, "In Progress"))

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.StatusWorking, got.Status)
}

func TestSetTicketStatus_UnknownStatus(t *testing.T) {
	svc := newTestService(t)
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")

	err := svc.SetTicketStatus(context.Background(), ticket.ID, "On Fire")

	assert.ErrorIs(t, err, shop.ErrUnknownStatus)
}

func TestListTickets_FilterByStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, svc, shop.Customer{Name: "T. Boudreaux"})
	boat := seedBoat(t, svc, customer.ID)
	t1, err := svc.CreateTicket(ctx, customer.ID, boat.ID, nil, "first")
	require.NoError(t, err)
	_, err = svc.CreateTicket(ctx, customer.ID, boat.ID, nil, "second")
	require.NoError(t, err)
	require.NoError(t, svc.SetTicketStatus(ctx, t1.ID, "Working"))

	working, err := svc.ListTickets(ctx, "In Progress") // legacy filter spelling
	require.NoError(t, err)
	require.Len(t, working, 1)
	assert.Equal(t, t1.ID, working[0].ID)

	all, err := svc.ListTickets(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// LABOR RATE STAMPING TESTS
// =============================================================================

func TestAddTicketLabor_ClassifiedEngine_TableRate(t *testing.T) {
	// GIVEN: A ticket whose engine is an outboard
	// WHEN: Recording labor with no override
	// THEN: The entry is stamped with the outboard table rate

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "Outboard 115HP")
	mech := seedMechanic(t, svc, decPtr("65.00"))

	tl, err := svc.AddTicketLabor(ctx, ticket.ID, mech.ID, dec("1.5"), "impeller swap", nil)
	require.NoError(t, err)

	assert.True(t, tl.Rate.Equal(dec("100")), "rate %s", tl.Rate)
}

func TestAddTicketLabor_UnclassifiableEngine_MechanicRate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "Unknown Drive")
	mech := seedMechanic(t, svc, decPtr("65.00"))

	tl, err := svc.AddTicketLabor(ctx, ticket.ID, mech.ID, dec("2"), "", nil)
	require.NoError(t, err)

	assert.True(t, tl.Rate.Equal(dec("65.00")), "rate %s", tl.Rate)
}

func TestAddTicketLabor_OverrideWins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "Outboard 115HP")
	mech := seedMechanic(t, svc, decPtr("65.00"))

	tl, err := svc.AddTicketLabor(ctx, ticket.ID, mech.ID, dec("1"), "", decPtr("85.00"))
	require.NoError(t, err)

	assert.True(t, tl.Rate.Equal(dec("85.00")), "rate %s", tl.Rate)
}

func TestAddTicketLabor_RateTableEditDoesNotTouchExistingEntries(t *testing.T) {
	// GIVEN: A labor entry stamped at the stock outboard rate
	// WHEN: Raising the outboard rate afterward
	// THEN: The existing entry keeps 100; a new entry gets 150

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "Outboard 115HP")
	mech := seedMechanic(t, svc, nil)

	before, err := svc.AddTicketLabor(ctx, ticket.ID, mech.ID, dec("1"), "", nil)
	require.NoError(t, err)

	rates, err := svc.GetRates(ctx)
	require.NoError(t, err)
	rates.Outboard = dec("150")
	require.NoError(t, svc.UpdateRates(ctx, rates))

	after, err := svc.AddTicketLabor(ctx, ticket.ID, mech.ID, dec("1"), "", nil)
	require.NoError(t, err)

	details, err := svc.TicketDetails(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, details.Labor, 2)
	assert.True(t, details.Labor[0].Rate.Equal(dec("100")), "first entry %s", before.Rate)
	assert.True(t, details.Labor[1].Rate.Equal(dec("150")), "second entry %s", after.Rate)
}

func TestAddTicketLabor_RejectsNonPositiveHours(t *testing.T) {
	svc := newTestService(t)
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")
	mech := seedMechanic(t, svc, nil)

	_, err := svc.AddTicketLabor(context.Background(), ticket.ID, mech.ID, dec("0"), "", nil)

	assert.ErrorIs(t, err, billing.ErrInvalidHours)
}

func TestAddTicketLabor_UnknownMechanic(t *testing.T) {
	svc := newTestService(t)
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")

	_, err := svc.AddTicketLabor(context.Background(), ticket.ID, 999, dec("1"), "", nil)

	assert.ErrorIs(t, err, billing.ErrMechanicNotFound)
}

// =============================================================================
// TOTALS RECOMPUTE TESTS
// =============================================================================

func TestRecomputeTicketTotals_PartsAndLabor(t *testing.T) {
	// GIVEN: A ticket with a 50.00 taxable part and 1.5h at the outboard
	//        rate (100.00)
	// WHEN: Recomputing totals
	// THEN: Subtotal 200.00, tax 19.50, total 219.50, persisted

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "Outboard 115HP")
	mech := seedMechanic(t, svc, nil)
	part := seedPart(t, svc, "50.00", true)

	_, err := svc.AddTicketPart(ctx, ticket.ID, part.ID, dec("1"), nil)
	require.NoError(t, err)
	_, err = svc.AddTicketLabor(ctx, ticket.ID, mech.ID, dec("1.5"), "", nil)
	require.NoError(t, err)

	totals, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "card", nil)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("200.00")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.TaxAmount.Equal(dec("19.50")), "tax %s", totals.TaxAmount)
	assert.True(t, totals.Total.Equal(dec("219.50")), "total %s", totals.Total)

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, got.Totals.Equal(totals))
	assert.Equal(t, "card", got.PaymentMethod)
}

func TestRecomputeTicketTotals_StaleUntilRecomputed(t *testing.T) {
	// GIVEN: A recomputed ticket
	// WHEN: Adding another part without recomputing
	// THEN: The persisted totals are unchanged until the next recompute

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")
	part := seedPart(t, svc, "40.00", true)

	_, err := svc.AddTicketPart(ctx, ticket.ID, part.ID, dec("1"), nil)
	require.NoError(t, err)
	first, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "", nil)
	require.NoError(t, err)

	_, err = svc.AddTicketPart(ctx, ticket.ID, part.ID, dec("1"), nil)
	require.NoError(t, err)

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, got.Totals.Equal(first), "totals should be stale until recompute")

	second, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "", nil)
	require.NoError(t, err)
	assert.True(t, second.Subtotal.Equal(dec("80.00")), "subtotal %s", second.Subtotal)
}

func TestRecomputeTicketTotals_Idempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")
	part := seedPart(t, svc, "123.45", true)

	_, err := svc.AddTicketPart(ctx, ticket.ID, part.ID, dec("2"), nil)
	require.NoError(t, err)

	first, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "cash", nil)
	require.NoError(t, err)
	second, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "cash", nil)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
}

func TestRecomputeTicketTotals_PriceOverrideIsRecordedNotPriced(t *testing.T) {
	// GIVEN: A part attached with a price override
	// WHEN: Recomputing
	// THEN: The catalog price drives the totals; the override is kept on
	//       the row as history

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")
	part := seedPart(t, svc, "50.00", true)

	_, err := svc.AddTicketPart(ctx, ticket.ID, part.ID, dec("1"), decPtr("10.00"))
	require.NoError(t, err)

	totals, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "", nil)
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(dec("50.00")), "subtotal %s", totals.Subtotal)

	details, err := svc.TicketDetails(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, details.Parts, 1)
	require.NotNil(t, details.Parts[0].PriceOverride)
	assert.True(t, details.Parts[0].PriceOverride.Equal(dec("10.00")))
}

func TestRecomputeTicketTotals_ExemptCustomer(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{
		Name:              "Parish Sheriff Marine Unit",
		TaxExempt:         true,
		ExemptCertificate: "LA-770",
	}, "Outboard 115HP")
	part := seedPart(t, svc, "200.00", true)

	_, err := svc.AddTicketPart(ctx, ticket.ID, part.ID, dec("1"), nil)
	require.NoError(t, err)

	totals, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "", nil)
	require.NoError(t, err)

	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.Total.Equal(dec("200.00")))
}

// =============================================================================
// ENGINE SALE TESTS
// =============================================================================

func TestSellNewEngine_AndFoldIntoTicketTotals(t *testing.T) {
	// GIVEN: An out-of-state customer, a stocked engine sold at 5000.00,
	//        and a ticket with a 50.00 taxable part
	// WHEN: Recomputing with the sold engine attached
	// THEN: Subtotal 5050.00, tax only on the part (4.88)

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "G. Fontenot", OutOfState: true}, "")
	part := seedPart(t, svc, "50.00", true)
	_, err := svc.AddTicketPart(ctx, ticket.ID, part.ID, dec("1"), nil)
	require.NoError(t, err)

	stocked, err := svc.StockNewEngine(ctx, shop.NewEngine{HP: 150, Model: "Mercury 150 FourStroke"})
	require.NoError(t, err)
	require.NoError(t, svc.SellNewEngine(ctx, stocked.ID, ticket.CustomerID, nil, dec("5000.00")))

	totals, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "check", &stocked.ID)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("5050.00")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.TaxAmount.Equal(dec("4.88")), "tax %s", totals.TaxAmount)
	assert.True(t, totals.Total.Equal(dec("5054.88")), "total %s", totals.Total)
}

func TestSellNewEngine_AlreadySold(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	customer := seedCustomer(t, svc, shop.Customer{Name: "G. Fontenot"})

	stocked, err := svc.StockNewEngine(ctx, shop.NewEngine{Model: "Yamaha F90"})
	require.NoError(t, err)
	require.NoError(t, svc.SellNewEngine(ctx, stocked.ID, customer.ID, nil, dec("9000.00")))

	err = svc.SellNewEngine(ctx, stocked.ID, customer.ID, nil, dec("9000.00"))
	assert.Error(t, err)
}

func TestSellNewEngine_MarksRecordSold(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	customer := seedCustomer(t, svc, shop.Customer{Name: "G. Fontenot"})

	stocked, err := svc.StockNewEngine(ctx, shop.NewEngine{Model: "Yamaha F90"})
	require.NoError(t, err)
	require.NoError(t, svc.SellNewEngine(ctx, stocked.ID, customer.ID, nil, dec("9000.00")))

	sold, err := svc.GetNewEngine(ctx, stocked.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.EngineSold, sold.Status)
	assert.True(t, sold.SalePrice.Equal(dec("9000.00")))
	require.NotNil(t, sold.CustomerID)
	assert.Equal(t, customer.ID, *sold.CustomerID)
	assert.NotNil(t, sold.DateSold)

	inStock, err := svc.ListNewEngines(ctx, shop.EngineInStock)
	require.NoError(t, err)
	assert.Empty(t, inStock)
}

// =============================================================================
// PAYMENT TESTS
// =============================================================================

func TestPayments_BalanceDue(t *testing.T) {
	// GIVEN: A ticket with a persisted total of 417.06
	// WHEN: Recording payments of 100.00 and 50.00
	// THEN: Balance due is 267.06

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")
	part := seedPart(t, svc, "225.00", false)
	_, err := svc.AddTicketPart(ctx, ticket.ID, part.ID, dec("1"), nil)
	require.NoError(t, err)

	// Taxable labor: 1.75h at the outboard default of 100.
	mech := seedMechanic(t, svc, nil)
	_, err = svc.AddTicketLabor(ctx, ticket.ID, mech.ID, dec("1.75"), "", nil)
	require.NoError(t, err)
	// subtotal 400.00, tax on 175.00 = 17.06, total 417.06
	totals, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "cash", nil)
	require.NoError(t, err)
	require.True(t, totals.Total.Equal(dec("417.06")), "total %s", totals.Total)

	_, err = svc.AddPayment(ctx, ticket.ID, dec("100.00"), "cash", "deposit")
	require.NoError(t, err)
	_, err = svc.AddPayment(ctx, ticket.ID, dec("50.00"), "check", "")
	require.NoError(t, err)

	balance, err := svc.BalanceDue(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("267.06")), "balance %s", balance)

	payments, err := svc.TicketPayments(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestBalanceDue_ZeroWhenTotalsNeverComputed(t *testing.T) {
	// GIVEN: A ticket whose totals were never recomputed
	// WHEN: Recording a payment and asking for the balance
	// THEN: Balance runs from a zero total, going negative

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")

	_, err := svc.AddPayment(ctx, ticket.ID, dec("25.00"), "cash", "")
	require.NoError(t, err)

	balance, err := svc.BalanceDue(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("-25.00")), "balance %s", balance)
}

func TestAddPayment_UnknownTicket(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddPayment(context.Background(), 999, dec("10.00"), "cash", "")

	assert.ErrorIs(t, err, billing.ErrTicketNotFound)
}

func TestBalanceDue_UnknownTicket(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.BalanceDue(context.Background(), 999)

	assert.ErrorIs(t, err, billing.ErrTicketNotFound)
}

// =============================================================================
// ESTIMATE TESTS
// =============================================================================

func TestEstimate_LineItemsAndTotals(t *testing.T) {
	// GIVEN: An estimate with a part line and a labor line
	// WHEN: Recomputing totals
	// THEN: Every line is taxable; totals persist on the estimate

	svc := newTestService(t)
	ctx := context.Background()
	customer := seedCustomer(t, svc, shop.Customer{Name: "A. Hebert"})

	est, err := svc.CreateEstimate(ctx, shop.Estimate{
		CustomerID:       customer.ID,
		InsuranceCompany: "Gulf Coast Mutual",
		ClaimNumber:      "GC-2231",
	})
	require.NoError(t, err)

	_, err = svc.AddEstimateLineItem(ctx, est.ID, shop.ItemPart, "Transom repair materials", dec("1"), dec("300.00"))
	require.NoError(t, err)
	_, err = svc.AddEstimateLineItem(ctx, est.ID, shop.ItemLabor, "Fiberglass work", dec("4"), dec("120.00"))
	require.NoError(t, err)

	totals, err := svc.RecomputeEstimateTotals(ctx, est.ID)
	require.NoError(t, err)

	// 780.00 * 0.0975 = 76.05
	assert.True(t, totals.Subtotal.Equal(dec("780.00")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.TaxAmount.Equal(dec("76.05")), "tax %s", totals.TaxAmount)
	assert.True(t, totals.Total.Equal(dec("856.05")), "total %s", totals.Total)

	details, err := svc.EstimateDetails(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, "A. Hebert", details.CustomerName)
	require.Len(t, details.Items, 2)
	assert.True(t, details.Totals.Equal(totals))
}

func TestAddEstimateLineItem_LineTotalRoundedAtInsert(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	customer := seedCustomer(t, svc, shop.Customer{Name: "A. Hebert"})
	est, err := svc.CreateEstimate(ctx, shop.Estimate{CustomerID: customer.ID})
	require.NoError(t, err)

	item, err := svc.AddEstimateLineItem(ctx, est.ID, shop.ItemPart, "Misc", dec("3"), dec("0.333"))
	require.NoError(t, err)

	assert.True(t, item.LineTotal.Equal(dec("1.00")), "line total %s", item.LineTotal)
}

func TestAddEstimateLineItem_RejectsUnknownType(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	customer := seedCustomer(t, svc, shop.Customer{Name: "A. Hebert"})
	est, err := svc.CreateEstimate(ctx, shop.Estimate{CustomerID: customer.ID})
	require.NoError(t, err)

	_, err = svc.AddEstimateLineItem(ctx, est.ID, "materials", "", dec("1"), dec("10.00"))

	assert.ErrorIs(t, err, billing.ErrInvalidItemType)
}

func TestRecomputeTicketTotals_LaterRecomputeReplacesEarlier(t *testing.T) {
	// GIVEN: A ticket recomputed with an engine sale attached
	// WHEN: Recomputing again without the sale
	// THEN: The later recompute's totals stand; nothing merges

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")
	customer := seedCustomer(t, svc, shop.Customer{Name: "buyer"})

	stocked, err := svc.StockNewEngine(ctx, shop.NewEngine{Model: "Yamaha F90"})
	require.NoError(t, err)
	require.NoError(t, svc.SellNewEngine(ctx, stocked.ID, customer.ID, nil, dec("9000.00")))

	withSale, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "check", &stocked.ID)
	require.NoError(t, err)
	require.True(t, withSale.Subtotal.Equal(dec("9000.00")))

	withoutSale, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "", nil)
	require.NoError(t, err)

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, got.Totals.Equal(withoutSale))
	assert.True(t, got.Totals.Subtotal.IsZero())
}

// =============================================================================
// RATE TABLE TESTS
// =============================================================================

func TestEnsureRateDefaults_DoesNotClobberEdits(t *testing.T) {
	// GIVEN: An edited rate table
	// WHEN: EnsureRateDefaults runs again (as it does on every startup)
	// THEN: The edits survive; seeding only fills an absent table

	svc := newTestService(t)
	ctx := context.Background()

	rates, err := svc.GetRates(ctx)
	require.NoError(t, err)
	rates.PWC = dec("140")
	require.NoError(t, svc.UpdateRates(ctx, rates))

	require.NoError(t, svc.EnsureRateDefaults(ctx))

	got, err := svc.GetRates(ctx)
	require.NoError(t, err)
	assert.True(t, got.PWC.Equal(dec("140")), "pwc %s", got.PWC)
}

func TestUpdateRates_RejectsNegative(t *testing.T) {
	svc := newTestService(t)
	rates := billing.DefaultRateTable()
	rates.Inboard = dec("-1")

	err := svc.UpdateRates(context.Background(), rates)

	assert.ErrorIs(t, err, billing.ErrInvalidAmount)
}

// =============================================================================
// CUSTOMER FLAG TESTS
// =============================================================================

func TestUpdateCustomer_TaxFlagsAffectNextRecompute(t *testing.T) {
	// GIVEN: A taxed ticket
	// WHEN: The customer later files an exemption certificate
	// THEN: The next recompute is tax-free; the old totals were replaced

	svc := newTestService(t)
	ctx := context.Background()
	ticket := newOpenTicket(t, svc, shop.Customer{Name: "T. Boudreaux"}, "")
	part := seedPart(t, svc, "100.00", true)
	_, err := svc.AddTicketPart(ctx, ticket.ID, part.ID, dec("1"), nil)
	require.NoError(t, err)

	before, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "", nil)
	require.NoError(t, err)
	require.True(t, before.TaxAmount.Equal(dec("9.75")))

	customer, err := svc.GetCustomer(ctx, ticket.CustomerID)
	require.NoError(t, err)
	customer.TaxExempt = true
	customer.ExemptCertificate = "LA-112"
	require.NoError(t, svc.UpdateCustomer(ctx, customer))

	after, err := svc.RecomputeTicketTotals(ctx, ticket.ID, "", nil)
	require.NoError(t, err)
	assert.True(t, after.TaxAmount.IsZero())
	assert.True(t, after.Total.Equal(dec("100.00")))
}
