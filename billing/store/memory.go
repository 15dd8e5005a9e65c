// Package store provides in-memory implementations of the billing
// persistence interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/cajunmarine/shop-engine/billing"
)

// =============================================================================
// MEMORY PAYMENT STORE
// =============================================================================

type MemoryPayments struct {
	mu       sync.RWMutex
	payments map[int64][]billing.Payment
}

func NewMemoryPayments() *MemoryPayments {
	return &MemoryPayments{payments: make(map[int64][]billing.Payment)}
}

// Append adds a payment. Append-only.
func (m *MemoryPayments) Append(_ context.Context, p billing.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.payments[p.TicketID]

	// Insert in date order so ListByTicket never has to sort.
	i := sort.Search(len(rows), func(i int) bool {
		return rows[i].Date.After(p.Date)
	})
	rows = append(rows, billing.Payment{})
	copy(rows[i+1:], rows[i:])
	rows[i] = p
	m.payments[p.TicketID] = rows
	return nil
}

// ListByTicket returns the ticket's payments ordered by date.
func (m *MemoryPayments) ListByTicket(_ context.Context, ticketID int64) ([]billing.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.payments[ticketID]
	out := make([]billing.Payment, len(rows))
	copy(out, rows)
	return out, nil
}

var _ billing.PaymentStore = (*MemoryPayments)(nil)

// =============================================================================
// MEMORY RATE TABLE STORE
// =============================================================================

type MemoryRates struct {
	mu     sync.RWMutex
	rates  billing.RateTable
	exists bool
}

func NewMemoryRates() *MemoryRates {
	return &MemoryRates{}
}

// EnsureRateDefaults seeds the stock rates if no table exists yet.
func (m *MemoryRates) EnsureRateDefaults(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		m.rates = billing.DefaultRateTable()
		m.exists = true
	}
	return nil
}

// LoadRates returns the current rate table, defaulting if never seeded.
func (m *MemoryRates) LoadRates(_ context.Context) (billing.RateTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.exists {
		return billing.DefaultRateTable(), nil
	}
	return m.rates, nil
}

// SaveRates replaces the rate table.
func (m *MemoryRates) SaveRates(_ context.Context, rates billing.RateTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = rates
	m.exists = true
	return nil
}

var _ billing.RateTableStore = (*MemoryRates)(nil)
