/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the counter frontend

ROUTE GROUPS:
  /api/customers/*          Customer records and their boats
  /api/boats/*              Boats and installed engines
  /api/engines              Engine registration
  /api/mechanics            Mechanics
  /api/parts                Parts catalog
  /api/inventory/engines/*  New engine stock and sales
  /api/tickets/*            Repair tickets: status, parts, labor,
                            totals, payments, balance
  /api/estimates/*          Estimates and line items
  /api/rates                Shop labor rate table

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Customer routes
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/{id}", h.GetCustomer)
			r.Put("/{id}", h.UpdateCustomer)
			r.Get("/{id}/boats", h.ListCustomerBoats)
		})

		// Boat and engine routes
		r.Route("/boats", func(r chi.Router) {
			r.Post("/", h.CreateBoat)
			r.Get("/{id}/engines", h.ListBoatEngines)
		})
		r.Post("/engines", h.CreateEngine)

		// Mechanic routes
		r.Route("/mechanics", func(r chi.Router) {
			r.Get("/", h.ListMechanics)
			r.Post("/", h.CreateMechanic)
		})

		// Parts catalog routes
		r.Route("/parts", func(r chi.Router) {
			r.Get("/", h.ListParts)
			r.Post("/", h.CreatePart)
		})

		// New engine inventory routes
		r.Route("/inventory/engines", func(r chi.Router) {
			r.Get("/", h.ListNewEngines)
			r.Post("/", h.StockNewEngine)
			r.Post("/{id}/sell", h.SellNewEngine)
		})

		// Ticket routes
		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", h.ListTickets)
			r.Post("/", h.CreateTicket)
			r.Get("/{id}", h.GetTicket)
			r.Put("/{id}/status", h.SetTicketStatus)
			r.Post("/{id}/parts", h.AddTicketPart)
			r.Post("/{id}/labor", h.AddTicketLabor)
			r.Post("/{id}/totals", h.RecomputeTicketTotals)
			r.Get("/{id}/payments", h.ListTicketPayments)
			r.Post("/{id}/payments", h.AddPayment)
			r.Get("/{id}/balance", h.GetBalance)
		})

		// Estimate routes
		r.Route("/estimates", func(r chi.Router) {
			r.Get("/", h.ListEstimates)
			r.Post("/", h.CreateEstimate)
			r.Get("/{id}", h.GetEstimate)
			r.Post("/{id}/items", h.AddEstimateItem)
			r.Post("/{id}/totals", h.RecomputeEstimateTotals)
		})

		// Labor rate routes
		r.Route("/rates", func(r chi.Router) {
			r.Get("/", h.GetRates)
			r.Put("/", h.UpdateRates)
		})
	})

	return r
}
