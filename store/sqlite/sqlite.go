/*
Package sqlite provides the SQLite-backed implementation of the shop's
storage interfaces.

PURPOSE:
  Implements shop.Store (record stores, ticket/estimate children, totals
  write-back, payment ledger, labor rate table) over a single SQLite file.
  The shop has one workstation; SQLite is the whole persistence story.

MONEY:
  Every currency value and rate is stored as TEXT and parsed with
  shopspring/decimal. No float column anywhere money flows.

PAYMENTS:
  The payments table is append-only: no UPDATE or DELETE statements exist
  for it in this package.

LABOR RATES:
  labor_rates is a single-row table (id = 1). EnsureRateDefaults seeds the
  stock rates once at startup; LoadRates assumes the row exists afterward
  but still falls back to defaults if it is missing.

WAL MODE:
  The database is opened with WAL and foreign keys on. A mutex guards
  writes; reads share.

USAGE:
  store, err := sqlite.New("./shop.db")   // ":memory:" for tests
  defer store.Close()
  svc := shop.NewService(store)

SEE ALSO:
  - shop/store.go: Interface definitions
  - billing/store: In-memory equivalents for engine-level tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/cajunmarine/shop-engine/billing"
	"github.com/cajunmarine/shop-engine/shop"
)

// Store implements shop.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		customer_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		address TEXT,
		tax_exempt INTEGER NOT NULL DEFAULT 0,
		tax_exempt_certificate TEXT,
		out_of_state INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS boats (
		boat_id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
		make TEXT,
		model TEXT,
		year INTEGER,
		color1 TEXT,
		color2 TEXT,
		color3 TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_boats_customer ON boats(customer_id);

	CREATE TABLE IF NOT EXISTS engines (
		engine_id INTEGER PRIMARY KEY AUTOINCREMENT,
		boat_id INTEGER NOT NULL REFERENCES boats(boat_id),
		engine_type TEXT,
		hp INTEGER,
		year INTEGER,
		serial_number TEXT,
		outdrive TEXT,
		notes TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_engines_boat ON engines(boat_id);

	CREATE TABLE IF NOT EXISTS mechanics (
		mechanic_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		hourly_rate TEXT,
		phone TEXT,
		email TEXT
	);

	CREATE TABLE IF NOT EXISTS parts (
		part_id INTEGER PRIMARY KEY AUTOINCREMENT,
		part_number TEXT,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		taxable INTEGER NOT NULL DEFAULT 1,
		supplier_name TEXT,
		supplier_cost TEXT,
		retail_price TEXT
	);

	CREATE TABLE IF NOT EXISTS new_engines (
		new_engine_id INTEGER PRIMARY KEY AUTOINCREMENT,
		hp INTEGER,
		model TEXT,
		serial_number TEXT,
		status TEXT NOT NULL DEFAULT 'In Stock',
		purchase_price TEXT,
		sale_price TEXT,
		customer_id INTEGER REFERENCES customers(customer_id),
		boat_id INTEGER REFERENCES boats(boat_id),
		date_sold TEXT,
		notes TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_new_engines_status ON new_engines(status);

	CREATE TABLE IF NOT EXISTS tickets (
		ticket_id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
		boat_id INTEGER NOT NULL,
		engine_id INTEGER,
		description TEXT,
		customer_notes TEXT,
		date_opened TEXT NOT NULL,
		date_closed TEXT,
		status TEXT NOT NULL DEFAULT 'Open',
		subtotal TEXT NOT NULL DEFAULT '0',
		tax_amount TEXT NOT NULL DEFAULT '0',
		total TEXT NOT NULL DEFAULT '0',
		payment_method TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
	CREATE INDEX IF NOT EXISTS idx_tickets_customer ON tickets(customer_id);

	CREATE TABLE IF NOT EXISTS ticket_parts (
		ticket_part_id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id INTEGER NOT NULL REFERENCES tickets(ticket_id),
		part_id INTEGER NOT NULL REFERENCES parts(part_id),
		quantity_used TEXT NOT NULL,
		price_override TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_ticket_parts_ticket ON ticket_parts(ticket_id);

	CREATE TABLE IF NOT EXISTS ticket_labor (
		assignment_id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id INTEGER NOT NULL REFERENCES tickets(ticket_id),
		mechanic_id INTEGER NOT NULL REFERENCES mechanics(mechanic_id),
		hours_worked TEXT NOT NULL,
		labor_rate TEXT NOT NULL,
		work_description TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_ticket_labor_ticket ON ticket_labor(ticket_id);

	CREATE TABLE IF NOT EXISTS estimates (
		estimate_id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
		boat_id INTEGER,
		engine_id INTEGER,
		date_created TEXT NOT NULL,
		insurance_company TEXT,
		claim_number TEXT,
		notes TEXT,
		subtotal TEXT NOT NULL DEFAULT '0',
		tax_amount TEXT NOT NULL DEFAULT '0',
		total TEXT NOT NULL DEFAULT '0'
	);

	CREATE TABLE IF NOT EXISTS estimate_line_items (
		line_item_id INTEGER PRIMARY KEY AUTOINCREMENT,
		estimate_id INTEGER NOT NULL REFERENCES estimates(estimate_id),
		item_type TEXT NOT NULL,
		description TEXT,
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		line_total TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_estimate_items_estimate ON estimate_line_items(estimate_id);

	-- Payments are append-only: no UPDATE or DELETE in this package.
	CREATE TABLE IF NOT EXISTS payments (
		payment_id TEXT PRIMARY KEY,
		ticket_id INTEGER NOT NULL REFERENCES tickets(ticket_id),
		amount TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		payment_method TEXT,
		notes TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_payments_ticket_date ON payments(ticket_id, payment_date);

	-- Single-row labor rate table (id = 1).
	CREATE TABLE IF NOT EXISTS labor_rates (
		id INTEGER PRIMARY KEY,
		outboard TEXT NOT NULL,
		inboard TEXT NOT NULL,
		sterndrive TEXT NOT NULL,
		pwc TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func decOrZero(ns sql.NullString) decimal.Decimal {
	if !ns.Valid {
		return decimal.Zero
	}
	return billing.MustParseDecimal(ns.String)
}

func decPtr(ns sql.NullString) *decimal.Decimal {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	d := billing.MustParseDecimal(ns.String)
	return &d
}

func timeOrZero(ns sql.NullString) time.Time {
	if !ns.Valid {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, ns.String)
	return t
}

func timePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func nullInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullDec(p *decimal.Decimal) any {
	if p == nil {
		return nil
	}
	return p.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (s *Store) CreateCustomer(ctx context.Context, c shop.Customer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (name, phone, email, address, tax_exempt, tax_exempt_certificate, out_of_state)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Phone, c.Email, c.Address, boolInt(c.TaxExempt), c.ExemptCertificate, boolInt(c.OutOfState))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (shop.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT customer_id, name, phone, email, address, tax_exempt, tax_exempt_certificate, out_of_state
		FROM customers WHERE customer_id = ?`, id)

	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shop.Customer{}, billing.ErrCustomerNotFound
	}
	return c, err
}

func scanCustomer(r rowScanner) (shop.Customer, error) {
	var c shop.Customer
	var phone, email, address, cert sql.NullString
	var exempt, oos int
	if err := r.Scan(&c.ID, &c.Name, &phone, &email, &address, &exempt, &cert, &oos); err != nil {
		return shop.Customer{}, err
	}
	c.Phone, c.Email, c.Address = phone.String, email.String, address.String
	c.ExemptCertificate = cert.String
	c.TaxExempt, c.OutOfState = exempt == 1, oos == 1
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c shop.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = ?, phone = ?, email = ?, address = ?, tax_exempt = ?, tax_exempt_certificate = ?, out_of_state = ?
		WHERE customer_id = ?`,
		c.Name, c.Phone, c.Email, c.Address, boolInt(c.TaxExempt), c.ExemptCertificate, boolInt(c.OutOfState), c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return billing.ErrCustomerNotFound
	}
	return nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]shop.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_id, name, phone, email, address, tax_exempt, tax_exempt_certificate, out_of_state
		FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// =============================================================================
// BOATS
// =============================================================================

func (s *Store) CreateBoat(ctx context.Context, b shop.Boat) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO boats (customer_id, make, model, year, color1, color2, color3)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.CustomerID, b.Make, b.Model, b.Year, b.Colors[0], b.Colors[1], b.Colors[2])
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetBoat(ctx context.Context, id int64) (shop.Boat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT boat_id, customer_id, make, model, year, color1, color2, color3
		FROM boats WHERE boat_id = ?`, id)

	b, err := scanBoat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shop.Boat{}, billing.ErrBoatNotFound
	}
	return b, err
}

func scanBoat(r rowScanner) (shop.Boat, error) {
	var b shop.Boat
	var mk, md, c1, c2, c3 sql.NullString
	var year sql.NullInt64
	if err := r.Scan(&b.ID, &b.CustomerID, &mk, &md, &year, &c1, &c2, &c3); err != nil {
		return shop.Boat{}, err
	}
	b.Make, b.Model = mk.String, md.String
	b.Year = int(year.Int64)
	b.Colors = [3]string{c1.String, c2.String, c3.String}
	return b, nil
}

func (s *Store) ListBoats(ctx context.Context, customerID int64) ([]shop.Boat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT boat_id, customer_id, make, model, year, color1, color2, color3
		FROM boats WHERE customer_id = ? ORDER BY boat_id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.Boat
	for rows.Next() {
		b, err := scanBoat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// =============================================================================
// ENGINES
// =============================================================================

func (s *Store) CreateEngine(ctx context.Context, e shop.Engine) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO engines (boat_id, engine_type, hp, year, serial_number, outdrive, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.BoatID, e.Type, e.HP, e.Year, e.Serial, e.Outdrive, e.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetEngine(ctx context.Context, id int64) (shop.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT engine_id, boat_id, engine_type, hp, year, serial_number, outdrive, notes
		FROM engines WHERE engine_id = ?`, id)

	e, err := scanEngine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shop.Engine{}, billing.ErrEngineNotFound
	}
	return e, err
}

func scanEngine(r rowScanner) (shop.Engine, error) {
	var e shop.Engine
	var typ, serial, outdrive, notes sql.NullString
	var hp, year sql.NullInt64
	if err := r.Scan(&e.ID, &e.BoatID, &typ, &hp, &year, &serial, &outdrive, &notes); err != nil {
		return shop.Engine{}, err
	}
	e.Type, e.Serial, e.Outdrive, e.Notes = typ.String, serial.String, outdrive.String, notes.String
	e.HP, e.Year = int(hp.Int64), int(year.Int64)
	return e, nil
}

func (s *Store) ListEngines(ctx context.Context, boatID int64) ([]shop.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT engine_id, boat_id, engine_type, hp, year, serial_number, outdrive, notes
		FROM engines WHERE boat_id = ? ORDER BY engine_id`, boatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.Engine
	for rows.Next() {
		e, err := scanEngine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// MECHANICS
// =============================================================================

func (s *Store) CreateMechanic(ctx context.Context, m shop.Mechanic) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO mechanics (name, hourly_rate, phone, email) VALUES (?, ?, ?, ?)`,
		m.Name, nullDec(m.HourlyRate), m.Phone, m.Email)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetMechanic(ctx context.Context, id int64) (shop.Mechanic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT mechanic_id, name, hourly_rate, phone, email FROM mechanics WHERE mechanic_id = ?`, id)

	m, err := scanMechanic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shop.Mechanic{}, billing.ErrMechanicNotFound
	}
	return m, err
}

func scanMechanic(r rowScanner) (shop.Mechanic, error) {
	var m shop.Mechanic
	var rate, phone, email sql.NullString
	if err := r.Scan(&m.ID, &m.Name, &rate, &phone, &email); err != nil {
		return shop.Mechanic{}, err
	}
	m.HourlyRate = decPtr(rate)
	m.Phone, m.Email = phone.String, email.String
	return m, nil
}

func (s *Store) ListMechanics(ctx context.Context) ([]shop.Mechanic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT mechanic_id, name, hourly_rate, phone, email FROM mechanics ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.Mechanic
	for rows.Next() {
		m, err := scanMechanic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// =============================================================================
// PARTS
// =============================================================================

func (s *Store) CreatePart(ctx context.Context, p shop.Part) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO parts (part_number, name, price, taxable, supplier_name, supplier_cost, retail_price)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.PartNumber, p.Name, p.Price.String(), boolInt(p.Taxable), p.SupplierName,
		p.SupplierCost.String(), p.RetailPrice.String())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetPart(ctx context.Context, id int64) (shop.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT part_id, part_number, name, price, taxable, supplier_name, supplier_cost, retail_price
		FROM parts WHERE part_id = ?`, id)

	p, err := scanPart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shop.Part{}, billing.ErrPartNotFound
	}
	return p, err
}

func scanPart(r rowScanner) (shop.Part, error) {
	var p shop.Part
	var num, supplier, cost, retail sql.NullString
	var price string
	var taxable int
	if err := r.Scan(&p.ID, &num, &p.Name, &price, &taxable, &supplier, &cost, &retail); err != nil {
		return shop.Part{}, err
	}
	p.PartNumber, p.SupplierName = num.String, supplier.String
	p.Price = billing.MustParseDecimal(price)
	p.SupplierCost, p.RetailPrice = decOrZero(cost), decOrZero(retail)
	p.Taxable = taxable == 1
	return p, nil
}

func (s *Store) ListParts(ctx context.Context) ([]shop.Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT part_id, part_number, name, price, taxable, supplier_name, supplier_cost, retail_price
		FROM parts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// NEW ENGINE INVENTORY
// =============================================================================

func (s *Store) StockNewEngine(ctx context.Context, e shop.NewEngine) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO new_engines (hp, model, serial_number, status, purchase_price, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.HP, e.Model, e.Serial, string(shop.EngineInStock), e.PurchasePrice.String(), e.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetNewEngine(ctx context.Context, id int64) (shop.NewEngine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT new_engine_id, hp, model, serial_number, status, purchase_price, sale_price,
		       customer_id, boat_id, date_sold, notes
		FROM new_engines WHERE new_engine_id = ?`, id)

	e, err := scanNewEngine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shop.NewEngine{}, billing.ErrEngineNotFound
	}
	return e, err
}

func scanNewEngine(r rowScanner) (shop.NewEngine, error) {
	var e shop.NewEngine
	var model, serial, notes, purchase, sale, dateSold sql.NullString
	var hp, customerID, boatID sql.NullInt64
	var status string
	if err := r.Scan(&e.ID, &hp, &model, &serial, &status, &purchase, &sale, &customerID, &boatID, &dateSold, &notes); err != nil {
		return shop.NewEngine{}, err
	}
	e.HP = int(hp.Int64)
	e.Model, e.Serial, e.Notes = model.String, serial.String, notes.String
	e.Status = shop.NewEngineStatus(status)
	e.PurchasePrice, e.SalePrice = decOrZero(purchase), decOrZero(sale)
	e.CustomerID, e.BoatID = int64Ptr(customerID), int64Ptr(boatID)
	e.DateSold = timePtr(dateSold)
	return e, nil
}

func (s *Store) ListNewEngines(ctx context.Context, status shop.NewEngineStatus) ([]shop.NewEngine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT new_engine_id, hp, model, serial_number, status, purchase_price, sale_price,
		       customer_id, boat_id, date_sold, notes
		FROM new_engines`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY new_engine_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.NewEngine
	for rows.Next() {
		e, err := scanNewEngine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) MarkEngineSold(ctx context.Context, id int64, customerID int64, boatID *int64, salePrice decimal.Decimal, soldAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE new_engines
		SET status = ?, customer_id = ?, boat_id = ?, sale_price = ?, date_sold = ?
		WHERE new_engine_id = ? AND status = ?`,
		string(shop.EngineSold), customerID, nullInt64(boatID), salePrice.String(),
		soldAt.UTC().Format(time.RFC3339), id, string(shop.EngineInStock))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("new engine %d not in stock: %w", id, billing.ErrEngineNotFound)
	}
	return nil
}

// =============================================================================
// TICKETS
// =============================================================================

func (s *Store) CreateTicket(ctx context.Context, t shop.Ticket) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tickets (customer_id, boat_id, engine_id, description, customer_notes,
		                     date_opened, status, subtotal, tax_amount, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, '0', '0', '0')`,
		t.CustomerID, t.BoatID, nullInt64(t.EngineID), t.Description, t.CustomerNotes,
		t.DateOpened.UTC().Format(time.RFC3339), string(t.Status))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetTicket(ctx context.Context, id int64) (shop.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT ticket_id, customer_id, boat_id, engine_id, description, customer_notes,
		       date_opened, date_closed, status, subtotal, tax_amount, total, payment_method
		FROM tickets WHERE ticket_id = ?`, id)

	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shop.Ticket{}, billing.ErrTicketNotFound
	}
	return t, err
}

func scanTicket(r rowScanner) (shop.Ticket, error) {
	var t shop.Ticket
	var engineID sql.NullInt64
	var desc, notes, opened, closed, method sql.NullString
	var sub, tax, total string
	if err := r.Scan(&t.ID, &t.CustomerID, &t.BoatID, &engineID, &desc, &notes,
		&opened, &closed, &t.Status, &sub, &tax, &total, &method); err != nil {
		return shop.Ticket{}, err
	}
	t.EngineID = int64Ptr(engineID)
	t.Description, t.CustomerNotes = desc.String, notes.String
	t.DateOpened = timeOrZero(opened)
	t.DateClosed = timePtr(closed)
	t.Totals = billing.Totals{
		Subtotal:  billing.MustParseDecimal(sub),
		TaxAmount: billing.MustParseDecimal(tax),
		Total:     billing.MustParseDecimal(total),
	}
	t.PaymentMethod = method.String
	return t, nil
}

func (s *Store) ListTickets(ctx context.Context, status shop.TicketStatus) ([]shop.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ticket_id, customer_id, boat_id, engine_id, description, customer_notes,
		       date_opened, date_closed, status, subtotal, tax_amount, total, payment_method
		FROM tickets`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY date_opened DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) SetTicketStatus(ctx context.Context, id int64, status shop.TicketStatus, closedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res sql.Result
	var err error
	if closedAt != nil {
		res, err = s.db.ExecContext(ctx,
			`UPDATE tickets SET status = ?, date_closed = ? WHERE ticket_id = ?`,
			string(status), closedAt.UTC().Format(time.RFC3339), id)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE tickets SET status = ? WHERE ticket_id = ?`, string(status), id)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return billing.ErrTicketNotFound
	}
	return nil
}

func (s *Store) AddTicketPart(ctx context.Context, tp shop.TicketPart) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ticket_parts (ticket_id, part_id, quantity_used, price_override)
		VALUES (?, ?, ?, ?)`,
		tp.TicketID, tp.PartID, tp.Quantity.String(), nullDec(tp.PriceOverride))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) PartsOnTicket(ctx context.Context, ticketID int64) ([]shop.TicketPartDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT tp.ticket_part_id, tp.ticket_id, tp.part_id, tp.quantity_used, tp.price_override,
		       p.part_number, p.name, p.price, p.taxable
		FROM ticket_parts tp
		JOIN parts p ON tp.part_id = p.part_id
		WHERE tp.ticket_id = ?
		ORDER BY tp.ticket_part_id`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.TicketPartDetail
	for rows.Next() {
		var d shop.TicketPartDetail
		var qty, price string
		var override, partNum sql.NullString
		var taxable int
		if err := rows.Scan(&d.TicketPart.ID, &d.TicketID, &d.PartID, &qty, &override,
			&partNum, &d.PartName, &price, &taxable); err != nil {
			return nil, err
		}
		d.Quantity = billing.MustParseDecimal(qty)
		d.PriceOverride = decPtr(override)
		d.PartNumber = partNum.String
		d.UnitPrice = billing.MustParseDecimal(price)
		d.Taxable = taxable == 1
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) AddTicketLabor(ctx context.Context, tl shop.TicketLabor) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ticket_labor (ticket_id, mechanic_id, hours_worked, labor_rate, work_description)
		VALUES (?, ?, ?, ?, ?)`,
		tl.TicketID, tl.MechanicID, tl.Hours.String(), tl.Rate.String(), tl.WorkDescription)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) LaborOnTicket(ctx context.Context, ticketID int64) ([]shop.TicketLabor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT tl.assignment_id, tl.ticket_id, tl.mechanic_id, m.name, tl.hours_worked,
		       tl.labor_rate, tl.work_description
		FROM ticket_labor tl
		JOIN mechanics m ON tl.mechanic_id = m.mechanic_id
		WHERE tl.ticket_id = ?
		ORDER BY tl.assignment_id`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.TicketLabor
	for rows.Next() {
		var l shop.TicketLabor
		var hours, rate string
		var desc sql.NullString
		if err := rows.Scan(&l.ID, &l.TicketID, &l.MechanicID, &l.MechanicName, &hours, &rate, &desc); err != nil {
			return nil, err
		}
		l.Hours = billing.MustParseDecimal(hours)
		l.Rate = billing.MustParseDecimal(rate)
		l.WorkDescription = desc.String
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) SaveTicketTotals(ctx context.Context, ticketID int64, totals billing.Totals, paymentMethod string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE tickets SET subtotal = ?, tax_amount = ?, total = ?, payment_method = ?
		WHERE ticket_id = ?`,
		totals.Subtotal.String(), totals.TaxAmount.String(), totals.Total.String(), paymentMethod, ticketID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return billing.ErrTicketNotFound
	}
	return nil
}

// =============================================================================
// ESTIMATES
// =============================================================================

func (s *Store) CreateEstimate(ctx context.Context, e shop.Estimate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO estimates (customer_id, boat_id, engine_id, date_created, insurance_company,
		                       claim_number, notes, subtotal, tax_amount, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, '0', '0', '0')`,
		e.CustomerID, nullInt64(e.BoatID), nullInt64(e.EngineID),
		e.DateCreated.UTC().Format(time.RFC3339), e.InsuranceCompany, e.ClaimNumber, e.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) GetEstimate(ctx context.Context, id int64) (shop.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT estimate_id, customer_id, boat_id, engine_id, date_created, insurance_company,
		       claim_number, notes, subtotal, tax_amount, total
		FROM estimates WHERE estimate_id = ?`, id)

	e, err := scanEstimate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return shop.Estimate{}, billing.ErrEstimateNotFound
	}
	return e, err
}

func scanEstimate(r rowScanner) (shop.Estimate, error) {
	var e shop.Estimate
	var boatID, engineID sql.NullInt64
	var created, insurance, claim, notes sql.NullString
	var sub, tax, total string
	if err := r.Scan(&e.ID, &e.CustomerID, &boatID, &engineID, &created, &insurance,
		&claim, &notes, &sub, &tax, &total); err != nil {
		return shop.Estimate{}, err
	}
	e.BoatID, e.EngineID = int64Ptr(boatID), int64Ptr(engineID)
	e.DateCreated = timeOrZero(created)
	e.InsuranceCompany, e.ClaimNumber, e.Notes = insurance.String, claim.String, notes.String
	e.Totals = billing.Totals{
		Subtotal:  billing.MustParseDecimal(sub),
		TaxAmount: billing.MustParseDecimal(tax),
		Total:     billing.MustParseDecimal(total),
	}
	return e, nil
}

func (s *Store) ListEstimates(ctx context.Context) ([]shop.Estimate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT estimate_id, customer_id, boat_id, engine_id, date_created, insurance_company,
		       claim_number, notes, subtotal, tax_amount, total
		FROM estimates ORDER BY date_created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) AddEstimateLineItem(ctx context.Context, item shop.EstimateLineItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO estimate_line_items (estimate_id, item_type, description, quantity, unit_price, line_total)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.EstimateID, string(item.ItemType), item.Description,
		item.Quantity.String(), item.UnitPrice.String(), item.LineTotal.String())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) EstimateLineItems(ctx context.Context, estimateID int64) ([]shop.EstimateLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT line_item_id, estimate_id, item_type, description, quantity, unit_price, line_total
		FROM estimate_line_items WHERE estimate_id = ? ORDER BY line_item_id`, estimateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.EstimateLineItem
	for rows.Next() {
		var item shop.EstimateLineItem
		var itemType string
		var desc sql.NullString
		var qty, price, total string
		if err := rows.Scan(&item.ID, &item.EstimateID, &itemType, &desc, &qty, &price, &total); err != nil {
			return nil, err
		}
		item.ItemType = shop.LineItemType(itemType)
		item.Description = desc.String
		item.Quantity = billing.MustParseDecimal(qty)
		item.UnitPrice = billing.MustParseDecimal(price)
		item.LineTotal = billing.MustParseDecimal(total)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) SaveEstimateTotals(ctx context.Context, estimateID int64, totals billing.Totals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE estimates SET subtotal = ?, tax_amount = ?, total = ? WHERE estimate_id = ?`,
		totals.Subtotal.String(), totals.TaxAmount.String(), totals.Total.String(), estimateID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return billing.ErrEstimateNotFound
	}
	return nil
}

// =============================================================================
// PAYMENTS (billing.PaymentStore) - append-only
// =============================================================================

func (s *Store) Append(ctx context.Context, p billing.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (payment_id, ticket_id, amount, payment_date, payment_method, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.TicketID, p.Amount.String(), p.Date.UTC().Format(time.RFC3339), p.Method, p.Notes)
	return err
}

func (s *Store) ListByTicket(ctx context.Context, ticketID int64) ([]billing.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_id, ticket_id, amount, payment_date, payment_method, notes
		FROM payments WHERE ticket_id = ? ORDER BY payment_date, rowid`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []billing.Payment
	for rows.Next() {
		var p billing.Payment
		var amount, date string
		var method, notes sql.NullString
		if err := rows.Scan(&p.ID, &p.TicketID, &amount, &date, &method, &notes); err != nil {
			return nil, err
		}
		p.Amount = billing.MustParseDecimal(amount)
		p.Date, _ = time.Parse(time.RFC3339, date)
		p.Method, p.Notes = method.String, notes.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// LABOR RATES (billing.RateTableStore)
// =============================================================================

func (s *Store) EnsureRateDefaults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := billing.DefaultRateTable()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO labor_rates (id, outboard, inboard, sterndrive, pwc)
		VALUES (1, ?, ?, ?, ?)`,
		defaults.Outboard.String(), defaults.Inboard.String(),
		defaults.Sterndrive.String(), defaults.PWC.String())
	return err
}

func (s *Store) LoadRates(ctx context.Context) (billing.RateTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT outboard, inboard, sterndrive, pwc FROM labor_rates WHERE id = 1`)

	var out, in, stern, pwc string
	err := row.Scan(&out, &in, &stern, &pwc)
	if errors.Is(err, sql.ErrNoRows) {
		return billing.DefaultRateTable(), nil
	}
	if err != nil {
		return billing.RateTable{}, err
	}
	return billing.RateTable{
		Outboard:   billing.MustParseDecimal(out),
		Inboard:    billing.MustParseDecimal(in),
		Sterndrive: billing.MustParseDecimal(stern),
		PWC:        billing.MustParseDecimal(pwc),
	}, nil
}

func (s *Store) SaveRates(ctx context.Context, rates billing.RateTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO labor_rates (id, outboard, inboard, sterndrive, pwc)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET outboard = excluded.outboard, inboard = excluded.inboard,
		                              sterndrive = excluded.sterndrive, pwc = excluded.pwc`,
		rates.Outboard.String(), rates.Inboard.String(), rates.Sterndrive.String(), rates.PWC.String())
	return err
}

// Compile-time check that Store satisfies the composite interface.
var _ shop.Store = (*Store)(nil)
