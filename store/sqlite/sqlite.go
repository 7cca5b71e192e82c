/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements payroll.Store (EntryStore, LedgerStore, RosterStore) using
  SQLite. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  tas:            Teaching assistant roster (soft-deactivated, rarely deleted)
  time_entries:   Individual logged hours, tagged with a derived pay_period
  payroll_ledger: One summary row per (ta, pay_period), created lazily on
                  first mark-paid

DECIMALS:
  Hours and money are stored as TEXT holding decimal strings, never REAL.
  shopspring/decimal round-trips exactly through its String form.

INDEXES:
  - idx_entries_ta_period:    The payment state machine's hot path
  - idx_entries_period:       Reconciler period reads
  - idx_ledger_period:        Reconciler ledger reads
  - unique (ta_id, pay_period) on payroll_ledger: at most one summary row

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers don't block. Note that the payment state machine issues its
  ledger write and entries write as two separate calls; the mutex
  serializes each call, not the pair.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/pirouette/payroll-engine/payroll"
)

// Store implements payroll.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Teaching assistants
	CREATE TABLE IF NOT EXISTS tas (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tas_active_name
		ON tas(active, name);

	-- Individual logged hours
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		ta_id TEXT NOT NULL REFERENCES tas(id),
		date TEXT NOT NULL,
		hours TEXT NOT NULL,
		notes TEXT,
		pay_period TEXT NOT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_ta_period
		ON time_entries(ta_id, pay_period);
	CREATE INDEX IF NOT EXISTS idx_entries_period
		ON time_entries(pay_period, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_created_at
		ON time_entries(created_at DESC);

	-- Payroll summary rows, one per (ta, period), created on first payment
	CREATE TABLE IF NOT EXISTS payroll_ledger (
		ta_id TEXT NOT NULL REFERENCES tas(id),
		pay_period TEXT NOT NULL,
		total_hours TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		total_pay TEXT NOT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		paid_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (ta_id, pay_period)
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_period
		ON payroll_ledger(pay_period);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENTRY STORE (payroll.EntryStore interface)
// =============================================================================

// InsertEntry persists a new time entry.
func (s *Store) InsertEntry(ctx context.Context, e payroll.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO time_entries (id, ta_id, date, hours, notes, pay_period, paid, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.TAID,
		e.Date.UTC().Format("2006-01-02"),
		e.Hours.String(),
		nullString(e.Notes),
		e.PayPeriod,
		e.Paid,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

const entrySelect = `
	SELECT e.id, e.ta_id, e.date, e.hours, e.notes, e.pay_period, e.paid, e.created_at,
	       t.name, t.email
	FROM time_entries e
	JOIN tas t ON t.id = e.ta_id
`

// GetEntry returns an entry by id, or (nil, nil) if absent.
func (s *Store) GetEntry(ctx context.Context, id payroll.EntryID) (*payroll.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.queryEntries(ctx, entrySelect+" WHERE e.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListEntries returns all entries with TA details, newest first.
func (s *Store) ListEntries(ctx context.Context) ([]payroll.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, entrySelect+" ORDER BY e.created_at DESC")
}

// EntriesForPeriod returns all entries in a pay period, newest first.
func (s *Store) EntriesForPeriod(ctx context.Context, period payroll.PayPeriod) ([]payroll.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx, entrySelect+" WHERE e.pay_period = ? ORDER BY e.created_at DESC", period)
}

// HasEntries reports whether any entry references the TA.
func (s *Store) HasEntries(ctx context.Context, taID payroll.TAID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM (SELECT 1 FROM time_entries WHERE ta_id = ? LIMIT 1)",
		taID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count entries: %w", err)
	}
	return count > 0, nil
}

// UpdateEntry sets hours and notes on an existing entry.
func (s *Store) UpdateEntry(ctx context.Context, id payroll.EntryID, hours decimal.Decimal, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE time_entries SET hours = ?, notes = ? WHERE id = ?",
		hours.String(), nullString(notes), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return requireRows(res, payroll.ErrEntryNotFound)
}

// DeleteEntry removes an entry.
func (s *Store) DeleteEntry(ctx context.Context, id payroll.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return requireRows(res, payroll.ErrEntryNotFound)
}

// SetEntriesPaid flips the paid flag on every entry matching (ta, period).
func (s *Store) SetEntriesPaid(ctx context.Context, taID payroll.TAID, period payroll.PayPeriod, paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE time_entries SET paid = ? WHERE ta_id = ? AND pay_period = ?",
		paid, taID, period,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry paid flags: %w", err)
	}
	return nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]payroll.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []payroll.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (payroll.TimeEntry, error) {
	var (
		e         payroll.TimeEntry
		date      string
		hours     string
		notes     sql.NullString
		createdAt string
	)

	err := rows.Scan(&e.ID, &e.TAID, &date, &hours, &notes, &e.PayPeriod, &e.Paid, &createdAt, &e.TAName, &e.TAEmail)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	if e.Date, err = time.Parse("2006-01-02", date); err != nil {
		return e, fmt.Errorf("failed to parse entry date %q: %w", date, err)
	}
	if e.Hours, err = decimal.NewFromString(hours); err != nil {
		return e, fmt.Errorf("failed to parse entry hours %q: %w", hours, err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return e, fmt.Errorf("failed to parse entry created_at %q: %w", createdAt, err)
	}
	e.Notes = notes.String
	return e, nil
}

// =============================================================================
// LEDGER STORE (payroll.LedgerStore interface)
// =============================================================================

const ledgerSelect = `
	SELECT ta_id, pay_period, total_hours, hourly_rate, total_pay, paid, paid_date, created_at, updated_at
	FROM payroll_ledger
`

// GetLedgerRow returns the row for (ta, period), or (nil, nil).
func (s *Store) GetLedgerRow(ctx context.Context, taID payroll.TAID, period payroll.PayPeriod) (*payroll.LedgerRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.queryLedger(ctx, ledgerSelect+" WHERE ta_id = ? AND pay_period = ?", taID, period)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// LedgerRowsForPeriod returns all ledger rows in a pay period.
func (s *Store) LedgerRowsForPeriod(ctx context.Context, period payroll.PayPeriod) ([]payroll.LedgerRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLedger(ctx, ledgerSelect+" WHERE pay_period = ?", period)
}

// UpsertLedgerRow inserts the row or overwrites totals, rate, paid, and
// paid_date on conflict. created_at survives the upsert.
func (s *Store) UpsertLedgerRow(ctx context.Context, row payroll.LedgerRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := `
		INSERT INTO payroll_ledger (ta_id, pay_period, total_hours, hourly_rate, total_pay, paid, paid_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (ta_id, pay_period) DO UPDATE SET
			total_hours = excluded.total_hours,
			hourly_rate = excluded.hourly_rate,
			total_pay   = excluded.total_pay,
			paid        = excluded.paid,
			paid_date   = excluded.paid_date,
			updated_at  = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		row.TAID,
		row.PayPeriod,
		row.TotalHours.String(),
		row.HourlyRate.String(),
		row.TotalPay.String(),
		row.Paid,
		nullTime(row.PaidDate),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ledger row: %w", err)
	}
	return nil
}

// SetLedgerPaidFlag flips only the paid flag, preserving paid_date.
func (s *Store) SetLedgerPaidFlag(ctx context.Context, taID payroll.TAID, period payroll.PayPeriod, paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE payroll_ledger SET paid = ?, updated_at = ? WHERE ta_id = ? AND pay_period = ?",
		paid, time.Now().UTC().Format(time.RFC3339Nano), taID, period,
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger paid flag: %w", err)
	}
	return nil
}

// ClearLedgerPayment sets paid=false and paid_date=NULL.
func (s *Store) ClearLedgerPayment(ctx context.Context, taID payroll.TAID, period payroll.PayPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE payroll_ledger SET paid = FALSE, paid_date = NULL, updated_at = ? WHERE ta_id = ? AND pay_period = ?",
		time.Now().UTC().Format(time.RFC3339Nano), taID, period,
	)
	if err != nil {
		return fmt.Errorf("failed to clear ledger payment: %w", err)
	}
	return nil
}

func (s *Store) queryLedger(ctx context.Context, query string, args ...any) ([]payroll.LedgerRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var result []payroll.LedgerRow
	for rows.Next() {
		row, err := scanLedgerRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func scanLedgerRow(rows *sql.Rows) (payroll.LedgerRow, error) {
	var (
		row        payroll.LedgerRow
		totalHours string
		hourlyRate string
		totalPay   string
		paidDate   sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := rows.Scan(&row.TAID, &row.PayPeriod, &totalHours, &hourlyRate, &totalPay, &row.Paid, &paidDate, &createdAt, &updatedAt)
	if err != nil {
		return row, fmt.Errorf("failed to scan ledger row: %w", err)
	}

	if row.TotalHours, err = decimal.NewFromString(totalHours); err != nil {
		return row, fmt.Errorf("failed to parse total_hours %q: %w", totalHours, err)
	}
	if row.HourlyRate, err = decimal.NewFromString(hourlyRate); err != nil {
		return row, fmt.Errorf("failed to parse hourly_rate %q: %w", hourlyRate, err)
	}
	if row.TotalPay, err = decimal.NewFromString(totalPay); err != nil {
		return row, fmt.Errorf("failed to parse total_pay %q: %w", totalPay, err)
	}
	if paidDate.Valid {
		t, err := time.Parse(time.RFC3339Nano, paidDate.String)
		if err != nil {
			return row, fmt.Errorf("failed to parse paid_date %q: %w", paidDate.String, err)
		}
		row.PaidDate = &t
	}
	if row.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return row, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	if row.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return row, fmt.Errorf("failed to parse updated_at %q: %w", updatedAt, err)
	}
	return row, nil
}

// =============================================================================
// ROSTER STORE (payroll.RosterStore interface)
// =============================================================================

// ListTAs returns TAs ordered by name.
func (s *Store) ListTAs(ctx context.Context, activeOnly bool) ([]payroll.TA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, name, email, active, created_at FROM tas"
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tas: %w", err)
	}
	defer rows.Close()

	var tas []payroll.TA
	for rows.Next() {
		ta, err := scanTA(rows)
		if err != nil {
			return nil, err
		}
		tas = append(tas, ta)
	}
	return tas, rows.Err()
}

// GetTA returns a TA by id, or (nil, nil) if absent.
func (s *Store) GetTA(ctx context.Context, id payroll.TAID) (*payroll.TA, error) {
	return s.getTA(ctx, "SELECT id, name, email, active, created_at FROM tas WHERE id = ?", id)
}

// GetTAByEmail returns a TA by email, or (nil, nil) if absent.
func (s *Store) GetTAByEmail(ctx context.Context, email string) (*payroll.TA, error) {
	return s.getTA(ctx, "SELECT id, name, email, active, created_at FROM tas WHERE email = ?", email)
}

func (s *Store) getTA(ctx context.Context, query string, arg any) (*payroll.TA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query ta: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	ta, err := scanTA(rows)
	if err != nil {
		return nil, err
	}
	return &ta, nil
}

// InsertTA persists a new TA.
func (s *Store) InsertTA(ctx context.Context, ta payroll.TA) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tas (id, name, email, active, created_at) VALUES (?, ?, ?, ?, ?)",
		ta.ID, ta.Name, ta.Email, ta.Active, ta.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ta: %w", err)
	}
	return nil
}

// DeactivateTA sets active=false, keeping the row.
func (s *Store) DeactivateTA(ctx context.Context, id payroll.TAID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE tas SET active = FALSE WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate ta: %w", err)
	}
	return requireRows(res, payroll.ErrTANotFound)
}

// DeleteTA removes the TA row entirely.
func (s *Store) DeleteTA(ctx context.Context, id payroll.TAID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM tas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete ta: %w", err)
	}
	return requireRows(res, payroll.ErrTANotFound)
}

func scanTA(rows *sql.Rows) (payroll.TA, error) {
	var (
		ta        payroll.TA
		createdAt string
	)
	if err := rows.Scan(&ta.ID, &ta.Name, &ta.Email, &ta.Active, &createdAt); err != nil {
		return ta, fmt.Errorf("failed to scan ta: %w", err)
	}
	var err error
	if ta.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return ta, fmt.Errorf("failed to parse ta created_at %q: %w", createdAt, err)
	}
	return ta, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func requireRows(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
