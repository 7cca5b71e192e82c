/*
store.go - Persistence interfaces for entries, ledger, and roster

PURPOSE:
  Defines the interface between the payroll domain and the database.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  EntryStore:  Time entry rows (insert, list, per-period reads, paid flips)
  LedgerStore: Payroll ledger rows (lazy upsert, paid-state updates)
  RosterStore: TA roster (list, insert, deactivate-or-delete)
  Store:       The union; what the domain services are constructed with

ABSENT ROWS:
  Get-style methods return (nil, nil) when the row does not exist.
  Sentinel not-found errors are raised by the services, which know
  whether absence is an error in context.

CONSISTENCY:
  There is no cross-table transaction in these interfaces. The payment
  state machine issues its ledger write and its entries write as two
  independent calls; a failure between them is a known gap (see
  payment.go).

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:  Production SQLite
  - payroll/store/memory.go: In-memory for testing
*/
package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTRY STORE
// =============================================================================

type EntryStore interface {
	// InsertEntry persists a new time entry.
	InsertEntry(ctx context.Context, e TimeEntry) error

	// GetEntry returns an entry by id, or (nil, nil) if absent.
	GetEntry(ctx context.Context, id EntryID) (*TimeEntry, error)

	// ListEntries returns all entries joined with TA name/email,
	// ordered by created_at descending.
	ListEntries(ctx context.Context) ([]TimeEntry, error)

	// EntriesForPeriod returns all entries in a pay period joined with TA
	// name/email, ordered by created_at descending.
	EntriesForPeriod(ctx context.Context, period PayPeriod) ([]TimeEntry, error)

	// HasEntries reports whether any entry references the TA.
	HasEntries(ctx context.Context, taID TAID) (bool, error)

	// UpdateEntry sets hours and notes on an existing entry.
	// Returns ErrEntryNotFound if the entry does not exist.
	UpdateEntry(ctx context.Context, id EntryID, hours decimal.Decimal, notes string) error

	// DeleteEntry removes an entry. Returns ErrEntryNotFound if absent.
	DeleteEntry(ctx context.Context, id EntryID) error

	// SetEntriesPaid flips the paid flag on every entry matching
	// (taID, period). Flipping zero rows is not an error.
	SetEntriesPaid(ctx context.Context, taID TAID, period PayPeriod, paid bool) error
}

// =============================================================================
// LEDGER STORE
// =============================================================================

type LedgerStore interface {
	// GetLedgerRow returns the row for (taID, period), or (nil, nil).
	GetLedgerRow(ctx context.Context, taID TAID, period PayPeriod) (*LedgerRow, error)

	// LedgerRowsForPeriod returns all ledger rows in a pay period.
	LedgerRowsForPeriod(ctx context.Context, period PayPeriod) ([]LedgerRow, error)

	// UpsertLedgerRow inserts the row or, if (taID, period) exists,
	// overwrites totals, rate, paid, and paid_date.
	UpsertLedgerRow(ctx context.Context, row LedgerRow) error

	// SetLedgerPaidFlag flips only the paid flag, PRESERVING paid_date.
	// Used when new hours arrive after a payment so the stale-payment
	// warning can still fire.
	SetLedgerPaidFlag(ctx context.Context, taID TAID, period PayPeriod, paid bool) error

	// ClearLedgerPayment sets paid=false and paid_date=NULL.
	// Used by the explicit mark-unpaid undo.
	ClearLedgerPayment(ctx context.Context, taID TAID, period PayPeriod) error
}

// =============================================================================
// ROSTER STORE
// =============================================================================

type RosterStore interface {
	// ListTAs returns TAs ordered by name. activeOnly filters out
	// deactivated TAs.
	ListTAs(ctx context.Context, activeOnly bool) ([]TA, error)

	// GetTA returns a TA by id, or (nil, nil) if absent.
	GetTA(ctx context.Context, id TAID) (*TA, error)

	// GetTAByEmail returns a TA by (lowercased) email, or (nil, nil).
	GetTAByEmail(ctx context.Context, email string) (*TA, error)

	// InsertTA persists a new TA.
	InsertTA(ctx context.Context, ta TA) error

	// DeactivateTA sets active=false, keeping the row.
	DeactivateTA(ctx context.Context, id TAID) error

	// DeleteTA removes the TA row entirely.
	DeleteTA(ctx context.Context, id TAID) error
}

// Store is the full persistence surface the domain services need.
type Store interface {
	EntryStore
	LedgerStore
	RosterStore
}

// Clock supplies the current time; injected so tests control paid_date
// and created_at ordering.
type Clock func() time.Time
