/*
Package payroll contains the core domain logic for studio payroll.

PURPOSE:
  This package holds the types and rules for turning logged TA hours into
  monthly payroll: the reconciler that joins time entries against the
  payroll ledger, and the payment state machine that flips paid/unpaid
  state consistently across both tables.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeEntry: A single logged block of hours for one TA on one date
  - LedgerRow: The cached per-(TA, period) payroll summary record
  - TA: A teaching assistant on the roster
  - Summary: The derived per-TA payroll view for one pay period

DESIGN PRINCIPLES:
  1. Precision: hours and pay use decimal.Decimal, never float64
  2. Type Safety: TAID and EntryID are distinct string types
  3. Derived state is modeled: a ledger row going stale against the
     entries table is a condition the reconciler reports, not a bug
     it silently repairs

SEE ALSO:
  - period.go: Pay-period key derivation (YYYY-MM)
  - reconciler.go: Summary computation
  - payment.go: Paid/unpaid transitions
  - store.go: Persistence interfaces
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TAID string
type EntryID string

// =============================================================================
// HOURLY RATE - Fixed constant shared by all TAs
// =============================================================================

// HourlyRate is the studio-wide TA rate in dollars per hour.
var HourlyRate = decimal.NewFromFloat(8.00)

// =============================================================================
// TA - Roster record
// =============================================================================

type TA struct {
	ID        TAID
	Name      string
	Email     string
	Active    bool
	CreatedAt time.Time
}

// =============================================================================
// TIME ENTRY - One logged block of hours
// =============================================================================

// TimeEntry is a single submission of hours. Entries are never updated
// after insertion except for admin edits to Hours/Notes and the Paid flag,
// which only the payment state machine may flip.
type TimeEntry struct {
	ID        EntryID
	TAID      TAID
	Date      time.Time
	Hours     decimal.Decimal
	Notes     string
	PayPeriod PayPeriod // always PeriodOf(Date)
	Paid      bool
	CreatedAt time.Time

	// Joined from the roster on read; not stored on the entry row.
	TAName  string
	TAEmail string
}

// =============================================================================
// LEDGER ROW - Cached payroll summary per (TA, pay period)
// =============================================================================

// LedgerRow exists only after the first mark-paid action for the key.
// It records the totals the admin saw when paying, which can fall behind
// the entries table; that staleness is surfaced by the reconciler as
// HasNewHoursAfterPayment rather than silently recomputed away.
type LedgerRow struct {
	TAID       TAID
	PayPeriod  PayPeriod
	TotalHours decimal.Decimal
	HourlyRate decimal.Decimal
	TotalPay   decimal.Decimal
	Paid       bool
	PaidDate   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// =============================================================================
// SUMMARY - Derived per-TA payroll view for one period
// =============================================================================

type Summary struct {
	TAID       TAID
	TAName     string
	TAEmail    string
	PayPeriod  PayPeriod
	TotalHours decimal.Decimal
	HourlyRate decimal.Decimal
	TotalPay   decimal.Decimal
	Paid       bool
	PaidDate   *time.Time

	// HasNewHoursAfterPayment is true when the ledger row carries a
	// paid_date and at least one entry was created strictly after it,
	// regardless of the row's current paid flag. It warns the admin that
	// a recorded payment no longer covers all logged hours.
	HasNewHoursAfterPayment bool

	Entries []TimeEntry
}

// TotalAmount sums TotalPay across summaries.
func TotalAmount(summaries []Summary) decimal.Decimal {
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.TotalPay)
	}
	return total
}
