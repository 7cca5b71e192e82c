/*
entries.go - Hours submission and admin entry management

PURPOSE:
  The Entries service validates and records hour submissions, runs the
  implicit payment-revert transition when hours land in an already-paid
  period, and fires the confirmation email without blocking the write.

SUBMISSION FLOW (LogHours):
  1. Validate: hours strictly positive, TA exists and is resolvable
  2. Derive pay_period from the entry date (YYYY-MM)
  3. If the period is already marked paid for this TA, flip ledger row +
     sibling entries back to unpaid, preserving paid_date (payment.go)
  4. Insert the entry, paid=false, created_at=now
  5. Send confirmation email in the background; failures are logged and
     never surfaced to the submitter
*/
package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// NOTIFIER - Consumed interface; see notify package for the SMTP impl
// =============================================================================

// HoursNotification carries the fields of a confirmation email.
type HoursNotification struct {
	TAName  string
	TAEmail string
	Date    time.Time
	Hours   decimal.Decimal
	Notes   string
}

// Notifier delivers a submission confirmation. Implementations must be
// safe for concurrent use; delivery errors are the caller's to log.
type Notifier interface {
	HoursLogged(ctx context.Context, n HoursNotification) error
}

// NopNotifier discards notifications. Used when mail is not configured.
type NopNotifier struct{}

func (NopNotifier) HoursLogged(context.Context, HoursNotification) error { return nil }

// =============================================================================
// ENTRIES SERVICE
// =============================================================================

const notifyTimeout = 10 * time.Second

type Entries struct {
	store    Store
	payments *Payments
	notifier Notifier
	now      Clock
	log      *zap.Logger
}

func NewEntries(store Store, payments *Payments, notifier Notifier, log *zap.Logger) *Entries {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Entries{store: store, payments: payments, notifier: notifier, now: time.Now, log: log}
}

// WithClock overrides the time source for created_at stamping.
func (s *Entries) WithClock(clock Clock) *Entries {
	s.now = clock
	return s
}

// LogHours records a new time entry for a TA.
func (s *Entries) LogHours(ctx context.Context, taID TAID, date time.Time, hours decimal.Decimal, notes string) (*TimeEntry, error) {
	if taID == "" {
		return nil, &ValidationError{Field: "ta_id", Reason: "TA is required"}
	}
	if date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "date is required"}
	}
	if !hours.IsPositive() {
		return nil, &ValidationError{Field: "hours", Reason: "hours must be greater than 0"}
	}

	ta, err := s.store.GetTA(ctx, taID)
	if err != nil {
		return nil, err
	}
	if ta == nil {
		return nil, ErrTANotFound
	}

	period := PeriodOf(date)

	// Hours arriving after a recorded payment flip the period back to
	// unpaid before the insert, so the admin sees "needs re-payment"
	// instead of a silently under-counted payout.
	if err := s.payments.revertIfPaid(ctx, taID, period); err != nil {
		return nil, err
	}

	entry := TimeEntry{
		ID:        EntryID(uuid.New().String()),
		TAID:      taID,
		Date:      date.UTC(),
		Hours:     hours,
		Notes:     notes,
		PayPeriod: period,
		Paid:      false,
		CreatedAt: s.now().UTC(),
		TAName:    ta.Name,
		TAEmail:   ta.Email,
	}
	if err := s.store.InsertEntry(ctx, entry); err != nil {
		return nil, err
	}

	// Fire-and-forget confirmation. The submission has already succeeded;
	// mail problems must not block or fail it.
	go func(n HoursNotification) {
		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.HoursLogged(nctx, n); err != nil {
			s.log.Warn("confirmation email failed",
				zap.String("ta_email", n.TAEmail),
				zap.Error(err),
			)
		}
	}(HoursNotification{
		TAName:  ta.Name,
		TAEmail: ta.Email,
		Date:    entry.Date,
		Hours:   hours,
		Notes:   notes,
	})

	return &entry, nil
}

// ListEntries returns all entries with TA details, newest first.
func (s *Entries) ListEntries(ctx context.Context) ([]TimeEntry, error) {
	return s.store.ListEntries(ctx)
}

// UpdateEntry edits hours and notes on an existing entry. The paid flag
// is not touchable here; only the payment state machine flips it.
func (s *Entries) UpdateEntry(ctx context.Context, id EntryID, hours decimal.Decimal, notes string) error {
	if id == "" {
		return &ValidationError{Field: "id", Reason: "entry id is required"}
	}
	if !hours.IsPositive() {
		return &ValidationError{Field: "hours", Reason: "hours must be greater than 0"}
	}
	return s.store.UpdateEntry(ctx, id, hours, notes)
}

// DeleteEntry removes an entry.
func (s *Entries) DeleteEntry(ctx context.Context, id EntryID) error {
	if id == "" {
		return &ValidationError{Field: "id", Reason: "entry id is required"}
	}
	return s.store.DeleteEntry(ctx, id)
}
