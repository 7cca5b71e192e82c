/*
payment.go - Paid/unpaid transitions across ledger and entries

PURPOSE:
  The payment state machine for a (ta, pay period) key:

    Unpaid (no ledger row, or row with paid=false)
      --MarkPaid-->   Paid (row with paid=true, paid_date=now)
      <--MarkUnpaid-- (explicit undo: paid=false, paid_date cleared)

  Plus the implicit transition: inserting new hours into an already-paid
  period flips the row and its sibling entries back to unpaid while
  PRESERVING paid_date, so the reconciler's stale-payment warning fires.

TWO-WRITE SEQUENCE:
  Each transition touches the ledger row and then the entries. The two
  writes are independent; there is no cross-table transaction and no
  compensation on partial failure. Any write error aborts the operation
  and is surfaced to the caller. Retrying is safe in effect: every write
  sets absolute state rather than applying deltas.

SNAPSHOT TOTALS:
  MarkPaid stores the totals the CALLER computed, not a server-side
  recompute. The ledger row records what the admin actually paid against;
  if hours land later, that divergence is exactly what the warning
  surfaces.
*/
package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Payments performs paid/unpaid transitions.
type Payments struct {
	store Store
	now   Clock
	log   *zap.Logger
}

func NewPayments(store Store, log *zap.Logger) *Payments {
	return &Payments{store: store, now: time.Now, log: log}
}

// WithClock overrides the time source. Tests use this to control paid_date.
func (p *Payments) WithClock(clock Clock) *Payments {
	p.now = clock
	return p
}

// MarkPaid records a payment for (taID, period) with the caller's
// snapshot totals, then marks every entry in the period paid.
// Calling it again re-records with a fresh paid_date; the date is
// deliberately not idempotent.
func (p *Payments) MarkPaid(ctx context.Context, taID TAID, period PayPeriod, totalHours, totalPay decimal.Decimal) error {
	if taID == "" || period == "" {
		return ErrEmptyPeriodKey
	}

	paidAt := p.now().UTC()
	row := LedgerRow{
		TAID:       taID,
		PayPeriod:  period,
		TotalHours: totalHours,
		HourlyRate: HourlyRate,
		TotalPay:   totalPay,
		Paid:       true,
		PaidDate:   &paidAt,
	}
	if err := p.store.UpsertLedgerRow(ctx, row); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	if err := p.store.SetEntriesPaid(ctx, taID, period, true); err != nil {
		return fmt.Errorf("failed to mark entries paid: %w", err)
	}

	p.log.Info("marked paid",
		zap.String("ta_id", string(taID)),
		zap.String("pay_period", string(period)),
		zap.String("total_hours", totalHours.String()),
		zap.String("total_pay", totalPay.String()),
	)
	return nil
}

// MarkUnpaid undoes a payment: the ledger row (if present) loses its paid
// flag and paid_date, and every entry in the period goes back to unpaid.
// The row's recorded totals are kept as history.
func (p *Payments) MarkUnpaid(ctx context.Context, taID TAID, period PayPeriod) error {
	if taID == "" || period == "" {
		return ErrEmptyPeriodKey
	}

	if err := p.store.ClearLedgerPayment(ctx, taID, period); err != nil {
		return fmt.Errorf("failed to clear payment: %w", err)
	}

	if err := p.store.SetEntriesPaid(ctx, taID, period, false); err != nil {
		return fmt.Errorf("failed to mark entries unpaid: %w", err)
	}

	p.log.Info("marked unpaid",
		zap.String("ta_id", string(taID)),
		zap.String("pay_period", string(period)),
	)
	return nil
}

// revertIfPaid is the implicit transition run before inserting new hours.
// If the period was already paid, the ledger row and sibling entries flip
// back to unpaid, keeping paid_date so the reconciler can still detect
// hours that arrived after the payment.
func (p *Payments) revertIfPaid(ctx context.Context, taID TAID, period PayPeriod) error {
	row, err := p.store.GetLedgerRow(ctx, taID, period)
	if err != nil {
		return fmt.Errorf("failed to check payment state: %w", err)
	}
	if row == nil || !row.Paid {
		return nil
	}

	if err := p.store.SetLedgerPaidFlag(ctx, taID, period, false); err != nil {
		return fmt.Errorf("failed to revert payment flag: %w", err)
	}
	if err := p.store.SetEntriesPaid(ctx, taID, period, false); err != nil {
		return fmt.Errorf("failed to revert entry flags: %w", err)
	}

	p.log.Info("payment reverted by new hours",
		zap.String("ta_id", string(taID)),
		zap.String("pay_period", string(period)),
	)
	return nil
}
