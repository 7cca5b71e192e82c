/*
reconciler.go - Per-period payroll summary computation

PURPOSE:
  The Reconciler joins time entries against payroll ledger rows for one
  pay period and produces a per-TA summary: total hours, total pay, and
  payment status including the "new hours after payment" warning.

PAYMENT STATUS RULES:
  Ledger row exists for (ta, period):
    paid      = row.Paid
    paid_date = row.PaidDate
    If paid_date is set, the warning fires when ANY entry in the group
    was created strictly after paid_date - even if the row has since
    been flipped back to unpaid. Hours logged after a recorded payment
    always warrant an admin re-check.
  No ledger row:
    paid = true only if EVERY entry in the group is paid; warning false.

STALENESS IS THE POINT:
  The ledger row snapshots the totals the admin paid against. The
  reconciler never writes the row back; drift between the row and the
  summed entries is reported, not repaired.

SEE ALSO:
  - payment.go: The writes that the reconciler's reads reflect
*/
package payroll

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Reconciler computes per-TA payroll summaries. Read-only.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// ComputeSummary returns one Summary per TA with entries in the period.
// An empty period yields an empty slice. Summaries are ordered by TA name
// for stable display; callers may re-sort.
func (r *Reconciler) ComputeSummary(ctx context.Context, period PayPeriod) ([]Summary, error) {
	entries, err := r.store.EntriesForPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for %s: %w", period, err)
	}

	ledgerRows, err := r.store.LedgerRowsForPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger rows for %s: %w", period, err)
	}

	rowsByTA := make(map[TAID]LedgerRow, len(ledgerRows))
	for _, row := range ledgerRows {
		rowsByTA[row.TAID] = row
	}

	// Group entries by TA, accumulating hours as we go.
	grouped := make(map[TAID]*Summary)
	for _, e := range entries {
		s, ok := grouped[e.TAID]
		if !ok {
			s = &Summary{
				TAID:       e.TAID,
				TAName:     e.TAName,
				TAEmail:    e.TAEmail,
				PayPeriod:  period,
				TotalHours: decimal.Zero,
				HourlyRate: HourlyRate,
			}
			grouped[e.TAID] = s
		}
		s.TotalHours = s.TotalHours.Add(e.Hours)
		s.Entries = append(s.Entries, e)
	}

	summaries := make([]Summary, 0, len(grouped))
	for _, s := range grouped {
		s.TotalPay = s.TotalHours.Mul(s.HourlyRate)

		if row, ok := rowsByTA[s.TAID]; ok {
			s.Paid = row.Paid
			s.PaidDate = row.PaidDate

			if row.PaidDate != nil {
				for _, e := range s.Entries {
					if e.CreatedAt.After(*row.PaidDate) {
						s.HasNewHoursAfterPayment = true
						break
					}
				}
			}
		} else {
			s.Paid = allPaid(s.Entries)
		}

		summaries = append(summaries, *s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TAName != summaries[j].TAName {
			return summaries[i].TAName < summaries[j].TAName
		}
		return summaries[i].TAID < summaries[j].TAID
	})

	return summaries, nil
}

func allPaid(entries []TimeEntry) bool {
	for _, e := range entries {
		if !e.Paid {
			return false
		}
	}
	return len(entries) > 0
}
