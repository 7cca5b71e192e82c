package payroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pirouette/payroll-engine/payroll"
)

// =============================================================================
// PAID / UNPAID TRANSITIONS
// =============================================================================

func TestMarkPaid_RecordsSnapshotAndFlipsEntries(t *testing.T) {
	// GIVEN: Alice has 5 unpaid hours in 2024-01
	// WHEN: MarkPaid stores the admin's snapshot (5h / $40)
	// THEN: Ledger row paid with paid_date set, both entries paid

	f := newFixture(t)
	f.addTA(t, "ta-alice", "Alice", "alice@studio.test")
	f.logHours(t, "ta-alice", "2024-01-05", 2)
	f.logHours(t, "ta-alice", "2024-01-20", 3)

	ctx := context.Background()
	require.NoError(t, f.payments.MarkPaid(ctx, "ta-alice", "2024-01", dec(5), dec(40)))

	row, err := f.store.GetLedgerRow(ctx, "ta-alice", "2024-01")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.True(t, row.Paid)
	require.NotNil(t, row.PaidDate)
	assert.True(t, row.TotalHours.Equal(dec(5)))
	assert.True(t, row.TotalPay.Equal(dec(40)))
	assert.True(t, row.HourlyRate.Equal(payroll.HourlyRate))

	entries, err := f.store.EntriesForPeriod(ctx, "2024-01")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, e.Paid, "entry %s must be paid", e.ID)
	}
}

func TestMarkPaid_RepaymentAdvancesPaidDate(t *testing.T) {
	// Paying twice is allowed; the row ends in the same paid state with
	// paid_date moved to the later call.

	f := newFixture(t)
	f.addTA(t, "ta-a", "Ana", "ana@studio.test")
	f.logHours(t, "ta-a", "2024-01-03", 2)

	ctx := context.Background()
	require.NoError(t, f.payments.MarkPaid(ctx, "ta-a", "2024-01", dec(2), dec(16)))

	first, err := f.store.GetLedgerRow(ctx, "ta-a", "2024-01")
	require.NoError(t, err)
	require.NotNil(t, first.PaidDate)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.payments.MarkPaid(ctx, "ta-a", "2024-01", dec(2), dec(16)))

	second, err := f.store.GetLedgerRow(ctx, "ta-a", "2024-01")
	require.NoError(t, err)
	require.NotNil(t, second.PaidDate)
	assert.True(t, second.Paid)
	assert.True(t, second.PaidDate.After(*first.PaidDate), "paid_date must advance")
	assert.True(t, second.TotalHours.Equal(first.TotalHours))
}

func TestMarkUnpaid_ClearsPaymentButKeepsTotals(t *testing.T) {
	// GIVEN: A paid period
	// WHEN: MarkUnpaid
	// THEN: paid=false, paid_date=nil, snapshot totals kept, entries unpaid

	f := newFixture(t)
	f.addTA(t, "ta-a", "Ana", "ana@studio.test")
	f.logHours(t, "ta-a", "2024-01-03", 2)

	ctx := context.Background()
	require.NoError(t, f.payments.MarkPaid(ctx, "ta-a", "2024-01", dec(2), dec(16)))
	require.NoError(t, f.payments.MarkUnpaid(ctx, "ta-a", "2024-01"))

	row, err := f.store.GetLedgerRow(ctx, "ta-a", "2024-01")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.False(t, row.Paid)
	assert.Nil(t, row.PaidDate, "explicit undo clears paid_date")
	assert.True(t, row.TotalPay.Equal(dec(16)), "recorded totals are history, not state")

	entries, err := f.store.EntriesForPeriod(ctx, "2024-01")
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.Paid)
	}
}

func TestMarkUnpaid_NoLedgerRowIsANoop(t *testing.T) {
	f := newFixture(t)
	f.addTA(t, "ta-a", "Ana", "ana@studio.test")

	require.NoError(t, f.payments.MarkUnpaid(context.Background(), "ta-a", "2024-01"))

	row, err := f.store.GetLedgerRow(context.Background(), "ta-a", "2024-01")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestPayments_RejectEmptyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.payments.MarkPaid(ctx, "", "2024-01", dec(1), dec(8)), payroll.ErrEmptyPeriodKey)
	assert.ErrorIs(t, f.payments.MarkPaid(ctx, "ta-a", "", dec(1), dec(8)), payroll.ErrEmptyPeriodKey)
	assert.ErrorIs(t, f.payments.MarkUnpaid(ctx, "", "2024-01"), payroll.ErrEmptyPeriodKey)
	assert.ErrorIs(t, f.payments.MarkUnpaid(ctx, "ta-a", ""), payroll.ErrEmptyPeriodKey)
}

func TestRevertOnNewHours_PreservesPaidDate(t *testing.T) {
	// The implicit revert differs from MarkUnpaid in exactly one way:
	// paid_date survives, so the reconciler can compare created_at
	// against it and warn.

	f := newFixture(t)
	f.addTA(t, "ta-a", "Ana", "ana@studio.test")
	f.logHours(t, "ta-a", "2024-01-03", 2)

	ctx := context.Background()
	require.NoError(t, f.payments.MarkPaid(ctx, "ta-a", "2024-01", dec(2), dec(16)))

	paid, err := f.store.GetLedgerRow(ctx, "ta-a", "2024-01")
	require.NoError(t, err)
	require.NotNil(t, paid.PaidDate)
	paidAt := *paid.PaidDate

	f.clock.Advance(time.Hour)
	f.logHours(t, "ta-a", "2024-01-10", 1)

	row, err := f.store.GetLedgerRow(ctx, "ta-a", "2024-01")
	require.NoError(t, err)
	assert.False(t, row.Paid, "insert into a paid period reverts the flag")
	require.NotNil(t, row.PaidDate)
	assert.True(t, row.PaidDate.Equal(paidAt), "paid_date must not move on revert")

	entries, err := f.store.EntriesForPeriod(ctx, "2024-01")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.False(t, e.Paid, "sibling entries revert too")
	}
}

func TestRevertOnNewHours_UnpaidPeriodUntouched(t *testing.T) {
	// Inserting into a period that was never paid, or was explicitly
	// un-paid, must not create or modify a ledger row.

	f := newFixture(t)
	f.addTA(t, "ta-a", "Ana", "ana@studio.test")
	f.logHours(t, "ta-a", "2024-01-03", 2)

	row, err := f.store.GetLedgerRow(context.Background(), "ta-a", "2024-01")
	require.NoError(t, err)
	assert.Nil(t, row)
}
