/*
payroll_test.go - Shared fixtures for the payroll domain tests

Builds services over the in-memory store with a controllable clock so
tests can place created_at and paid_date precisely around each other.
*/
package payroll_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pirouette/payroll-engine/payroll"
	memstore "github.com/pirouette/payroll-engine/payroll/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// fakeClock hands out strictly increasing timestamps.
type fakeClock struct {
	t time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store      *memstore.Memory
	reconciler *payroll.Reconciler
	payments   *payroll.Payments
	entries    *payroll.Entries
	roster     *payroll.Roster
	clock      *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.NewMemory()
	clock := newFakeClock(time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	payments := payroll.NewPayments(store, log).WithClock(clock.Now)
	return &fixture{
		store:      store,
		reconciler: payroll.NewReconciler(store),
		payments:   payments,
		entries:    payroll.NewEntries(store, payments, nil, log).WithClock(clock.Now),
		roster:     payroll.NewRoster(store, log),
		clock:      clock,
	}
}

func (f *fixture) addTA(t *testing.T, id payroll.TAID, name, email string) {
	t.Helper()
	require.NoError(t, f.store.InsertTA(context.Background(), payroll.TA{
		ID: id, Name: name, Email: email, Active: true, CreatedAt: f.clock.Now(),
	}))
}

func (f *fixture) logHours(t *testing.T, taID payroll.TAID, date string, hours float64) *payroll.TimeEntry {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	entry, err := f.entries.LogHours(context.Background(), taID, d, decimal.NewFromFloat(hours), "")
	require.NoError(t, err)
	return entry
}

func (f *fixture) summaryFor(t *testing.T, period payroll.PayPeriod, taID payroll.TAID) payroll.Summary {
	t.Helper()
	summaries, err := f.reconciler.ComputeSummary(context.Background(), period)
	require.NoError(t, err)
	for _, s := range summaries {
		if s.TAID == taID {
			return s
		}
	}
	t.Fatalf("no summary for %s in %s", taID, period)
	return payroll.Summary{}
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }
