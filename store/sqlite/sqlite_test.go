package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pirouette/payroll-engine/payroll"
)

// newTestStore opens a store on a throwaway file. A file beats :memory:
// here because the sql.DB pool may open more than one connection, and
// each :memory: connection would see its own empty database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "payroll.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedTA(t *testing.T, s *Store, id payroll.TAID, name, email string) {
	t.Helper()
	require.NoError(t, s.InsertTA(context.Background(), payroll.TA{
		ID: id, Name: name, Email: email, Active: true,
		CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func seedEntry(t *testing.T, s *Store, id payroll.EntryID, taID payroll.TAID, date string, hours float64, createdAt time.Time) {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	require.NoError(t, s.InsertEntry(context.Background(), payroll.TimeEntry{
		ID: id, TAID: taID, Date: d,
		Hours:     decimal.NewFromFloat(hours),
		PayPeriod: payroll.PeriodOf(d),
		CreatedAt: createdAt,
	}))
}

// =============================================================================
// TIME ENTRIES
// =============================================================================

func TestEntryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTA(t, s, "ta-a", "Ana", "ana@studio.test")

	created := time.Date(2024, time.March, 15, 10, 30, 0, 123456000, time.UTC)
	require.NoError(t, s.InsertEntry(ctx, payroll.TimeEntry{
		ID: "e1", TAID: "ta-a",
		Date:      time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Hours:     decimal.NewFromFloat(2.25),
		Notes:     "rehearsal",
		PayPeriod: "2024-03",
		CreatedAt: created,
	}))

	got, err := s.GetEntry(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, payroll.TAID("ta-a"), got.TAID)
	assert.True(t, got.Hours.Equal(decimal.NewFromFloat(2.25)), "decimal survives the TEXT column exactly")
	assert.Equal(t, "rehearsal", got.Notes)
	assert.Equal(t, payroll.PayPeriod("2024-03"), got.PayPeriod)
	assert.False(t, got.Paid)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.Equal(t, "Ana", got.TAName, "entry reads join TA details")
	assert.Equal(t, "ana@studio.test", got.TAEmail)

	missing, err := s.GetEntry(ctx, "no-such")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEntryOrderingAndPeriodFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTA(t, s, "ta-a", "Ana", "ana@studio.test")

	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	seedEntry(t, s, "e-old", "ta-a", "2024-03-01", 1, base)
	seedEntry(t, s, "e-new", "ta-a", "2024-03-02", 1, base.Add(time.Minute))
	seedEntry(t, s, "e-april", "ta-a", "2024-04-01", 1, base.Add(2*time.Minute))

	all, err := s.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, payroll.EntryID("e-april"), all[0].ID, "newest first")

	march, err := s.EntriesForPeriod(ctx, "2024-03")
	require.NoError(t, err)
	require.Len(t, march, 2)
	assert.Equal(t, payroll.EntryID("e-new"), march[0].ID)
	assert.Equal(t, payroll.EntryID("e-old"), march[1].ID)
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTA(t, s, "ta-a", "Ana", "ana@studio.test")
	seedEntry(t, s, "e1", "ta-a", "2024-03-01", 1, time.Now().UTC())

	require.NoError(t, s.UpdateEntry(ctx, "e1", decimal.NewFromFloat(3.5), "fixed"))
	got, err := s.GetEntry(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, got.Hours.Equal(decimal.NewFromFloat(3.5)))
	assert.Equal(t, "fixed", got.Notes)

	assert.ErrorIs(t, s.UpdateEntry(ctx, "ghost", decimal.NewFromInt(1), ""), payroll.ErrEntryNotFound)

	require.NoError(t, s.DeleteEntry(ctx, "e1"))
	assert.ErrorIs(t, s.DeleteEntry(ctx, "e1"), payroll.ErrEntryNotFound)
}

func TestSetEntriesPaid_ScopedToKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTA(t, s, "ta-a", "Ana", "ana@studio.test")
	seedTA(t, s, "ta-b", "Ben", "ben@studio.test")

	now := time.Now().UTC()
	seedEntry(t, s, "e-a-mar", "ta-a", "2024-03-01", 1, now)
	seedEntry(t, s, "e-a-apr", "ta-a", "2024-04-01", 1, now)
	seedEntry(t, s, "e-b-mar", "ta-b", "2024-03-01", 1, now)

	require.NoError(t, s.SetEntriesPaid(ctx, "ta-a", "2024-03", true))

	paid := map[payroll.EntryID]bool{}
	all, err := s.ListEntries(ctx)
	require.NoError(t, err)
	for _, e := range all {
		paid[e.ID] = e.Paid
	}
	assert.True(t, paid["e-a-mar"])
	assert.False(t, paid["e-a-apr"], "other period untouched")
	assert.False(t, paid["e-b-mar"], "other ta untouched")
}

func TestHasEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTA(t, s, "ta-a", "Ana", "ana@studio.test")

	has, err := s.HasEntries(ctx, "ta-a")
	require.NoError(t, err)
	assert.False(t, has)

	seedEntry(t, s, "e1", "ta-a", "2024-03-01", 1, time.Now().UTC())
	has, err = s.HasEntries(ctx, "ta-a")
	require.NoError(t, err)
	assert.True(t, has)
}

// =============================================================================
// PAYROLL LEDGER
// =============================================================================

func TestLedgerUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTA(t, s, "ta-a", "Ana", "ana@studio.test")

	paidAt := time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)
	row := payroll.LedgerRow{
		TAID: "ta-a", PayPeriod: "2024-01",
		TotalHours: decimal.NewFromInt(5),
		HourlyRate: payroll.HourlyRate,
		TotalPay:   decimal.NewFromInt(40),
		Paid:       true,
		PaidDate:   &paidAt,
	}
	require.NoError(t, s.UpsertLedgerRow(ctx, row))

	got, err := s.GetLedgerRow(ctx, "ta-a", "2024-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Paid)
	require.NotNil(t, got.PaidDate)
	assert.True(t, got.PaidDate.Equal(paidAt))
	assert.True(t, got.TotalPay.Equal(decimal.NewFromInt(40)))
	firstCreated := got.CreatedAt

	// Upsert with new totals: created_at survives, the rest is replaced.
	later := paidAt.Add(time.Hour)
	row.TotalHours = decimal.NewFromInt(6)
	row.TotalPay = decimal.NewFromInt(48)
	row.PaidDate = &later
	require.NoError(t, s.UpsertLedgerRow(ctx, row))

	got, err = s.GetLedgerRow(ctx, "ta-a", "2024-01")
	require.NoError(t, err)
	assert.True(t, got.TotalHours.Equal(decimal.NewFromInt(6)))
	assert.True(t, got.PaidDate.Equal(later))
	assert.True(t, got.CreatedAt.Equal(firstCreated))

	missing, err := s.GetLedgerRow(ctx, "ta-a", "2030-01")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSetLedgerPaidFlag_PreservesPaidDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTA(t, s, "ta-a", "Ana", "ana@studio.test")

	paidAt := time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertLedgerRow(ctx, payroll.LedgerRow{
		TAID: "ta-a", PayPeriod: "2024-01",
		TotalHours: decimal.NewFromInt(5),
		HourlyRate: payroll.HourlyRate,
		TotalPay:   decimal.NewFromInt(40),
		Paid:       true, PaidDate: &paidAt,
	}))

	require.NoError(t, s.SetLedgerPaidFlag(ctx, "ta-a", "2024-01", false))
	got, err := s.GetLedgerRow(ctx, "ta-a", "2024-01")
	require.NoError(t, err)
	assert.False(t, got.Paid)
	require.NotNil(t, got.PaidDate, "paid_date must survive the flag flip")
	assert.True(t, got.PaidDate.Equal(paidAt))

	require.NoError(t, s.ClearLedgerPayment(ctx, "ta-a", "2024-01"))
	got, err = s.GetLedgerRow(ctx, "ta-a", "2024-01")
	require.NoError(t, err)
	assert.False(t, got.Paid)
	assert.Nil(t, got.PaidDate, "explicit clear drops paid_date")
}

func TestLedgerRowsForPeriod(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTA(t, s, "ta-a", "Ana", "ana@studio.test")
	seedTA(t, s, "ta-b", "Ben", "ben@studio.test")

	for _, ta := range []payroll.TAID{"ta-a", "ta-b"} {
		require.NoError(t, s.UpsertLedgerRow(ctx, payroll.LedgerRow{
			TAID: ta, PayPeriod: "2024-01",
			TotalHours: decimal.NewFromInt(1),
			HourlyRate: payroll.HourlyRate,
			TotalPay:   decimal.NewFromInt(8),
		}))
	}
	require.NoError(t, s.UpsertLedgerRow(ctx, payroll.LedgerRow{
		TAID: "ta-a", PayPeriod: "2024-02",
		TotalHours: decimal.NewFromInt(1),
		HourlyRate: payroll.HourlyRate,
		TotalPay:   decimal.NewFromInt(8),
	}))

	rows, err := s.LedgerRowsForPeriod(ctx, "2024-01")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

// =============================================================================
// TA ROSTER
// =============================================================================

func TestTARoster(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedTA(t, s, "ta-b", "Ben", "ben@studio.test")
	seedTA(t, s, "ta-a", "Ana", "ana@studio.test")

	tas, err := s.ListTAs(ctx, true)
	require.NoError(t, err)
	require.Len(t, tas, 2)
	assert.Equal(t, "Ana", tas[0].Name, "ordered by name")

	ta, err := s.GetTAByEmail(ctx, "ben@studio.test")
	require.NoError(t, err)
	require.NotNil(t, ta)
	assert.Equal(t, payroll.TAID("ta-b"), ta.ID)

	none, err := s.GetTAByEmail(ctx, "nobody@studio.test")
	require.NoError(t, err)
	assert.Nil(t, none)

	// Unique email at the schema level.
	err = s.InsertTA(ctx, payroll.TA{
		ID: "ta-dup", Name: "Dup", Email: "ana@studio.test",
		Active: true, CreatedAt: time.Now().UTC(),
	})
	assert.Error(t, err)

	require.NoError(t, s.DeactivateTA(ctx, "ta-b"))
	active, err := s.ListTAs(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	all, err := s.ListTAs(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteTA(ctx, "ta-b"))
	assert.ErrorIs(t, s.DeleteTA(ctx, "ta-b"), payroll.ErrTANotFound)
	assert.ErrorIs(t, s.DeactivateTA(ctx, "ta-b"), payroll.ErrTANotFound)
}
