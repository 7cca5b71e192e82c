// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/pirouette/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	entries map[payroll.EntryID]payroll.TimeEntry
	ledger  map[ledgerKey]payroll.LedgerRow
	tas     map[payroll.TAID]payroll.TA
}

type ledgerKey struct {
	TAID   payroll.TAID
	Period payroll.PayPeriod
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[payroll.EntryID]payroll.TimeEntry),
		ledger:  make(map[ledgerKey]payroll.LedgerRow),
		tas:     make(map[payroll.TAID]payroll.TA),
	}
}

// =============================================================================
// ENTRY STORE
// =============================================================================

func (m *Memory) InsertEntry(_ context.Context, e payroll.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *Memory) GetEntry(_ context.Context, id payroll.EntryID) (*payroll.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	e = m.joined(e)
	return &e, nil
}

func (m *Memory) ListEntries(_ context.Context) ([]payroll.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []payroll.TimeEntry
	for _, e := range m.entries {
		result = append(result, m.joined(e))
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *Memory) EntriesForPeriod(_ context.Context, period payroll.PayPeriod) ([]payroll.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []payroll.TimeEntry
	for _, e := range m.entries {
		if e.PayPeriod == period {
			result = append(result, m.joined(e))
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (m *Memory) HasEntries(_ context.Context, taID payroll.TAID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.TAID == taID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UpdateEntry(_ context.Context, id payroll.EntryID, hours decimal.Decimal, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return payroll.ErrEntryNotFound
	}
	e.Hours = hours
	e.Notes = notes
	m.entries[id] = e
	return nil
}

func (m *Memory) DeleteEntry(_ context.Context, id payroll.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return payroll.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *Memory) SetEntriesPaid(_ context.Context, taID payroll.TAID, period payroll.PayPeriod, paid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.TAID == taID && e.PayPeriod == period {
			e.Paid = paid
			m.entries[id] = e
		}
	}
	return nil
}

// =============================================================================
// LEDGER STORE
// =============================================================================

func (m *Memory) GetLedgerRow(_ context.Context, taID payroll.TAID, period payroll.PayPeriod) (*payroll.LedgerRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.ledger[ledgerKey{taID, period}]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *Memory) LedgerRowsForPeriod(_ context.Context, period payroll.PayPeriod) ([]payroll.LedgerRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []payroll.LedgerRow
	for k, row := range m.ledger {
		if k.Period == period {
			result = append(result, row)
		}
	}
	return result, nil
}

func (m *Memory) UpsertLedgerRow(_ context.Context, row payroll.LedgerRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := ledgerKey{row.TAID, row.PayPeriod}
	if existing, ok := m.ledger[k]; ok {
		row.CreatedAt = existing.CreatedAt
	}
	m.ledger[k] = row
	return nil
}

func (m *Memory) SetLedgerPaidFlag(_ context.Context, taID payroll.TAID, period payroll.PayPeriod, paid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := ledgerKey{taID, period}
	row, ok := m.ledger[k]
	if !ok {
		return nil
	}
	row.Paid = paid // paid_date untouched
	m.ledger[k] = row
	return nil
}

func (m *Memory) ClearLedgerPayment(_ context.Context, taID payroll.TAID, period payroll.PayPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := ledgerKey{taID, period}
	row, ok := m.ledger[k]
	if !ok {
		return nil
	}
	row.Paid = false
	row.PaidDate = nil
	m.ledger[k] = row
	return nil
}

// =============================================================================
// ROSTER STORE
// =============================================================================

func (m *Memory) ListTAs(_ context.Context, activeOnly bool) ([]payroll.TA, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []payroll.TA
	for _, ta := range m.tas {
		if activeOnly && !ta.Active {
			continue
		}
		result = append(result, ta)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) GetTA(_ context.Context, id payroll.TAID) (*payroll.TA, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ta, ok := m.tas[id]
	if !ok {
		return nil, nil
	}
	return &ta, nil
}

func (m *Memory) GetTAByEmail(_ context.Context, email string) (*payroll.TA, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ta := range m.tas {
		if ta.Email == email {
			return &ta, nil
		}
	}
	return nil, nil
}

func (m *Memory) InsertTA(_ context.Context, ta payroll.TA) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tas[ta.ID] = ta
	return nil
}

func (m *Memory) DeactivateTA(_ context.Context, id payroll.TAID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ta, ok := m.tas[id]
	if !ok {
		return payroll.ErrTANotFound
	}
	ta.Active = false
	m.tas[id] = ta
	return nil
}

func (m *Memory) DeleteTA(_ context.Context, id payroll.TAID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tas[id]; !ok {
		return payroll.ErrTANotFound
	}
	delete(m.tas, id)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// joined fills the TA name/email the SQL store gets via a JOIN.
func (m *Memory) joined(e payroll.TimeEntry) payroll.TimeEntry {
	if ta, ok := m.tas[e.TAID]; ok {
		e.TAName = ta.Name
		e.TAEmail = ta.Email
	}
	return e
}

func sortNewestFirst(entries []payroll.TimeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
}
