package payroll

import (
	"fmt"
	"time"
)

// =============================================================================
// PAY PERIOD - Calendar-month key grouping entries for payroll
// =============================================================================

// PayPeriod is a calendar month key in YYYY-MM form. It is always derived
// deterministically from an entry's date; PeriodOf is the single place
// that derivation happens.
type PayPeriod string

const periodLayout = "2006-01"

// PeriodOf derives the pay-period key from a calendar date.
func PeriodOf(date time.Time) PayPeriod {
	return PayPeriod(date.UTC().Format(periodLayout))
}

// CurrentPeriod returns the pay period containing now.
func CurrentPeriod(now time.Time) PayPeriod {
	return PeriodOf(now)
}

// ParsePeriod validates a client-supplied period key.
func ParsePeriod(s string) (PayPeriod, error) {
	if s == "" {
		return "", ErrEmptyPeriodKey
	}
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return "", &ValidationError{Field: "pay_period", Reason: fmt.Sprintf("invalid pay period %q (use YYYY-MM)", s)}
	}
	return PeriodOf(t), nil
}

func (p PayPeriod) String() string { return string(p) }

// Bounds returns the first and last instant of the period's month, UTC.
func (p PayPeriod) Bounds() (time.Time, time.Time, error) {
	start, err := time.Parse(periodLayout, string(p))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end, nil
}
