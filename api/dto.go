/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND HOURS:
  Domain code uses decimal.Decimal; the wire format uses JSON numbers
  (float64) for frontend compatibility. Conversion happens only here,
  at the edge.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/pirouette/payroll-engine/payroll"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// LoginRequest is the admin login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// TADTO represents a roster member in API responses.
type TADTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateTARequest is the request to add a TA.
type CreateTARequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EntryDTO represents a logged hours entry.
type EntryDTO struct {
	ID        string  `json:"id"`
	TAID      string  `json:"ta_id"`
	TAName    string  `json:"ta_name,omitempty"`
	TAEmail   string  `json:"ta_email,omitempty"`
	Date      string  `json:"date"`
	Hours     float64 `json:"hours"`
	Notes     string  `json:"notes,omitempty"`
	PayPeriod string  `json:"pay_period"`
	Paid      bool    `json:"paid"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// LogHoursRequest is the request to submit hours.
type LogHoursRequest struct {
	TAID  string  `json:"ta_id"`
	Date  string  `json:"date"` // YYYY-MM-DD
	Hours float64 `json:"hours"`
	Notes string  `json:"notes,omitempty"`
}

// UpdateHoursRequest is the admin edit of an entry.
type UpdateHoursRequest struct {
	Hours float64 `json:"hours"`
	Notes string  `json:"notes,omitempty"`
}

// SummaryDTO represents one TA's payroll for a period.
type SummaryDTO struct {
	TAID                    string     `json:"ta_id"`
	TAName                  string     `json:"ta_name"`
	TAEmail                 string     `json:"ta_email"`
	PayPeriod               string     `json:"pay_period"`
	TotalHours              float64    `json:"total_hours"`
	HourlyRate              float64    `json:"hourly_rate"`
	TotalPay                float64    `json:"total_pay"`
	Paid                    bool       `json:"paid"`
	PaidDate                string     `json:"paid_date,omitempty"`
	HasNewHoursAfterPayment bool       `json:"has_new_hours_after_payment"`
	Entries                 []EntryDTO `json:"entries"`
}

// PayrollResponse wraps the per-period payroll view.
type PayrollResponse struct {
	Payroll     []SummaryDTO `json:"payroll"`
	PayPeriod   string       `json:"pay_period"`
	TotalAmount float64      `json:"total_amount"`
}

// MarkPaidRequest records a payment with the caller's snapshot totals.
type MarkPaidRequest struct {
	TAID       string  `json:"ta_id"`
	PayPeriod  string  `json:"pay_period"`
	TotalHours float64 `json:"total_hours"`
	TotalPay   float64 `json:"total_pay"`
}

// MarkUnpaidRequest undoes a payment.
type MarkUnpaidRequest struct {
	TAID      string `json:"ta_id"`
	PayPeriod string `json:"pay_period"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEntryDTO(e payroll.TimeEntry) EntryDTO {
	hours, _ := e.Hours.Float64()
	return EntryDTO{
		ID:        string(e.ID),
		TAID:      string(e.TAID),
		TAName:    e.TAName,
		TAEmail:   e.TAEmail,
		Date:      e.Date.Format("2006-01-02"),
		Hours:     hours,
		Notes:     e.Notes,
		PayPeriod: string(e.PayPeriod),
		Paid:      e.Paid,
		CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toEntryDTOs(entries []payroll.TimeEntry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

func toSummaryDTO(s payroll.Summary) SummaryDTO {
	totalHours, _ := s.TotalHours.Float64()
	rate, _ := s.HourlyRate.Float64()
	totalPay, _ := s.TotalPay.Float64()

	dto := SummaryDTO{
		TAID:                    string(s.TAID),
		TAName:                  s.TAName,
		TAEmail:                 s.TAEmail,
		PayPeriod:               string(s.PayPeriod),
		TotalHours:              totalHours,
		HourlyRate:              rate,
		TotalPay:                totalPay,
		Paid:                    s.Paid,
		HasNewHoursAfterPayment: s.HasNewHoursAfterPayment,
		Entries:                 toEntryDTOs(s.Entries),
	}
	if s.PaidDate != nil {
		dto.PaidDate = s.PaidDate.Format(time.RFC3339Nano)
	}
	return dto
}

func toTADTO(ta payroll.TA) TADTO {
	return TADTO{
		ID:        string(ta.ID),
		Name:      ta.Name,
		Email:     ta.Email,
		Active:    ta.Active,
		CreatedAt: ta.CreatedAt.Format(time.RFC3339Nano),
	}
}
