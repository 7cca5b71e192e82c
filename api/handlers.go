/*
handlers.go - HTTP API handlers for the studio payroll system

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/login         Admin login, returns bearer token

  Hours:
    POST   /api/hours              Submit hours (public; TAs self-report)
    GET    /api/hours              List all entries (admin)
    PUT    /api/hours/{id}         Edit hours/notes on an entry (admin)
    DELETE /api/hours/{id}         Delete an entry (admin)

  Payroll:
    GET    /api/payroll?period=    Per-TA summaries for a period (admin)
    POST   /api/payroll/paid       Mark a TA paid for a period (admin)
    POST   /api/payroll/unpaid     Undo a payment (admin)

  TAs:
    GET    /api/tas                Active roster (public; feeds the form)
    POST   /api/tas                Add a TA (admin)
    DELETE /api/tas/{id}           Delete or deactivate a TA (admin)

ERROR HANDLING:
  Domain errors map onto HTTP statuses:
  - 400: validation failures, malformed bodies
  - 401: handled by auth middleware before handlers run
  - 404: missing TA / entry
  - 409: duplicate TA email
  - 500: store failures; the response carries a generic message and the
    detail goes to the log only

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pirouette/payroll-engine/auth"
	"github.com/pirouette/payroll-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Auth       *auth.Manager
	Reconciler *payroll.Reconciler
	Payments   *payroll.Payments
	Entries    *payroll.Entries
	Roster     *payroll.Roster

	log *zap.Logger
	now func() time.Time
}

// NewHandler creates a handler over the domain services.
func NewHandler(authMgr *auth.Manager, store payroll.Store, notifier payroll.Notifier, log *zap.Logger) *Handler {
	payments := payroll.NewPayments(store, log)
	return &Handler{
		Auth:       authMgr,
		Reconciler: payroll.NewReconciler(store),
		Payments:   payments,
		Entries:    payroll.NewEntries(store, payments, notifier, log),
		Roster:     payroll.NewRoster(store, log),
		log:        log,
		now:        time.Now,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login verifies admin credentials and issues a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Success: true, Token: token, Message: "Login successful"})
}

// =============================================================================
// HOURS HANDLERS
// =============================================================================

// LogHours records a new time entry for a TA.
func (h *Handler) LogHours(w http.ResponseWriter, r *http.Request) {
	var req LogHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TAID == "" || req.Date == "" || req.Hours == 0 {
		writeError(w, http.StatusBadRequest, "TA, date, and hours are required")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)")
		return
	}

	entry, err := h.Entries.LogHours(r.Context(), payroll.TAID(req.TAID), date, decimal.NewFromFloat(req.Hours), req.Notes)
	if err != nil {
		h.writeDomainError(w, err, "Failed to log hours")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Hours logged successfully",
		"id":      string(entry.ID),
	})
}

// ListHours returns all entries with TA details, newest first.
func (h *Handler) ListHours(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Entries.ListEntries(r.Context())
	if err != nil {
		h.writeDomainError(w, err, "Failed to fetch hours")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"hours": toEntryDTOs(entries)})
}

// UpdateHours edits hours and notes on an existing entry.
func (h *Handler) UpdateHours(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.Entries.UpdateEntry(r.Context(), payroll.EntryID(id), decimal.NewFromFloat(req.Hours), req.Notes)
	if err != nil {
		h.writeDomainError(w, err, "Failed to update hours")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Hours updated successfully"})
}

// DeleteHours removes an entry.
func (h *Handler) DeleteHours(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Entries.DeleteEntry(r.Context(), payroll.EntryID(id)); err != nil {
		h.writeDomainError(w, err, "Failed to delete hours")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Hours deleted successfully"})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// GetPayroll returns per-TA summaries for a pay period.
// Defaults to the current month when ?period= is absent.
func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	var period payroll.PayPeriod
	if raw := r.URL.Query().Get("period"); raw != "" {
		var err error
		if period, err = payroll.ParsePeriod(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		period = payroll.CurrentPeriod(h.now())
	}

	summaries, err := h.Reconciler.ComputeSummary(r.Context(), period)
	if err != nil {
		h.writeDomainError(w, err, "Failed to fetch payroll data")
		return
	}

	dtos := make([]SummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toSummaryDTO(s)
	}
	totalAmount, _ := payroll.TotalAmount(summaries).Float64()

	writeJSON(w, http.StatusOK, PayrollResponse{
		Payroll:     dtos,
		PayPeriod:   string(period),
		TotalAmount: totalAmount,
	})
}

// MarkPaid records a payment for (ta, period) with the caller's totals.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	var req MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TAID == "" || req.PayPeriod == "" {
		writeError(w, http.StatusBadRequest, "TA ID and pay period are required")
		return
	}

	err := h.Payments.MarkPaid(r.Context(),
		payroll.TAID(req.TAID),
		payroll.PayPeriod(req.PayPeriod),
		decimal.NewFromFloat(req.TotalHours),
		decimal.NewFromFloat(req.TotalPay),
	)
	if err != nil {
		h.writeDomainError(w, err, "Failed to mark TA as paid")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "TA marked as paid successfully"})
}

// MarkUnpaid undoes a payment for (ta, period).
func (h *Handler) MarkUnpaid(w http.ResponseWriter, r *http.Request) {
	var req MarkUnpaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TAID == "" || req.PayPeriod == "" {
		writeError(w, http.StatusBadRequest, "TA ID and pay period are required")
		return
	}

	err := h.Payments.MarkUnpaid(r.Context(), payroll.TAID(req.TAID), payroll.PayPeriod(req.PayPeriod))
	if err != nil {
		h.writeDomainError(w, err, "Failed to update payment status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Payment status updated successfully"})
}

// =============================================================================
// TA HANDLERS
// =============================================================================

// ListTAs returns the active roster ordered by name.
func (h *Handler) ListTAs(w http.ResponseWriter, r *http.Request) {
	tas, err := h.Roster.ListTAs(r.Context())
	if err != nil {
		h.writeDomainError(w, err, "Failed to fetch TAs")
		return
	}

	dtos := make([]TADTO, len(tas))
	for i, ta := range tas {
		dtos[i] = toTADTO(ta)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tas": dtos})
}

// CreateTA adds a new TA to the roster.
func (h *Handler) CreateTA(w http.ResponseWriter, r *http.Request) {
	var req CreateTARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ta, err := h.Roster.AddTA(r.Context(), req.Name, req.Email)
	if err != nil {
		h.writeDomainError(w, err, "Failed to add TA")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "TA added successfully",
		"ta":      toTADTO(*ta),
	})
}

// DeleteTA removes a TA: hard delete when they have no entries, otherwise
// deactivate so historical hours keep resolving.
func (h *Handler) DeleteTA(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	outcome, err := h.Roster.RemoveTA(r.Context(), payroll.TAID(id))
	if err != nil {
		h.writeDomainError(w, err, "Failed to delete TA")
		return
	}

	switch outcome {
	case payroll.RemovalDeactivated:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"message":     "TA deactivated successfully (has existing hours)",
			"deactivated": true,
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "TA deleted successfully",
			"deleted": true,
		})
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeDomainError maps domain errors onto HTTP statuses. Store failures
// get a generic message; the detail is logged, not leaked.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, payroll.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(fallback, zap.Error(err))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
