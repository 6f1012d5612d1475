/*
handlers.go - HTTP API handlers for the timesheet engine

PURPOSE:
  Exposes the timesheet service via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Companies:
    GET    /api/companies                  List companies (?include_inactive=true)
    POST   /api/companies                  Create company
    GET    /api/companies/{id}             Get company
    PUT    /api/companies/{id}             Update company (pattern edits are retroactive)
    DELETE /api/companies/{id}             Delete company (blocked while referenced)
    GET    /api/companies/{id}/preview     Pattern tables only, for display
    POST   /api/companies/{id}/deactivate  Hide from new-timesheet selection
    POST   /api/companies/preview          Resolve a pattern for a month, saving nothing

  Timesheets:
    GET    /api/timesheets                 List timesheets
    POST   /api/timesheets                 Create timesheet
    GET    /api/timesheets/{id}            Resolved detail (hours computed now)
    DELETE /api/timesheets/{id}            Delete (cascades entries + extras)
    GET    /api/timesheets/{id}/export     Download as .xlsx

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate name, company still referenced)
  - 500: Configuration errors, internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - timesheet/service.go: Domain logic these handlers delegate to
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/timesheet-engine/export"
	"github.com/warp/timesheet-engine/schedule"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *timesheet.Service
}

// NewHandler creates a new handler backed by the given service.
func NewHandler(service *timesheet.Service) *Handler {
	return &Handler{Service: service}
}

// =============================================================================
// COMPANY HANDLERS
// =============================================================================

// ListCompanies returns companies, active only unless ?include_inactive=true.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	companies, err := h.Service.Companies(r.Context(), includeInactive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list companies", err)
		return
	}

	dtos := make([]CompanyDTO, 0, len(companies))
	for _, c := range companies {
		dto, err := toCompanyDTO(c)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to encode company", err)
			return
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCompany creates a company from name + pattern JSON.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	pattern, err := schedule.DecodePattern(req.Pattern)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	company, err := h.Service.CreateCompany(r.Context(), req.Name, pattern)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto, err := toCompanyDTO(*company)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode company", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// GetCompany returns a single company.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.Service.Company(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto, err := toCompanyDTO(*company)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode company", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// UpdateCompany replaces name, pattern and active flag. Pattern edits
// retroactively change the computed hours of every existing timesheet
// that references this company.
func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	current, err := h.Service.Company(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	pattern := current.Pattern
	if len(req.Pattern) > 0 {
		pattern, err = schedule.DecodePattern(req.Pattern)
		if err != nil {
			writeDomainError(w, err)
			return
		}
	}
	name := req.Name
	if name == "" {
		name = current.Name
	}
	active := current.Active
	if req.Active != nil {
		active = *req.Active
	}

	company, err := h.Service.UpdateCompany(r.Context(), id, name, pattern, active)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto, err := toCompanyDTO(*company)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode company", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeactivateCompany hides a company from new-timesheet selection without
// touching existing timesheets.
func (h *Handler) DeactivateCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.Service.DeactivateCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto, err := toCompanyDTO(*company)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode company", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeleteCompany removes a company. Blocked with 409 while any timesheet
// entry or extra-hours row references it; deactivate instead.
func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteCompany(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PreviewCompany returns the company's pattern tables alone, for display
// before a timesheet is created. A pure projection of stored state, no
// hour computation.
func (h *Handler) PreviewCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.Service.Company(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	pattern, err := schedule.EncodePattern(company.Pattern)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode pattern", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(pattern)
}

// PreviewPattern resolves a pattern against a month without persisting
// anything. Used by the company form to show expected hours before save.
func (h *Handler) PreviewPattern(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "Month must be 1-12", nil)
		return
	}
	if req.Year < 1 {
		writeError(w, http.StatusBadRequest, "Year is required", nil)
		return
	}

	pattern, err := schedule.DecodePattern(req.Pattern)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := schedule.ValidatePattern(pattern); err != nil {
		writeDomainError(w, err)
		return
	}

	dto := PreviewDTO{Month: req.Month, Year: req.Year}
	month := time.Month(req.Month)
	for day := 1; day <= schedule.DaysInMonth(req.Year, month); day++ {
		hours, err := schedule.DayHours(pattern, req.Year, month, day)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		dto.Days = append(dto.Days, DayRowDTO{
			Day:     day,
			Weekday: schedule.NewDate(req.Year, month, day).Weekday().String(),
			Hours:   []string{hours.StringFixed(2)},
		})
	}
	total, err := schedule.MonthTotal(pattern, req.Year, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dto.Total = total.Round(2).StringFixed(2)

	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// TIMESHEET HANDLERS
// =============================================================================

// ListTimesheets returns all timesheets, newest period first.
func (h *Handler) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.Service.Timesheets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list timesheets", err)
		return
	}

	dtos := make([]TimesheetDTO, len(sheets))
	for i, ts := range sheets {
		dtos[i] = toTimesheetDTO(ts)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTimesheet creates a timesheet with its entries and extra rows.
// Malformed extra rows are dropped silently; everything else validates
// strictly.
func (h *Handler) CreateTimesheet(w http.ResponseWriter, r *http.Request) {
	var req TimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ts, err := h.Service.CreateTimesheet(r.Context(), timesheet.CreateTimesheetInput{
		CleanerName: req.CleanerName,
		Month:       req.Month,
		Year:        req.Year,
		CompanyIDs:  req.CompanyIDs,
		ExtraRows:   req.ExtraRows,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTimesheetDTO(*ts))
}

// GetTimesheet returns the resolved detail. Hours are computed from the
// current company patterns at request time.
func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	timesheetResolutions.Inc()

	dto, err := toDetailDTO(detail)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode timesheet", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeleteTimesheet removes a timesheet and everything it owns.
func (h *Handler) DeleteTimesheet(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteTimesheet(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportTimesheet streams the resolved timesheet as an .xlsx download.
func (h *Handler) ExportTimesheet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	timesheetExports.Inc()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(detail)))
	// Headers are already sent; a write error here means the client went away.
	_ = export.Write(detail, w)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var validation *schedule.ValidationError
	var configuration *schedule.ConfigurationError

	switch {
	// Duplicate names arrive wrapped in a ValidationError from the service
	// and raw from the store's UNIQUE constraint; both are conflicts.
	case errors.Is(err, schedule.ErrDuplicateName):
		writeError(w, http.StatusConflict, "Name already in use", err)
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, schedule.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, timesheet.ErrCompanyReferenced):
		writeError(w, http.StatusConflict, "Company is referenced by timesheets", err)
	case errors.As(err, &configuration):
		writeError(w, http.StatusInternalServerError, "Company schedule is misconfigured", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
