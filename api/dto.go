/*
dto.go - Request and response data structures

PURPOSE:
  Defines the JSON shapes exchanged with clients and the conversion
  helpers from domain records. Keeps serialization concerns out of the
  handlers.

DECIMAL SERIALIZATION:
  Hour values cross the wire as fixed two-decimal strings ("8.00",
  "74.50"), never as JSON numbers. Clients render them verbatim and no
  binary float ever touches an amount.

SEE ALSO:
  - handlers.go: Handler implementations using these DTOs
  - schedule/codec.go: Pattern JSON encoding shared with storage
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/schedule"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// REQUESTS
// =============================================================================

// CompanyRequest creates or updates a company. Pattern uses the same JSON
// shape the store persists, so clients and storage never diverge.
type CompanyRequest struct {
	Name    string          `json:"name"`
	Pattern json.RawMessage `json:"pattern"`
	Active  *bool           `json:"active,omitempty"` // update only; nil keeps current
}

// PreviewRequest resolves a pattern against a month without saving anything.
type PreviewRequest struct {
	Pattern json.RawMessage `json:"pattern"`
	Month   int             `json:"month"`
	Year    int             `json:"year"`
}

// TimesheetRequest creates a timesheet for one cleaner and month.
type TimesheetRequest struct {
	CleanerName string               `json:"cleaner_name"`
	Month       int                  `json:"month"`
	Year        int                  `json:"year"`
	CompanyIDs  []string             `json:"company_ids"`
	ExtraRows   []timesheet.ExtraRow `json:"extra_rows,omitempty"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type CompanyDTO struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Pattern   json.RawMessage `json:"pattern"`
	Active    bool            `json:"active"`
	CreatedAt string          `json:"created_at"`
}

type TimesheetDTO struct {
	ID          string `json:"id"`
	CleanerName string `json:"cleaner_name"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	CreatedAt   string `json:"created_at"`
}

type DayRowDTO struct {
	Day     int      `json:"day"`
	Weekday string   `json:"weekday"`
	Hours   []string `json:"hours"`
}

type ExtraHoursDTO struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id,omitempty"`
	Date        string `json:"date,omitempty"`
	Hours       string `json:"hours"`
	Description string `json:"description,omitempty"`
}

// DetailDTO is a fully resolved timesheet. Companies appear in entry
// order and index company_totals and each day's hours column.
type DetailDTO struct {
	Timesheet     TimesheetDTO    `json:"timesheet"`
	Companies     []CompanyDTO    `json:"companies"`
	Days          []DayRowDTO     `json:"days"`
	CompanyTotals []string        `json:"company_totals"`
	ExtraHours    []ExtraHoursDTO `json:"extra_hours"`
	ExtraTotal    string          `json:"extra_total"`
	GrandTotal    string          `json:"grand_total"`
}

// PreviewDTO is the saved-nothing counterpart of DetailDTO for a single
// pattern.
type PreviewDTO struct {
	Month int         `json:"month"`
	Year  int         `json:"year"`
	Days  []DayRowDTO `json:"days"`
	Total string      `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toCompanyDTO(c timesheet.Company) (CompanyDTO, error) {
	pattern, err := schedule.EncodePattern(c.Pattern)
	if err != nil {
		return CompanyDTO{}, err
	}
	return CompanyDTO{
		ID:        c.ID,
		Name:      c.Name,
		Pattern:   pattern,
		Active:    c.Active,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}, nil
}

func toTimesheetDTO(ts timesheet.Timesheet) TimesheetDTO {
	return TimesheetDTO{
		ID:          ts.ID,
		CleanerName: ts.CleanerName,
		Month:       int(ts.Month),
		Year:        ts.Year,
		CreatedAt:   ts.CreatedAt.Format(time.RFC3339),
	}
}

func toDetailDTO(d *timesheet.Detail) (DetailDTO, error) {
	dto := DetailDTO{
		Timesheet:     toTimesheetDTO(d.Timesheet),
		Companies:     make([]CompanyDTO, len(d.Companies)),
		Days:          make([]DayRowDTO, len(d.Days)),
		CompanyTotals: hourStrings(d.CompanyTotals),
		ExtraHours:    make([]ExtraHoursDTO, len(d.ExtraHours)),
		ExtraTotal:    d.ExtraTotal.StringFixed(2),
		GrandTotal:    d.GrandTotal.StringFixed(2),
	}

	for i, c := range d.Companies {
		companyDTO, err := toCompanyDTO(c)
		if err != nil {
			return DetailDTO{}, err
		}
		dto.Companies[i] = companyDTO
	}

	for i, day := range d.Days {
		dto.Days[i] = DayRowDTO{
			Day:     day.Day,
			Weekday: day.Weekday.String(),
			Hours:   hourStrings(day.Hours),
		}
	}

	for i, extra := range d.ExtraHours {
		e := ExtraHoursDTO{
			ID:          extra.ID,
			CompanyID:   extra.CompanyID,
			Hours:       extra.Hours.StringFixed(2),
			Description: extra.Description,
		}
		if extra.Date != nil {
			e.Date = extra.Date.String()
		}
		dto.ExtraHours[i] = e
	}

	return dto, nil
}

func hourStrings(values []decimal.Decimal) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.StringFixed(2)
	}
	return out
}
