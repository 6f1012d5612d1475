/*
ingest.go - Lenient parsing of extra-hours batch rows

PURPOSE:
  Extra hours arrive as loose free-form rows (batch entry in the UI or a
  seed file). In deliberate contrast to the strict pattern validation,
  malformed rows are skipped silently: a row with non-numeric hours must
  not sink its valid siblings. This asymmetry is part of the contract -
  structured pattern data is strict, ad-hoc rows are best-effort.

SKIP RULES (per row):
  - hours missing, unparseable, more than 2 decimals, or not positive
  - date present but unparseable (an EMPTY date is fine; the record's
    date is optional)
*/
package timesheet

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/schedule"
)

// ExtraRow is one raw batch row, all fields as entered.
type ExtraRow struct {
	Date        string `json:"date"`
	CompanyID   string `json:"company_id"`
	Hours       string `json:"hours"`
	Description string `json:"description"`
}

// ParseExtraRows converts raw rows into ExtraHours records, dropping the
// malformed ones. It never returns an error: best-effort by design.
func ParseExtraRows(timesheetID string, rows []ExtraRow) []ExtraHours {
	var out []ExtraHours
	for _, row := range rows {
		extra, ok := parseExtraRow(timesheetID, row)
		if !ok {
			continue
		}
		out = append(out, extra)
	}
	return out
}

func parseExtraRow(timesheetID string, row ExtraRow) (ExtraHours, bool) {
	hours, err := decimal.NewFromString(row.Hours)
	if err != nil || !hours.IsPositive() || !hours.Equal(hours.Truncate(2)) {
		return ExtraHours{}, false
	}

	var date *schedule.Date
	if row.Date != "" {
		d, err := schedule.ParseDate(row.Date)
		if err != nil {
			return ExtraHours{}, false
		}
		date = &d
	}

	return ExtraHours{
		ID:          uuid.NewString(),
		TimesheetID: timesheetID,
		CompanyID:   row.CompanyID,
		Date:        date,
		Hours:       hours,
		Description: row.Description,
	}, true
}
