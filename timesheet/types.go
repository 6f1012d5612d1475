/*
Package timesheet holds the domain records and the service operating on
them: companies with recurring hour patterns, monthly timesheets for
cleaners, derived entries and ad-hoc extra hours.

Entries never store hours. Every hour value is derived from the owning
company's pattern at read time, so editing a pattern retroactively changes
the computed totals of old timesheets. That recompute-on-read behaviour is
an invariant of the system, not an accident: there is no snapshot of hours
at entry-creation time anywhere in this package or the stores behind it.
*/
package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/schedule"
)

// =============================================================================
// RECORDS
// =============================================================================

// Company is a client with a recurring schedule of expected hours.
type Company struct {
	ID        string
	Name      string
	Pattern   schedule.Pattern
	Active    bool // inactive companies are hidden from new-timesheet selection
	CreatedAt time.Time
}

// Timesheet is one cleaner's month. It owns its entries and extra-hours
// rows: deleting a timesheet cascades to both.
type Timesheet struct {
	ID          string
	CleanerName string
	Month       time.Month
	Year        int
	CreatedAt   time.Time
}

// Entry links a timesheet to a company. It carries no hours of its own;
// all values derive from the company pattern and the timesheet's month.
type Entry struct {
	ID          string
	TimesheetID string
	CompanyID   string
}

// ExtraHours is a manually entered amount outside any pattern (one-off
// deep cleans and the like). Company and date are optional.
type ExtraHours struct {
	ID          string
	TimesheetID string
	CompanyID   string // empty = not tied to a company
	Date        *schedule.Date
	Hours       decimal.Decimal
	Description string
}

// =============================================================================
// RESOLVED VIEWS
// =============================================================================

// DayRow is one calendar day of a resolved timesheet, with the hours for
// each entry in entry order.
type DayRow struct {
	Day     int
	Weekday schedule.Weekday
	Hours   []decimal.Decimal
}

// Detail is a fully resolved timesheet: the point-in-time computation the
// presentation layer renders. Companies appear in entry order and index
// CompanyTotals and each DayRow.Hours.
type Detail struct {
	Timesheet     Timesheet
	Companies     []Company
	Days          []DayRow
	CompanyTotals []decimal.Decimal
	ExtraHours    []ExtraHours
	ExtraTotal    decimal.Decimal
	GrandTotal    decimal.Decimal
}
