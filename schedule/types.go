/*
Package schedule is the core schedule-resolution engine.

PURPOSE:
  Given a company's recurring hour pattern and a calendar date, compute the
  hours scheduled for that day, then aggregate per-day values into monthly
  and timesheet totals. The engine is purely functional: every operation
  takes immutable plain values and returns a value, with no shared state
  and no I/O.

KEY CONCEPTS IN THIS FILE (types.go):
  - WeekTable: seven decimal hour slots, Monday through Sunday
  - Pattern: the recurring schedule, either Weekly or BiWeekly
  - WeeklyPattern: one WeekTable, same every week
  - BiWeeklyPattern: two WeekTables alternating on a 14-day cycle,
    phased by an anchor date (the first day of Week A)

DESIGN PRINCIPLES:
  1. Precision: hour values are decimal.Decimal, never binary floats
  2. Tagged variants: each pattern kind carries only the fields it needs
  3. Purity: resolution never mutates inputs or touches storage

SEE ALSO:
  - resolver.go: per-day resolution
  - aggregate.go: monthly and timesheet totals
  - validate.go: write-time pattern validation
*/
package schedule

import "github.com/shopspring/decimal"

// =============================================================================
// WEEK TABLE - Hours per weekday
// =============================================================================

// WeekTable holds the scheduled hours for each weekday, Monday = index 0.
type WeekTable [7]decimal.Decimal

// At returns the hours for the given weekday.
func (t WeekTable) At(w Weekday) decimal.Decimal { return t[w] }

// Total returns the sum of all seven slots.
func (t WeekTable) Total() decimal.Decimal {
	total := decimal.Zero
	for _, h := range t {
		total = total.Add(h)
	}
	return total
}

// NewWeekTable builds a table from seven values in Monday..Sunday order.
func NewWeekTable(mon, tue, wed, thu, fri, sat, sun decimal.Decimal) WeekTable {
	return WeekTable{mon, tue, wed, thu, fri, sat, sun}
}

// =============================================================================
// PATTERN - Recurring schedule variants
// =============================================================================

type PatternKind string

const (
	KindWeekly   PatternKind = "weekly"
	KindBiWeekly PatternKind = "biweekly"
)

// Pattern is a company's recurring schedule. It is a closed set: the only
// implementations are WeeklyPattern and BiWeeklyPattern.
type Pattern interface {
	Kind() PatternKind

	// sealed prevents implementations outside this package, keeping the
	// resolver's variant switch exhaustive.
	sealed()
}

// WeeklyPattern repeats the same seven hour slots every week.
type WeeklyPattern struct {
	Hours WeekTable
}

func (WeeklyPattern) Kind() PatternKind { return KindWeekly }
func (WeeklyPattern) sealed()           {}

// BiWeeklyPattern alternates two weekly tables on a strict 14-day cycle.
// Anchor is the first date belonging to Week A and is required: a biweekly
// pattern without an anchor cannot be resolved.
type BiWeeklyPattern struct {
	WeekA  WeekTable
	WeekB  WeekTable
	Anchor Date
}

func (BiWeeklyPattern) Kind() PatternKind { return KindBiWeekly }
func (BiWeeklyPattern) sealed()           {}
