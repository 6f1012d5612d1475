package schedule

import "time"

// =============================================================================
// DATE - Naive calendar date (no time zone semantics)
// =============================================================================

// Date is a plain calendar date. The engine never deals in clock times or
// zones; internally the date is pinned to midnight UTC so comparisons and
// day arithmetic stay exact.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// Weekday returns the day of week with Monday = 0 .. Sunday = 6.
// This matches the ordering of WeekTable slots.
func (d Date) Weekday() Weekday {
	return Weekday((int(d.t.Weekday()) + 6) % 7)
}

func (d Date) String() string { return d.t.Format("2006-01-02") }

// DaysBetween returns the signed number of whole days from `from` to `to`.
// Negative when `to` is before `from`.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// DaysInMonth returns the number of calendar days in the given month,
// leap-year aware for February.
func DaysInMonth(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// =============================================================================
// WEEKDAY - Monday-first day index
// =============================================================================

type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// String returns the three-letter abbreviation (Mon..Sun).
func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "???"
	}
	return weekdayNames[w]
}
