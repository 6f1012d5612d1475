/*
resolver.go - Per-day schedule resolution

PURPOSE:
  ResolveDay answers the single question at the heart of the engine: how
  many hours does this pattern schedule on this date?

RESOLUTION RULES:
  Weekly:   look up the table slot for the date's weekday. Nothing else.
  BiWeekly: days since the anchor date decide the week:
              daysDiff < 0          -> Week A (dates before the anchor
                                       default to Week A by policy)
              floor(daysDiff/7) even -> Week A
              floor(daysDiff/7) odd  -> Week B
            then look up that week's slot for the date's weekday.
            The cycle repeats every 14 days exactly.

A biweekly pattern with a zero anchor cannot be resolved; that is an
invariant violation from the write path and returns a ConfigurationError.
*/
package schedule

import "github.com/shopspring/decimal"

// ResolveDay returns the scheduled hours for a single calendar date.
// The result is always a non-negative decimal with at most two fractional
// digits, as enforced on the pattern at write time.
func ResolveDay(p Pattern, date Date) (decimal.Decimal, error) {
	switch pattern := p.(type) {
	case WeeklyPattern:
		return pattern.Hours.At(date.Weekday()), nil

	case BiWeeklyPattern:
		if pattern.Anchor.IsZero() {
			return decimal.Zero, &ConfigurationError{
				Reason: "cannot resolve biweekly pattern without anchor date",
				err:    ErrMissingAnchor,
			}
		}
		return resolveBiWeekly(pattern, date), nil

	default:
		// Unreachable: Pattern is sealed.
		return decimal.Zero, &ConfigurationError{Reason: "unknown pattern kind"}
	}
}

func resolveBiWeekly(p BiWeeklyPattern, date Date) decimal.Decimal {
	week := p.WeekA
	if daysDiff := DaysBetween(p.Anchor, date); daysDiff >= 0 {
		weekIndex := daysDiff / 7
		if weekIndex%2 == 1 {
			week = p.WeekB
		}
	}
	return week.At(date.Weekday())
}
