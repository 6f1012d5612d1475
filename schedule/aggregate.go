/*
aggregate.go - Monthly and timesheet aggregation

PURPOSE:
  Sums per-day resolutions into per-entry monthly totals and combines
  entry totals with ad-hoc extra hours into a timesheet grand total.

ROUNDING POLICY:
  Source tables are constrained to two fractional digits, so per-day and
  per-month values carry at most two decimals already. The only rounding
  operation is a final half-up quantization of the grand total, applied
  once at the end of the summation, matching invoice conventions.
*/
package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthTotal sums ResolveDay over every calendar day of the given month,
// using the actual month length (28-31, leap-year aware).
func MonthTotal(p Pattern, year int, month time.Month) (decimal.Decimal, error) {
	total := decimal.Zero
	for day := 1; day <= DaysInMonth(year, month); day++ {
		hours, err := ResolveDay(p, NewDate(year, month, day))
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(hours)
	}
	return total, nil
}

// DayHours resolves a single day of the month. A day number outside the
// month (0, 31 in April, ...) yields zero rather than an error so sparse
// calendar rendering stays simple.
func DayHours(p Pattern, year int, month time.Month, day int) (decimal.Decimal, error) {
	if day < 1 || day > DaysInMonth(year, month) {
		return decimal.Zero, nil
	}
	return ResolveDay(p, NewDate(year, month, day))
}

// GrandTotal combines the monthly totals of every pattern with the extra
// hour amounts and quantizes the result half-up to two decimals. Pure
// summation: the result does not depend on ordering.
func GrandTotal(patterns []Pattern, year int, month time.Month, extras []decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range patterns {
		sub, err := MonthTotal(p, year, month)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(sub)
	}
	for _, extra := range extras {
		total = total.Add(extra)
	}
	return roundHalfUp(total), nil
}

// roundHalfUp quantizes to two fractional digits, ties away from zero.
// Hours are never negative, so away-from-zero and half-up coincide.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
