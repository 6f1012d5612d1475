/*
validate.go - Write-time validation for company patterns

PURPOSE:
  Enforces the pattern invariants before a company record may be
  persisted. Validation is strict: out-of-range values are rejected with
  a field-level ValidationError, never silently rounded or defaulted.

RULES:
  - Company name: required, unique case-insensitively across active AND
    inactive companies. Uniqueness is checked through an injected lookup
    so the logic stays testable without a live store.
  - Hour values: non-negative and representable with at most two
    fractional digits.
  - BiWeekly: anchor date required. Weekly: anchor (if supplied by the
    caller) is simply not part of the variant and is dropped upstream.
*/
package schedule

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NameLookup reports whether a company name is already taken. The match
// must be case-insensitive. Implementations typically close over a store.
type NameLookup func(ctx context.Context, name string) (bool, error)

// ValidateName checks the company name against the uniqueness rule.
func ValidateName(ctx context.Context, name string, taken NameLookup) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	exists, err := taken(ctx, name)
	if err != nil {
		return fmt.Errorf("name lookup failed: %w", err)
	}
	if exists {
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("%q is already in use", name),
			err:     ErrDuplicateName,
		}
	}
	return nil
}

// ValidatePattern checks every hour slot and, for biweekly patterns, the
// anchor date.
func ValidatePattern(p Pattern) error {
	switch pattern := p.(type) {
	case WeeklyPattern:
		return validateTable("hours", pattern.Hours)

	case BiWeeklyPattern:
		if pattern.Anchor.IsZero() {
			return &ValidationError{
				Field:   "anchor_date",
				Message: "required for biweekly patterns",
				err:     ErrMissingAnchor,
			}
		}
		if err := validateTable("week_a", pattern.WeekA); err != nil {
			return err
		}
		return validateTable("week_b", pattern.WeekB)

	default:
		return &ValidationError{Field: "pattern_type", Message: "unknown pattern kind"}
	}
}

func validateTable(field string, table WeekTable) error {
	for w := Monday; w <= Sunday; w++ {
		if err := validateHours(fmt.Sprintf("%s.%s", field, strings.ToLower(w.String())), table.At(w)); err != nil {
			return err
		}
	}
	return nil
}

func validateHours(field string, hours decimal.Decimal) error {
	if hours.IsNegative() {
		return &ValidationError{Field: field, Message: "must not be negative"}
	}
	// Garbage in is rejected, not rounded: 3.333 is an error, not 3.33.
	if !hours.Equal(hours.Truncate(2)) {
		return &ValidationError{Field: field, Message: "at most 2 decimal places"}
	}
	return nil
}
