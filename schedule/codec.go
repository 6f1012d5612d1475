/*
codec.go - JSON codec for patterns

PURPOSE:
  Serializes patterns for persistence and the API. Hour values travel as
  decimal strings ("7.25"), never JSON floats, so a stored pattern reads
  back with exactly the decimals it was written with.

WIRE SHAPE:
  Weekly:   {"type":"weekly","hours":["8.00",...7 values...]}
  BiWeekly: {"type":"biweekly","week_a":[...],"week_b":[...],
             "anchor":"2024-01-01"}
*/
package schedule

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type patternJSON struct {
	Type   PatternKind `json:"type"`
	Hours  []string    `json:"hours,omitempty"`
	WeekA  []string    `json:"week_a,omitempty"`
	WeekB  []string    `json:"week_b,omitempty"`
	Anchor string      `json:"anchor,omitempty"`
}

// EncodePattern renders a pattern as JSON with decimal-string hours.
func EncodePattern(p Pattern) ([]byte, error) {
	switch pattern := p.(type) {
	case WeeklyPattern:
		return json.Marshal(patternJSON{
			Type:  KindWeekly,
			Hours: tableToStrings(pattern.Hours),
		})
	case BiWeeklyPattern:
		return json.Marshal(patternJSON{
			Type:   KindBiWeekly,
			WeekA:  tableToStrings(pattern.WeekA),
			WeekB:  tableToStrings(pattern.WeekB),
			Anchor: pattern.Anchor.String(),
		})
	default:
		return nil, fmt.Errorf("unknown pattern kind %q", p.Kind())
	}
}

// DecodePattern parses the JSON produced by EncodePattern. A weekly
// payload that carries an anchor is accepted and the anchor ignored.
func DecodePattern(data []byte) (Pattern, error) {
	var raw patternJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed pattern: %w", err)
	}

	switch raw.Type {
	case KindWeekly:
		hours, err := stringsToTable("hours", raw.Hours)
		if err != nil {
			return nil, err
		}
		return WeeklyPattern{Hours: hours}, nil

	case KindBiWeekly:
		weekA, err := stringsToTable("week_a", raw.WeekA)
		if err != nil {
			return nil, err
		}
		weekB, err := stringsToTable("week_b", raw.WeekB)
		if err != nil {
			return nil, err
		}
		var anchor Date
		if raw.Anchor != "" {
			anchor, err = ParseDate(raw.Anchor)
			if err != nil {
				return nil, &ValidationError{Field: "anchor_date", Message: "not a valid date (use YYYY-MM-DD)"}
			}
		}
		return BiWeeklyPattern{WeekA: weekA, WeekB: weekB, Anchor: anchor}, nil

	default:
		return nil, &ValidationError{Field: "pattern_type", Message: fmt.Sprintf("must be %q or %q", KindWeekly, KindBiWeekly)}
	}
}

func tableToStrings(t WeekTable) []string {
	out := make([]string, len(t))
	for i, h := range t {
		out[i] = h.StringFixed(2)
	}
	return out
}

func stringsToTable(field string, values []string) (WeekTable, error) {
	var table WeekTable
	if len(values) != len(table) {
		return table, &ValidationError{Field: field, Message: "exactly 7 values required (Monday..Sunday)"}
	}
	for i, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return table, &ValidationError{Field: field, Message: fmt.Sprintf("%q is not a decimal", v)}
		}
		table[i] = d
	}
	return table, nil
}
