/*
Package export renders a resolved timesheet as an .xlsx workbook.

PURPOSE:
  Produces the spreadsheet the cleaner hands to clients at month end.
  One sheet per workbook: a day-by-day grid with one column per company,
  per-company totals, the extra-hours section and the grand total.

LAYOUT:
  Row 1:  Cleaner: <name>
  Row 2:  Month: <April 2024>
  Row 4:  Date | Day | <company name> ...
  Rows:   one per calendar day, hours formatted 0.00
  Then:   TOTAL row, blank, Extra Hours section, GRAND TOTAL.

  Cell values for hours are written as exact decimal strings with a
  0.00 number format, so the workbook shows the same two-decimal values
  as the API.
*/
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/warp/timesheet-engine/timesheet"
)

const sheetName = "Timesheet"

// Filename derives the download name, e.g. "timesheet_maria_2024_04.xlsx".
func Filename(d *timesheet.Detail) string {
	name := sanitize(d.Timesheet.CleanerName)
	if name != "" {
		name = "_" + name
	}
	return fmt.Sprintf("timesheet%s_%d_%02d.xlsx",
		name, d.Timesheet.Year, int(d.Timesheet.Month))
}

// Write renders the workbook and streams it to w.
func Write(d *timesheet.Detail, w io.Writer) error {
	f, err := Render(d)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// Render builds the workbook in memory.
func Render(d *timesheet.Detail) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	hours, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr("0.00")})
	if err != nil {
		return nil, err
	}
	hoursBold, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: strPtr("0.00"),
	})
	if err != nil {
		return nil, err
	}

	// Title block
	setCell(f, 1, 1, "Cleaner:", bold)
	setCell(f, 2, 1, d.Timesheet.CleanerName, 0)
	setCell(f, 1, 2, "Month:", bold)
	setCell(f, 2, 2, fmt.Sprintf("%s %d", d.Timesheet.Month, d.Timesheet.Year), 0)

	// Header row
	const headerRow = 4
	setCell(f, 1, headerRow, "Date", bold)
	setCell(f, 2, headerRow, "Day", bold)
	for i, company := range d.Companies {
		setCell(f, 3+i, headerRow, company.Name, bold)
	}

	// Day grid
	row := headerRow
	for _, day := range d.Days {
		row++
		setCell(f, 1, row, day.Day, 0)
		setCell(f, 2, row, day.Weekday.String(), 0)
		for i, h := range day.Hours {
			setHours(f, 3+i, row, h.StringFixed(2), hours)
		}
	}

	// Per-company totals
	row++
	setCell(f, 1, row, "TOTAL", bold)
	for i, total := range d.CompanyTotals {
		setHours(f, 3+i, row, total.Round(2).StringFixed(2), hoursBold)
	}

	// Extra hours section
	if len(d.ExtraHours) > 0 {
		row += 2
		setCell(f, 1, row, "Extra Hours", bold)
		for _, extra := range d.ExtraHours {
			row++
			if extra.Date != nil {
				setCell(f, 1, row, extra.Date.String(), 0)
			}
			setCell(f, 2, row, extra.Description, 0)
			setHours(f, 3, row, extra.Hours.StringFixed(2), hours)
		}
		row++
		setCell(f, 1, row, "Extra Total", bold)
		setHours(f, 3, row, d.ExtraTotal.Round(2).StringFixed(2), hoursBold)
	}

	// Grand total
	row += 2
	start, _ := excelize.CoordinatesToCellName(1, row)
	end, _ := excelize.CoordinatesToCellName(2, row)
	f.MergeCell(sheetName, start, end)
	setCell(f, 1, row, "GRAND TOTAL", bold)
	setHours(f, 3, row, d.GrandTotal.StringFixed(2), hoursBold)

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 10)
	if n := len(d.Companies); n > 0 {
		last, _ := excelize.ColumnNumberToName(2 + n)
		f.SetColWidth(sheetName, "C", last, 15)
	}

	return f, nil
}

func setCell(f *excelize.File, col, row int, value any, style int) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	f.SetCellValue(sheetName, cell, value)
	if style != 0 {
		f.SetCellStyle(sheetName, cell, cell, style)
	}
}

// setHours writes a decimal string as a spreadsheet number without going
// through a binary float in this code; excelize stores the literal.
func setHours(f *excelize.File, col, row int, value string, style int) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	f.SetCellDefault(sheetName, cell, value)
	f.SetCellStyle(sheetName, cell, cell, style)
}

func strPtr(s string) *string { return &s }

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case r == ' ', r == '-', r == '_':
			out = append(out, '_')
		}
	}
	return string(out)
}
