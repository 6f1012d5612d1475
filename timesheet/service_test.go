package timesheet_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/timesheet-engine/schedule"
	"github.com/warp/timesheet-engine/timesheet"
	"github.com/warp/timesheet-engine/timesheet/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService() *timesheet.Service {
	return timesheet.NewService(store.NewMemory())
}

func hrs(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// monTuePattern schedules Mon=8.00 and Tue=8.00; 80.00 in April 2024.
func monTuePattern() schedule.Pattern {
	var hours schedule.WeekTable
	hours[schedule.Monday] = hrs("8.00")
	hours[schedule.Tuesday] = hrs("8.00")
	return schedule.WeeklyPattern{Hours: hours}
}

func mustCompany(t *testing.T, svc *timesheet.Service, name string, p schedule.Pattern) *timesheet.Company {
	t.Helper()
	company, err := svc.CreateCompany(context.Background(), name, p)
	require.NoError(t, err)
	return company
}

// =============================================================================
// COMPANY WRITE PATH
// =============================================================================

func TestCreateCompany_DuplicateNameRejectedCaseInsensitive(t *testing.T) {
	// GIVEN: "ACME" exists (even after deactivation)
	// WHEN: Creating "Acme"
	// THEN: ValidationError wrapping ErrDuplicateName

	svc := newTestService()
	ctx := context.Background()

	first := mustCompany(t, svc, "ACME", monTuePattern())
	_, err := svc.DeactivateCompany(ctx, first.ID)
	require.NoError(t, err)

	_, err = svc.CreateCompany(ctx, "Acme", monTuePattern())
	assert.ErrorIs(t, err, schedule.ErrDuplicateName)
}

func TestCreateCompany_InvalidPatternRejected(t *testing.T) {
	svc := newTestService()

	var hours schedule.WeekTable
	hours[schedule.Friday] = hrs("2.555")
	_, err := svc.CreateCompany(context.Background(), "Sloppy Ltd", schedule.WeeklyPattern{Hours: hours})

	var ve *schedule.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateCompany_KeepingOwnNameIsNotACollision(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	company := mustCompany(t, svc, "Acme", monTuePattern())

	_, err := svc.UpdateCompany(ctx, company.ID, "ACME", monTuePattern(), true)
	assert.NoError(t, err, "renaming only by case must not collide with itself")
}

func TestDeleteCompany_BlockedWhileReferenced(t *testing.T) {
	// GIVEN: A company referenced by a timesheet entry
	// WHEN: Deleting it
	// THEN: Blocked; after the timesheet is gone, deletion succeeds

	svc := newTestService()
	ctx := context.Background()
	company := mustCompany(t, svc, "Acme", monTuePattern())

	ts, err := svc.CreateTimesheet(ctx, timesheet.CreateTimesheetInput{
		CleanerName: "Maria",
		Month:       4,
		Year:        2024,
		CompanyIDs:  []string{company.ID},
	})
	require.NoError(t, err)

	err = svc.DeleteCompany(ctx, company.ID)
	assert.ErrorIs(t, err, timesheet.ErrCompanyReferenced)

	require.NoError(t, svc.DeleteTimesheet(ctx, ts.ID))
	assert.NoError(t, svc.DeleteCompany(ctx, company.ID))
}

// =============================================================================
// TIMESHEET WRITE PATH
// =============================================================================

func TestCreateTimesheet_InactiveCompanyRejected(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	company := mustCompany(t, svc, "Dormant", monTuePattern())
	_, err := svc.DeactivateCompany(ctx, company.ID)
	require.NoError(t, err)

	_, err = svc.CreateTimesheet(ctx, timesheet.CreateTimesheetInput{
		CleanerName: "Maria",
		Month:       4,
		Year:        2024,
		CompanyIDs:  []string{company.ID},
	})
	assert.True(t, schedule.IsValidation(err), "inactive company should be rejected, got %v", err)
}

func TestCreateTimesheet_MalformedExtraRowSkippedSiblingKept(t *testing.T) {
	// GIVEN: A batch with hours="abc" next to a valid row
	// WHEN: Creating the timesheet
	// THEN: The bad row vanishes silently; the valid sibling is persisted

	svc := newTestService()
	ctx := context.Background()
	company := mustCompany(t, svc, "Acme", monTuePattern())

	ts, err := svc.CreateTimesheet(ctx, timesheet.CreateTimesheetInput{
		CleanerName: "Maria",
		Month:       4,
		Year:        2024,
		CompanyIDs:  []string{company.ID},
		ExtraRows: []timesheet.ExtraRow{
			{Date: "2024-04-20", Hours: "abc", Description: "broken"},
			{Date: "2024-04-21", Hours: "2.50", Description: "deep clean"},
		},
	})
	require.NoError(t, err)

	detail, err := svc.Resolve(ctx, ts.ID)
	require.NoError(t, err)
	require.Len(t, detail.ExtraHours, 1)
	assert.Equal(t, "deep clean", detail.ExtraHours[0].Description)
	assert.True(t, detail.ExtraTotal.Equal(hrs("2.50")))
}

func TestCreateTimesheet_DanglingExtraCompanyReferenceDropped(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	company := mustCompany(t, svc, "Acme", monTuePattern())

	ts, err := svc.CreateTimesheet(ctx, timesheet.CreateTimesheetInput{
		CleanerName: "Maria",
		Month:       4,
		Year:        2024,
		CompanyIDs:  []string{company.ID},
		ExtraRows: []timesheet.ExtraRow{
			{Hours: "1.00", CompanyID: "no-such-company", Description: "orphan"},
		},
	})
	require.NoError(t, err)

	detail, err := svc.Resolve(ctx, ts.ID)
	require.NoError(t, err)
	require.Len(t, detail.ExtraHours, 1)
	assert.Empty(t, detail.ExtraHours[0].CompanyID, "dangling reference should be cleared, row kept")
}

// =============================================================================
// RESOLUTION
// =============================================================================

func TestResolve_April2024Scenario(t *testing.T) {
	// GIVEN: Weekly Mon=8.00 Tue=8.00, April 2024 (5 Mondays, 5 Tuesdays),
	//        plus one 2.50 extra row
	// THEN: Company total 80.00, grand total 82.50, 30 day rows

	svc := newTestService()
	ctx := context.Background()
	company := mustCompany(t, svc, "Acme", monTuePattern())

	ts, err := svc.CreateTimesheet(ctx, timesheet.CreateTimesheetInput{
		CleanerName: "Maria",
		Month:       4,
		Year:        2024,
		CompanyIDs:  []string{company.ID},
		ExtraRows:   []timesheet.ExtraRow{{Date: "2024-04-20", Hours: "2.50"}},
	})
	require.NoError(t, err)

	detail, err := svc.Resolve(ctx, ts.ID)
	require.NoError(t, err)

	assert.Len(t, detail.Days, 30)
	require.Len(t, detail.CompanyTotals, 1)
	assert.True(t, detail.CompanyTotals[0].Equal(hrs("80.00")), "got %s", detail.CompanyTotals[0])
	assert.True(t, detail.GrandTotal.Equal(hrs("82.50")), "got %s", detail.GrandTotal)

	// April 1st 2024 is a Monday: first row carries 8.00.
	assert.Equal(t, schedule.Monday, detail.Days[0].Weekday)
	assert.True(t, detail.Days[0].Hours[0].Equal(hrs("8.00")))
	// April 3rd is a Wednesday: zero.
	assert.True(t, detail.Days[2].Hours[0].IsZero())
}

func TestResolve_PatternEditChangesHistoricalTotals(t *testing.T) {
	// Recompute-on-read: editing a company's pattern retroactively changes
	// the totals of timesheets that reference it. No snapshot exists.

	svc := newTestService()
	ctx := context.Background()
	company := mustCompany(t, svc, "Acme", monTuePattern())

	ts, err := svc.CreateTimesheet(ctx, timesheet.CreateTimesheetInput{
		CleanerName: "Maria",
		Month:       4,
		Year:        2024,
		CompanyIDs:  []string{company.ID},
	})
	require.NoError(t, err)

	before, err := svc.Resolve(ctx, ts.ID)
	require.NoError(t, err)
	require.True(t, before.GrandTotal.Equal(hrs("80.00")))

	// Mondays drop from 8.00 to 4.00: 4*5 + 8*5 = 60.00.
	var hours schedule.WeekTable
	hours[schedule.Monday] = hrs("4.00")
	hours[schedule.Tuesday] = hrs("8.00")
	_, err = svc.UpdateCompany(ctx, company.ID, "Acme", schedule.WeeklyPattern{Hours: hours}, true)
	require.NoError(t, err)

	after, err := svc.Resolve(ctx, ts.ID)
	require.NoError(t, err)
	assert.True(t, after.GrandTotal.Equal(hrs("60.00")), "got %s", after.GrandTotal)
}

func TestResolve_MissingTimesheetIsNotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.Resolve(context.Background(), "nope")
	assert.True(t, schedule.IsNotFound(err))
}

// =============================================================================
// SEED FIXTURES
// =============================================================================

func TestApplySeed_CreatesCompaniesAndTimesheets(t *testing.T) {
	seedYAML := `
companies:
  - name: Acme Offices
    pattern: weekly
    hours: ["8.00", "8.00", "0", "0", "0", "0", "0"]
  - name: Harbour Clinic
    pattern: biweekly
    week_a: ["4.00", "0", "0", "0", "0", "0", "0"]
    week_b: ["0", "6.00", "0", "0", "0", "0", "0"]
    anchor: 2024-01-01
  - name: Old Client
    pattern: weekly
    hours: ["0", "0", "0", "0", "0", "0", "0"]
    inactive: true
timesheets:
  - cleaner: Maria
    month: 4
    year: 2024
    companies: [Acme Offices]
    extras:
      - { date: 2024-04-20, hours: "2.50", description: deep clean }
      - { hours: "abc", description: dropped }
`
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	seed, err := timesheet.LoadSeed(path)
	require.NoError(t, err)

	svc := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.ApplySeed(ctx, seed))

	active, err := svc.Companies(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 2, "inactive company hidden from selection")

	all, err := svc.Companies(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sheets, err := svc.Timesheets(ctx)
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	detail, err := svc.Resolve(ctx, sheets[0].ID)
	require.NoError(t, err)
	assert.Len(t, detail.ExtraHours, 1, "malformed seeded extra row skipped")
	assert.True(t, detail.GrandTotal.Equal(hrs("82.50")), "got %s", detail.GrandTotal)
}

func TestApplySeed_UnknownTimesheetCompanyFails(t *testing.T) {
	seed := &timesheet.SeedFile{
		Timesheets: []timesheet.SeedTimesheet{
			{Cleaner: "Maria", Month: 4, Year: 2024, Companies: []string{"Ghost"}},
		},
	}
	err := newTestService().ApplySeed(context.Background(), seed)
	require.Error(t, err)
	assert.False(t, errors.Is(err, schedule.ErrNotFound), "seed mapping errors are explicit, not store not-found")
}

// Deleting a timesheet takes its entries and extras with it.
func TestDeleteTimesheet_Cascades(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	company := mustCompany(t, svc, "Acme", monTuePattern())

	ts, err := svc.CreateTimesheet(ctx, timesheet.CreateTimesheetInput{
		CleanerName: "Maria",
		Month:       1,
		Year:        2025,
		CompanyIDs:  []string{company.ID},
		ExtraRows:   []timesheet.ExtraRow{{Hours: "1.00"}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTimesheet(ctx, ts.ID))

	_, err = svc.Timesheet(ctx, ts.ID)
	assert.True(t, schedule.IsNotFound(err))

	refs, err := svc.Store.CompanyReferenceCount(ctx, company.ID)
	require.NoError(t, err)
	assert.Zero(t, refs)

	// Deleting twice reports not-found.
	err = svc.DeleteTimesheet(ctx, ts.ID)
	assert.True(t, schedule.IsNotFound(err))
}
