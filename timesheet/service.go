/*
service.go - Domain operations over the Store

PURPOSE:
  The write path (company CRUD, timesheet creation) and the read path
  (point-in-time resolution, previews). Handlers and CLI commands talk to
  this; the schedule engine stays pure underneath.

READ CONSISTENCY:
  Resolve loads every referenced company exactly once and computes all
  totals from those snapshots. A single resolution can therefore never
  mix two versions of a concurrently edited pattern.
*/
package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/schedule"
)

// ErrCompanyReferenced is returned when deleting a company that is still
// referenced by timesheet entries or extra hours. Deactivate it instead.
var ErrCompanyReferenced = errors.New("company is referenced by timesheets")

type Service struct {
	Store Store
}

func NewService(store Store) *Service {
	return &Service{Store: store}
}

// =============================================================================
// COMPANIES
// =============================================================================

// CreateCompany validates and persists a new company. The name-uniqueness
// check runs against all companies, active and inactive alike.
func (s *Service) CreateCompany(ctx context.Context, name string, pattern schedule.Pattern) (*Company, error) {
	if err := schedule.ValidateName(ctx, name, s.nameLookup("")); err != nil {
		return nil, err
	}
	if err := schedule.ValidatePattern(pattern); err != nil {
		return nil, err
	}

	company := Company{
		ID:        uuid.NewString(),
		Name:      name,
		Pattern:   pattern,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.SaveCompany(ctx, company); err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdateCompany replaces name, pattern and active flag. Edits take effect
// on every future resolution, including historical timesheets referencing
// this company - totals are recomputed on read, never cached.
func (s *Service) UpdateCompany(ctx context.Context, id, name string, pattern schedule.Pattern, active bool) (*Company, error) {
	existing, err := s.Store.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := schedule.ValidateName(ctx, name, s.nameLookup(id)); err != nil {
		return nil, err
	}
	if err := schedule.ValidatePattern(pattern); err != nil {
		return nil, err
	}

	updated := *existing
	updated.Name = name
	updated.Pattern = pattern
	updated.Active = active
	if err := s.Store.UpdateCompany(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeactivateCompany soft-deletes: the company disappears from
// new-timesheet selection but keeps resolving for historical entries.
func (s *Service) DeactivateCompany(ctx context.Context, id string) (*Company, error) {
	company, err := s.Store.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	company.Active = false
	if err := s.Store.UpdateCompany(ctx, *company); err != nil {
		return nil, err
	}
	return company, nil
}

// DeleteCompany removes a company outright, but only while nothing
// references it; historical calculation requires references to stay
// resolvable.
func (s *Service) DeleteCompany(ctx context.Context, id string) error {
	if _, err := s.Store.GetCompany(ctx, id); err != nil {
		return err
	}
	refs, err := s.Store.CompanyReferenceCount(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w (%d references)", ErrCompanyReferenced, refs)
	}
	return s.Store.DeleteCompany(ctx, id)
}

func (s *Service) Company(ctx context.Context, id string) (*Company, error) {
	return s.Store.GetCompany(ctx, id)
}

func (s *Service) Companies(ctx context.Context, includeInactive bool) ([]Company, error) {
	return s.Store.ListCompanies(ctx, includeInactive)
}

// nameLookup adapts the store's name index to the validation collaborator,
// excluding the company being edited so it never collides with itself.
func (s *Service) nameLookup(excludeID string) schedule.NameLookup {
	return func(ctx context.Context, name string) (bool, error) {
		return s.Store.CompanyNameExists(ctx, name, excludeID)
	}
}

// =============================================================================
// TIMESHEETS
// =============================================================================

// CreateTimesheetInput is the raw creation payload. ExtraRows are parsed
// leniently; CompanyIDs strictly.
type CreateTimesheetInput struct {
	CleanerName string
	Month       int
	Year        int
	CompanyIDs  []string
	ExtraRows   []ExtraRow
}

// CreateTimesheet creates the sheet with one entry per selected company
// plus whatever extra rows survive lenient parsing, all in one atomic
// store write.
func (s *Service) CreateTimesheet(ctx context.Context, in CreateTimesheetInput) (*Timesheet, error) {
	if in.CleanerName == "" {
		return nil, &schedule.ValidationError{Field: "cleaner_name", Message: "must not be empty"}
	}
	if in.Month < 1 || in.Month > 12 {
		return nil, &schedule.ValidationError{Field: "month", Message: "must be 1-12"}
	}
	if in.Year < 1 {
		return nil, &schedule.ValidationError{Field: "year", Message: "must be positive"}
	}
	if len(in.CompanyIDs) == 0 {
		return nil, &schedule.ValidationError{Field: "companies", Message: "select at least one company"}
	}

	ts := Timesheet{
		ID:          uuid.NewString(),
		CleanerName: in.CleanerName,
		Month:       time.Month(in.Month),
		Year:        in.Year,
		CreatedAt:   time.Now().UTC(),
	}

	entries := make([]Entry, 0, len(in.CompanyIDs))
	for _, companyID := range in.CompanyIDs {
		company, err := s.Store.GetCompany(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("company %s: %w", companyID, err)
		}
		if !company.Active {
			return nil, &schedule.ValidationError{
				Field:   "companies",
				Message: fmt.Sprintf("%q is inactive", company.Name),
			}
		}
		entries = append(entries, Entry{
			ID:          uuid.NewString(),
			TimesheetID: ts.ID,
			CompanyID:   companyID,
		})
	}

	extras := ParseExtraRows(ts.ID, in.ExtraRows)
	// A dangling company reference on a loose row is dropped, not fatal:
	// the row survives without its company link.
	for i := range extras {
		if extras[i].CompanyID == "" {
			continue
		}
		if _, err := s.Store.GetCompany(ctx, extras[i].CompanyID); err != nil {
			if schedule.IsNotFound(err) {
				extras[i].CompanyID = ""
				continue
			}
			return nil, err
		}
	}

	if err := s.Store.CreateTimesheet(ctx, ts, entries, extras); err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *Service) Timesheet(ctx context.Context, id string) (*Timesheet, error) {
	return s.Store.GetTimesheet(ctx, id)
}

func (s *Service) Timesheets(ctx context.Context) ([]Timesheet, error) {
	return s.Store.ListTimesheets(ctx)
}

// DeleteTimesheet removes the sheet with its entries and extra hours.
func (s *Service) DeleteTimesheet(ctx context.Context, id string) error {
	if _, err := s.Store.GetTimesheet(ctx, id); err != nil {
		return err
	}
	return s.Store.DeleteTimesheet(ctx, id)
}

// =============================================================================
// RESOLUTION
// =============================================================================

// Resolve computes the full calendar, per-company totals and grand total
// for a timesheet from the current company patterns.
func (s *Service) Resolve(ctx context.Context, timesheetID string) (*Detail, error) {
	ts, err := s.Store.GetTimesheet(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Store.ListEntries(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	extras, err := s.Store.ListExtraHours(ctx, timesheetID)
	if err != nil {
		return nil, err
	}

	// One read per company for the whole resolution.
	companies := make([]Company, len(entries))
	loaded := make(map[string]*Company)
	for i, entry := range entries {
		company, ok := loaded[entry.CompanyID]
		if !ok {
			company, err = s.Store.GetCompany(ctx, entry.CompanyID)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", entry.ID, err)
			}
			loaded[entry.CompanyID] = company
		}
		companies[i] = *company
	}

	detail := &Detail{
		Timesheet:  *ts,
		Companies:  companies,
		ExtraHours: extras,
	}

	patterns := make([]schedule.Pattern, len(companies))
	detail.CompanyTotals = make([]decimal.Decimal, len(companies))
	for i, company := range companies {
		patterns[i] = company.Pattern
		total, err := schedule.MonthTotal(company.Pattern, ts.Year, ts.Month)
		if err != nil {
			return nil, fmt.Errorf("company %q: %w", company.Name, err)
		}
		detail.CompanyTotals[i] = total
	}

	days := schedule.DaysInMonth(ts.Year, ts.Month)
	detail.Days = make([]DayRow, days)
	for day := 1; day <= days; day++ {
		row := DayRow{
			Day:     day,
			Weekday: schedule.NewDate(ts.Year, ts.Month, day).Weekday(),
			Hours:   make([]decimal.Decimal, len(companies)),
		}
		for i, company := range companies {
			hours, err := schedule.DayHours(company.Pattern, ts.Year, ts.Month, day)
			if err != nil {
				return nil, fmt.Errorf("company %q: %w", company.Name, err)
			}
			row.Hours[i] = hours
		}
		detail.Days[day-1] = row
	}

	detail.ExtraTotal = decimal.Zero
	extraAmounts := make([]decimal.Decimal, len(extras))
	for i, extra := range extras {
		extraAmounts[i] = extra.Hours
		detail.ExtraTotal = detail.ExtraTotal.Add(extra.Hours)
	}

	detail.GrandTotal, err = schedule.GrandTotal(patterns, ts.Year, ts.Month, extraAmounts)
	if err != nil {
		return nil, err
	}
	return detail, nil
}
