/*
store.go - Persistence interface for domain records

PURPOSE:
  Defines the boundary between the service and the database. Any store
  satisfying this interface works: store/sqlite for production,
  timesheet/store for tests and dev.

CONTRACT NOTES:
  - CompanyNameExists is the injected collaborator behind name-uniqueness
    validation; the match is case-insensitive and covers inactive rows.
  - CreateTimesheet persists the timesheet, its entries and its extra
    rows atomically: either the whole sheet exists or none of it does.
  - DeleteTimesheet cascades to entries and extra hours.
  - Missing rows surface as schedule.ErrNotFound, duplicate names as
    schedule.ErrDuplicateName, so the service maps them uniformly.
*/
package timesheet

import "context"

type Store interface {
	// Companies
	SaveCompany(ctx context.Context, c Company) error
	UpdateCompany(ctx context.Context, c Company) error
	GetCompany(ctx context.Context, id string) (*Company, error)
	ListCompanies(ctx context.Context, includeInactive bool) ([]Company, error)
	CompanyNameExists(ctx context.Context, name string, excludeID string) (bool, error)
	DeleteCompany(ctx context.Context, id string) error
	CompanyReferenceCount(ctx context.Context, companyID string) (int, error)

	// Timesheets
	CreateTimesheet(ctx context.Context, ts Timesheet, entries []Entry, extras []ExtraHours) error
	GetTimesheet(ctx context.Context, id string) (*Timesheet, error)
	ListTimesheets(ctx context.Context) ([]Timesheet, error)
	DeleteTimesheet(ctx context.Context, id string) error

	// Owned collections
	ListEntries(ctx context.Context, timesheetID string) ([]Entry, error)
	ListExtraHours(ctx context.Context, timesheetID string) ([]ExtraHours, error)
}
