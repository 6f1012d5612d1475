/*
Package sqlite provides the SQLite-backed implementation of
timesheet.Store.

PURPOSE:
  Persists companies, timesheets, entries and extra hours using SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

SCHEMA MANAGEMENT:
  Versioned SQL migrations embedded in the binary and applied with
  golang-migrate on New(). See migrations/.

DECIMAL STORAGE:
  Hour values are stored as TEXT (decimal strings inside the pattern
  JSON, a plain decimal string for extra hours). Reading a company back
  yields exactly the decimals that were written; binary floats never
  touch an hour value.

KEY CONSTRAINTS:
  companies.name UNIQUE COLLATE NOCASE (case-insensitive, active and
  inactive rows alike); timesheet_entries and extra_hours cascade on
  timesheet delete.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode. In production
  with PostgreSQL, database-level concurrency control handles this
  instead.

USAGE:
  store, err := sqlite.New("./data/timesheets.db")  // or ":memory:"
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - timesheet/store.go: interface definition
  - timesheet/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/timesheet-engine/schedule"
	"github.com/warp/timesheet-engine/timesheet"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store implements timesheet.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ timesheet.Store = (*Store)(nil)

// New opens (or creates) the database and applies pending migrations.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// =============================================================================
// COMPANIES
// =============================================================================

func (s *Store) SaveCompany(ctx context.Context, c timesheet.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	patternJSON, err := schedule.EncodePattern(c.Pattern)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, pattern_json, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(patternJSON), boolToInt(c.Active),
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isNameConstraintError(err) {
			return schedule.ErrDuplicateName
		}
		return fmt.Errorf("failed to save company: %w", err)
	}
	return nil
}

func (s *Store) UpdateCompany(ctx context.Context, c timesheet.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	patternJSON, err := schedule.EncodePattern(c.Pattern)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE companies SET name = ?, pattern_json = ?, is_active = ?
		WHERE id = ?`,
		c.Name, string(patternJSON), boolToInt(c.Active), c.ID,
	)
	if err != nil {
		if isNameConstraintError(err) {
			return schedule.ErrDuplicateName
		}
		return fmt.Errorf("failed to update company: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (*timesheet.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, pattern_json, is_active, created_at
		FROM companies WHERE id = ?`, id)

	company, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, schedule.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

func (s *Store) ListCompanies(ctx context.Context, includeInactive bool) ([]timesheet.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, pattern_json, is_active, created_at
		FROM companies`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []timesheet.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *company)
	}
	return companies, rows.Err()
}

func (s *Store) CompanyNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM companies
		WHERE name = ? COLLATE NOCASE AND id != ?`,
		name, excludeID,
	).Scan(&count)
	return count > 0, err
}

func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

func (s *Store) CompanyReferenceCount(ctx context.Context, companyID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM timesheet_entries WHERE company_id = ?) +
			(SELECT COUNT(*) FROM extra_hours WHERE company_id = ?)`,
		companyID, companyID,
	).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*timesheet.Company, error) {
	var (
		c           timesheet.Company
		patternJSON string
		isActive    int
		createdAt   string
	)
	if err := row.Scan(&c.ID, &c.Name, &patternJSON, &isActive, &createdAt); err != nil {
		return nil, err
	}

	pattern, err := schedule.DecodePattern([]byte(patternJSON))
	if err != nil {
		return nil, fmt.Errorf("company %s has unreadable pattern: %w", c.ID, err)
	}
	c.Pattern = pattern
	c.Active = isActive != 0
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// =============================================================================
// TIMESHEETS
// =============================================================================

// CreateTimesheet writes the sheet, its entries and its extra rows in one
// transaction: either the whole sheet exists or none of it does.
func (s *Store) CreateTimesheet(ctx context.Context, ts timesheet.Timesheet, entries []timesheet.Entry, extras []timesheet.ExtraHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO timesheets (id, cleaner_name, month, year, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		ts.ID, ts.CleanerName, int(ts.Month), ts.Year,
		ts.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save timesheet: %w", err)
	}

	for _, entry := range entries {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO timesheet_entries (id, timesheet_id, company_id)
			VALUES (?, ?, ?)`,
			entry.ID, entry.TimesheetID, entry.CompanyID,
		)
		if err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
	}

	for _, extra := range extras {
		var date sql.NullString
		if extra.Date != nil {
			date = sql.NullString{String: extra.Date.String(), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO extra_hours (id, timesheet_id, company_id, date, hours, description)
			VALUES (?, ?, ?, ?, ?, ?)`,
			extra.ID, extra.TimesheetID, nullString(extra.CompanyID),
			date, extra.Hours.String(), extra.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to save extra hours: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetTimesheet(ctx context.Context, id string) (*timesheet.Timesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		ts        timesheet.Timesheet
		month     int
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, cleaner_name, month, year, created_at
		FROM timesheets WHERE id = ?`, id,
	).Scan(&ts.ID, &ts.CleanerName, &month, &ts.Year, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, schedule.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get timesheet: %w", err)
	}
	ts.Month = time.Month(month)
	ts.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &ts, nil
}

func (s *Store) ListTimesheets(ctx context.Context) ([]timesheet.Timesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cleaner_name, month, year, created_at
		FROM timesheets
		ORDER BY year DESC, month DESC, cleaner_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheets: %w", err)
	}
	defer rows.Close()

	var sheets []timesheet.Timesheet
	for rows.Next() {
		var (
			ts        timesheet.Timesheet
			month     int
			createdAt string
		)
		if err := rows.Scan(&ts.ID, &ts.CleanerName, &month, &ts.Year, &createdAt); err != nil {
			return nil, err
		}
		ts.Month = time.Month(month)
		ts.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		sheets = append(sheets, ts)
	}
	return sheets, rows.Err()
}

// DeleteTimesheet removes the sheet; entries and extra hours go with it
// via ON DELETE CASCADE.
func (s *Store) DeleteTimesheet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM timesheets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

// =============================================================================
// OWNED COLLECTIONS
// =============================================================================

func (s *Store) ListEntries(ctx context.Context, timesheetID string) ([]timesheet.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.timesheet_id, e.company_id
		FROM timesheet_entries e
		JOIN companies c ON c.id = e.company_id
		WHERE e.timesheet_id = ?
		ORDER BY c.name`, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []timesheet.Entry
	for rows.Next() {
		var e timesheet.Entry
		if err := rows.Scan(&e.ID, &e.TimesheetID, &e.CompanyID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) ListExtraHours(ctx context.Context, timesheetID string) ([]timesheet.ExtraHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timesheet_id, company_id, date, hours, description
		FROM extra_hours
		WHERE timesheet_id = ?
		ORDER BY date`, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list extra hours: %w", err)
	}
	defer rows.Close()

	var extras []timesheet.ExtraHours
	for rows.Next() {
		var (
			extra     timesheet.ExtraHours
			companyID sql.NullString
			date      sql.NullString
			hours     string
		)
		if err := rows.Scan(&extra.ID, &extra.TimesheetID, &companyID, &date, &hours, &extra.Description); err != nil {
			return nil, err
		}
		extra.CompanyID = companyID.String
		if date.Valid {
			d, err := schedule.ParseDate(date.String)
			if err != nil {
				return nil, fmt.Errorf("extra hours %s has unreadable date: %w", extra.ID, err)
			}
			extra.Date = &d
		}
		extra.Hours, err = decimal.NewFromString(hours)
		if err != nil {
			return nil, fmt.Errorf("extra hours %s has unreadable amount: %w", extra.ID, err)
		}
		extras = append(extras, extra)
	}
	return extras, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isNameConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: companies.name")
}
