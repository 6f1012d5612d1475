// Package store provides an in-memory timesheet.Store for tests and dev.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/warp/timesheet-engine/schedule"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	companies  map[string]timesheet.Company
	timesheets map[string]timesheet.Timesheet
	entries    map[string][]timesheet.Entry     // keyed by timesheet ID
	extras     map[string][]timesheet.ExtraHours // keyed by timesheet ID
}

func NewMemory() *Memory {
	return &Memory{
		companies:  make(map[string]timesheet.Company),
		timesheets: make(map[string]timesheet.Timesheet),
		entries:    make(map[string][]timesheet.Entry),
		extras:     make(map[string][]timesheet.ExtraHours),
	}
}

var _ timesheet.Store = (*Memory)(nil)

// -----------------------------------------------------------------------------
// Companies
// -----------------------------------------------------------------------------

func (m *Memory) SaveCompany(_ context.Context, c timesheet.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.companies {
		if existing.ID != c.ID && strings.EqualFold(existing.Name, c.Name) {
			return schedule.ErrDuplicateName
		}
	}
	m.companies[c.ID] = c
	return nil
}

func (m *Memory) UpdateCompany(ctx context.Context, c timesheet.Company) error {
	m.mu.RLock()
	_, ok := m.companies[c.ID]
	m.mu.RUnlock()
	if !ok {
		return schedule.ErrNotFound
	}
	return m.SaveCompany(ctx, c)
}

func (m *Memory) GetCompany(_ context.Context, id string) (*timesheet.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return &c, nil
}

func (m *Memory) ListCompanies(_ context.Context, includeInactive bool) ([]timesheet.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []timesheet.Company
	for _, c := range m.companies {
		if !includeInactive && !c.Active {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) CompanyNameExists(_ context.Context, name, excludeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.companies {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DeleteCompany(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(m.companies, id)
	return nil
}

func (m *Memory) CompanyReferenceCount(_ context.Context, companyID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, entries := range m.entries {
		for _, e := range entries {
			if e.CompanyID == companyID {
				count++
			}
		}
	}
	for _, extras := range m.extras {
		for _, x := range extras {
			if x.CompanyID == companyID {
				count++
			}
		}
	}
	return count, nil
}

// -----------------------------------------------------------------------------
// Timesheets
// -----------------------------------------------------------------------------

func (m *Memory) CreateTimesheet(_ context.Context, ts timesheet.Timesheet, entries []timesheet.Entry, extras []timesheet.ExtraHours) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timesheets[ts.ID] = ts
	m.entries[ts.ID] = append([]timesheet.Entry{}, entries...)
	m.extras[ts.ID] = append([]timesheet.ExtraHours{}, extras...)
	return nil
}

func (m *Memory) GetTimesheet(_ context.Context, id string) (*timesheet.Timesheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts, ok := m.timesheets[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return &ts, nil
}

func (m *Memory) ListTimesheets(_ context.Context) ([]timesheet.Timesheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]timesheet.Timesheet, 0, len(m.timesheets))
	for _, ts := range m.timesheets {
		out = append(out, ts)
	}
	// Newest first, then by cleaner, matching the list screens.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].CleanerName < out[j].CleanerName
	})
	return out, nil
}

// DeleteTimesheet cascades to entries and extra hours.
func (m *Memory) DeleteTimesheet(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.timesheets[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(m.timesheets, id)
	delete(m.entries, id)
	delete(m.extras, id)
	return nil
}

func (m *Memory) ListEntries(_ context.Context, timesheetID string) ([]timesheet.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]timesheet.Entry{}, m.entries[timesheetID]...), nil
}

func (m *Memory) ListExtraHours(_ context.Context, timesheetID string) ([]timesheet.ExtraHours, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]timesheet.ExtraHours{}, m.extras[timesheetID]...), nil
}
