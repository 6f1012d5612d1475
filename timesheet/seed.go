/*
seed.go - YAML demo fixtures

PURPOSE:
  Loads a small dataset (companies plus timesheets) from a YAML file and
  feeds it through the regular service write path, so seeded data obeys
  the same validation and lenient extra-row rules as API input.

FILE SHAPE:
  companies:
    - name: Acme Offices
      pattern: weekly
      hours: ["8.00", "8.00", "0", "0", "0", "0", "0"]
    - name: Harbour Clinic
      pattern: biweekly
      week_a: ["4.00", "0", "0", "0", "0", "0", "0"]
      week_b: ["0", "6.00", "0", "0", "0", "0", "0"]
      anchor: 2024-01-01
  timesheets:
    - cleaner: Maria
      month: 4
      year: 2024
      companies: [Acme Offices]
      extras:
        - { date: 2024-04-20, hours: "2.50", description: deep clean }
*/
package timesheet

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/schedule"
	"gopkg.in/yaml.v3"
)

type SeedFile struct {
	Companies  []SeedCompany   `yaml:"companies"`
	Timesheets []SeedTimesheet `yaml:"timesheets"`
}

type SeedCompany struct {
	Name     string   `yaml:"name"`
	Pattern  string   `yaml:"pattern"`
	Hours    []string `yaml:"hours"`
	WeekA    []string `yaml:"week_a"`
	WeekB    []string `yaml:"week_b"`
	Anchor   string   `yaml:"anchor"`
	Inactive bool     `yaml:"inactive"`
}

type SeedTimesheet struct {
	Cleaner   string      `yaml:"cleaner"`
	Month     int         `yaml:"month"`
	Year      int         `yaml:"year"`
	Companies []string    `yaml:"companies"` // company names
	Extras    []SeedExtra `yaml:"extras"`
}

type SeedExtra struct {
	Date        string `yaml:"date"`
	Company     string `yaml:"company"` // company name, optional
	Hours       string `yaml:"hours"`
	Description string `yaml:"description"`
}

// LoadSeed reads and parses a seed file.
func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("malformed seed file: %w", err)
	}
	return &seed, nil
}

// ApplySeed creates the seeded records through the normal write path.
func (s *Service) ApplySeed(ctx context.Context, seed *SeedFile) error {
	companyIDs := make(map[string]string, len(seed.Companies))

	for _, sc := range seed.Companies {
		pattern, err := sc.pattern()
		if err != nil {
			return fmt.Errorf("company %q: %w", sc.Name, err)
		}
		company, err := s.CreateCompany(ctx, sc.Name, pattern)
		if err != nil {
			return fmt.Errorf("company %q: %w", sc.Name, err)
		}
		if sc.Inactive {
			if _, err := s.DeactivateCompany(ctx, company.ID); err != nil {
				return err
			}
		}
		companyIDs[sc.Name] = company.ID
	}

	for _, st := range seed.Timesheets {
		in := CreateTimesheetInput{
			CleanerName: st.Cleaner,
			Month:       st.Month,
			Year:        st.Year,
		}
		for _, name := range st.Companies {
			id, ok := companyIDs[name]
			if !ok {
				return fmt.Errorf("timesheet for %q: unknown company %q", st.Cleaner, name)
			}
			in.CompanyIDs = append(in.CompanyIDs, id)
		}
		for _, extra := range st.Extras {
			in.ExtraRows = append(in.ExtraRows, ExtraRow{
				Date:        extra.Date,
				CompanyID:   companyIDs[extra.Company],
				Hours:       extra.Hours,
				Description: extra.Description,
			})
		}
		if _, err := s.CreateTimesheet(ctx, in); err != nil {
			return fmt.Errorf("timesheet for %q: %w", st.Cleaner, err)
		}
	}
	return nil
}

func (sc SeedCompany) pattern() (schedule.Pattern, error) {
	switch schedule.PatternKind(sc.Pattern) {
	case schedule.KindWeekly:
		hours, err := seedTable(sc.Hours)
		if err != nil {
			return nil, err
		}
		return schedule.WeeklyPattern{Hours: hours}, nil

	case schedule.KindBiWeekly:
		weekA, err := seedTable(sc.WeekA)
		if err != nil {
			return nil, err
		}
		weekB, err := seedTable(sc.WeekB)
		if err != nil {
			return nil, err
		}
		var anchor schedule.Date
		if sc.Anchor != "" {
			anchor, err = schedule.ParseDate(sc.Anchor)
			if err != nil {
				return nil, fmt.Errorf("bad anchor %q: %w", sc.Anchor, err)
			}
		}
		return schedule.BiWeeklyPattern{WeekA: weekA, WeekB: weekB, Anchor: anchor}, nil

	default:
		return nil, fmt.Errorf("unknown pattern %q", sc.Pattern)
	}
}

func seedTable(values []string) (schedule.WeekTable, error) {
	var table schedule.WeekTable
	if len(values) != len(table) {
		return table, fmt.Errorf("expected 7 hour values, got %d", len(values))
	}
	for i, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return table, fmt.Errorf("bad hour value %q", v)
		}
		table[i] = d
	}
	return table, nil
}
