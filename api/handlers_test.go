package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/timesheet"
	"github.com/warp/timesheet-engine/timesheet/store"
)

func newTestRouter() http.Handler {
	h := NewHandler(timesheet.NewService(store.NewMemory()))
	return NewRouter(h, Options{AllowedOrigins: []string{"*"}})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func weeklyBody(name string) map[string]any {
	return map[string]any{
		"name": name,
		"pattern": map[string]any{
			"type":  "weekly",
			"hours": []string{"8.00", "8.00", "0", "0", "0", "0", "0"},
		},
	}
}

func createCompany(t *testing.T, router http.Handler, name string) CompanyDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/companies", weeklyBody(name))
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decode[CompanyDTO](t, rec)
}

// =============================================================================
// COMPANY ENDPOINTS
// =============================================================================

func TestCreateCompany(t *testing.T) {
	router := newTestRouter()

	dto := createCompany(t, router, "Acme Offices")
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "Acme Offices", dto.Name)
	assert.True(t, dto.Active)

	var pattern struct {
		Type  string   `json:"type"`
		Hours []string `json:"hours"`
	}
	require.NoError(t, json.Unmarshal(dto.Pattern, &pattern))
	assert.Equal(t, "weekly", pattern.Type)
	assert.Equal(t, "8.00", pattern.Hours[0])
	assert.Equal(t, "0.00", pattern.Hours[6])
}

func TestCreateCompany_DuplicateNameConflicts(t *testing.T) {
	router := newTestRouter()
	createCompany(t, router, "Acme Offices")

	rec := doJSON(t, router, http.MethodPost, "/api/companies", weeklyBody("ACME offices"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateCompany_InvalidPatternRejected(t *testing.T) {
	router := newTestRouter()

	body := map[string]any{
		"name": "Bad Hours Ltd",
		"pattern": map[string]any{
			"type":  "weekly",
			"hours": []string{"8.123", "0", "0", "0", "0", "0", "0"},
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/companies", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Biweekly without anchor is a validation failure, not a crash.
	body = map[string]any{
		"name": "No Anchor Ltd",
		"pattern": map[string]any{
			"type":   "biweekly",
			"week_a": []string{"4.00", "0", "0", "0", "0", "0", "0"},
			"week_b": []string{"0", "6.00", "0", "0", "0", "0", "0"},
		},
	}
	rec = doJSON(t, router, http.MethodPost, "/api/companies", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCompany_NotFound(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodGet, "/api/companies/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCompany_PartialFieldsKeepCurrent(t *testing.T) {
	router := newTestRouter()
	dto := createCompany(t, router, "Acme Offices")

	rec := doJSON(t, router, http.MethodPut, "/api/companies/"+dto.ID,
		map[string]any{"name": "Acme HQ"})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	updated := decode[CompanyDTO](t, rec)
	assert.Equal(t, "Acme HQ", updated.Name)
	assert.True(t, updated.Active, "active flag should be untouched")
	assert.JSONEq(t, string(dto.Pattern), string(updated.Pattern), "pattern should be untouched")
}

func TestDeactivateCompany_HiddenFromDefaultList(t *testing.T) {
	router := newTestRouter()
	dto := createCompany(t, router, "Acme Offices")
	createCompany(t, router, "Harbour Clinic")

	rec := doJSON(t, router, http.MethodPost, "/api/companies/"+dto.ID+"/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[CompanyDTO](t, rec).Active)

	rec = doJSON(t, router, http.MethodGet, "/api/companies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]CompanyDTO](t, rec), 1)

	rec = doJSON(t, router, http.MethodGet, "/api/companies?include_inactive=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]CompanyDTO](t, rec), 2)
}

func TestDeleteCompany_BlockedWhileReferenced(t *testing.T) {
	router := newTestRouter()
	dto := createCompany(t, router, "Acme Offices")

	rec := doJSON(t, router, http.MethodPost, "/api/timesheets", TimesheetRequest{
		CleanerName: "Maria",
		Month:       4,
		Year:        2024,
		CompanyIDs:  []string{dto.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	ts := decode[TimesheetDTO](t, rec)

	rec = doJSON(t, router, http.MethodDelete, "/api/companies/"+dto.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/timesheets/"+ts.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/companies/"+dto.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPreviewCompany_ReturnsPatternOnly(t *testing.T) {
	router := newTestRouter()
	dto := createCompany(t, router, "Acme Offices")

	rec := doJSON(t, router, http.MethodGet, "/api/companies/"+dto.ID+"/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, string(dto.Pattern), rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/companies/missing/preview", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewPattern(t *testing.T) {
	// GIVEN: A weekly Mon+Tue 8h pattern
	// WHEN: Previewing April 2024 (5 Mondays, 5 Tuesdays)
	// THEN: 10 scheduled days at 8h = 80.00, and nothing is persisted

	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/companies/preview", map[string]any{
		"pattern": map[string]any{
			"type":  "weekly",
			"hours": []string{"8.00", "8.00", "0", "0", "0", "0", "0"},
		},
		"month": 4,
		"year":  2024,
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	preview := decode[PreviewDTO](t, rec)
	assert.Len(t, preview.Days, 30)
	assert.Equal(t, "80.00", preview.Total)
	assert.Equal(t, "Mon", preview.Days[0].Weekday)
	assert.Equal(t, []string{"8.00"}, preview.Days[0].Hours)
	assert.Equal(t, []string{"0.00"}, preview.Days[2].Hours)

	rec = doJSON(t, router, http.MethodPost, "/api/companies/preview", map[string]any{
		"pattern": map[string]any{"type": "weekly", "hours": []string{"8", "0", "0", "0", "0", "0", "0"}},
		"month":   13,
		"year":    2024,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// TIMESHEET ENDPOINTS
// =============================================================================

func TestTimesheetDetail(t *testing.T) {
	// GIVEN: One company at Mon+Tue 8h and a timesheet for April 2024
	//        with a valid and a malformed extra row
	// WHEN: Fetching the resolved detail
	// THEN: 80.00 pattern hours + 2.50 extra = 82.50, malformed row gone

	router := newTestRouter()
	company := createCompany(t, router, "Acme Offices")

	rec := doJSON(t, router, http.MethodPost, "/api/timesheets", TimesheetRequest{
		CleanerName: "Maria",
		Month:       4,
		Year:        2024,
		CompanyIDs:  []string{company.ID},
		ExtraRows: []timesheet.ExtraRow{
			{Date: "2024-04-20", Hours: "2.50", Description: "deep clean"},
			{Date: "2024-04-21", Hours: "oops", Description: "dropped"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	ts := decode[TimesheetDTO](t, rec)

	rec = doJSON(t, router, http.MethodGet, "/api/timesheets/"+ts.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decode[DetailDTO](t, rec)
	assert.Equal(t, "Maria", detail.Timesheet.CleanerName)
	require.Len(t, detail.Companies, 1)
	assert.Len(t, detail.Days, 30)
	assert.Equal(t, []string{"80.00"}, detail.CompanyTotals)
	require.Len(t, detail.ExtraHours, 1)
	assert.Equal(t, "2.50", detail.ExtraHours[0].Hours)
	assert.Equal(t, "2.50", detail.ExtraTotal)
	assert.Equal(t, "82.50", detail.GrandTotal)

	// April 1st 2024 is a Monday.
	assert.Equal(t, 1, detail.Days[0].Day)
	assert.Equal(t, "Mon", detail.Days[0].Weekday)
	assert.Equal(t, []string{"8.00"}, detail.Days[0].Hours)
}

func TestCreateTimesheet_ValidationFailures(t *testing.T) {
	router := newTestRouter()
	company := createCompany(t, router, "Acme Offices")

	cases := []struct {
		name string
		req  TimesheetRequest
	}{
		{"no cleaner", TimesheetRequest{Month: 4, Year: 2024, CompanyIDs: []string{company.ID}}},
		{"bad month", TimesheetRequest{CleanerName: "Maria", Month: 13, Year: 2024, CompanyIDs: []string{company.ID}}},
		{"no companies", TimesheetRequest{CleanerName: "Maria", Month: 4, Year: 2024}},
	}
	for _, tc := range cases {
		rec := doJSON(t, router, http.MethodPost, "/api/timesheets", tc.req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.name)
	}
}

func TestPatternEditRetroactivelyChangesDetail(t *testing.T) {
	router := newTestRouter()
	company := createCompany(t, router, "Acme Offices")

	rec := doJSON(t, router, http.MethodPost, "/api/timesheets", TimesheetRequest{
		CleanerName: "Maria", Month: 4, Year: 2024, CompanyIDs: []string{company.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ts := decode[TimesheetDTO](t, rec)

	rec = doJSON(t, router, http.MethodGet, "/api/timesheets/"+ts.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "80.00", decode[DetailDTO](t, rec).GrandTotal)

	// Drop Tuesdays from the pattern; the already-created April sheet
	// must recompute on the next read.
	rec = doJSON(t, router, http.MethodPut, "/api/companies/"+company.ID, map[string]any{
		"pattern": map[string]any{
			"type":  "weekly",
			"hours": []string{"8.00", "0", "0", "0", "0", "0", "0"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/timesheets/"+ts.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "40.00", decode[DetailDTO](t, rec).GrandTotal)
}

func TestExportTimesheet(t *testing.T) {
	router := newTestRouter()
	company := createCompany(t, router, "Acme Offices")

	rec := doJSON(t, router, http.MethodPost, "/api/timesheets", TimesheetRequest{
		CleanerName: "Maria", Month: 4, Year: 2024, CompanyIDs: []string{company.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ts := decode[TimesheetDTO](t, rec)

	rec = doJSON(t, router, http.MethodGet, "/api/timesheets/"+ts.ID+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Equal(t,
		fmt.Sprintf("attachment; filename=%q", "timesheet_maria_2024_04.xlsx"),
		rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestHealth(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
