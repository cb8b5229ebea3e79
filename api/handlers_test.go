/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Company/team/worker CRUD and validation statuses
- Leave approval lifecycle
- Manual finalization triggers and run reporting
- Team summary and absence range endpoints
*/
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"

	"github.com/warp/attendance-engine/finalize"
	"github.com/warp/attendance-engine/store/sqlite"
	"github.com/warp/attendance-engine/summary"
)

// fixedNow is noon UTC on Tuesday March 11: 05:00 in Los Angeles, so an
// unforced end-of-day sweep would fire for an LA company at this instant.
var fixedNow = time.Date(2025, time.March, 11, 12, 0, 0, 0, time.UTC)

func setupTestHandler(t *testing.T) *Handler {
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clk := testclock.NewClock(fixedNow)
	summaries := summary.NewRecalculator(store, clk)
	engine := finalize.NewEngine(store, summaries, clk)
	return NewHandler(store, engine, summaries, clk)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// seedEstablishedWorker creates a worker through the API plus one old
// check-in directly in the store, so finalization holds them accountable.
func seedEstablishedWorker(t *testing.T, handler *Handler, router http.Handler, teamID, workerID string) {
	t.Helper()
	rec := doRequest(t, router, "POST", "/api/teams/"+teamID+"/workers",
		`{"id": "`+workerID+`", "name": "Worker `+workerID+`", "joined_team_at": "2025-01-06T17:00:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Failed to create worker %s: %d %s", workerID, rec.Code, rec.Body.String())
	}
	err := handler.Store.CreateCheckIn(context.Background(), finalize.CheckIn{
		ID:        "ci-" + workerID,
		WorkerID:  finalize.WorkerID(workerID),
		CreatedAt: time.Date(2025, time.February, 3, 17, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Failed to seed check-in: %v", err)
	}
}

// =============================================================================
// COMPANY ENDPOINT TESTS
// =============================================================================

func TestCompanyEndpoints_CreateAndFetch(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "Asia/Singapore"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, "GET", "/api/companies/acme", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var company CompanyDTO
	decodeInto(t, rec, &company)
	if company.ID != "acme" || company.Timezone != "Asia/Singapore" {
		t.Errorf("Unexpected company payload: %+v", company)
	}

	rec = doRequest(t, router, "GET", "/api/companies", "")
	var companies []CompanyDTO
	decodeInto(t, rec, &companies)
	if len(companies) != 1 {
		t.Errorf("Expected 1 company, got %d", len(companies))
	}
}

func TestCreateCompany_InvalidTimezone_Rejected(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "Mars/Olympus_Mons"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	var errResp ErrorResponse
	decodeInto(t, rec, &errResp)
	if !strings.Contains(errResp.Error, "timezone") {
		t.Errorf("Error should mention the timezone: %q", errResp.Error)
	}
}

func TestCreateCompany_Duplicate_Conflict(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	body := `{"id": "acme", "name": "Acme", "timezone": "UTC"}`
	if rec := doRequest(t, router, "POST", "/api/companies", body); rec.Code != http.StatusCreated {
		t.Fatalf("First create failed: %d", rec.Code)
	}

	rec := doRequest(t, router, "POST", "/api/companies", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate, got %d", rec.Code)
	}
}

func TestGetCompany_Missing_NotFound(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "GET", "/api/companies/ghost", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// TEAM ENDPOINT TESTS
// =============================================================================

func TestCreateTeam_FromScheduleConfig(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)

	rec := doRequest(t, router, "POST", "/api/companies/acme/teams", `{
		"id": "ops",
		"name": "Operations",
		"schedule": {"work_days": ["MON", "TUE", "WED", "THU", "FRI", "SAT"], "shift_start": "08:00", "shift_end": "16:30"}
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var team TeamDTO
	decodeInto(t, rec, &team)
	if len(team.WorkDays) != 6 {
		t.Errorf("Expected 6 work days, got %v", team.WorkDays)
	}
	if team.ShiftStart != "08:00" || team.ShiftEnd != "16:30" {
		t.Errorf("Shift hours wrong: %s-%s", team.ShiftStart, team.ShiftEnd)
	}
	if !team.Active {
		t.Error("Teams default to active")
	}

	rec = doRequest(t, router, "GET", "/api/teams/ops", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 fetching the team back, got %d", rec.Code)
	}
}

func TestCreateTeam_BadSchedule_Rejected(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)

	rec := doRequest(t, router, "POST", "/api/companies/acme/teams", `{
		"id": "ops", "name": "Operations",
		"schedule": {"work_days": ["MON", "FUNDAY"]}
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown day code, got %d", rec.Code)
	}
}

func TestCreateTeam_UnknownCompany_NotFound(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "POST", "/api/companies/ghost/teams",
		`{"id": "ops", "name": "Operations", "schedule": {}}`)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// WORKER ENDPOINT TESTS
// =============================================================================

func TestCreateWorker_AndListTeam(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)
	doRequest(t, router, "POST", "/api/companies/acme/teams",
		`{"id": "ops", "name": "Operations", "schedule": {}}`)

	// A bare date is accepted and taken as midnight UTC.
	rec := doRequest(t, router, "POST", "/api/teams/ops/workers",
		`{"id": "w-1", "name": "Ada", "email": "ada@acme.example", "joined_team_at": "2025-02-03"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var worker WorkerDTO
	decodeInto(t, rec, &worker)
	if worker.CompanyID != "acme" || worker.TeamID != "ops" {
		t.Errorf("Worker must inherit company/team from the URL: %+v", worker)
	}
	if !worker.Active {
		t.Error("New workers are active")
	}

	rec = doRequest(t, router, "GET", "/api/teams/ops/workers", "")
	var workers []WorkerDTO
	decodeInto(t, rec, &workers)
	if len(workers) != 1 {
		t.Errorf("Expected 1 worker, got %d", len(workers))
	}
}

func TestCreateWorker_BadJoinDate_Rejected(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)
	doRequest(t, router, "POST", "/api/companies/acme/teams",
		`{"id": "ops", "name": "Operations", "schedule": {}}`)

	rec := doRequest(t, router, "POST", "/api/teams/ops/workers",
		`{"id": "w-1", "name": "Ada", "joined_team_at": "February 3rd"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

// =============================================================================
// LEAVE ENDPOINT TESTS
// =============================================================================

func TestLeaveApprovalFlow(t *testing.T) {
	// GIVEN: A worker with a pending vacation request
	// WHEN: The window is approved
	// THEN: Its status moves to approved and is visible in the listing

	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)
	doRequest(t, router, "POST", "/api/companies/acme/teams",
		`{"id": "ops", "name": "Operations", "schedule": {}}`)
	doRequest(t, router, "POST", "/api/teams/ops/workers",
		`{"id": "w-1", "name": "Ada", "joined_team_at": "2025-02-03"}`)

	rec := doRequest(t, router, "POST", "/api/workers/w-1/leaves",
		`{"type": "vacation", "start_date": "2025-03-17", "end_date": "2025-03-21"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var leave LeaveDTO
	decodeInto(t, rec, &leave)
	if leave.Status != "pending" {
		t.Errorf("New windows start pending, got %q", leave.Status)
	}

	rec = doRequest(t, router, "POST", "/api/leaves/"+leave.ID+"/approve", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeInto(t, rec, &leave)
	if leave.Status != "approved" {
		t.Errorf("Expected approved, got %q", leave.Status)
	}

	rec = doRequest(t, router, "GET", "/api/workers/w-1/leaves", "")
	var leaves []LeaveDTO
	decodeInto(t, rec, &leaves)
	if len(leaves) != 1 || leaves[0].Status != "approved" {
		t.Errorf("Listing must reflect the approval: %+v", leaves)
	}
}

func TestApproveLeave_Missing_NotFound(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "POST", "/api/leaves/ghost/approve", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestCreateLeave_EndBeforeStart_Rejected(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)
	doRequest(t, router, "POST", "/api/companies/acme/teams",
		`{"id": "ops", "name": "Operations", "schedule": {}}`)
	doRequest(t, router, "POST", "/api/teams/ops/workers",
		`{"id": "w-1", "name": "Ada", "joined_team_at": "2025-02-03"}`)

	rec := doRequest(t, router, "POST", "/api/workers/w-1/leaves",
		`{"type": "sick", "start_date": "2025-03-21", "end_date": "2025-03-17"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateLeave_UnknownType_Rejected(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)
	doRequest(t, router, "POST", "/api/companies/acme/teams",
		`{"id": "ops", "name": "Operations", "schedule": {}}`)
	doRequest(t, router, "POST", "/api/teams/ops/workers",
		`{"id": "w-1", "name": "Ada", "joined_team_at": "2025-02-03"}`)

	rec := doRequest(t, router, "POST", "/api/workers/w-1/leaves",
		`{"type": "sabbatical", "start_date": "2025-03-17", "end_date": "2025-03-21"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

// =============================================================================
// HOLIDAY ENDPOINT TESTS
// =============================================================================

func TestHolidayEndpoints_CreateListDelete(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)

	rec := doRequest(t, router, "POST", "/api/companies/acme/holidays",
		`{"date": "2025-05-01", "name": "Labour Day"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var holiday HolidayDTO
	decodeInto(t, rec, &holiday)

	// Same company, date, and name again is a duplicate.
	rec = doRequest(t, router, "POST", "/api/companies/acme/holidays",
		`{"date": "2025-05-01", "name": "Labour Day"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate holiday, got %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/companies/acme/holidays?year=2025", "")
	var holidays []HolidayDTO
	decodeInto(t, rec, &holidays)
	if len(holidays) != 1 {
		t.Fatalf("Expected 1 holiday in 2025, got %d", len(holidays))
	}

	rec = doRequest(t, router, "DELETE", "/api/holidays/"+holiday.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/companies/acme/holidays?year=2025", "")
	holidays = nil
	decodeInto(t, rec, &holidays)
	if len(holidays) != 0 {
		t.Errorf("Expected no holidays after delete, got %d", len(holidays))
	}
}

// =============================================================================
// FINALIZATION TRIGGER TESTS
// =============================================================================

func TestTriggerEndOfDay_Forced_MarksAbsentAndRecordsRun(t *testing.T) {
	// GIVEN: An LA company where one worker showed up Monday and one didn't
	// WHEN: A forced end-of-day sweep runs Tuesday morning
	// THEN: The no-show is marked absent and the run is queryable

	handler := setupTestHandler(t)
	router := NewRouter(handler)
	ctx := context.Background()

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "la-co", "name": "LA Co", "timezone": "America/Los_Angeles"}`)
	doRequest(t, router, "POST", "/api/companies/la-co/teams",
		`{"id": "la-team", "name": "LA Team", "schedule": {}}`)
	seedEstablishedWorker(t, handler, router, "la-team", "w-present")
	seedEstablishedWorker(t, handler, router, "la-team", "w-absent")

	// Monday March 10 is LA's yesterday. w-present checked in that day.
	err := handler.Store.SaveAttendance(ctx, finalize.AttendanceRecord{
		ID: "att-mon", WorkerID: "w-present", TeamID: "la-team", CompanyID: "la-co",
		Date:   finalize.NewDate(2025, time.March, 10),
		Status: finalize.AttendancePresent, Source: finalize.SourceCheckIn,
		CreatedAt: fixedNow.Add(-20 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Failed to seed attendance: %v", err)
	}

	rec := doRequest(t, router, "POST", "/api/admin/finalize/end-of-day", `{"force_run": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var run RunDTO
	decodeInto(t, rec, &run)
	if run.Mode != "end_of_day" || run.Status != "completed" || !run.ForceRun {
		t.Errorf("Unexpected run envelope: %+v", run)
	}
	if run.WorkersEvaluated != 2 || run.MarkedAbsent != 1 {
		t.Errorf("Expected 2 evaluated / 1 marked, got %d/%d", run.WorkersEvaluated, run.MarkedAbsent)
	}
	if run.SkipReasons["already_recorded"] != 1 {
		t.Errorf("The present worker should be skipped as already recorded: %v", run.SkipReasons)
	}

	// The absence is visible through the company absences endpoint.
	rec = doRequest(t, router, "GET", "/api/companies/la-co/absences?from=2025-03-10&to=2025-03-10", "")
	var absences []AbsenceDTO
	decodeInto(t, rec, &absences)
	if len(absences) != 1 {
		t.Fatalf("Expected 1 absence, got %d", len(absences))
	}
	if absences[0].WorkerID != "w-absent" || absences[0].Reason != "no_check_in" {
		t.Errorf("Unexpected absence: %+v", absences[0])
	}

	// The run is persisted and listed newest first.
	rec = doRequest(t, router, "GET", "/api/runs", "")
	var runs []RunDTO
	decodeInto(t, rec, &runs)
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("Expected the triggered run in the listing, got %+v", runs)
	}

	rec = doRequest(t, router, "GET", "/api/runs/"+run.ID, "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 fetching the run, got %d", rec.Code)
	}

	// The sweep refreshed the team's rollup for Monday.
	rec = doRequest(t, router, "GET", "/api/teams/la-team/summary?date=2025-03-10", "")
	var sum SummaryDTO
	decodeInto(t, rec, &sum)
	if sum.Scheduled != 2 || sum.Present != 1 || sum.Absent != 1 {
		t.Errorf("Unexpected rollup: %+v", sum)
	}
	if sum.AttendanceRate != 0.5 {
		t.Errorf("Expected rate 0.5, got %v", sum.AttendanceRate)
	}
}

func TestTriggerEndOfDay_EmptyBody_Tolerated(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "POST", "/api/admin/finalize/end-of-day", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 with empty body, got %d: %s", rec.Code, rec.Body.String())
	}

	var run RunDTO
	decodeInto(t, rec, &run)
	if run.ForceRun {
		t.Error("Empty body means an unforced run")
	}
	if run.Status != "completed" || run.Companies != 0 {
		t.Errorf("Empty database still completes cleanly: %+v", run)
	}
}

func TestTriggerShiftEnd_Forced_FinalizesSameDay(t *testing.T) {
	// At 12:00 UTC it is already Tuesday evening in Singapore; a forced
	// shift-end run finalizes Tuesday itself there.

	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "sg-co", "name": "SG Co", "timezone": "Asia/Singapore"}`)
	doRequest(t, router, "POST", "/api/companies/sg-co/teams",
		`{"id": "sg-team", "name": "SG Team", "schedule": {"shift_end": "17:00"}}`)
	seedEstablishedWorker(t, handler, router, "sg-team", "w-sg")

	rec := doRequest(t, router, "POST", "/api/admin/finalize/shift-end", `{"force_run": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var run RunDTO
	decodeInto(t, rec, &run)
	if run.Mode != "shift_end" || run.MarkedAbsent != 1 {
		t.Errorf("Unexpected run outcome: %+v", run)
	}

	// Singapore is UTC+8: noon UTC on March 11 is 20:00 local, still the 11th.
	rec = doRequest(t, router, "GET", "/api/companies/sg-co/absences?from=2025-03-11&to=2025-03-11", "")
	var absences []AbsenceDTO
	decodeInto(t, rec, &absences)
	if len(absences) != 1 {
		t.Errorf("Expected the absence on the local same day, got %+v", absences)
	}
}

// =============================================================================
// QUERY VALIDATION TESTS
// =============================================================================

func TestListAbsences_BadRange_Rejected(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)

	rec := doRequest(t, router, "GET", "/api/companies/acme/absences?from=2025-03-11&to=2025-03-10", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for inverted range, got %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/companies/acme/absences?from=March+10", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unparseable date, got %d", rec.Code)
	}
}

func TestTeamSummary_RequiresDateParam(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)
	doRequest(t, router, "POST", "/api/companies/acme/teams",
		`{"id": "ops", "name": "Operations", "schedule": {}}`)

	rec := doRequest(t, router, "GET", "/api/teams/ops/summary", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without ?date, got %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/teams/ghost/summary?date=2025-03-10", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown team, got %d", rec.Code)
	}
}

func TestTeamSummary_ComputedOnMiss(t *testing.T) {
	// No sweep has touched this team, so no rollup is stored; the endpoint
	// computes one from current facts instead of serving a 404.

	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)
	doRequest(t, router, "POST", "/api/companies/acme/teams",
		`{"id": "ops", "name": "Operations", "schedule": {}}`)
	doRequest(t, router, "POST", "/api/teams/ops/workers",
		`{"id": "w-1", "name": "Ada", "joined_team_at": "2025-02-03"}`)

	rec := doRequest(t, router, "GET", "/api/teams/ops/summary?date=2025-03-10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var sum SummaryDTO
	decodeInto(t, rec, &sum)
	if sum.Scheduled != 1 || sum.Present != 0 || sum.Absent != 0 {
		t.Errorf("Unexpected computed rollup: %+v", sum)
	}
}

func TestListRuns_InvalidLimit_Rejected(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "GET", "/api/runs?limit=zero", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/runs?limit=0", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-positive limit, got %d", rec.Code)
	}
}

func TestGetRun_Missing_NotFound(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "GET", "/api/runs/ghost", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

// =============================================================================
// ADMIN TESTS
// =============================================================================

func TestResetDatabase_ClearsEverything(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	doRequest(t, router, "POST", "/api/companies",
		`{"id": "acme", "name": "Acme", "timezone": "UTC"}`)

	rec := doRequest(t, router, "POST", "/api/admin/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/companies", "")
	var companies []CompanyDTO
	decodeInto(t, rec, &companies)
	if len(companies) != 0 {
		t.Errorf("Expected empty database after reset, got %d companies", len(companies))
	}
}
