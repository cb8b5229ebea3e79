/*
handlers.go - HTTP API handlers for the attendance finalization system

PURPOSE:
  Exposes the finalization engine and its backing org/calendar data via
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic.

ENDPOINTS:
  Companies:
    GET    /api/companies                 List all companies
    POST   /api/companies                 Create company
    GET    /api/companies/{id}            Get company details
    GET    /api/companies/{id}/teams      List company teams
    POST   /api/companies/{id}/teams      Create team
    GET    /api/companies/{id}/holidays   List company holidays (?year=)
    POST   /api/companies/{id}/holidays   Declare holiday
    GET    /api/companies/{id}/absences   List finalized absences (?from=&to=)

  Teams:
    GET    /api/teams/{id}                Get team details
    GET    /api/teams/{id}/workers        List team workers
    POST   /api/teams/{id}/workers        Add worker to team
    GET    /api/teams/{id}/summary        Per-day attendance rollup (?date=)

  Workers:
    GET    /api/workers/{id}              Get worker details
    GET    /api/workers/{id}/leaves       List worker leave windows
    POST   /api/workers/{id}/leaves       Open leave window (starts pending)

  Leaves:
    POST   /api/leaves/{id}/approve       Approve a pending window
    POST   /api/leaves/{id}/reject        Reject a pending window

  Holidays:
    DELETE /api/holidays/{id}             Remove a holiday

  Admin:
    POST   /api/admin/finalize/end-of-day Trigger end-of-day sweep
    POST   /api/admin/finalize/shift-end  Trigger shift-end sweep
    POST   /api/admin/reset               Clear all data

  Runs:
    GET    /api/runs                      List finalization runs (?limit=)
    GET    /api/runs/{id}                 Get one run

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Engine: The finalization engine (manual trigger endpoints)
  - Summaries: Rollup recalculator (summary endpoint computes on miss)
  - ScheduleFactory: JSON to Schedule conversion

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, bad timezone/schedule config
  - 404: Entity not found
  - 409: Duplicate create, already-finalized day
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/finalize"
	"github.com/warp/attendance-engine/store/sqlite"
	"github.com/warp/attendance-engine/summary"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store           *sqlite.Store
	Engine          *finalize.Engine
	Summaries       *summary.Recalculator
	ScheduleFactory *factory.ScheduleFactory
	Clock           clock.Clock

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store and engine.
func NewHandler(store *sqlite.Store, engine *finalize.Engine, summaries *summary.Recalculator, clk clock.Clock) *Handler {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Handler{
		Store:           store,
		Engine:          engine,
		Summaries:       summaries,
		ScheduleFactory: factory.NewScheduleFactory(),
		Clock:           clk,
	}
}

// =============================================================================
// COMPANY HANDLERS
// =============================================================================

// ListCompanies returns all companies.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Store.ListCompanies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list companies", err)
		return
	}

	dtos := make([]CompanyDTO, len(companies))
	for i, c := range companies {
		dtos[i] = toCompanyDTO(c)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetCompany returns a single company.
func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id := finalize.CompanyID(chi.URLParam(r, "id"))

	company, err := h.Store.GetCompany(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get company", err)
		return
	}

	writeJSON(w, http.StatusOK, toCompanyDTO(*company))
}

// CreateCompany creates a new company. The timezone is validated here, at
// the boundary, so a bad IANA name never reaches the engine.
func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	if _, err := finalize.LoadZone(req.Timezone); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid timezone (use an IANA name like America/New_York)", err)
		return
	}

	company := finalize.Company{
		ID:        finalize.CompanyID(req.ID),
		Name:      req.Name,
		Timezone:  req.Timezone,
		CreatedAt: h.Clock.Now().UTC(),
	}

	if err := h.Store.CreateCompany(r.Context(), company); err != nil {
		writeStoreError(w, "Failed to create company", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCompanyDTO(company))
}

// =============================================================================
// TEAM HANDLERS
// =============================================================================

// ListTeams returns all teams of a company.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	companyID := finalize.CompanyID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetCompany(r.Context(), companyID); err != nil {
		writeStoreError(w, "Failed to get company", err)
		return
	}

	teams, err := h.Store.ListTeams(r.Context(), companyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list teams", err)
		return
	}

	dtos := make([]TeamDTO, len(teams))
	for i, t := range teams {
		dtos[i] = toTeamDTO(t)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetTeam returns a single team.
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id := finalize.TeamID(chi.URLParam(r, "id"))

	team, err := h.Store.GetTeam(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get team", err)
		return
	}

	writeJSON(w, http.StatusOK, toTeamDTO(*team))
}

// CreateTeam creates a team under a company from a schedule config.
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	companyID := finalize.CompanyID(chi.URLParam(r, "id"))

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	if _, err := h.Store.GetCompany(r.Context(), companyID); err != nil {
		writeStoreError(w, "Failed to get company", err)
		return
	}

	schedule, err := h.ScheduleFactory.FromConfig(req.Schedule)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	team := finalize.Team{
		ID:        finalize.TeamID(req.ID),
		CompanyID: companyID,
		Name:      req.Name,
		Schedule:  schedule,
		Active:    active,
		CreatedAt: h.Clock.Now().UTC(),
	}

	if err := h.Store.CreateTeam(r.Context(), team); err != nil {
		writeStoreError(w, "Failed to create team", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTeamDTO(team))
}

// GetTeamSummary returns the attendance rollup for one team and day.
// If no rollup is stored yet it is computed and persisted on the spot.
func (h *Handler) GetTeamSummary(w http.ResponseWriter, r *http.Request) {
	teamID := finalize.TeamID(chi.URLParam(r, "id"))

	date, ok := parseDateParam(w, r, "date")
	if !ok {
		return
	}

	stored, err := h.Store.GetTeamDaySummary(r.Context(), teamID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get summary", err)
		return
	}
	if stored != nil {
		writeJSON(w, http.StatusOK, toSummaryDTO(*stored))
		return
	}

	computed, err := h.Summaries.Snapshot(r.Context(), teamID, date)
	if err != nil {
		writeStoreError(w, "Failed to compute summary", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryDTO(*computed))
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListTeamWorkers returns every member of a team.
func (h *Handler) ListTeamWorkers(w http.ResponseWriter, r *http.Request) {
	teamID := finalize.TeamID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetTeam(r.Context(), teamID); err != nil {
		writeStoreError(w, "Failed to get team", err)
		return
	}

	workers, err := h.Store.ListTeamWorkers(r.Context(), teamID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workers", err)
		return
	}

	dtos := make([]WorkerDTO, len(workers))
	for i, wk := range workers {
		dtos[i] = toWorkerDTO(wk)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetWorker returns a single worker.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id := finalize.WorkerID(chi.URLParam(r, "id"))

	worker, err := h.Store.GetWorker(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get worker", err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkerDTO(*worker))
}

// CreateWorker adds a worker to a team. joined_team_at accepts an RFC3339
// instant or a plain date (taken as midnight UTC).
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	teamID := finalize.TeamID(chi.URLParam(r, "id"))

	var req CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	joinedAt, err := parseInstant(req.JoinedTeamAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid joined_team_at (use RFC3339 or YYYY-MM-DD)", err)
		return
	}

	team, err := h.Store.GetTeam(r.Context(), teamID)
	if err != nil {
		writeStoreError(w, "Failed to get team", err)
		return
	}

	worker := finalize.Worker{
		ID:           finalize.WorkerID(req.ID),
		CompanyID:    team.CompanyID,
		TeamID:       team.ID,
		Name:         req.Name,
		Email:        req.Email,
		JoinedTeamAt: joinedAt,
		Active:       true,
		CreatedAt:    h.Clock.Now().UTC(),
	}

	if err := h.Store.CreateWorker(r.Context(), worker); err != nil {
		writeStoreError(w, "Failed to create worker", err)
		return
	}

	writeJSON(w, http.StatusCreated, toWorkerDTO(worker))
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListWorkerLeaves returns a worker's leave windows, newest first.
func (h *Handler) ListWorkerLeaves(w http.ResponseWriter, r *http.Request) {
	workerID := finalize.WorkerID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetWorker(r.Context(), workerID); err != nil {
		writeStoreError(w, "Failed to get worker", err)
		return
	}

	leaves, err := h.Store.ListWorkerLeaves(r.Context(), workerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}

	dtos := make([]LeaveDTO, len(leaves))
	for i, lw := range leaves {
		dtos[i] = toLeaveDTO(lw)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// CreateLeave opens a leave window for a worker. Windows start pending;
// only approved windows shield the worker from finalization.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	workerID := finalize.WorkerID(chi.URLParam(r, "id"))

	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	leaveType := finalize.LeaveType(req.Type)
	if req.Type == "" {
		leaveType = finalize.LeaveVacation
	}
	switch leaveType {
	case finalize.LeaveVacation, finalize.LeaveSick, finalize.LeavePersonal, finalize.LeaveUnpaid:
	default:
		writeError(w, http.StatusBadRequest, "Invalid leave type", nil)
		return
	}

	startDate, err := finalize.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	endDate, err := finalize.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}

	if _, err := h.Store.GetWorker(r.Context(), workerID); err != nil {
		writeStoreError(w, "Failed to get worker", err)
		return
	}

	window := finalize.LeaveWindow{
		ID:        uuid.NewString(),
		WorkerID:  workerID,
		Type:      leaveType,
		Status:    finalize.LeavePending,
		StartDate: startDate,
		EndDate:   endDate,
		CreatedAt: h.Clock.Now().UTC(),
	}

	if err := h.Store.CreateLeave(r.Context(), window); err != nil {
		writeStoreError(w, "Failed to create leave", err)
		return
	}

	writeJSON(w, http.StatusCreated, toLeaveDTO(window))
}

// ApproveLeave marks a leave window approved.
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.setLeaveStatus(w, r, finalize.LeaveApproved)
}

// RejectLeave marks a leave window rejected.
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.setLeaveStatus(w, r, finalize.LeaveRejected)
}

func (h *Handler) setLeaveStatus(w http.ResponseWriter, r *http.Request, status finalize.LeaveStatus) {
	id := chi.URLParam(r, "id")

	if err := h.Store.UpdateLeaveStatus(r.Context(), id, status); err != nil {
		writeStoreError(w, "Failed to update leave", err)
		return
	}

	window, err := h.Store.GetLeave(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get leave", err)
		return
	}

	writeJSON(w, http.StatusOK, toLeaveDTO(*window))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns a company's holidays for a year (default: current).
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	companyID := finalize.CompanyID(chi.URLParam(r, "id"))

	year := h.Clock.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	if _, err := h.Store.GetCompany(r.Context(), companyID); err != nil {
		writeStoreError(w, "Failed to get company", err)
		return
	}

	holidays, err := h.Store.ListHolidays(r.Context(), companyID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hd := range holidays {
		dtos[i] = toHolidayDTO(hd)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday declares a company-wide holiday.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	companyID := finalize.CompanyID(chi.URLParam(r, "id"))

	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	date, err := finalize.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	if _, err := h.Store.GetCompany(r.Context(), companyID); err != nil {
		writeStoreError(w, "Failed to get company", err)
		return
	}

	holiday := finalize.Holiday{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Date:      date,
		Name:      req.Name,
		CreatedAt: h.Clock.Now().UTC(),
	}

	if err := h.Store.CreateHoliday(r.Context(), holiday); err != nil {
		writeStoreError(w, "Failed to create holiday", err)
		return
	}

	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday removes a holiday by ID.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteHoliday(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// ABSENCE HANDLERS
// =============================================================================

// ListAbsences returns a company's finalized absences in a date range.
// Defaults to the last 30 days.
func (h *Handler) ListAbsences(w http.ResponseWriter, r *http.Request) {
	companyID := finalize.CompanyID(chi.URLParam(r, "id"))

	today := finalize.DateOf(h.Clock.Now().UTC())
	rng := finalize.DateRange{Start: today.AddDays(-30), End: today}

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := finalize.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		rng.Start = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := finalize.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
		rng.End = parsed
	}
	if !rng.Valid() {
		writeError(w, http.StatusBadRequest, "from must not be after to", nil)
		return
	}

	if _, err := h.Store.GetCompany(r.Context(), companyID); err != nil {
		writeStoreError(w, "Failed to get company", err)
		return
	}

	absences, err := h.Store.ListAbsences(r.Context(), companyID, rng)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list absences", err)
		return
	}

	writeJSON(w, http.StatusOK, toAbsenceDTOs(absences))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerEndOfDay runs an end-of-day sweep immediately. With force_run the
// 05:00 local-hour gate is bypassed; target dates still come from each
// company's local calendar.
func (h *Handler) TriggerEndOfDay(w http.ResponseWriter, r *http.Request) {
	h.triggerRun(w, r, h.Engine.FinalizeEndOfDay)
}

// TriggerShiftEnd runs a shift-end sweep immediately. With force_run every
// active team fires regardless of its shift-end hour.
func (h *Handler) TriggerShiftEnd(w http.ResponseWriter, r *http.Request) {
	h.triggerRun(w, r, h.Engine.FinalizeShiftEnd)
}

func (h *Handler) triggerRun(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, forceRun bool) (*finalize.RunStats, error)) {
	var req TriggerRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	stats, err := run(r.Context(), req.ForceRun)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Finalization run failed", err)
		return
	}

	rec, err := h.Store.GetRun(r.Context(), stats.RunID)
	if err != nil {
		// Record lookup failed; answer from the in-memory stats.
		rec = &finalize.RunRecord{Stats: *stats, Status: finalize.RunCompleted}
	}

	writeJSON(w, http.StatusOK, toRunDTO(*rec))
}

// ListRuns returns recent finalization runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	runs, err := h.Store.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	writeJSON(w, http.StatusOK, toRunDTOs(runs))
}

// GetRun returns one finalization run by ID.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetRun(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get run", err)
		return
	}

	writeJSON(w, http.StatusOK, toRunDTO(*rec))
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps domain sentinels onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case finalize.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, finalize.ErrDuplicate), errors.Is(err, finalize.ErrAlreadyFinalized):
		writeError(w, http.StatusConflict, message, err)
	case finalize.IsConfigError(err), errors.Is(err, finalize.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// parseDateParam reads a required YYYY-MM-DD query parameter, writing the
// error response itself when absent or malformed.
func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (finalize.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, name+" query parameter is required (YYYY-MM-DD)", nil)
		return finalize.Date{}, false
	}
	date, err := finalize.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name+" format (use YYYY-MM-DD)", err)
		return finalize.Date{}, false
	}
	return date, true
}

// parseInstant accepts RFC3339 or a bare date, which becomes midnight UTC.
func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
