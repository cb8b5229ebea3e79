/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates companies, teams,
	workers, check-ins, and calendar data that demonstrate specific
	finalization behavior.

AVAILABLE SCENARIOS:

	global-shifts:      Two companies half a world apart, each finalized
	                    against its own local yesterday
	new-hires:          Baseline rules: brand-new vs. never-checked-in vs.
	                    established workers
	leave-and-holidays: Approved leave, pending leave, and a company
	                    holiday competing with absence marking
	night-shift:        Teams with different shift-end hours for the
	                    shift-end trigger mode

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create companies and teams
 3. Create workers with join dates in the recent past
 4. Seed check-ins and present attendance for workers who showed up
 5. Optionally add leave windows and holidays

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "global-shifts"}

	then trigger a forced sweep:

	POST /api/admin/finalize/end-of-day
	{"force_run": true}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase and the admin trigger endpoints
  - finalize/engine.go: The behavior these scenarios demonstrate
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/warp/attendance-engine/finalize"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "global-shifts",
		Name:        "Global Shifts",
		Description: "New York and Singapore companies; a forced end-of-day run finalizes each against its own local yesterday",
	},
	{
		ID:          "new-hires",
		Name:        "New Hires",
		Description: "Joined-today, joined-last-week-never-showed, and established workers under the baseline rules",
	},
	{
		ID:          "leave-and-holidays",
		Name:        "Leave & Holidays",
		Description: "Approved leave protects, pending leave doesn't, and a holiday vetoes the whole company",
	},
	{
		ID:          "night-shift",
		Name:        "Night Shift",
		Description: "Day and evening teams whose shift-end hours fire at different local times",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "global-shifts":
		err = h.loadGlobalShiftsScenario(ctx)
	case "new-hires":
		err = h.loadNewHiresScenario(ctx)
	case "leave-and-holidays":
		err = h.loadLeaveAndHolidaysScenario(ctx)
	case "night-shift":
		err = h.loadNightShiftScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	// Track the loaded scenario
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadGlobalShiftsScenario(ctx context.Context) error {
	now := h.Clock.Now().UTC()

	us, err := h.seedCompany(ctx, "acme-us", "Acme US", "America/New_York")
	if err != nil {
		return err
	}
	sg, err := h.seedCompany(ctx, "acme-sg", "Acme Singapore", "Asia/Singapore")
	if err != nil {
		return err
	}

	usTeam, err := h.seedTeam(ctx, "us-eng", us, "US Engineering",
		[]string{"MON", "TUE", "WED", "THU", "FRI"}, "09:00", "17:00")
	if err != nil {
		return err
	}
	sgTeam, err := h.seedTeam(ctx, "sg-ops", sg, "Singapore Operations",
		[]string{"MON", "TUE", "WED", "THU", "FRI", "SAT"}, "08:00", "17:00")
	if err != nil {
		return err
	}

	// US: Alice showed up yesterday, Bob did not.
	alice, err := h.seedWorker(ctx, "w-alice", usTeam, "Alice Nguyen", "alice@acme.example", now.AddDate(0, -6, 0))
	if err != nil {
		return err
	}
	if err := h.seedPresence(ctx, alice, now.AddDate(0, 0, -1)); err != nil {
		return err
	}
	bob, err := h.seedWorker(ctx, "w-bob", usTeam, "Bob Castillo", "bob@acme.example", now.AddDate(0, -4, 0))
	if err != nil {
		return err
	}
	if err := h.seedPresence(ctx, bob, now.AddDate(0, 0, -3)); err != nil {
		return err
	}

	// Singapore: Chen missed yesterday, Dewi showed up.
	chen, err := h.seedWorker(ctx, "w-chen", sgTeam, "Chen Wei", "chen@acme.example", now.AddDate(-1, 0, 0))
	if err != nil {
		return err
	}
	if err := h.seedPresence(ctx, chen, now.AddDate(0, 0, -2)); err != nil {
		return err
	}
	dewi, err := h.seedWorker(ctx, "w-dewi", sgTeam, "Dewi Lestari", "dewi@acme.example", now.AddDate(0, -2, 0))
	if err != nil {
		return err
	}
	return h.seedPresence(ctx, dewi, now.AddDate(0, 0, -1))
}

func (h *Handler) loadNewHiresScenario(ctx context.Context) error {
	now := h.Clock.Now().UTC()

	co, err := h.seedCompany(ctx, "northwind", "Northwind Labs", "Europe/Berlin")
	if err != nil {
		return err
	}
	team, err := h.seedTeam(ctx, "nw-research", co, "Research",
		[]string{"MON", "TUE", "WED", "THU", "FRI"}, "09:00", "17:30")
	if err != nil {
		return err
	}

	// Joined today; not accountable until tomorrow.
	if _, err := h.seedWorker(ctx, "w-fresh", team, "Frida Holm", "frida@northwind.example", now); err != nil {
		return err
	}

	// Joined ten days ago, never checked in once; accountable since the
	// day after joining.
	if _, err := h.seedWorker(ctx, "w-ghost", team, "Georg Steiner", "georg@northwind.example", now.AddDate(0, 0, -10)); err != nil {
		return err
	}

	// Established months ago; one old check-in makes every scheduled day
	// accountable, including yesterday.
	vet, err := h.seedWorker(ctx, "w-vet", team, "Vera Lindqvist", "vera@northwind.example", now.AddDate(0, -3, 0))
	if err != nil {
		return err
	}
	return h.seedPresence(ctx, vet, now.AddDate(0, 0, -7))
}

func (h *Handler) loadLeaveAndHolidaysScenario(ctx context.Context) error {
	now := h.Clock.Now().UTC()
	yesterday := finalize.DateOf(now.AddDate(0, 0, -1))

	co, err := h.seedCompany(ctx, "globex", "Globex", "America/Chicago")
	if err != nil {
		return err
	}
	team, err := h.seedTeam(ctx, "gx-sales", co, "Sales",
		[]string{"MON", "TUE", "WED", "THU", "FRI"}, "08:30", "17:00")
	if err != nil {
		return err
	}

	onLeave, err := h.seedWorker(ctx, "w-leave", team, "Hana Sato", "hana@globex.example", now.AddDate(0, -8, 0))
	if err != nil {
		return err
	}
	if err := h.seedPresence(ctx, onLeave, now.AddDate(0, 0, -10)); err != nil {
		return err
	}
	if err := h.Store.CreateLeave(ctx, finalize.LeaveWindow{
		ID:        uuid.NewString(),
		WorkerID:  onLeave,
		Type:      finalize.LeaveVacation,
		Status:    finalize.LeaveApproved,
		StartDate: yesterday.AddDays(-2),
		EndDate:   yesterday.AddDays(4),
		CreatedAt: now,
	}); err != nil {
		return err
	}

	// Pending leave gives no protection.
	pending, err := h.seedWorker(ctx, "w-pending", team, "Igor Petrov", "igor@globex.example", now.AddDate(0, -8, 0))
	if err != nil {
		return err
	}
	if err := h.seedPresence(ctx, pending, now.AddDate(0, 0, -10)); err != nil {
		return err
	}
	if err := h.Store.CreateLeave(ctx, finalize.LeaveWindow{
		ID:        uuid.NewString(),
		WorkerID:  pending,
		Type:      finalize.LeaveSick,
		Status:    finalize.LeavePending,
		StartDate: yesterday,
		EndDate:   yesterday,
		CreatedAt: now,
	}); err != nil {
		return err
	}

	// Company holiday next Monday: a run targeting it skips everyone.
	monday := yesterday
	for monday.Weekday() != finalize.Monday {
		monday = monday.AddDays(1)
	}
	return h.Store.CreateHoliday(ctx, finalize.Holiday{
		ID:        uuid.NewString(),
		CompanyID: co,
		Date:      monday,
		Name:      "Founders' Day",
		CreatedAt: now,
	})
}

func (h *Handler) loadNightShiftScenario(ctx context.Context) error {
	now := h.Clock.Now().UTC()

	co, err := h.seedCompany(ctx, "initech", "Initech", "America/Los_Angeles")
	if err != nil {
		return err
	}

	day, err := h.seedTeam(ctx, "it-day", co, "Day Support",
		[]string{"MON", "TUE", "WED", "THU", "FRI"}, "08:00", "16:00")
	if err != nil {
		return err
	}
	evening, err := h.seedTeam(ctx, "it-evening", co, "Evening Support",
		[]string{"MON", "TUE", "WED", "THU", "FRI", "SAT"}, "14:00", "22:00")
	if err != nil {
		return err
	}

	dana, err := h.seedWorker(ctx, "w-dana", day, "Dana Whitfield", "dana@initech.example", now.AddDate(0, -5, 0))
	if err != nil {
		return err
	}
	if err := h.seedPresence(ctx, dana, now.AddDate(0, 0, -1)); err != nil {
		return err
	}

	eli, err := h.seedWorker(ctx, "w-eli", evening, "Eli Brandt", "eli@initech.example", now.AddDate(0, -5, 0))
	if err != nil {
		return err
	}
	return h.seedPresence(ctx, eli, now.AddDate(0, 0, -2))
}

// =============================================================================
// SEED HELPERS
// =============================================================================

func (h *Handler) seedCompany(ctx context.Context, id, name, tz string) (finalize.CompanyID, error) {
	c := finalize.Company{
		ID:        finalize.CompanyID(id),
		Name:      name,
		Timezone:  tz,
		CreatedAt: h.Clock.Now().UTC(),
	}
	return c.ID, h.Store.CreateCompany(ctx, c)
}

func (h *Handler) seedTeam(ctx context.Context, id string, companyID finalize.CompanyID, name string, days []string, start, end string) (*finalize.Team, error) {
	workDays, err := finalize.NewWorkDaySet(days...)
	if err != nil {
		return nil, err
	}
	shiftStart, err := finalize.ParseTimeOfDay(start)
	if err != nil {
		return nil, err
	}
	shiftEnd, err := finalize.ParseTimeOfDay(end)
	if err != nil {
		return nil, err
	}
	t := finalize.Team{
		ID:        finalize.TeamID(id),
		CompanyID: companyID,
		Name:      name,
		Schedule:  finalize.Schedule{WorkDays: workDays, ShiftStart: shiftStart, ShiftEnd: shiftEnd},
		Active:    true,
		CreatedAt: h.Clock.Now().UTC(),
	}
	return &t, h.Store.CreateTeam(ctx, t)
}

func (h *Handler) seedWorker(ctx context.Context, id string, team *finalize.Team, name, email string, joinedAt time.Time) (finalize.WorkerID, error) {
	w := finalize.Worker{
		ID:           finalize.WorkerID(id),
		CompanyID:    team.CompanyID,
		TeamID:       team.ID,
		Name:         name,
		Email:        email,
		JoinedTeamAt: joinedAt,
		Active:       true,
		CreatedAt:    h.Clock.Now().UTC(),
	}
	return w.ID, h.Store.CreateWorker(ctx, w)
}

// seedPresence records a check-in at the given instant plus the present
// attendance a live check-in flow would have written for that day.
func (h *Handler) seedPresence(ctx context.Context, workerID finalize.WorkerID, at time.Time) error {
	if err := h.Store.CreateCheckIn(ctx, finalize.CheckIn{
		ID:        uuid.NewString(),
		WorkerID:  workerID,
		CreatedAt: at,
	}); err != nil {
		return err
	}

	worker, err := h.Store.GetWorker(ctx, workerID)
	if err != nil {
		return err
	}

	return h.Store.SaveAttendance(ctx, finalize.AttendanceRecord{
		ID:        uuid.NewString(),
		WorkerID:  worker.ID,
		TeamID:    worker.TeamID,
		CompanyID: worker.CompanyID,
		Date:      finalize.DateOf(at),
		Status:    finalize.AttendancePresent,
		Source:    finalize.SourceCheckIn,
		CreatedAt: at,
	})
}
