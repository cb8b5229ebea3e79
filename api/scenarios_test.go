/*
scenarios_test.go - Unit tests for demo scenarios

Tests that each scenario seeds the state it advertises:
- Companies, teams, and workers exist
- Check-in history distinguishes established workers from new hires
- Leave windows and holidays are in place
- The load endpoint tracks the current scenario
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/warp/attendance-engine/finalize"
)

func TestScenario_GlobalShifts(t *testing.T) {
	// GIVEN: The global-shifts scenario
	// WHEN: Loading it
	// THEN: Two companies exist in different timezones, all workers established

	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadGlobalShiftsScenario(ctx); err != nil {
		t.Fatalf("Failed to load global-shifts scenario: %v", err)
	}

	companies, err := handler.Store.ListCompanies(ctx)
	if err != nil {
		t.Fatalf("Failed to list companies: %v", err)
	}
	if len(companies) != 2 {
		t.Fatalf("Expected 2 companies, got %d", len(companies))
	}

	sgTeam, err := handler.Store.GetTeam(ctx, "sg-ops")
	if err != nil {
		t.Fatalf("Failed to get sg-ops: %v", err)
	}
	if !sgTeam.Schedule.WorkDays.Contains(string(finalize.Saturday)) {
		t.Error("Singapore operations works Saturdays")
	}

	usWorkers, err := handler.Store.ListTeamWorkers(ctx, "us-eng")
	if err != nil {
		t.Fatalf("Failed to list us-eng workers: %v", err)
	}
	if len(usWorkers) != 2 {
		t.Errorf("Expected 2 US workers, got %d", len(usWorkers))
	}

	// Every worker has checked in at least once, so a sweep holds all of
	// them accountable from their join dates.
	for _, id := range []finalize.WorkerID{"w-alice", "w-bob", "w-chen", "w-dewi"} {
		first, err := handler.Store.EarliestCheckIn(ctx, id)
		if err != nil {
			t.Fatalf("Failed to get earliest check-in for %s: %v", id, err)
		}
		if first == nil {
			t.Errorf("Worker %s should have check-in history", id)
		}
	}
}

func TestScenario_NewHires(t *testing.T) {
	// GIVEN: The new-hires scenario
	// WHEN: Loading it
	// THEN: Check-in history separates the veteran from the two new hires

	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadNewHiresScenario(ctx); err != nil {
		t.Fatalf("Failed to load new-hires scenario: %v", err)
	}

	for _, id := range []finalize.WorkerID{"w-fresh", "w-ghost"} {
		first, err := handler.Store.EarliestCheckIn(ctx, id)
		if err != nil {
			t.Fatalf("Failed to get earliest check-in for %s: %v", id, err)
		}
		if first != nil {
			t.Errorf("Worker %s has never checked in, got %v", id, first)
		}
	}

	first, err := handler.Store.EarliestCheckIn(ctx, "w-vet")
	if err != nil {
		t.Fatalf("Failed to get earliest check-in for w-vet: %v", err)
	}
	if first == nil {
		t.Error("The veteran should have check-in history")
	}

	fresh, err := handler.Store.GetWorker(ctx, "w-fresh")
	if err != nil {
		t.Fatalf("Failed to get w-fresh: %v", err)
	}
	if !fresh.JoinedTeamAt.Equal(fixedNow) {
		t.Errorf("w-fresh joined at the current instant, got %v", fresh.JoinedTeamAt)
	}
}

func TestScenario_LeaveAndHolidays(t *testing.T) {
	// GIVEN: The leave-and-holidays scenario
	// WHEN: Loading it
	// THEN: Only the approved window protects yesterday, and a Monday holiday exists

	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadLeaveAndHolidaysScenario(ctx); err != nil {
		t.Fatalf("Failed to load leave-and-holidays scenario: %v", err)
	}

	yesterday := finalize.DateOf(fixedNow.AddDate(0, 0, -1))

	protected, err := handler.Store.HasApprovedLeave(ctx, "w-leave", yesterday)
	if err != nil {
		t.Fatalf("Failed to check leave for w-leave: %v", err)
	}
	if !protected {
		t.Error("w-leave has an approved window covering yesterday")
	}

	protected, err = handler.Store.HasApprovedLeave(ctx, "w-pending", yesterday)
	if err != nil {
		t.Fatalf("Failed to check leave for w-pending: %v", err)
	}
	if protected {
		t.Error("A pending window must not protect w-pending")
	}

	holidays, err := handler.Store.ListHolidays(ctx, "globex", fixedNow.Year())
	if err != nil {
		t.Fatalf("Failed to list holidays: %v", err)
	}
	if len(holidays) != 1 {
		t.Fatalf("Expected 1 holiday, got %d", len(holidays))
	}
	if holidays[0].Name != "Founders' Day" || holidays[0].Date.Weekday() != finalize.Monday {
		t.Errorf("Expected Founders' Day on a Monday, got %q on %s",
			holidays[0].Name, holidays[0].Date.Weekday())
	}
}

func TestScenario_NightShift(t *testing.T) {
	// GIVEN: The night-shift scenario
	// WHEN: Loading it
	// THEN: The two teams end their shifts at different hours

	handler := setupTestHandler(t)
	ctx := context.Background()

	if err := handler.loadNightShiftScenario(ctx); err != nil {
		t.Fatalf("Failed to load night-shift scenario: %v", err)
	}

	day, err := handler.Store.GetTeam(ctx, "it-day")
	if err != nil {
		t.Fatalf("Failed to get it-day: %v", err)
	}
	evening, err := handler.Store.GetTeam(ctx, "it-evening")
	if err != nil {
		t.Fatalf("Failed to get it-evening: %v", err)
	}

	if day.Schedule.ShiftEnd.Hour != 16 {
		t.Errorf("Day team ends at 16:00, got %s", day.Schedule.ShiftEnd)
	}
	if evening.Schedule.ShiftEnd.Hour != 22 {
		t.Errorf("Evening team ends at 22:00, got %s", evening.Schedule.ShiftEnd)
	}
	if !evening.Schedule.WorkDays.Contains(string(finalize.Saturday)) {
		t.Error("Evening support works Saturdays")
	}
}

func TestScenario_AllScenariosLoadWithoutError(t *testing.T) {
	// GIVEN: All defined scenarios
	// WHEN: Loading each one
	// THEN: All should load without errors and leave data behind

	scenarioIDs := []string{"global-shifts", "new-hires", "leave-and-holidays", "night-shift"}

	for _, scenarioID := range scenarioIDs {
		t.Run(scenarioID, func(t *testing.T) {
			handler := setupTestHandler(t)
			ctx := context.Background()

			var err error
			switch scenarioID {
			case "global-shifts":
				err = handler.loadGlobalShiftsScenario(ctx)
			case "new-hires":
				err = handler.loadNewHiresScenario(ctx)
			case "leave-and-holidays":
				err = handler.loadLeaveAndHolidaysScenario(ctx)
			case "night-shift":
				err = handler.loadNightShiftScenario(ctx)
			}

			if err != nil {
				t.Errorf("Scenario %s failed to load: %v", scenarioID, err)
			}

			companies, err := handler.Store.ListCompanies(ctx)
			if err != nil {
				t.Fatalf("Failed to list companies: %v", err)
			}
			if len(companies) == 0 {
				t.Errorf("Scenario %s created no companies", scenarioID)
			}
		})
	}
}

func TestScenarioEndpoints_LoadAndTrack(t *testing.T) {
	handler := setupTestHandler(t)
	router := NewRouter(handler)

	rec := doRequest(t, router, "GET", "/api/scenarios", "")
	var available []ScenarioDTO
	decodeInto(t, rec, &available)
	if len(available) != 4 {
		t.Fatalf("Expected 4 scenarios, got %d", len(available))
	}

	rec = doRequest(t, router, "POST", "/api/scenarios/load", `{"scenario_id": "global-shifts"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var loaded map[string]string
	decodeInto(t, rec, &loaded)
	if loaded["status"] != "loaded" || loaded["scenario"] != "global-shifts" {
		t.Errorf("Unexpected load response: %v", loaded)
	}

	rec = doRequest(t, router, "GET", "/api/scenarios/current", "")
	var current *ScenarioDTO
	decodeInto(t, rec, &current)
	if current == nil || current.ID != "global-shifts" {
		t.Errorf("Expected global-shifts as current, got %+v", current)
	}

	rec = doRequest(t, router, "POST", "/api/scenarios/load", `{"scenario_id": "wild-party"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown scenario, got %d", rec.Code)
	}

	// Reset clears the loaded marker.
	rec = doRequest(t, router, "POST", "/api/admin/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from reset, got %d", rec.Code)
	}
	rec = doRequest(t, router, "GET", "/api/scenarios/current", "")
	current = nil
	decodeInto(t, rec, &current)
	if current != nil {
		t.Errorf("Expected no current scenario after reset, got %+v", current)
	}
}
