package finalize_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/attendance-engine/finalize"
)

// =============================================================================
// ZONE LOADING TESTS
// =============================================================================

func TestLoadZone_ValidZone(t *testing.T) {
	loc, err := finalize.LoadZone("Asia/Singapore")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "Asia/Singapore" {
		t.Errorf("expected Asia/Singapore, got %s", loc)
	}
}

func TestLoadZone_EmptyZone_Rejected(t *testing.T) {
	// An empty name would quietly mean UTC; it must fail loudly instead.
	_, err := finalize.LoadZone("")
	if !errors.Is(err, finalize.ErrBadTimezone) {
		t.Fatalf("expected ErrBadTimezone, got %v", err)
	}
}

func TestLoadZone_LocalZone_Rejected(t *testing.T) {
	// "Local" means whatever the host happens to run in.
	_, err := finalize.LoadZone("Local")
	if !errors.Is(err, finalize.ErrBadTimezone) {
		t.Fatalf("expected ErrBadTimezone, got %v", err)
	}
}

func TestLoadZone_UnknownZone_Rejected(t *testing.T) {
	_, err := finalize.LoadZone("Mars/Olympus_Mons")
	if !errors.Is(err, finalize.ErrBadTimezone) {
		t.Fatalf("expected ErrBadTimezone, got %v", err)
	}
}

// =============================================================================
// LOCALIZATION TESTS
// =============================================================================

func TestLocalize_PositiveOffset_CrossesIntoNextDay(t *testing.T) {
	// GIVEN: 21:00 UTC on March 10
	// WHEN: Observed in Asia/Shanghai (UTC+8)
	// THEN: It is already 05:00 on March 11

	instant := time.Date(2025, time.March, 10, 21, 0, 0, 0, time.UTC)

	lt, err := finalize.Localize(instant, "Asia/Shanghai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lt.Date != finalize.NewDate(2025, time.March, 11) {
		t.Errorf("expected local date 2025-03-11, got %s", lt.Date)
	}
	if lt.Hour != 5 || lt.Minute != 0 {
		t.Errorf("expected 05:00, got %02d:%02d", lt.Hour, lt.Minute)
	}
	if lt.Weekday != finalize.Tuesday {
		t.Errorf("expected TUE, got %s", lt.Weekday)
	}
}

func TestLocalize_NegativeOffset_StaysInPreviousDay(t *testing.T) {
	// 02:30 UTC on March 11 is still the evening of March 10 in New York
	// (EDT, UTC-4, after the March 9 DST switch).
	instant := time.Date(2025, time.March, 11, 2, 30, 0, 0, time.UTC)

	lt, err := finalize.Localize(instant, "America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lt.Date != finalize.NewDate(2025, time.March, 10) {
		t.Errorf("expected local date 2025-03-10, got %s", lt.Date)
	}
	if lt.Hour != 22 || lt.Minute != 30 {
		t.Errorf("expected 22:30, got %02d:%02d", lt.Hour, lt.Minute)
	}
	if lt.Weekday != finalize.Monday {
		t.Errorf("expected MON, got %s", lt.Weekday)
	}
}

func TestLocalize_SameInstant_DifferentZones_DifferentDates(t *testing.T) {
	// One instant; Tokyo has moved to Wednesday while Los Angeles is still
	// on Tuesday. Companies are judged by their own calendars.
	instant := time.Date(2025, time.March, 11, 16, 0, 0, 0, time.UTC)

	tokyo, err := finalize.Localize(instant, "Asia/Tokyo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	la, err := finalize.Localize(instant, "America/Los_Angeles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tokyo.Date != finalize.NewDate(2025, time.March, 12) {
		t.Errorf("expected Tokyo on 2025-03-12, got %s", tokyo.Date)
	}
	if la.Date != finalize.NewDate(2025, time.March, 11) {
		t.Errorf("expected Los Angeles on 2025-03-11, got %s", la.Date)
	}
}

func TestLocalizeCompany_BadZone_ReportsCompany(t *testing.T) {
	c := finalize.Company{ID: "acme", Timezone: "Not/AZone"}

	_, err := finalize.LocalizeCompany(time.Now().UTC(), c)
	if !errors.Is(err, finalize.ErrBadTimezone) {
		t.Fatalf("expected ErrBadTimezone, got %v", err)
	}

	var tzErr *finalize.TimezoneError
	if !errors.As(err, &tzErr) {
		t.Fatalf("expected TimezoneError, got %T", err)
	}
	if tzErr.CompanyID != "acme" || tzErr.Timezone != "Not/AZone" {
		t.Errorf("error lost context: %+v", tzErr)
	}
}
