package summary_test

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/finalize"
	"github.com/warp/attendance-engine/store/sqlite"
	"github.com/warp/attendance-engine/summary"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var computedAt = time.Date(2025, time.March, 11, 5, 0, 2, 0, time.UTC)

func newTestRecalculator(t *testing.T) (*summary.Recalculator, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return summary.NewRecalculator(store, testclock.NewClock(computedAt)), store
}

func seedTeam(t *testing.T, store *sqlite.Store) finalize.Team {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.CreateCompany(ctx, finalize.Company{
		ID: "acme", Name: "Acme", Timezone: "America/New_York", CreatedAt: time.Now().UTC(),
	}))

	days, err := finalize.NewWorkDaySet("MON", "TUE", "WED", "THU", "FRI")
	require.NoError(t, err)
	team := finalize.Team{
		ID: "eng", CompanyID: "acme", Name: "Engineering",
		Schedule: finalize.Schedule{
			WorkDays:   days,
			ShiftStart: finalize.TimeOfDay{Hour: 9},
			ShiftEnd:   finalize.TimeOfDay{Hour: 17},
		},
		Active: true, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateTeam(ctx, team))
	return team
}

func seedMember(t *testing.T, store *sqlite.Store, id string, team finalize.Team, active bool) finalize.Worker {
	t.Helper()
	w := finalize.Worker{
		ID: finalize.WorkerID(id), CompanyID: team.CompanyID, TeamID: team.ID,
		Name: id, JoinedTeamAt: time.Now().UTC().AddDate(0, -2, 0),
		Active: active, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateWorker(context.Background(), w))
	return w
}

var march10 = finalize.NewDate(2025, time.March, 10)

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestRecalculator_Snapshot_CountsAllBuckets(t *testing.T) {
	// GIVEN: 4 active workers: one present, one absent, one on leave, one
	//        undecided; plus an inactive worker who counts for nothing
	// WHEN: The rollup is recomputed
	// THEN: Every bucket is right and the rate is present/scheduled

	rec, store := newTestRecalculator(t)
	ctx := context.Background()
	team := seedTeam(t, store)

	present := seedMember(t, store, "w-present", team, true)
	absent := seedMember(t, store, "w-absent", team, true)
	onLeave := seedMember(t, store, "w-leave", team, true)
	seedMember(t, store, "w-undecided", team, true)
	seedMember(t, store, "w-former", team, false)

	require.NoError(t, store.SaveAttendance(ctx, finalize.AttendanceRecord{
		ID: "att-1", WorkerID: present.ID, TeamID: team.ID, CompanyID: team.CompanyID,
		Date: march10, Status: finalize.AttendancePresent, Source: finalize.SourceCheckIn,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.RecordAbsence(ctx,
		finalize.AttendanceRecord{
			ID: "att-2", WorkerID: absent.ID, TeamID: team.ID, CompanyID: team.CompanyID,
			Date: march10, Status: finalize.AttendanceAbsent, Source: finalize.SourceFinalization,
			CreatedAt: time.Now().UTC(),
		},
		finalize.AbsenceRecord{
			ID: "abs-2", WorkerID: absent.ID, TeamID: team.ID, CompanyID: team.CompanyID,
			Date: march10, Reason: finalize.ReasonNoCheckIn, CreatedAt: time.Now().UTC(),
		},
	))
	require.NoError(t, store.CreateLeave(ctx, finalize.LeaveWindow{
		ID: "lv-1", WorkerID: onLeave.ID, Type: finalize.LeaveVacation,
		Status: finalize.LeaveApproved, StartDate: march10, EndDate: march10,
	}))

	sum, err := rec.Snapshot(ctx, team.ID, march10)
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Scheduled)
	assert.Equal(t, 1, sum.Present)
	assert.Equal(t, 1, sum.Absent)
	assert.Equal(t, 1, sum.OnLeave)
	assert.True(t, sum.AttendanceRate.Equal(decimal.RequireFromString("0.25")),
		"rate is present/scheduled, got %s", sum.AttendanceRate)
	assert.True(t, sum.ComputedAt.Equal(computedAt))

	// The row is persisted, not just returned.
	stored, err := store.GetTeamDaySummary(ctx, team.ID, march10)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, sum.Scheduled, stored.Scheduled)
	assert.True(t, stored.AttendanceRate.Equal(sum.AttendanceRate))
}

func TestRecalculator_Snapshot_ConvergesOnCurrentFacts(t *testing.T) {
	// Rollups are derived data: recomputing after the facts change simply
	// overwrites the stale row.

	rec, store := newTestRecalculator(t)
	ctx := context.Background()
	team := seedTeam(t, store)
	w := seedMember(t, store, "w-1", team, true)

	first, err := rec.Snapshot(ctx, team.ID, march10)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Present)
	assert.True(t, first.AttendanceRate.Equal(decimal.Zero))

	require.NoError(t, store.SaveAttendance(ctx, finalize.AttendanceRecord{
		ID: "att-1", WorkerID: w.ID, TeamID: team.ID, CompanyID: team.CompanyID,
		Date: march10, Status: finalize.AttendancePresent, Source: finalize.SourceCheckIn,
		CreatedAt: time.Now().UTC(),
	}))

	second, err := rec.Snapshot(ctx, team.ID, march10)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Present)
	assert.True(t, second.AttendanceRate.Equal(decimal.RequireFromString("1")))

	stored, err := store.GetTeamDaySummary(ctx, team.ID, march10)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.Present, "stale row must be replaced")
}

func TestRecalculator_UnknownTeam_Fails(t *testing.T) {
	rec, _ := newTestRecalculator(t)

	_, err := rec.Snapshot(context.Background(), "ghost", march10)

	assert.ErrorIs(t, err, finalize.ErrTeamNotFound)
}

// =============================================================================
// RATE TESTS
// =============================================================================

func TestRate_RoundsToFourPlaces(t *testing.T) {
	cases := []struct {
		present, scheduled int
		want               string
	}{
		{0, 0, "0"},
		{5, 0, "0"}, // nonsense input, still no division by zero
		{0, 4, "0"},
		{3, 4, "0.75"},
		{4, 4, "1"},
		{1, 3, "0.3333"},
		{2, 3, "0.6667"},
	}

	for _, tc := range cases {
		got := summary.Rate(tc.present, tc.scheduled)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"%d/%d: want %s, got %s", tc.present, tc.scheduled, tc.want, got)
	}
}
