/*
Package summary maintains per-team, per-day attendance rollups.

PURPOSE:
  After finalization writes absences, dashboards need cheap answers: how
  many of a team's workers were scheduled, present, absent, on leave on a
  date, and the resulting attendance rate. This package recomputes those
  rollups from the persisted facts and upserts one row per (team, date).

  The engine calls Recalculate once per affected (team, date) after a
  sweep writes absences there. Rollups are derived data: recomputing is
  always safe, and a stale row self-corrects on the next call.

PRECISION:
  Attendance rate is present/scheduled as a decimal (4 places), never a
  float. Payroll and SLA reports downstream do arithmetic on it.

SEE ALSO:
  - finalize/store.go: The SummaryRecalculator contract this implements
  - store/sqlite/sqlite.go: The count queries and the upsert
*/
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/finalize"
)

// ratePlaces is the scale of the stored attendance rate.
const ratePlaces = 4

// TeamDaySummary is one rollup row. Unique per (team, date).
type TeamDaySummary struct {
	ID             string
	TeamID         finalize.TeamID
	Date           finalize.Date
	Scheduled      int // active headcount at recalculation time
	Present        int
	Absent         int
	OnLeave        int
	AttendanceRate decimal.Decimal // present / scheduled
	ComputedAt     time.Time
}

// Store is the slice of persistence the recalculator needs.
type Store interface {
	GetTeam(ctx context.Context, id finalize.TeamID) (*finalize.Team, error)
	CountActiveWorkers(ctx context.Context, teamID finalize.TeamID) (int, error)
	CountAttendance(ctx context.Context, teamID finalize.TeamID, date finalize.Date, status finalize.AttendanceStatus) (int, error)
	CountOnApprovedLeave(ctx context.Context, teamID finalize.TeamID, date finalize.Date) (int, error)
	UpsertTeamDaySummary(ctx context.Context, s TeamDaySummary) error
	GetTeamDaySummary(ctx context.Context, teamID finalize.TeamID, date finalize.Date) (*TeamDaySummary, error)
}

// Recalculator recomputes rollups from persisted facts. Implements
// finalize.SummaryRecalculator.
type Recalculator struct {
	store Store
	clock clock.Clock
}

func NewRecalculator(store Store, clk clock.Clock) *Recalculator {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Recalculator{store: store, clock: clk}
}

// Recalculate recomputes and stores the rollup for one team and date.
func (r *Recalculator) Recalculate(ctx context.Context, teamID finalize.TeamID, date finalize.Date) error {
	_, err := r.Snapshot(ctx, teamID, date)
	return err
}

// Snapshot recomputes, stores, and returns the rollup for one team and
// date. The row is derived entirely from current facts; calling this any
// number of times converges on the same numbers.
func (r *Recalculator) Snapshot(ctx context.Context, teamID finalize.TeamID, date finalize.Date) (*TeamDaySummary, error) {
	if _, err := r.store.GetTeam(ctx, teamID); err != nil {
		return nil, fmt.Errorf("summary for team %s: %w", teamID, err)
	}

	scheduled, err := r.store.CountActiveWorkers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("summary for team %s: counting workers: %w", teamID, err)
	}
	present, err := r.store.CountAttendance(ctx, teamID, date, finalize.AttendancePresent)
	if err != nil {
		return nil, fmt.Errorf("summary for team %s: counting present: %w", teamID, err)
	}
	absent, err := r.store.CountAttendance(ctx, teamID, date, finalize.AttendanceAbsent)
	if err != nil {
		return nil, fmt.Errorf("summary for team %s: counting absent: %w", teamID, err)
	}
	onLeave, err := r.store.CountOnApprovedLeave(ctx, teamID, date)
	if err != nil {
		return nil, fmt.Errorf("summary for team %s: counting leave: %w", teamID, err)
	}

	s := TeamDaySummary{
		ID:             uuid.NewString(),
		TeamID:         teamID,
		Date:           date,
		Scheduled:      scheduled,
		Present:        present,
		Absent:         absent,
		OnLeave:        onLeave,
		AttendanceRate: Rate(present, scheduled),
		ComputedAt:     r.clock.Now().UTC(),
	}
	if err := r.store.UpsertTeamDaySummary(ctx, s); err != nil {
		return nil, fmt.Errorf("summary for team %s: storing: %w", teamID, err)
	}
	return &s, nil
}

// Rate returns present/scheduled rounded to 4 places; 0 when nobody is
// scheduled.
func Rate(present, scheduled int) decimal.Decimal {
	if scheduled <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(present)).
		Div(decimal.NewFromInt(int64(scheduled))).
		Round(ratePlaces)
}
