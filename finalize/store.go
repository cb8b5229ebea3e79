/*
store.go - Persistence gateway interfaces for the finalization engine

PURPOSE:
  Defines the narrow contracts the engine reads the world through and the
  single atomic write it performs. The engine depends only on these
  interfaces; SQLite and the in-memory store implement them.

KEY INTERFACES:
  CompanySource..HolidaySource: Read-side lookups, one concern each
  AbsenceWriter:                The one write: attendance + absence, atomic
  RunRecorder:                  Persisted run records (running -> done)
  Gateway:                      Everything the engine needs, combined

THE WRITE CONTRACT:
  RecordAbsence persists an absent AttendanceRecord and its AbsenceRecord
  in one transaction. If any attendance record already exists for the
  (worker, date) pair, nothing is written and ErrAlreadyFinalized comes
  back. That uniqueness check inside the store is the final race guard:
  two concurrent sweeps may both decide to write, and the loser's write
  degrades to a no-op.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production store, unique index as the guard
  - finalize/store/memory.go: In-memory for engine tests

SEE ALSO:
  - engine.go: The only consumer of Gateway
  - summary/summary.go: Implements SummaryRecalculator
*/
package finalize

import (
	"context"
	"time"
)

// =============================================================================
// READ SIDE - One small interface per concern
// =============================================================================

type CompanySource interface {
	// ListCompanies returns every company, in stable order.
	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, id CompanyID) (*Company, error)
}

type TeamSource interface {
	// ListActiveTeams returns a company's active teams.
	ListActiveTeams(ctx context.Context, companyID CompanyID) ([]Team, error)
	GetTeam(ctx context.Context, id TeamID) (*Team, error)
}

type WorkerSource interface {
	// ListActiveWorkers returns a team's active members. Workers without a
	// team never appear here, so they are never finalized.
	ListActiveWorkers(ctx context.Context, teamID TeamID) ([]Worker, error)
	GetWorker(ctx context.Context, id WorkerID) (*Worker, error)
}

type CheckInSource interface {
	// EarliestCheckIn returns the timestamp of a worker's first check-in
	// ever, or nil if the worker has never checked in.
	EarliestCheckIn(ctx context.Context, workerID WorkerID) (*time.Time, error)
}

type AttendanceSource interface {
	// HasAttendance reports whether any attendance record exists for the
	// worker on the date, whatever its status or source.
	HasAttendance(ctx context.Context, workerID WorkerID, date Date) (bool, error)
}

type LeaveSource interface {
	// HasApprovedLeave reports whether an approved leave window covers the
	// worker on the date. Pending and rejected windows don't count.
	HasApprovedLeave(ctx context.Context, workerID WorkerID, date Date) (bool, error)
}

type HolidaySource interface {
	// IsHoliday reports whether the company observes a holiday on the date.
	IsHoliday(ctx context.Context, companyID CompanyID, date Date) (bool, error)
}

// =============================================================================
// WRITE SIDE - The engine's single mutation
// =============================================================================

type AbsenceWriter interface {
	// RecordAbsence atomically persists an absent attendance record and its
	// paired absence record. Returns ErrAlreadyFinalized without writing
	// anything if the (worker, date) pair is already decided.
	RecordAbsence(ctx context.Context, att AttendanceRecord, abs AbsenceRecord) error
}

// =============================================================================
// RUN RECORDS - Persisted sweep outcomes
// =============================================================================

// RunRecord is the persisted envelope of one sweep: its statistics plus a
// lifecycle status. Saved as running when the sweep starts and upserted
// with the outcome when it ends.
type RunRecord struct {
	Stats  RunStats
	Status RunStatus
	Error  string
}

type RunRecorder interface {
	// SaveRun inserts or replaces the record keyed by Stats.RunID.
	SaveRun(ctx context.Context, run RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	GetRun(ctx context.Context, runID string) (*RunRecord, error)
}

// =============================================================================
// GATEWAY - What the engine depends on
// =============================================================================

type Gateway interface {
	CompanySource
	TeamSource
	WorkerSource
	CheckInSource
	AttendanceSource
	LeaveSource
	HolidaySource
	AbsenceWriter
	RunRecorder
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// SummaryRecalculator refreshes the rollup for one team and date. The engine
// calls it once per affected (team, date) after absences land.
type SummaryRecalculator interface {
	Recalculate(ctx context.Context, teamID TeamID, date Date) error
}

// NoopRecalculator is for tests and for deployments without rollups.
type NoopRecalculator struct{}

func (NoopRecalculator) Recalculate(ctx context.Context, teamID TeamID, date Date) error {
	return nil
}
