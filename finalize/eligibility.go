/*
eligibility.go - Already-recorded and baseline/new-hire rules

PURPOSE:
  The most delicate rules in the engine. A worker owes attendance for a
  target date only if the date isn't already decided AND the worker is past
  their baseline:

    - "Established" worker: has checked in at least once, ever. Owes
      attendance for any work day on/after their team-join date.
    - "New" worker: has never checked in. Owes attendance only from the day
      AFTER joining (firstRequiredDate = join date + 1) — nobody can be
      absent on the day they joined.

  Established status is earned by a single check-in anywhere in history and
  is never revoked by gaps: one check-in three weeks ago followed by
  silence still means established for every later date. That asymmetry is
  deliberate and load-bearing; see the engine tests before touching it.

SEE ALSO:
  - engine.go: Runs these as the last two links of the veto chain
  - store.go: EarliestCheckIn and HasAttendance contracts
*/
package finalize

import (
	"context"
	"time"
)

// EligibilityResolver decides whether a worker can owe attendance at all.
type EligibilityResolver struct {
	attendance AttendanceSource
	checkIns   CheckInSource
}

func NewEligibilityResolver(attendance AttendanceSource, checkIns CheckInSource) *EligibilityResolver {
	return &EligibilityResolver{attendance: attendance, checkIns: checkIns}
}

// AlreadyRecorded reports whether the (worker, date) pair is decided:
// any attendance record, whatever its status or source, ends evaluation.
// This is what makes repeated runs idempotent.
func (r *EligibilityResolver) AlreadyRecorded(ctx context.Context, workerID WorkerID, date Date) (bool, error) {
	return r.attendance.HasAttendance(ctx, workerID, date)
}

// PreBaseline reports whether the target date is too early to hold the
// worker accountable. The join date is taken in the company's zone (loc),
// the same zone every other calendar decision uses.
func (r *EligibilityResolver) PreBaseline(ctx context.Context, w Worker, loc *time.Location, target Date) (bool, error) {
	earliest, err := r.checkIns.EarliestCheckIn(ctx, w.ID)
	if err != nil {
		return false, err
	}
	joined := DateOf(w.JoinedTeamAt.In(loc))
	if earliest != nil {
		// Established: accountable from the join date itself.
		return target.Before(joined), nil
	}
	// New hire: accountable from the day after joining.
	return target.Before(joined.AddDays(1)), nil
}
