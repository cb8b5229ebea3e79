/*
errors.go - Centralized error types for the finalization engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  Store implementations and the API layer wrap these with added context.

ERROR CATEGORIES:
  1. Configuration errors - Bad tenant data (timezone, schedule); the
     affected company is excluded from the run, counted, never fatal
  2. Write errors - Absence persistence failures; counted per worker
  3. Not-found errors - Missing entities on store lookups

USAGE:
  Callers branch with errors.Is:

    if errors.Is(err, finalize.ErrAlreadyFinalized) {
        // lost a benign race; the day is already decided
    }

SEE ALSO:
  - localtime.go: Produces ErrBadTimezone
  - engine.go: Converts ErrAlreadyFinalized into an already_recorded skip
  - store/sqlite/sqlite.go: Maps unique-index violations to ErrAlreadyFinalized
*/
package finalize

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrBadTimezone is returned when a company's timezone is empty or not
	// a known IANA name. The engine never falls back to UTC.
	ErrBadTimezone = errors.New("invalid company timezone")

	// ErrBadSchedule is returned when a team schedule is malformed: empty
	// or unknown work-day codes, unparseable shift times, or a shift that
	// ends before it starts.
	ErrBadSchedule = errors.New("invalid team schedule")

	// ErrAlreadyFinalized is returned when an attendance record already
	// exists for the (worker, date) pair. Losing this race is expected and
	// harmless; the day was decided by someone else.
	ErrAlreadyFinalized = errors.New("attendance already recorded for worker and date")

	// ErrWriteFailed is returned when an absence write cannot be persisted.
	ErrWriteFailed = errors.New("absence write failed")

	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = errors.New("invalid date range: end before start")

	// ErrDuplicate is returned when a create collides with an existing row
	// (same ID, or same company/date/name for holidays).
	ErrDuplicate = errors.New("already exists")

	// ErrCompanyNotFound is returned when a referenced company doesn't exist.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrTeamNotFound is returned when a referenced team doesn't exist.
	ErrTeamNotFound = errors.New("team not found")

	// ErrWorkerNotFound is returned when a referenced worker doesn't exist.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrLeaveNotFound is returned when a referenced leave window doesn't exist.
	ErrLeaveNotFound = errors.New("leave window not found")

	// ErrRunNotFound is returned when a referenced finalization run doesn't exist.
	ErrRunNotFound = errors.New("finalization run not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TimezoneError reports which company carried the unusable timezone.
type TimezoneError struct {
	CompanyID CompanyID
	Timezone  string
	Err       error
}

func (e *TimezoneError) Error() string {
	return fmt.Sprintf("company %s: timezone %q unusable: %v", e.CompanyID, e.Timezone, e.Err)
}

func (e *TimezoneError) Unwrap() error { return ErrBadTimezone }

// WriteError reports which worker/date write failed and why.
type WriteError struct {
	WorkerID WorkerID
	Date     Date
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("worker %s on %s: %v", e.WorkerID, e.Date, e.Err)
}

func (e *WriteError) Unwrap() error { return ErrWriteFailed }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError returns true for tenant-data problems that exclude a company
// from a run rather than failing it.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrBadTimezone) || errors.Is(err, ErrBadSchedule)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrTeamNotFound) ||
		errors.Is(err, ErrWorkerNotFound) ||
		errors.Is(err, ErrLeaveNotFound) ||
		errors.Is(err, ErrRunNotFound)
}
