/*
Package finalize implements the attendance finalization engine.

PURPOSE:
  This package contains the tenant-agnostic core that decides, for every
  worker and every working day, whether an unexcused absence must be
  recorded. A recurring sweep wakes up, figures out which companies have
  reached their local finalization moment, applies calendar and
  eligibility rules, and writes absence facts exactly once.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: A civil calendar date (no clock, no zone) — the engine's key type
  - TimeOfDay: Wall-clock shift boundaries (hour:minute)
  - Weekday codes: "MON".."SUN" strings forming a team's work-day set
  - Company/Team/Worker: The tenant hierarchy
  - AttendanceRecord/AbsenceRecord: The facts the engine writes
  - RunStats: Aggregate outcome of one finalization sweep

DESIGN PRINCIPLES:
  1. Explicit time: the engine never reads the wall clock ambiently; an
     injected clock is read once per run and threaded down as a value
  2. One decision, one key: (worker, date) uniquely identifies a
     finalization outcome; storage enforces it as the last line of defense
  3. Type safety: strong ID types prevent mixing company/team/worker IDs
  4. Local-first: all calendar decisions happen in the company's timezone

SEE ALSO:
  - localtime.go: UTC instant -> company-local calendar context
  - gate.go: when a sweep fires and which date it targets
  - calendar.go: holiday / work-day / leave vetoes
  - eligibility.go: already-recorded and baseline rules
  - engine.go: the orchestrator tying it all together
*/
package finalize

import (
	"fmt"
	"time"

	"github.com/juju/collections/set"
)

// =============================================================================
// IDENTIFIERS - Type-safe IDs
// =============================================================================

type CompanyID string
type TeamID string
type WorkerID string

func (id CompanyID) String() string { return string(id) }
func (id TeamID) String() string    { return string(id) }
func (id WorkerID) String() string  { return string(id) }

// =============================================================================
// DATE - Civil calendar date
// =============================================================================

// Date is a calendar date with no clock and no zone. Finalization targets,
// leave windows, holidays, and attendance records are all keyed by Date;
// converting a UTC instant into a Date is the Time Oracle's job alone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf extracts the calendar date from an instant as observed in the
// instant's own location. Callers localize first (see Localize).
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) normalize() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d == other }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d == other }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d == other }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.normalize().AddDate(0, 0, n)) }

// Properties
func (d Date) Weekday() Weekday { return weekdayCode(d.normalize().Weekday()) }
func (d Date) IsZero() bool     { return d == Date{} }
func (d Date) String() string   { return d.normalize().Format(dateLayout) }

// =============================================================================
// TIME OF DAY - Shift boundaries
// =============================================================================

// TimeOfDay is a wall-clock moment within a day (hour and minute).
type TimeOfDay struct {
	Hour   int
	Minute int
}

const timeOfDayLayout = "15:04"

// ParseTimeOfDay parses a "15:04" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeOfDayLayout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) MinuteOfDay() int            { return t.Hour*60 + t.Minute }
func (t TimeOfDay) Before(other TimeOfDay) bool { return t.MinuteOfDay() < other.MinuteOfDay() }
func (t TimeOfDay) String() string              { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// =============================================================================
// WEEKDAYS - Work-day codes
// =============================================================================

// Weekday is a three-letter day code as stored in team schedules.
type Weekday string

const (
	Monday    Weekday = "MON"
	Tuesday   Weekday = "TUE"
	Wednesday Weekday = "WED"
	Thursday  Weekday = "THU"
	Friday    Weekday = "FRI"
	Saturday  Weekday = "SAT"
	Sunday    Weekday = "SUN"
)

var weekdayByTime = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

func weekdayCode(wd time.Weekday) Weekday { return weekdayByTime[wd] }

// KnownWeekdays returns the set of all valid day codes.
func KnownWeekdays() set.Strings {
	return set.NewStrings(
		string(Monday), string(Tuesday), string(Wednesday), string(Thursday),
		string(Friday), string(Saturday), string(Sunday),
	)
}

// NewWorkDaySet validates day codes and builds a work-day set.
// An empty or malformed set is a configuration error: a team with no valid
// work days can never owe attendance, which is almost always a data bug.
func NewWorkDaySet(codes ...string) (set.Strings, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: empty work-day set", ErrBadSchedule)
	}
	known := KnownWeekdays()
	days := set.NewStrings()
	for _, c := range codes {
		if !known.Contains(c) {
			return nil, fmt.Errorf("%w: unknown day code %q", ErrBadSchedule, c)
		}
		days.Add(c)
	}
	return days, nil
}

// =============================================================================
// DATE RANGE - Inclusive spans
// =============================================================================

// DateRange is an inclusive [Start, End] span of calendar dates.
type DateRange struct {
	Start Date
	End   Date
}

func (r DateRange) Valid() bool { return !r.End.Before(r.Start) }

// Contains reports whether d falls inside the range, boundaries included.
func (r DateRange) Contains(d Date) bool {
	return r.Start.BeforeOrEqual(d) && d.BeforeOrEqual(r.End)
}

// Days returns the number of calendar days covered (both boundaries count).
func (r DateRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.normalize().Sub(r.Start.normalize()).Hours()/24) + 1
}

// =============================================================================
// TENANT HIERARCHY - Company / Team / Worker
// =============================================================================

// Company is a tenant. Its timezone is an IANA name fixed at creation; every
// calendar decision for the company's workers happens in that zone.
type Company struct {
	ID        CompanyID
	Name      string
	Timezone  string
	CreatedAt time.Time
}

// Schedule is a team's validated working pattern.
type Schedule struct {
	WorkDays   set.Strings // weekday codes, e.g. MON..FRI
	ShiftStart TimeOfDay
	ShiftEnd   TimeOfDay // strictly after ShiftStart; no overnight shifts
}

// WorksOn reports whether the schedule includes the given weekday.
func (s Schedule) WorksOn(day Weekday) bool {
	return s.WorkDays.Contains(string(day))
}

// Team groups workers under one schedule within a company.
type Team struct {
	ID        TeamID
	CompanyID CompanyID
	Name      string
	Schedule  Schedule
	Active    bool
	CreatedAt time.Time
}

// Worker is an employee account. A worker with no team is never finalized.
// JoinedTeamAt anchors the new-hire grace rule: someone who joined today
// cannot owe attendance for today.
type Worker struct {
	ID           WorkerID
	CompanyID    CompanyID
	TeamID       TeamID
	Name         string
	Email        string
	JoinedTeamAt time.Time
	Active       bool
	CreatedAt    time.Time
}

// =============================================================================
// FACTS - Check-ins, attendance, absences, leave, holidays
// =============================================================================

// CheckIn is an immutable presence fact. The engine only ever asks whether a
// worker has any check-in at all; the normal check-in flow (out of scope
// here) is what creates them.
type CheckIn struct {
	ID        string
	WorkerID  WorkerID
	CreatedAt time.Time
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

type AttendanceSource string

const (
	SourceCheckIn      AttendanceSource = "check_in"
	SourceFinalization AttendanceSource = "finalization"
)

// AttendanceRecord is the per-(worker, date) outcome. At most one exists per
// worker per date; storage enforces the pair's uniqueness so concurrent
// sweeps degrade to harmless no-ops.
type AttendanceRecord struct {
	ID        string
	WorkerID  WorkerID
	TeamID    TeamID
	CompanyID CompanyID
	Date      Date
	Status    AttendanceStatus
	Source    AttendanceSource
	CreatedAt time.Time
}

// AbsenceRecord marks an unexcused absence. It is created in the same
// transaction as its absent AttendanceRecord, never on its own.
type AbsenceRecord struct {
	ID        string
	WorkerID  WorkerID
	TeamID    TeamID
	CompanyID CompanyID
	Date      Date
	Reason    string
	CreatedAt time.Time
}

// ReasonNoCheckIn is the reason recorded on engine-created absences.
const ReasonNoCheckIn = "no_check_in"

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

type LeaveType string

const (
	LeaveVacation LeaveType = "vacation"
	LeaveSick     LeaveType = "sick"
	LeavePersonal LeaveType = "personal"
	LeaveUnpaid   LeaveType = "unpaid"
)

// LeaveWindow is a worker's time-off span, boundaries inclusive. Only
// approved windows exempt a worker from finalization.
type LeaveWindow struct {
	ID        string
	WorkerID  WorkerID
	Type      LeaveType
	Status    LeaveStatus
	StartDate Date
	EndDate   Date
	CreatedAt time.Time
}

// Covers reports whether the window spans the given date.
func (w LeaveWindow) Covers(d Date) bool {
	return DateRange{Start: w.StartDate, End: w.EndDate}.Contains(d)
}

// Holiday is a company-wide non-working date. Its veto beats every other
// rule: on a holiday nobody in the company is marked absent.
type Holiday struct {
	ID        string
	CompanyID CompanyID
	Date      Date
	Name      string
	CreatedAt time.Time
}

// =============================================================================
// RUN OUTCOME - Modes, skip reasons, statistics
// =============================================================================

// RunMode selects which trigger gate a sweep uses.
type RunMode string

const (
	// RunEndOfDay finalizes yesterday for companies whose local clock
	// reads the early-morning finalization hour.
	RunEndOfDay RunMode = "end_of_day"
	// RunShiftEnd finalizes today for teams whose local clock has reached
	// their shift-end hour.
	RunShiftEnd RunMode = "shift_end"
)

// SkipReason names why a worker (or a whole company) was left alone.
type SkipReason string

const (
	SkipAlreadyRecorded SkipReason = "already_recorded"
	SkipHoliday         SkipReason = "holiday"
	SkipNonWorkDay      SkipReason = "non_work_day"
	SkipOnLeave         SkipReason = "on_leave"
	SkipPreBaseline     SkipReason = "pre_baseline"
)

// RunStatus tracks a persisted run record's lifecycle.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunStats is the aggregate outcome of one finalization sweep. One instance
// is built per run, persisted as a run record, and returned to the caller.
type RunStats struct {
	RunID              string
	Mode               RunMode
	ForceRun           bool
	Companies          int // companies whose gate fired and were swept
	CompaniesSkipped   int // excluded before evaluation (bad timezone, failed lookups)
	CompaniesOnHoliday int // vetoed wholesale by a holiday
	Teams              int // teams whose workers were evaluated
	WorkersEvaluated   int
	Skipped            int // workers left alone, by the reasons below
	MarkedAbsent       int
	WorkerFailures     int // single-worker evaluation or write failures
	SkipReasons        map[SkipReason]int
	StartedAt          time.Time
	CompletedAt        time.Time
}

func NewRunStats(mode RunMode, forceRun bool) *RunStats {
	return &RunStats{
		Mode:        mode,
		ForceRun:    forceRun,
		SkipReasons: make(map[SkipReason]int),
	}
}

// CountSkip records one skipped worker.
func (s *RunStats) CountSkip(reason SkipReason) {
	s.Skipped++
	s.SkipReasons[reason]++
}

// Merge folds a per-company partial into the run total. The engine guards
// calls with its own mutex; RunStats itself is not goroutine-safe.
func (s *RunStats) Merge(part *RunStats) {
	s.Companies += part.Companies
	s.CompaniesSkipped += part.CompaniesSkipped
	s.CompaniesOnHoliday += part.CompaniesOnHoliday
	s.Teams += part.Teams
	s.WorkersEvaluated += part.WorkersEvaluated
	s.Skipped += part.Skipped
	s.MarkedAbsent += part.MarkedAbsent
	s.WorkerFailures += part.WorkerFailures
	for reason, n := range part.SkipReasons {
		s.SkipReasons[reason] += n
	}
}
