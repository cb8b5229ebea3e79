/*
engine.go - Finalization orchestrator

PURPOSE:
  Ties the pieces together for one sweep: read the clock once, localize it
  per company, ask the gate whether and for which date to run, hoist the
  company-wide holiday veto, then walk teams and workers through the
  ordered veto chain. Every worker who survives the chain gets exactly one
  atomic write: an absent attendance record plus its absence record.

CONTAINMENT:
  Failures stay as small as their cause. A bad timezone excludes one
  company. A failed lookup or write loses one worker, who is re-evaluated
  from persisted state on the next run. Only two things fail a run as a
  whole: not being able to list companies, and not being able to record
  the run itself.

DETERMINISM:
  The instant driving every gate and veto decision is read from the
  injected clock exactly once per run, so all companies are judged against
  the same moment and tests can substitute any instant they like. Record
  timestamps (CreatedAt) are read at write time; they are audit data, not
  decision inputs.

CONCURRENCY:
  Companies share no mutable state, so the company loop fans out on a
  bounded errgroup. Per-company partial stats merge under a mutex. The
  per-worker transaction remains the unit of mutual exclusion; the
  (worker, date) uniqueness constraint in the store settles any race.

SEE ALSO:
  - gate.go: When a sweep fires and for which target date
  - calendar.go / eligibility.go: The veto chain's links
  - store.go: The Gateway this engine reads and writes through
*/
package finalize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the parallel company fan-out.
const DefaultConcurrency = 4

// Engine runs finalization sweeps. Construct with NewEngine.
type Engine struct {
	store       Gateway
	summaries   SummaryRecalculator
	clock       clock.Clock
	concurrency int

	calendar    *CalendarEvaluator
	eligibility *EligibilityResolver
}

// NewEngine wires an orchestrator. A nil summaries disables rollups; a nil
// clk means the wall clock.
func NewEngine(store Gateway, summaries SummaryRecalculator, clk clock.Clock) *Engine {
	if summaries == nil {
		summaries = NoopRecalculator{}
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &Engine{
		store:       store,
		summaries:   summaries,
		clock:       clk,
		concurrency: DefaultConcurrency,
		calendar:    NewCalendarEvaluator(store, store),
		eligibility: NewEligibilityResolver(store, store),
	}
}

// SetConcurrency overrides the company fan-out bound.
func (e *Engine) SetConcurrency(n int) {
	if n >= 1 {
		e.concurrency = n
	}
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// FinalizeEndOfDay sweeps every company whose local clock reads the
// finalization hour, targeting the previous local day. forceRun bypasses
// the hour test only; every exemption rule still applies.
func (e *Engine) FinalizeEndOfDay(ctx context.Context, forceRun bool) (*RunStats, error) {
	return e.runAt(ctx, e.clock.Now().UTC(), RunEndOfDay, forceRun)
}

// FinalizeShiftEnd sweeps teams whose local clock has reached their
// shift-end hour, targeting the same local day.
func (e *Engine) FinalizeShiftEnd(ctx context.Context, forceRun bool) (*RunStats, error) {
	return e.runAt(ctx, e.clock.Now().UTC(), RunShiftEnd, forceRun)
}

// =============================================================================
// RUN LIFECYCLE
// =============================================================================

// runAt executes one sweep against a fixed instant.
func (e *Engine) runAt(ctx context.Context, now time.Time, mode RunMode, forceRun bool) (*RunStats, error) {
	stats := NewRunStats(mode, forceRun)
	stats.RunID = "run-" + uuid.NewString()
	stats.StartedAt = now

	if err := e.store.SaveRun(ctx, RunRecord{Stats: *stats, Status: RunRunning}); err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}

	companies, err := e.store.ListCompanies(ctx)
	if err != nil {
		stats.CompletedAt = e.clock.Now().UTC()
		e.finishRun(ctx, stats, RunFailed, err)
		return nil, fmt.Errorf("listing companies: %w", err)
	}

	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(e.concurrency)
	for _, c := range companies {
		c := c
		g.Go(func() error {
			part := e.sweepCompany(ctx, now, mode, forceRun, c)
			mu.Lock()
			stats.Merge(part)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // sweeps contain their own failures

	stats.CompletedAt = e.clock.Now().UTC()
	e.finishRun(ctx, stats, RunCompleted, nil)
	log.Printf("[Engine] run %s (%s, force=%v): %d companies, %d teams, %d evaluated, %d absent, %d skipped",
		stats.RunID, mode, forceRun, stats.Companies, stats.Teams, stats.WorkersEvaluated,
		stats.MarkedAbsent, stats.Skipped)
	return stats, nil
}

func (e *Engine) finishRun(ctx context.Context, stats *RunStats, status RunStatus, runErr error) {
	rec := RunRecord{Stats: *stats, Status: status}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if err := e.store.SaveRun(ctx, rec); err != nil {
		log.Printf("[Engine] run %s: persisting outcome failed: %v", stats.RunID, err)
	}
}

// =============================================================================
// COMPANY SWEEP
// =============================================================================

// sweepCompany judges one company against the shared instant. Failures are
// contained here; the returned partial says what happened.
func (e *Engine) sweepCompany(ctx context.Context, now time.Time, mode RunMode, forceRun bool, c Company) *RunStats {
	part := NewRunStats(mode, forceRun)

	loc, err := LoadZone(c.Timezone)
	if err != nil {
		log.Printf("[Engine] company %s excluded: %v",
			c.ID, &TimezoneError{CompanyID: c.ID, Timezone: c.Timezone, Err: err})
		part.CompaniesSkipped++
		return part
	}
	lt := LocalizeIn(now, loc)

	switch mode {
	case RunEndOfDay:
		e.sweepEndOfDay(ctx, lt, loc, forceRun, c, part)
	case RunShiftEnd:
		e.sweepShiftEnd(ctx, lt, loc, forceRun, c, part)
	}
	return part
}

func (e *Engine) sweepEndOfDay(ctx context.Context, lt LocalTime, loc *time.Location, forceRun bool, c Company, part *RunStats) {
	gate := EndOfDayGate(lt, forceRun)
	if !gate.Run {
		return
	}
	target := gate.TargetDate

	holiday, err := e.calendar.Holiday(ctx, c.ID, target)
	if err != nil {
		log.Printf("[Engine] company %s: holiday lookup failed, left for next run: %v", c.ID, err)
		part.CompaniesSkipped++
		return
	}
	if holiday {
		part.Companies++
		part.CompaniesOnHoliday++
		return
	}

	teams, err := e.store.ListActiveTeams(ctx, c.ID)
	if err != nil {
		log.Printf("[Engine] company %s: listing teams failed, left for next run: %v", c.ID, err)
		part.CompaniesSkipped++
		return
	}
	part.Companies++
	for _, team := range teams {
		e.sweepTeam(ctx, loc, target, team, part)
	}
}

func (e *Engine) sweepShiftEnd(ctx context.Context, lt LocalTime, loc *time.Location, forceRun bool, c Company, part *RunStats) {
	teams, err := e.store.ListActiveTeams(ctx, c.ID)
	if err != nil {
		log.Printf("[Engine] company %s: listing teams failed, left for next run: %v", c.ID, err)
		part.CompaniesSkipped++
		return
	}

	var fired []Team
	for _, team := range teams {
		if gate := ShiftEndGate(lt, team, forceRun); gate.Run {
			fired = append(fired, team)
		}
	}
	if len(fired) == 0 {
		return
	}

	// All fired teams share the same-day target, so the company-wide
	// holiday veto is decided once.
	target := lt.Date
	holiday, err := e.calendar.Holiday(ctx, c.ID, target)
	if err != nil {
		log.Printf("[Engine] company %s: holiday lookup failed, left for next run: %v", c.ID, err)
		part.CompaniesSkipped++
		return
	}
	part.Companies++
	if holiday {
		part.CompaniesOnHoliday++
		return
	}
	for _, team := range fired {
		e.sweepTeam(ctx, loc, target, team, part)
	}
}

// =============================================================================
// TEAM SWEEP AND VETO CHAIN
// =============================================================================

// vetoFunc is one named predicate: true means skip with the chain's reason.
type vetoFunc func(ctx context.Context, w Worker, team Team, date Date) (bool, error)

type vetoCheck struct {
	reason  SkipReason
	applies vetoFunc
}

// vetoChain is THE ordered list of per-worker vetoes. The company-wide
// holiday veto runs earlier, at company level. Order here is chosen for
// cost (cheapest first); outcomes don't depend on it. Adding a rule means
// adding an entry, nothing else.
func (e *Engine) vetoChain(loc *time.Location) []vetoCheck {
	return []vetoCheck{
		{SkipNonWorkDay, func(ctx context.Context, w Worker, team Team, date Date) (bool, error) {
			return e.calendar.NonWorkDay(team, date), nil
		}},
		{SkipOnLeave, func(ctx context.Context, w Worker, team Team, date Date) (bool, error) {
			return e.calendar.OnLeave(ctx, w.ID, date)
		}},
		{SkipAlreadyRecorded, func(ctx context.Context, w Worker, team Team, date Date) (bool, error) {
			return e.eligibility.AlreadyRecorded(ctx, w.ID, date)
		}},
		{SkipPreBaseline, func(ctx context.Context, w Worker, team Team, date Date) (bool, error) {
			return e.eligibility.PreBaseline(ctx, w, loc, date)
		}},
	}
}

// sweepTeam evaluates every active member of one team for the target date
// and refreshes the team rollup when any absence lands.
func (e *Engine) sweepTeam(ctx context.Context, loc *time.Location, target Date, team Team, part *RunStats) {
	workers, err := e.store.ListActiveWorkers(ctx, team.ID)
	if err != nil {
		log.Printf("[Engine] team %s: listing workers failed, left for next run: %v", team.ID, err)
		return
	}
	part.Teams++

	chain := e.vetoChain(loc)
	created := 0
	for _, w := range workers {
		part.WorkersEvaluated++

		reason, vetoed, err := applyVetoes(ctx, chain, w, team, target)
		if err != nil {
			part.WorkerFailures++
			log.Printf("[Engine] worker %s on %s: evaluation failed: %v", w.ID, target, err)
			continue
		}
		if vetoed {
			part.CountSkip(reason)
			continue
		}

		if err := e.markAbsent(ctx, w, team, target); err != nil {
			if errors.Is(err, ErrAlreadyFinalized) {
				// Lost a benign race; someone else decided the day.
				part.CountSkip(SkipAlreadyRecorded)
				continue
			}
			part.WorkerFailures++
			log.Printf("[Engine] absence write failed: %v", &WriteError{WorkerID: w.ID, Date: target, Err: err})
			continue
		}
		part.MarkedAbsent++
		created++
	}

	if created > 0 {
		if err := e.summaries.Recalculate(ctx, team.ID, target); err != nil {
			log.Printf("[Engine] team %s: summary recalculation failed for %s: %v", team.ID, target, err)
		}
	}
}

func applyVetoes(ctx context.Context, chain []vetoCheck, w Worker, team Team, target Date) (SkipReason, bool, error) {
	for _, v := range chain {
		hit, err := v.applies(ctx, w, team, target)
		if err != nil {
			return "", false, err
		}
		if hit {
			return v.reason, true, nil
		}
	}
	return "", false, nil
}

// markAbsent performs the one finalization write: an absent attendance
// record plus its absence record, atomically.
func (e *Engine) markAbsent(ctx context.Context, w Worker, team Team, target Date) error {
	now := e.clock.Now().UTC()
	att := AttendanceRecord{
		ID:        uuid.NewString(),
		WorkerID:  w.ID,
		TeamID:    team.ID,
		CompanyID: team.CompanyID,
		Date:      target,
		Status:    AttendanceAbsent,
		Source:    SourceFinalization,
		CreatedAt: now,
	}
	abs := AbsenceRecord{
		ID:        uuid.NewString(),
		WorkerID:  w.ID,
		TeamID:    team.ID,
		CompanyID: team.CompanyID,
		Date:      target,
		Reason:    ReasonNoCheckIn,
		CreatedAt: now,
	}
	return e.store.RecordAbsence(ctx, att, abs)
}
