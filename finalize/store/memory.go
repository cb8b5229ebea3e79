// Package store provides Gateway implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/attendance-engine/finalize"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements finalize.Gateway with mutex-guarded maps. It keeps the
// same semantics as the SQLite store where the engine can tell the
// difference: stable listing order, (worker, date) uniqueness, and the
// attendance+absence pair landing together or not at all.
type Memory struct {
	mu         sync.RWMutex
	companies  map[finalize.CompanyID]finalize.Company
	teams      map[finalize.TeamID]finalize.Team
	workers    map[finalize.WorkerID]finalize.Worker
	checkIns   map[finalize.WorkerID][]finalize.CheckIn
	attendance map[dayKey]finalize.AttendanceRecord
	absences   map[dayKey]finalize.AbsenceRecord
	leaves     map[finalize.WorkerID][]finalize.LeaveWindow
	holidays   map[holidayKey]finalize.Holiday
	runs       map[string]finalize.RunRecord
	runOrder   []string
}

type dayKey struct {
	WorkerID finalize.WorkerID
	Date     finalize.Date
}

type holidayKey struct {
	CompanyID finalize.CompanyID
	Date      finalize.Date
}

func NewMemory() *Memory {
	return &Memory{
		companies:  make(map[finalize.CompanyID]finalize.Company),
		teams:      make(map[finalize.TeamID]finalize.Team),
		workers:    make(map[finalize.WorkerID]finalize.Worker),
		checkIns:   make(map[finalize.WorkerID][]finalize.CheckIn),
		attendance: make(map[dayKey]finalize.AttendanceRecord),
		absences:   make(map[dayKey]finalize.AbsenceRecord),
		leaves:     make(map[finalize.WorkerID][]finalize.LeaveWindow),
		holidays:   make(map[holidayKey]finalize.Holiday),
		runs:       make(map[string]finalize.RunRecord),
	}
}

// =============================================================================
// SEEDING - Direct writes for tests and scenarios
// =============================================================================

func (m *Memory) AddCompany(c finalize.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.ID] = c
}

func (m *Memory) AddTeam(t finalize.Team) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[t.ID] = t
}

func (m *Memory) AddWorker(w finalize.Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[w.ID] = w
}

func (m *Memory) AddCheckIn(c finalize.CheckIn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkIns[c.WorkerID] = append(m.checkIns[c.WorkerID], c)
}

func (m *Memory) AddLeave(w finalize.LeaveWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves[w.WorkerID] = append(m.leaves[w.WorkerID], w)
}

func (m *Memory) AddHoliday(h finalize.Holiday) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[holidayKey{CompanyID: h.CompanyID, Date: h.Date}] = h
}

// AddAttendance seeds a record directly, as the normal check-in flow would
// have. Last write wins; seeding is not the guarded path.
func (m *Memory) AddAttendance(rec finalize.AttendanceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance[dayKey{WorkerID: rec.WorkerID, Date: rec.Date}] = rec
}

// =============================================================================
// READ SIDE
// =============================================================================

func (m *Memory) ListCompanies(_ context.Context) ([]finalize.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]finalize.Company, 0, len(m.companies))
	for _, c := range m.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetCompany(_ context.Context, id finalize.CompanyID) (*finalize.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.companies[id]
	if !ok {
		return nil, finalize.ErrCompanyNotFound
	}
	return &c, nil
}

func (m *Memory) ListActiveTeams(_ context.Context, companyID finalize.CompanyID) ([]finalize.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []finalize.Team
	for _, t := range m.teams {
		if t.CompanyID == companyID && t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetTeam(_ context.Context, id finalize.TeamID) (*finalize.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.teams[id]
	if !ok {
		return nil, finalize.ErrTeamNotFound
	}
	return &t, nil
}

func (m *Memory) ListActiveWorkers(_ context.Context, teamID finalize.TeamID) ([]finalize.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []finalize.Worker
	for _, w := range m.workers {
		if w.TeamID == teamID && w.Active {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetWorker(_ context.Context, id finalize.WorkerID) (*finalize.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workers[id]
	if !ok {
		return nil, finalize.ErrWorkerNotFound
	}
	return &w, nil
}

func (m *Memory) EarliestCheckIn(_ context.Context, workerID finalize.WorkerID) (*time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ins := m.checkIns[workerID]
	if len(ins) == 0 {
		return nil, nil
	}
	earliest := ins[0].CreatedAt
	for _, c := range ins[1:] {
		if c.CreatedAt.Before(earliest) {
			earliest = c.CreatedAt
		}
	}
	return &earliest, nil
}

func (m *Memory) HasAttendance(_ context.Context, workerID finalize.WorkerID, date finalize.Date) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.attendance[dayKey{WorkerID: workerID, Date: date}]
	return ok, nil
}

func (m *Memory) HasApprovedLeave(_ context.Context, workerID finalize.WorkerID, date finalize.Date) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.leaves[workerID] {
		if w.Status == finalize.LeaveApproved && w.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) IsHoliday(_ context.Context, companyID finalize.CompanyID, date finalize.Date) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.holidays[holidayKey{CompanyID: companyID, Date: date}]
	return ok, nil
}

// =============================================================================
// WRITE SIDE
// =============================================================================

// RecordAbsence enforces the (worker, date) uniqueness under one lock, so a
// concurrent duplicate degrades to ErrAlreadyFinalized exactly as the
// SQLite unique index does.
func (m *Memory) RecordAbsence(_ context.Context, att finalize.AttendanceRecord, abs finalize.AbsenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dayKey{WorkerID: att.WorkerID, Date: att.Date}
	if _, exists := m.attendance[k]; exists {
		return finalize.ErrAlreadyFinalized
	}
	m.attendance[k] = att
	m.absences[k] = abs
	return nil
}

// =============================================================================
// RUN RECORDS
// =============================================================================

func (m *Memory) SaveRun(_ context.Context, run finalize.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := run.Stats.RunID
	if _, exists := m.runs[id]; !exists {
		m.runOrder = append(m.runOrder, id)
	}
	m.runs[id] = run
	return nil
}

func (m *Memory) ListRuns(_ context.Context, limit int) ([]finalize.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []finalize.RunRecord
	for i := len(m.runOrder) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.runs[m.runOrder[i]])
	}
	return out, nil
}

func (m *Memory) GetRun(_ context.Context, runID string) (*finalize.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, finalize.ErrRunNotFound
	}
	return &run, nil
}

// =============================================================================
// TEST ACCESSORS
// =============================================================================

// AttendanceFor returns the decided record for a (worker, date), or nil.
func (m *Memory) AttendanceFor(workerID finalize.WorkerID, date finalize.Date) *finalize.AttendanceRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.attendance[dayKey{WorkerID: workerID, Date: date}]
	if !ok {
		return nil
	}
	return &rec
}

// AbsencesFor returns a worker's absence records, oldest date first.
func (m *Memory) AbsencesFor(workerID finalize.WorkerID) []finalize.AbsenceRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []finalize.AbsenceRecord
	for k, abs := range m.absences {
		if k.WorkerID == workerID {
			out = append(out, abs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
