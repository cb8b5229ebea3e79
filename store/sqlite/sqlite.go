/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the engine's persistence gateway (finalize.Gateway) and the
  rollup store (summary.Store) using SQLite. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  finalize.Gateway: Tenant reads, the atomic absence write, run records
  summary.Store:    Rollup counts and the (team, date) upsert

THE RACE GUARD:
  idx_attendance_worker_date is the system's last line of defense. Any
  number of concurrent sweeps may decide to finalize the same worker and
  date; exactly one INSERT wins, the rest surface ErrAlreadyFinalized and
  the engine counts a skip. RecordAbsence wraps the attendance and absence
  INSERTs in one transaction so a crash can't leave half a decision.

KEY TABLES:
  companies, teams, workers:  Tenant hierarchy (teams carry schedules)
  check_ins:                  Immutable presence facts
  attendance_records:         One decided row per (worker, date)
  absence_records:            Unexcused absences, paired 1:1 with absent rows
  leave_windows, holidays:    Exemption calendars
  finalization_runs:          Persisted sweep outcomes
  team_day_summaries:         Derived rollups, unique per (team, date)

DATE AND TIME STORAGE:
  Calendar dates are TEXT "2006-01-02" (lexicographic order == calendar
  order), timestamps are TEXT RFC3339 UTC. Attendance rates are stored as
  decimal strings, never floats.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := finalize.NewEngine(store, summary.NewRecalculator(store, nil), nil)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - finalize/store.go: Interface definitions
  - finalize/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/finalize"
	"github.com/warp/attendance-engine/summary"
)

// Store implements the persistence interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Companies (tenants; timezone fixed at creation)
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		timezone TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Teams (working pattern lives here)
	CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		work_days TEXT NOT NULL,
		shift_start TEXT NOT NULL,
		shift_end TEXT NOT NULL,
		active BOOLEAN DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_teams_company
		ON teams(company_id, active);

	-- Workers (empty team_id = unassigned, never finalized)
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		team_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		email TEXT,
		joined_team_at TEXT NOT NULL,
		active BOOLEAN DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_workers_team
		ON workers(team_id, active);

	-- Check-ins (immutable facts; the engine only reads the earliest)
	CREATE TABLE IF NOT EXISTS check_ins (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_check_ins_worker
		ON check_ins(worker_id, created_at);

	-- Attendance records: one decided row per (worker, date)
	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		team_id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: the final race guard. Concurrent sweeps may both decide to
	-- finalize a worker's date; exactly one row can ever land.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_worker_date
		ON attendance_records(worker_id, date);

	CREATE INDEX IF NOT EXISTS idx_attendance_team_date
		ON attendance_records(team_id, date, status);

	-- Absence records, paired 1:1 with absent attendance rows
	CREATE TABLE IF NOT EXISTS absence_records (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		team_id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		date TEXT NOT NULL,
		reason TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_absence_worker_date
		ON absence_records(worker_id, date);
	CREATE INDEX IF NOT EXISTS idx_absence_company_date
		ON absence_records(company_id, date);

	-- Leave windows (inclusive date spans; only approved ones exempt)
	CREATE TABLE IF NOT EXISTS leave_windows (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_worker
		ON leave_windows(worker_id, status, start_date, end_date);

	-- Holidays (company-wide vetoes)
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_company_date
		ON holidays(company_id, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(company_id, date, name);

	-- Finalization runs (persisted sweep outcomes)
	CREATE TABLE IF NOT EXISTS finalization_runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		force_run BOOLEAN DEFAULT FALSE,
		status TEXT NOT NULL,
		companies INTEGER DEFAULT 0,
		companies_skipped INTEGER DEFAULT 0,
		companies_on_holiday INTEGER DEFAULT 0,
		teams INTEGER DEFAULT 0,
		workers_evaluated INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		marked_absent INTEGER DEFAULT 0,
		worker_failures INTEGER DEFAULT 0,
		skip_reasons_json TEXT,
		error TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started
		ON finalization_runs(started_at DESC);

	-- Team/day rollups (derived data, recomputed at will)
	CREATE TABLE IF NOT EXISTS team_day_summaries (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		date TEXT NOT NULL,
		scheduled INTEGER DEFAULT 0,
		present INTEGER DEFAULT 0,
		absent INTEGER DEFAULT 0,
		on_leave INTEGER DEFAULT 0,
		attendance_rate TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		UNIQUE(team_id, date)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// COMPANIES
// =============================================================================

// CreateCompany persists a company. The timezone is validated here, at
// creation, because it can never change afterwards.
func (s *Store) CreateCompany(ctx context.Context, c finalize.Company) error {
	if _, err := finalize.LoadZone(c.Timezone); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, timezone, created_at)
		VALUES (?, ?, ?, ?)`,
		string(c.ID), c.Name, c.Timezone, c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("company %s: %w", c.ID, finalize.ErrDuplicate)
		}
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (s *Store) GetCompany(ctx context.Context, id finalize.CompanyID) (*finalize.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, timezone, created_at FROM companies WHERE id = ?`, string(id))
	c, err := scanCompany(row)
	if err == sql.ErrNoRows {
		return nil, finalize.ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

func (s *Store) ListCompanies(ctx context.Context) ([]finalize.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, timezone, created_at FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var out []finalize.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCompany(row interface{ Scan(dest ...any) error }) (*finalize.Company, error) {
	var c finalize.Company
	var id, createdAt string
	if err := row.Scan(&id, &c.Name, &c.Timezone, &createdAt); err != nil {
		return nil, err
	}
	c.ID = finalize.CompanyID(id)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

// =============================================================================
// TEAMS
// =============================================================================

func (s *Store) CreateTeam(ctx context.Context, t finalize.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, company_id, name, work_days, shift_start, shift_end, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(t.ID), string(t.CompanyID), t.Name,
		strings.Join(t.Schedule.WorkDays.SortedValues(), ","),
		t.Schedule.ShiftStart.String(), t.Schedule.ShiftEnd.String(),
		t.Active, t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("team %s: %w", t.ID, finalize.ErrDuplicate)
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (s *Store) GetTeam(ctx context.Context, id finalize.TeamID) (*finalize.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, work_days, shift_start, shift_end, active, created_at
		FROM teams WHERE id = ?`, string(id))
	t, err := scanTeam(row)
	if err == sql.ErrNoRows {
		return nil, finalize.ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}

// ListTeams returns every team of a company, active or not.
func (s *Store) ListTeams(ctx context.Context, companyID finalize.CompanyID) ([]finalize.Team, error) {
	return s.listTeams(ctx, `
		SELECT id, company_id, name, work_days, shift_start, shift_end, active, created_at
		FROM teams WHERE company_id = ? ORDER BY id`, string(companyID))
}

func (s *Store) ListActiveTeams(ctx context.Context, companyID finalize.CompanyID) ([]finalize.Team, error) {
	return s.listTeams(ctx, `
		SELECT id, company_id, name, work_days, shift_start, shift_end, active, created_at
		FROM teams WHERE company_id = ? AND active ORDER BY id`, string(companyID))
}

func (s *Store) listTeams(ctx context.Context, query string, args ...any) ([]finalize.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var out []finalize.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTeam(row interface{ Scan(dest ...any) error }) (*finalize.Team, error) {
	var t finalize.Team
	var id, companyID, workDays, shiftStart, shiftEnd, createdAt string
	if err := row.Scan(&id, &companyID, &t.Name, &workDays, &shiftStart, &shiftEnd, &t.Active, &createdAt); err != nil {
		return nil, err
	}
	t.ID = finalize.TeamID(id)
	t.CompanyID = finalize.CompanyID(companyID)

	days, err := finalize.NewWorkDaySet(strings.Split(workDays, ",")...)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", id, err)
	}
	start, err := finalize.ParseTimeOfDay(shiftStart)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w: %v", id, finalize.ErrBadSchedule, err)
	}
	end, err := finalize.ParseTimeOfDay(shiftEnd)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w: %v", id, finalize.ErrBadSchedule, err)
	}
	t.Schedule = finalize.Schedule{WorkDays: days, ShiftStart: start, ShiftEnd: end}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &t, nil
}

// =============================================================================
// WORKERS
// =============================================================================

func (s *Store) CreateWorker(ctx context.Context, w finalize.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (id, company_id, team_id, name, email, joined_team_at, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(w.ID), string(w.CompanyID), string(w.TeamID), w.Name, nullString(w.Email),
		w.JoinedTeamAt.UTC().Format(time.RFC3339), w.Active, w.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("worker %s: %w", w.ID, finalize.ErrDuplicate)
		}
		return fmt.Errorf("failed to create worker: %w", err)
	}
	return nil
}

func (s *Store) GetWorker(ctx context.Context, id finalize.WorkerID) (*finalize.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, team_id, name, email, joined_team_at, active, created_at
		FROM workers WHERE id = ?`, string(id))
	w, err := scanWorker(row)
	if err == sql.ErrNoRows {
		return nil, finalize.ErrWorkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

// ListTeamWorkers returns every member of a team, active or not.
func (s *Store) ListTeamWorkers(ctx context.Context, teamID finalize.TeamID) ([]finalize.Worker, error) {
	return s.listWorkers(ctx, `
		SELECT id, company_id, team_id, name, email, joined_team_at, active, created_at
		FROM workers WHERE team_id = ? ORDER BY id`, string(teamID))
}

func (s *Store) ListActiveWorkers(ctx context.Context, teamID finalize.TeamID) ([]finalize.Worker, error) {
	return s.listWorkers(ctx, `
		SELECT id, company_id, team_id, name, email, joined_team_at, active, created_at
		FROM workers WHERE team_id = ? AND active ORDER BY id`, string(teamID))
}

func (s *Store) listWorkers(ctx context.Context, query string, args ...any) ([]finalize.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	var out []finalize.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func scanWorker(row interface{ Scan(dest ...any) error }) (*finalize.Worker, error) {
	var w finalize.Worker
	var id, companyID, teamID, joinedAt, createdAt string
	var email sql.NullString
	if err := row.Scan(&id, &companyID, &teamID, &w.Name, &email, &joinedAt, &w.Active, &createdAt); err != nil {
		return nil, err
	}
	w.ID = finalize.WorkerID(id)
	w.CompanyID = finalize.CompanyID(companyID)
	w.TeamID = finalize.TeamID(teamID)
	w.Email = email.String
	w.JoinedTeamAt, _ = time.Parse(time.RFC3339, joinedAt)
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &w, nil
}

// =============================================================================
// CHECK-INS
// =============================================================================

func (s *Store) CreateCheckIn(ctx context.Context, c finalize.CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO check_ins (id, worker_id, created_at) VALUES (?, ?, ?)`,
		c.ID, string(c.WorkerID), c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create check-in: %w", err)
	}
	return nil
}

func (s *Store) EarliestCheckIn(ctx context.Context, workerID finalize.WorkerID) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var earliest sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(created_at) FROM check_ins WHERE worker_id = ?`,
		string(workerID),
	).Scan(&earliest)
	if err != nil {
		return nil, fmt.Errorf("failed to query earliest check-in: %w", err)
	}
	if !earliest.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, earliest.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse check-in timestamp: %w", err)
	}
	return &t, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// SaveAttendance inserts a record directly, as the check-in flow would.
// The unique (worker, date) index still applies.
func (s *Store) SaveAttendance(ctx context.Context, rec finalize.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertAttendance(ctx, s.db, rec)
}

func (s *Store) insertAttendance(ctx context.Context, db execer, rec finalize.AttendanceRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, worker_id, team_id, company_id, date, status, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.WorkerID), string(rec.TeamID), string(rec.CompanyID),
		rec.Date.String(), string(rec.Status), string(rec.Source),
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return finalize.ErrAlreadyFinalized
		}
		return fmt.Errorf("failed to insert attendance record: %w", err)
	}
	return nil
}

func (s *Store) HasAttendance(ctx context.Context, workerID finalize.WorkerID, date finalize.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance_records WHERE worker_id = ? AND date = ?`,
		string(workerID), date.String(),
	).Scan(&count)
	return count > 0, err
}

// =============================================================================
// THE FINALIZATION WRITE
// =============================================================================

// RecordAbsence lands the absent attendance record and its absence record
// in one transaction. The unique index on (worker, date) settles races:
// the loser gets ErrAlreadyFinalized and nothing is written.
func (s *Store) RecordAbsence(ctx context.Context, att finalize.AttendanceRecord, abs finalize.AbsenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := s.insertAttendance(ctx, sqlTx, att); err != nil {
		return err
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO absence_records (id, worker_id, team_id, company_id, date, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		abs.ID, string(abs.WorkerID), string(abs.TeamID), string(abs.CompanyID),
		abs.Date.String(), abs.Reason, abs.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return finalize.ErrAlreadyFinalized
		}
		return fmt.Errorf("failed to insert absence record: %w", err)
	}

	return sqlTx.Commit()
}

// ListAbsences returns a company's absences inside an inclusive date range,
// oldest first.
func (s *Store) ListAbsences(ctx context.Context, companyID finalize.CompanyID, rng finalize.DateRange) ([]finalize.AbsenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, team_id, company_id, date, reason, created_at
		FROM absence_records
		WHERE company_id = ? AND date >= ? AND date <= ?
		ORDER BY date, worker_id`,
		string(companyID), rng.Start.String(), rng.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list absences: %w", err)
	}
	defer rows.Close()

	var out []finalize.AbsenceRecord
	for rows.Next() {
		var a finalize.AbsenceRecord
		var workerID, teamID, compID, date, createdAt string
		if err := rows.Scan(&a.ID, &workerID, &teamID, &compID, &date, &a.Reason, &createdAt); err != nil {
			return nil, err
		}
		a.WorkerID = finalize.WorkerID(workerID)
		a.TeamID = finalize.TeamID(teamID)
		a.CompanyID = finalize.CompanyID(compID)
		a.Date, _ = finalize.ParseDate(date)
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// LEAVE WINDOWS
// =============================================================================

func (s *Store) CreateLeave(ctx context.Context, w finalize.LeaveWindow) error {
	rng := finalize.DateRange{Start: w.StartDate, End: w.EndDate}
	if !rng.Valid() {
		return fmt.Errorf("%w: %s..%s", finalize.ErrInvalidRange, w.StartDate, w.EndDate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_windows (id, worker_id, type, status, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, string(w.WorkerID), string(w.Type), string(w.Status),
		w.StartDate.String(), w.EndDate.String(), w.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create leave window: %w", err)
	}
	return nil
}

func (s *Store) GetLeave(ctx context.Context, id string) (*finalize.LeaveWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, worker_id, type, status, start_date, end_date, created_at
		FROM leave_windows WHERE id = ?`, id)
	w, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return nil, finalize.ErrLeaveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leave window: %w", err)
	}
	return w, nil
}

// UpdateLeaveStatus moves a window through its approval lifecycle.
func (s *Store) UpdateLeaveStatus(ctx context.Context, id string, status finalize.LeaveStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE leave_windows SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update leave status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return finalize.ErrLeaveNotFound
	}
	return nil
}

func (s *Store) ListWorkerLeaves(ctx context.Context, workerID finalize.WorkerID) ([]finalize.LeaveWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, type, status, start_date, end_date, created_at
		FROM leave_windows WHERE worker_id = ? ORDER BY start_date`, string(workerID))
	if err != nil {
		return nil, fmt.Errorf("failed to list leave windows: %w", err)
	}
	defer rows.Close()

	var out []finalize.LeaveWindow
	for rows.Next() {
		w, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (s *Store) HasApprovedLeave(ctx context.Context, workerID finalize.WorkerID, date finalize.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leave_windows
		WHERE worker_id = ? AND status = ? AND start_date <= ? AND end_date >= ?`,
		string(workerID), string(finalize.LeaveApproved), date.String(), date.String(),
	).Scan(&count)
	return count > 0, err
}

func scanLeave(row interface{ Scan(dest ...any) error }) (*finalize.LeaveWindow, error) {
	var w finalize.LeaveWindow
	var workerID, typ, status, startDate, endDate, createdAt string
	if err := row.Scan(&w.ID, &workerID, &typ, &status, &startDate, &endDate, &createdAt); err != nil {
		return nil, err
	}
	w.WorkerID = finalize.WorkerID(workerID)
	w.Type = finalize.LeaveType(typ)
	w.Status = finalize.LeaveStatus(status)
	w.StartDate, _ = finalize.ParseDate(startDate)
	w.EndDate, _ = finalize.ParseDate(endDate)
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &w, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) CreateHoliday(ctx context.Context, h finalize.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, company_id, date, name, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		h.ID, string(h.CompanyID), h.Date.String(), h.Name,
		h.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("holiday %q for %s on %s: %w", h.Name, h.CompanyID, h.Date, finalize.ErrDuplicate)
		}
		return fmt.Errorf("failed to create holiday: %w", err)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	return err
}

// ListHolidays returns a company's holidays for one year, in date order.
func (s *Store) ListHolidays(ctx context.Context, companyID finalize.CompanyID, year int) ([]finalize.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, date, name, created_at
		FROM holidays
		WHERE company_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		string(companyID),
		fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var out []finalize.Holiday
	for rows.Next() {
		var h finalize.Holiday
		var companyID, date, createdAt string
		if err := rows.Scan(&h.ID, &companyID, &date, &h.Name, &createdAt); err != nil {
			return nil, err
		}
		h.CompanyID = finalize.CompanyID(companyID)
		h.Date, _ = finalize.ParseDate(date)
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) IsHoliday(ctx context.Context, companyID finalize.CompanyID, date finalize.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM holidays WHERE company_id = ? AND date = ?`,
		string(companyID), date.String(),
	).Scan(&count)
	return count > 0, err
}

// =============================================================================
// FINALIZATION RUNS
// =============================================================================

// SaveRun inserts or replaces the run record keyed by its ID, so the same
// row moves running -> completed/failed.
func (s *Store) SaveRun(ctx context.Context, run finalize.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reasonsJSON, _ := json.Marshal(run.Stats.SkipReasons)
	var completedAt sql.NullString
	if !run.Stats.CompletedAt.IsZero() {
		completedAt = sql.NullString{String: run.Stats.CompletedAt.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO finalization_runs
			(id, mode, force_run, status, companies, companies_skipped, companies_on_holiday,
			 teams, workers_evaluated, skipped, marked_absent, worker_failures,
			 skip_reasons_json, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			companies = excluded.companies,
			companies_skipped = excluded.companies_skipped,
			companies_on_holiday = excluded.companies_on_holiday,
			teams = excluded.teams,
			workers_evaluated = excluded.workers_evaluated,
			skipped = excluded.skipped,
			marked_absent = excluded.marked_absent,
			worker_failures = excluded.worker_failures,
			skip_reasons_json = excluded.skip_reasons_json,
			error = excluded.error,
			completed_at = excluded.completed_at`,
		run.Stats.RunID, string(run.Stats.Mode), run.Stats.ForceRun, string(run.Status),
		run.Stats.Companies, run.Stats.CompaniesSkipped, run.Stats.CompaniesOnHoliday,
		run.Stats.Teams, run.Stats.WorkersEvaluated, run.Stats.Skipped,
		run.Stats.MarkedAbsent, run.Stats.WorkerFailures,
		string(reasonsJSON), nullString(run.Error),
		run.Stats.StartedAt.UTC().Format(time.RFC3339), completedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]finalize.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, force_run, status, companies, companies_skipped, companies_on_holiday,
		       teams, workers_evaluated, skipped, marked_absent, worker_failures,
		       skip_reasons_json, error, started_at, completed_at
		FROM finalization_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []finalize.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) GetRun(ctx context.Context, runID string) (*finalize.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, mode, force_run, status, companies, companies_skipped, companies_on_holiday,
		       teams, workers_evaluated, skipped, marked_absent, worker_failures,
		       skip_reasons_json, error, started_at, completed_at
		FROM finalization_runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, finalize.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

func scanRun(row interface{ Scan(dest ...any) error }) (*finalize.RunRecord, error) {
	var r finalize.RunRecord
	var mode, status, startedAt string
	var reasonsJSON, errText, completedAt sql.NullString
	if err := row.Scan(
		&r.Stats.RunID, &mode, &r.Stats.ForceRun, &status,
		&r.Stats.Companies, &r.Stats.CompaniesSkipped, &r.Stats.CompaniesOnHoliday,
		&r.Stats.Teams, &r.Stats.WorkersEvaluated, &r.Stats.Skipped,
		&r.Stats.MarkedAbsent, &r.Stats.WorkerFailures,
		&reasonsJSON, &errText, &startedAt, &completedAt,
	); err != nil {
		return nil, err
	}
	r.Stats.Mode = finalize.RunMode(mode)
	r.Status = finalize.RunStatus(status)
	r.Error = errText.String
	r.Stats.SkipReasons = make(map[finalize.SkipReason]int)
	if reasonsJSON.Valid && reasonsJSON.String != "" {
		_ = json.Unmarshal([]byte(reasonsJSON.String), &r.Stats.SkipReasons)
	}
	r.Stats.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	if completedAt.Valid {
		r.Stats.CompletedAt, _ = time.Parse(time.RFC3339, completedAt.String)
	}
	return &r, nil
}

// =============================================================================
// SUMMARY STORE (summary.Store interface)
// =============================================================================

func (s *Store) CountActiveWorkers(ctx context.Context, teamID finalize.TeamID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workers WHERE team_id = ? AND active`,
		string(teamID),
	).Scan(&count)
	return count, err
}

func (s *Store) CountAttendance(ctx context.Context, teamID finalize.TeamID, date finalize.Date, status finalize.AttendanceStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance_records WHERE team_id = ? AND date = ? AND status = ?`,
		string(teamID), date.String(), string(status),
	).Scan(&count)
	return count, err
}

func (s *Store) CountOnApprovedLeave(ctx context.Context, teamID finalize.TeamID, date finalize.Date) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT w.id)
		FROM workers w
		JOIN leave_windows l ON l.worker_id = w.id
		WHERE w.team_id = ? AND w.active
		  AND l.status = ? AND l.start_date <= ? AND l.end_date >= ?`,
		string(teamID), string(finalize.LeaveApproved), date.String(), date.String(),
	).Scan(&count)
	return count, err
}

func (s *Store) UpsertTeamDaySummary(ctx context.Context, sum summary.TeamDaySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_day_summaries
			(id, team_id, date, scheduled, present, absent, on_leave, attendance_rate, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(team_id, date) DO UPDATE SET
			scheduled = excluded.scheduled,
			present = excluded.present,
			absent = excluded.absent,
			on_leave = excluded.on_leave,
			attendance_rate = excluded.attendance_rate,
			computed_at = excluded.computed_at`,
		sum.ID, string(sum.TeamID), sum.Date.String(),
		sum.Scheduled, sum.Present, sum.Absent, sum.OnLeave,
		sum.AttendanceRate.String(), sum.ComputedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}
	return nil
}

func (s *Store) GetTeamDaySummary(ctx context.Context, teamID finalize.TeamID, date finalize.Date) (*summary.TeamDaySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum summary.TeamDaySummary
	var teamStr, dateStr, rate, computedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, team_id, date, scheduled, present, absent, on_leave, attendance_rate, computed_at
		FROM team_day_summaries WHERE team_id = ? AND date = ?`,
		string(teamID), date.String(),
	).Scan(&sum.ID, &teamStr, &dateStr, &sum.Scheduled, &sum.Present, &sum.Absent,
		&sum.OnLeave, &rate, &computedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	sum.TeamID = finalize.TeamID(teamStr)
	sum.Date, _ = finalize.ParseDate(dateStr)
	sum.AttendanceRate, _ = decimal.NewFromString(rate)
	sum.ComputedAt, _ = time.Parse(time.RFC3339, computedAt)
	return &sum, nil
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"team_day_summaries", "finalization_runs", "absence_records",
		"attendance_records", "check_ins", "leave_windows", "holidays",
		"workers", "teams", "companies",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
