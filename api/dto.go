/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Org:
    CompanyDTO, CreateCompanyRequest
    TeamDTO, CreateTeamRequest
    WorkerDTO, CreateWorkerRequest

  Calendar:
    LeaveDTO, CreateLeaveRequest
    HolidayDTO, CreateHolidayRequest

  Finalization:
    TriggerRunRequest, RunDTO
    AbsenceDTO, SummaryDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON type
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/finalize"
	"github.com/warp/attendance-engine/summary"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CompanyDTO represents a company in API responses.
type CompanyDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateCompanyRequest is the request to create a company.
type CreateCompanyRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// TeamDTO represents a team in API responses.
type TeamDTO struct {
	ID         string   `json:"id"`
	CompanyID  string   `json:"company_id"`
	Name       string   `json:"name"`
	WorkDays   []string `json:"work_days"`
	ShiftStart string   `json:"shift_start"`
	ShiftEnd   string   `json:"shift_end"`
	Active     bool     `json:"active"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

// CreateTeamRequest is the request to create a team.
type CreateTeamRequest struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Schedule factory.ScheduleJSON `json:"schedule"`
	Active   *bool                `json:"active,omitempty"` // nil = true
}

// WorkerDTO represents a worker in API responses.
type WorkerDTO struct {
	ID           string `json:"id"`
	CompanyID    string `json:"company_id"`
	TeamID       string `json:"team_id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	JoinedTeamAt string `json:"joined_team_at"`
	Active       bool   `json:"active"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// CreateWorkerRequest is the request to create a worker on a team.
type CreateWorkerRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	JoinedTeamAt string `json:"joined_team_at"` // RFC3339 instant
}

// LeaveDTO represents a leave window in API responses.
type LeaveDTO struct {
	ID        string `json:"id"`
	WorkerID  string `json:"worker_id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateLeaveRequest is the request to open a leave window for a worker.
// New windows always start pending.
type CreateLeaveRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// HolidayDTO represents a company holiday.
type HolidayDTO struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateHolidayRequest is the request to declare a company holiday.
type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// AbsenceDTO represents a finalized absence.
type AbsenceDTO struct {
	ID        string `json:"id"`
	WorkerID  string `json:"worker_id"`
	TeamID    string `json:"team_id"`
	CompanyID string `json:"company_id"`
	Date      string `json:"date"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"created_at,omitempty"`
}

// TriggerRunRequest is the request body for manual finalization triggers.
type TriggerRunRequest struct {
	ForceRun bool `json:"force_run,omitempty"`
}

// RunDTO represents a finalization run and its outcome counters.
type RunDTO struct {
	ID                 string         `json:"id"`
	Mode               string         `json:"mode"`
	ForceRun           bool           `json:"force_run"`
	Status             string         `json:"status"`
	Companies          int            `json:"companies"`
	CompaniesSkipped   int            `json:"companies_skipped"`
	CompaniesOnHoliday int            `json:"companies_on_holiday"`
	Teams              int            `json:"teams"`
	WorkersEvaluated   int            `json:"workers_evaluated"`
	MarkedAbsent       int            `json:"marked_absent"`
	Skipped            int            `json:"skipped"`
	SkipReasons        map[string]int `json:"skip_reasons"`
	WorkerFailures     int            `json:"worker_failures"`
	Error              string         `json:"error,omitempty"`
	StartedAt          string         `json:"started_at"`
	CompletedAt        string         `json:"completed_at,omitempty"`
}

// SummaryDTO represents a per-team per-day attendance rollup.
type SummaryDTO struct {
	TeamID         string  `json:"team_id"`
	Date           string  `json:"date"`
	Scheduled      int     `json:"scheduled"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	OnLeave        int     `json:"on_leave"`
	AttendanceRate float64 `json:"attendance_rate"`
	ComputedAt     string  `json:"computed_at,omitempty"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCompanyDTO(c finalize.Company) CompanyDTO {
	return CompanyDTO{
		ID:        string(c.ID),
		Name:      c.Name,
		Timezone:  c.Timezone,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func toTeamDTO(t finalize.Team) TeamDTO {
	return TeamDTO{
		ID:         string(t.ID),
		CompanyID:  string(t.CompanyID),
		Name:       t.Name,
		WorkDays:   t.Schedule.WorkDays.SortedValues(),
		ShiftStart: t.Schedule.ShiftStart.String(),
		ShiftEnd:   t.Schedule.ShiftEnd.String(),
		Active:     t.Active,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
	}
}

func toWorkerDTO(w finalize.Worker) WorkerDTO {
	return WorkerDTO{
		ID:           string(w.ID),
		CompanyID:    string(w.CompanyID),
		TeamID:       string(w.TeamID),
		Name:         w.Name,
		Email:        w.Email,
		JoinedTeamAt: w.JoinedTeamAt.Format(time.RFC3339),
		Active:       w.Active,
		CreatedAt:    w.CreatedAt.Format(time.RFC3339),
	}
}

func toLeaveDTO(lw finalize.LeaveWindow) LeaveDTO {
	return LeaveDTO{
		ID:        string(lw.ID),
		WorkerID:  string(lw.WorkerID),
		Type:      string(lw.Type),
		Status:    string(lw.Status),
		StartDate: lw.StartDate.String(),
		EndDate:   lw.EndDate.String(),
		CreatedAt: lw.CreatedAt.Format(time.RFC3339),
	}
}

func toHolidayDTO(h finalize.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:        string(h.ID),
		CompanyID: string(h.CompanyID),
		Date:      h.Date.String(),
		Name:      h.Name,
		CreatedAt: h.CreatedAt.Format(time.RFC3339),
	}
}

func toAbsenceDTO(a finalize.AbsenceRecord) AbsenceDTO {
	return AbsenceDTO{
		ID:        string(a.ID),
		WorkerID:  string(a.WorkerID),
		TeamID:    string(a.TeamID),
		CompanyID: string(a.CompanyID),
		Date:      a.Date.String(),
		Reason:    a.Reason,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func toAbsenceDTOs(records []finalize.AbsenceRecord) []AbsenceDTO {
	dtos := make([]AbsenceDTO, len(records))
	for i, a := range records {
		dtos[i] = toAbsenceDTO(a)
	}
	return dtos
}

func toRunDTO(rec finalize.RunRecord) RunDTO {
	reasons := make(map[string]int, len(rec.Stats.SkipReasons))
	for reason, n := range rec.Stats.SkipReasons {
		reasons[string(reason)] = n
	}
	dto := RunDTO{
		ID:                 rec.Stats.RunID,
		Mode:               string(rec.Stats.Mode),
		ForceRun:           rec.Stats.ForceRun,
		Status:             string(rec.Status),
		Companies:          rec.Stats.Companies,
		CompaniesSkipped:   rec.Stats.CompaniesSkipped,
		CompaniesOnHoliday: rec.Stats.CompaniesOnHoliday,
		Teams:              rec.Stats.Teams,
		WorkersEvaluated:   rec.Stats.WorkersEvaluated,
		MarkedAbsent:       rec.Stats.MarkedAbsent,
		Skipped:            rec.Stats.Skipped,
		SkipReasons:        reasons,
		WorkerFailures:     rec.Stats.WorkerFailures,
		Error:              rec.Error,
		StartedAt:          rec.Stats.StartedAt.Format(time.RFC3339),
	}
	if !rec.Stats.CompletedAt.IsZero() {
		dto.CompletedAt = rec.Stats.CompletedAt.Format(time.RFC3339)
	}
	return dto
}

func toRunDTOs(records []finalize.RunRecord) []RunDTO {
	dtos := make([]RunDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRunDTO(rec)
	}
	return dtos
}

func toSummaryDTO(s summary.TeamDaySummary) SummaryDTO {
	rate, _ := s.AttendanceRate.Float64()
	return SummaryDTO{
		TeamID:         string(s.TeamID),
		Date:           s.Date.String(),
		Scheduled:      s.Scheduled,
		Present:        s.Present,
		Absent:         s.Absent,
		OnLeave:        s.OnLeave,
		AttendanceRate: rate,
		ComputedAt:     s.ComputedAt.Format(time.RFC3339),
	}
}
