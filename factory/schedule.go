/*
Package factory provides JSON to Go schedule conversion.

PURPOSE:
  Converts JSON schedule definitions into validated finalize.Schedule
  values. Team working patterns are tenant configuration, not code - an
  admin tool posts JSON, and the factory is the one gate where malformed
  patterns are caught before they can poison finalization.

JSON SCHEMA:
  {
    "work_days": ["MON", "TUE", "WED", "THU", "FRI"],
    "shift_start": "09:00",
    "shift_end": "17:30"
  }

DEFAULTS:
  - work_days omitted entirely -> standard Mon-Fri week
  - shift_start omitted -> 09:00
  - shift_end omitted -> 17:00

VALIDATION:
  - day codes must be MON..SUN; an empty or unknown set is rejected
  - times must parse as "15:04"
  - the shift must end after it starts; overnight shifts are rejected
  All rejections wrap finalize.ErrBadSchedule.

USAGE:
  f := factory.NewScheduleFactory()
  sched, err := f.ParseSchedule(`{"work_days":["MON","WED"],"shift_end":"18:00"}`)

SEE ALSO:
  - finalize/types.go: Schedule, NewWorkDaySet, ParseTimeOfDay
  - api/handlers.go: Team creation runs every payload through this factory
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/attendance-engine/finalize"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a team schedule.
type ScheduleJSON struct {
	WorkDays   []string `json:"work_days,omitempty"`
	ShiftStart string   `json:"shift_start,omitempty"`
	ShiftEnd   string   `json:"shift_end,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

type ScheduleFactory struct{}

func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// ParseSchedule converts a JSON document into a validated schedule.
func (f *ScheduleFactory) ParseSchedule(jsonStr string) (finalize.Schedule, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return finalize.Schedule{}, fmt.Errorf("%w: parsing schedule JSON: %v", finalize.ErrBadSchedule, err)
	}
	return f.FromConfig(sj)
}

// FromConfig builds a validated schedule from the decoded form, applying
// defaults for omitted fields.
func (f *ScheduleFactory) FromConfig(sj ScheduleJSON) (finalize.Schedule, error) {
	codes := sj.WorkDays
	if codes == nil {
		codes = StandardWeek()
	}
	days, err := finalize.NewWorkDaySet(codes...)
	if err != nil {
		return finalize.Schedule{}, err
	}

	startStr := sj.ShiftStart
	if startStr == "" {
		startStr = "09:00"
	}
	endStr := sj.ShiftEnd
	if endStr == "" {
		endStr = "17:00"
	}

	start, err := finalize.ParseTimeOfDay(startStr)
	if err != nil {
		return finalize.Schedule{}, fmt.Errorf("%w: shift_start: %v", finalize.ErrBadSchedule, err)
	}
	end, err := finalize.ParseTimeOfDay(endStr)
	if err != nil {
		return finalize.Schedule{}, fmt.Errorf("%w: shift_end: %v", finalize.ErrBadSchedule, err)
	}
	if !start.Before(end) {
		return finalize.Schedule{}, fmt.Errorf("%w: shift ends (%s) before it starts (%s)",
			finalize.ErrBadSchedule, end, start)
	}

	return finalize.Schedule{WorkDays: days, ShiftStart: start, ShiftEnd: end}, nil
}

// =============================================================================
// PRESETS
// =============================================================================

// StandardWeek returns the Mon-Fri day codes.
func StandardWeek() []string {
	return []string{
		string(finalize.Monday), string(finalize.Tuesday), string(finalize.Wednesday),
		string(finalize.Thursday), string(finalize.Friday),
	}
}

// StandardWeekJSON returns a ready-to-post Mon-Fri schedule document.
func StandardWeekJSON(shiftStart, shiftEnd string) string {
	sj := ScheduleJSON{WorkDays: StandardWeek(), ShiftStart: shiftStart, ShiftEnd: shiftEnd}
	b, _ := json.Marshal(sj)
	return string(b)
}
