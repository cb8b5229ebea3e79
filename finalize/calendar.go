/*
calendar.go - Calendar vetoes: holiday, work-day, approved leave

The three checks are independent: any one true means the worker (or the
whole company, for holidays) is skipped for the target date. Evaluation
order affects query cost only, never the outcome.
*/
package finalize

import "context"

// CalendarEvaluator answers the calendar vetoes for a target date.
type CalendarEvaluator struct {
	holidays HolidaySource
	leaves   LeaveSource
}

func NewCalendarEvaluator(holidays HolidaySource, leaves LeaveSource) *CalendarEvaluator {
	return &CalendarEvaluator{holidays: holidays, leaves: leaves}
}

// Holiday reports the company-wide veto: a holiday on the target date stops
// finalization for every worker in the company at once, independent of team
// or leave status. Checked once per company, not per worker.
func (e *CalendarEvaluator) Holiday(ctx context.Context, companyID CompanyID, date Date) (bool, error) {
	return e.holidays.IsHoliday(ctx, companyID, date)
}

// NonWorkDay reports whether the team simply doesn't work the target date's
// weekday. A skipped worker is not absent, just never expected.
func (e *CalendarEvaluator) NonWorkDay(team Team, date Date) bool {
	return !team.Schedule.WorksOn(date.Weekday())
}

// OnLeave reports whether an approved leave window covers the worker on the
// target date, boundaries inclusive. Pending and rejected windows exempt
// nobody.
func (e *CalendarEvaluator) OnLeave(ctx context.Context, workerID WorkerID, date Date) (bool, error) {
	return e.leaves.HasApprovedLeave(ctx, workerID, date)
}
