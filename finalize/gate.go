/*
gate.go - Trigger gates: should a sweep run now, and for which date?

Both gates are pure functions over the localized time and team config. They
never query anything; deciding WHETHER to run is kept separate from deciding
WHAT happens, so tests can pin any instant without fixtures.
*/
package finalize

// FinalizeHour is the local hour at which the end-of-day sweep runs,
// finalizing the previous day. It sits well past midnight so stragglers'
// check-ins and DST shifts have settled before yesterday is judged.
const FinalizeHour = 5

// GateDecision reports whether a sweep fires and the date it targets.
type GateDecision struct {
	Run        bool
	TargetDate Date
}

// EndOfDayGate fires when the company-local hour equals FinalizeHour.
// The target is the previous local day. forceRun bypasses the hour test
// and nothing else: the target date stays yesterday.
func EndOfDayGate(lt LocalTime, forceRun bool) GateDecision {
	if !forceRun && lt.Hour != FinalizeHour {
		return GateDecision{}
	}
	return GateDecision{Run: true, TargetDate: lt.Date.AddDays(-1)}
}

// ShiftEndGate fires for one team when the company-local hour equals the
// team's shift-end hour. The target is the same local day: the shift is
// over, so today can be judged. forceRun again bypasses only the hour test.
func ShiftEndGate(lt LocalTime, team Team, forceRun bool) GateDecision {
	if !forceRun && lt.Hour != team.Schedule.ShiftEnd.Hour {
		return GateDecision{}
	}
	return GateDecision{Run: true, TargetDate: lt.Date}
}
