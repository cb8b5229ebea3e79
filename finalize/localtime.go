package finalize

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME ORACLE - UTC instant -> company-local calendar context
// =============================================================================

// LocalTime is what a company's wall clock and calendar show at one instant.
// Everything downstream (gates, vetoes, targets) reads from this value; no
// other code converts timezones.
type LocalTime struct {
	Date    Date
	Hour    int
	Minute  int
	Weekday Weekday
}

// LoadZone validates and loads an IANA timezone name.
//
// Empty and unknown names are configuration errors. The empty string is
// rejected before lookup because time.LoadLocation("") quietly means UTC,
// and "Local" is rejected because it means whatever zone the host happens
// to run in. Neither is an acceptable stand-in for a tenant's timezone.
func LoadZone(tz string) (*time.Location, error) {
	if tz == "" {
		return nil, fmt.Errorf("%w: empty timezone name", ErrBadTimezone)
	}
	if tz == "Local" {
		return nil, fmt.Errorf("%w: %q is not a real timezone", ErrBadTimezone, tz)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadTimezone, tz, err)
	}
	return loc, nil
}

// LocalizeIn converts an instant into the calendar context observed in loc.
// DST is handled by the zone database: during transitions the local hour
// simply is what the wall clock shows.
func LocalizeIn(instant time.Time, loc *time.Location) LocalTime {
	local := instant.In(loc)
	return LocalTime{
		Date:    DateOf(local),
		Hour:    local.Hour(),
		Minute:  local.Minute(),
		Weekday: weekdayCode(local.Weekday()),
	}
}

// Localize is LoadZone + LocalizeIn in one call.
func Localize(instant time.Time, tz string) (LocalTime, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return LocalTime{}, err
	}
	return LocalizeIn(instant, loc), nil
}

// LocalizeCompany localizes an instant for one company, tagging failures
// with the company so the orchestrator can exclude it and keep going.
func LocalizeCompany(instant time.Time, c Company) (LocalTime, error) {
	lt, err := Localize(instant, c.Timezone)
	if err != nil {
		return LocalTime{}, &TimezoneError{CompanyID: c.ID, Timezone: c.Timezone, Err: err}
	}
	return lt, nil
}
