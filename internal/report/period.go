package report

import (
	"strings"
	"time"
)

type Period string

const (
	PeriodToday      Period = "today"
	PeriodSevenDays  Period = "7d"
	PeriodThirtyDays Period = "30d"
)

// ParsePeriod maps a selector value onto a known period. Unknown values fall
// back to today.
func ParsePeriod(raw string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case PeriodSevenDays:
		return PeriodSevenDays
	case PeriodThirtyDays:
		return PeriodThirtyDays
	default:
		return PeriodToday
	}
}

// Days is the divisor used for daily averages.
func (period Period) Days() int {
	switch period {
	case PeriodSevenDays:
		return 7
	case PeriodThirtyDays:
		return 30
	default:
		return 1
	}
}

// Range returns the inclusive window ending at now. Today starts at local
// midnight in location; the other presets reach back whole calendar days.
func (period Period) Range(now time.Time, location *time.Location) (time.Time, time.Time) {
	if location == nil {
		location = time.UTC
	}
	localNow := now.In(location)
	switch period {
	case PeriodSevenDays, PeriodThirtyDays:
		return localNow.AddDate(0, 0, -period.Days()), localNow
	default:
		midnight := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
		return midnight, localNow
	}
}
