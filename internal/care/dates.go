package care

import (
	"sort"
	"time"
)

// Day truncates a timestamp to midnight UTC. All engine arithmetic works
// on whole calendar days; timestamps from the database or the API are
// collapsed through this before any comparison.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// NormalizeDates truncates each date to a calendar day, collapses
// duplicates, and returns the result in ascending order. This is the
// required preparation before calling EstimatePeriodicity.
func NormalizeDates(dates []time.Time) []time.Time {
	if len(dates) == 0 {
		return nil
	}

	seen := make(map[time.Time]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := Day(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ascendingDistinct reports whether dates are strictly increasing by
// calendar day.
func ascendingDistinct(dates []time.Time) bool {
	for i := 1; i < len(dates); i++ {
		if !Day(dates[i-1]).Before(Day(dates[i])) {
			return false
		}
	}
	return true
}
