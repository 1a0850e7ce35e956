/*
calendar.go - Business-day arithmetic for the planning window

PURPOSE:
  Expands a (start_date, days) window into the ordered list of candidate
  dates an item may land on. Weekends are excluded; the engine never spans
  non-business days.

DATE PREFERENCE:
  Critical items search chronologically: today first.
  Non-critical items (with SpareToday enabled) search [d+1, d+2, d+0,
  d+3, d+4, ...]: tomorrow and the day after are tried before today, so
  same-day capacity stays available for urgent and critical work. The
  ordering is a tunable policy, not a contract.

SEE ALSO:
  - allocator.go: consumes CandidateDates per work item
*/
package planner

import (
	"strconv"
	"time"
)

// Midnight truncates a timestamp to its date component in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats a date the way it is stored and keyed: YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// IsBusinessDay reports whether the date is a weekday.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// CandidateDates returns the business days of [start, start+days) in the
// order the allocator should try them. Chronological for critical items or
// when spareToday is disabled; otherwise the same-day-last preference
// ordering.
func CandidateDates(start time.Time, days int, critical, spareToday bool) []time.Time {
	offsets := make([]int, 0, days)
	if critical || !spareToday {
		for d := 0; d < days; d++ {
			offsets = append(offsets, d)
		}
	} else {
		// Reserve today: tomorrow and the day after come first.
		if days > 1 {
			offsets = append(offsets, 1)
		}
		if days > 2 {
			offsets = append(offsets, 2)
		}
		offsets = append(offsets, 0)
		for d := 3; d < days; d++ {
			offsets = append(offsets, d)
		}
	}

	base := Midnight(start)
	dates := make([]time.Time, 0, len(offsets))
	for _, d := range offsets {
		date := base.AddDate(0, 0, d)
		if IsBusinessDay(date) {
			dates = append(dates, date)
		}
	}
	return dates
}

// WindowEnd returns the exclusive end date of a (start, days) window.
func WindowEnd(start time.Time, days int) time.Time {
	return Midnight(start).AddDate(0, 0, days)
}

// WindowKey derives the lock key identifying a planning window.
func WindowKey(start time.Time, days int) string {
	return "plan:" + DateKey(start) + ":" + strconv.Itoa(days)
}
