// Package window is the single source of date-range truth for the
// settlement engine. Every query contributing to one screen computes its
// range here so that totals and breakdowns agree on boundaries.
package window

import "time"

// Granularity selects the size of a settlement window.
type Granularity string

const (
	Day   Granularity = "day"
	Month Granularity = "month"
)

// Range is an inclusive calendar-date interval in UTC. Start and End are
// truncated to midnight.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Compute returns the window for ref at the given granularity. The today
// parameter clamps the current month and decides whether a month lies in
// the future; callers pass time.Now().
//
// The second return is false when the window holds no data by
// construction (a future month). Callers treat that as zero data, not as
// an error.
func Compute(ref time.Time, g Granularity, today time.Time) (Range, bool) {
	ref = truncate(ref)
	today = truncate(today)

	if g == Day {
		return Range{Start: ref, End: ref}, true
	}

	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	if start.After(today) {
		return Range{}, false
	}

	// Last calendar day of the month, clamped to today for the current month.
	end := start.AddDate(0, 1, -1)
	if end.After(today) {
		end = today
	}
	return Range{Start: start, End: end}, true
}

// Contains reports whether day falls inside the range.
func (r Range) Contains(day time.Time) bool {
	day = truncate(day)
	return !day.Before(r.Start) && !day.After(r.End)
}

// BusinessDays enumerates the Monday-to-Friday days of the range in
// ascending order. Used by the receipt calendar only; aggregate totals
// always cover the full range.
func BusinessDays(r Range) []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

func truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
