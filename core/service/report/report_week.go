// Package report implements the weekly diary report engine: pure aggregation
// of per-day sentiment scores into a ranked, annotated weekly report, plus
// the orchestrating service that drives collaborators around it.
package report

import "time"

// WeekContaining returns the Monday..Sunday window enclosing t.
func WeekContaining(t time.Time) (weekStart, weekEnd time.Time) {
	// time.Weekday is zero-based from Sunday; shift to Monday-based.
	offset := (int(t.Weekday()) + 6) % 7
	weekStart = truncateToDate(t).AddDate(0, 0, -offset)
	weekEnd = weekStart.AddDate(0, 0, 6)
	return weekStart, weekEnd
}

// PreviousWeek returns the Monday..Sunday window immediately before the one
// containing today. Default analysis window when the caller supplies none.
func PreviousWeek(today time.Time) (weekStart, weekEnd time.Time) {
	thisMonday, _ := WeekContaining(today)
	weekStart = thisMonday.AddDate(0, 0, -7)
	weekEnd = weekStart.AddDate(0, 0, 6)
	return weekStart, weekEnd
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
