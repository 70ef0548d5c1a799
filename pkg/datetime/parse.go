// Package datetime provides date utility functions for installment due dates.
package datetime

import (
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

const (
	// DateLayout is the format used for due dates in output.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// Truncate drops the clock part of t, keeping its location.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// OffsetMonths returns the date the given number of months after t. Unlike
// time.AddDate the day is clamped to the last day of the target month, so
// January 31 plus one month is February 28 (or 29).
func OffsetMonths(t time.Time, months int) time.Time {
	t = Truncate(t)
	firstOfTarget := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	day := t.Day()
	if last := DaysInMonth(firstOfTarget); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// DueDates returns count monthly due dates, the first one month after start.
func DueDates(start time.Time, count int) []time.Time {
	if count <= 0 {
		return nil
	}
	dates := make([]time.Time, count)
	for i := range dates {
		dates[i] = OffsetMonths(start, i+1)
	}
	return dates
}

// IsOverdue reports whether a due date has passed relative to now, comparing
// whole days only.
func IsOverdue(due, now time.Time) bool {
	return Truncate(due).Before(Truncate(now))
}
