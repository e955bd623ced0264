package series

import (
	"fmt"
	"strings"
	"time"
)

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// EachDay calls fn for every date in [start, end) in ascending order.
func EachDay(start, end time.Time, fn func(time.Time)) {
	for d := Day(start); d.Before(Day(end)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// DaysBetween returns the number of calendar days in [start, end).
func DaysBetween(start, end time.Time) int {
	n := int(Day(end).Sub(Day(start)).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}
