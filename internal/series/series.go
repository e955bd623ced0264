package series

import (
	"fmt"
	"sort"
	"time"
)

// HistoryStart is the first day the dashboard publishes occupancy for.
var HistoryStart = time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)

// DateValue is one day's recorded occupancy.
type DateValue struct {
	Date  time.Time `json:"date"`
	Value int       `json:"value"`
}

// ISODate returns the date formatted as YYYY-MM-DD.
func (dv DateValue) ISODate() string {
	return dv.Date.Format(time.DateOnly)
}

// Series is a list of DateValue ordered by date ascending with no duplicate
// dates. Missing days are gaps in the source, not errors.
type Series []DateValue

// New builds a Series from points in any order. When a date appears more
// than once the last occurrence wins.
func New(points []DateValue) Series {
	byDate := make(map[time.Time]int, len(points))
	for _, p := range points {
		byDate[Day(p.Date)] = p.Value
	}

	out := make(Series, 0, len(byDate))
	for d, v := range byDate {
		out = append(out, DateValue{Date: d, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Validate checks that dates are strictly ascending and values non-negative.
func (s Series) Validate() error {
	for i, p := range s {
		if p.Value < 0 {
			return fmt.Errorf("negative value %d on %s", p.Value, p.ISODate())
		}
		if i > 0 && !s[i-1].Date.Before(p.Date) {
			return fmt.Errorf("dates out of order at %s (after %s)", p.ISODate(), s[i-1].ISODate())
		}
	}
	return nil
}

// Lookup returns the value recorded for date, if any.
func (s Series) Lookup(date time.Time) (int, bool) {
	d := Day(date)
	i := sort.Search(len(s), func(i int) bool {
		return !s[i].Date.Before(d)
	})
	if i < len(s) && s[i].Date.Equal(d) {
		return s[i].Value, true
	}
	return 0, false
}

// Between returns the points with from <= date < to. A zero bound is open.
func (s Series) Between(from, to time.Time) Series {
	out := make(Series, 0, len(s))
	for _, p := range s {
		if !from.IsZero() && p.Date.Before(Day(from)) {
			continue
		}
		if !to.IsZero() && !p.Date.Before(Day(to)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Year returns the points that fall in the given calendar year.
func (s Series) Year(year int) Series {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return s.Between(from, from.AddDate(1, 0, 0))
}

// Merge combines a previously persisted series with a fresh one. Values from
// fresh replace old values on the same date; old dates missing from fresh are
// kept.
func Merge(old, fresh Series) Series {
	points := make([]DateValue, 0, len(old)+len(fresh))
	points = append(points, old...)
	points = append(points, fresh...)
	return New(points)
}
