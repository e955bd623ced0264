// Package calendar projects a daily occupancy series onto a week-of-year by
// day-of-week grid for heat-map rendering.
//
// Each year is laid out as 54 week columns and 7 weekday rows (Monday first).
// The first column holds the days before the year's first Monday, so it may
// be partial, and every following run of 7 days advances one column
// regardless of month boundaries.
package calendar

import (
	"time"

	"github.com/pfrederiksen/hospi-calendar/internal/series"
)

const (
	DaysPerWeek = 7
	Weeks       = 54
)

// weekSlots is the flat week-number sequence, each week repeated 7 times.
// 54*7 = 378 covers the longest year (366 days) plus the largest pad (6).
var weekSlots = func() [Weeks * DaysPerWeek]int {
	var slots [Weeks * DaysPerWeek]int
	for i := range slots {
		slots[i] = i / DaysPerWeek
	}
	return slots
}()

// Day is one cell of the projected year.
type Day struct {
	Date         time.Time `json:"-"`
	ISODate      string    `json:"isodate"`
	Value        int       `json:"value"`
	Filled       bool      `json:"filled"`
	WeekIndex    int       `json:"week"`
	WeekdayIndex int       `json:"weekday"`
	IsMonthStart bool      `json:"month_start"`
}

// Skeleton is the complete daily layout of one calendar year.
type Skeleton struct {
	Year     int   `json:"year"`
	Fill     int   `json:"fill"`
	Observed int   `json:"observed"`
	Days     []Day `json:"days"`
}

// MonthMarker locates the first day of a month on the grid.
type MonthMarker struct {
	Month        time.Month `json:"month"`
	Label        string     `json:"label"`
	WeekIndex    int        `json:"week"`
	WeekdayIndex int        `json:"weekday"`
}

// WeekdayIndex returns 0 for Monday through 6 for Sunday.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsLeap reports whether year has 366 days.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Project lays out every date of year, taking values from s and substituting
// fill for dates without a value. A year with no data yields an all-fill
// skeleton.
func Project(s series.Series, year int, fill int) *Skeleton {
	values := s.Year(year)
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(1, 0, 0)
	pad := WeekdayIndex(first)

	sk := &Skeleton{
		Year: year,
		Fill: fill,
		Days: make([]Day, 0, series.DaysBetween(first, next)),
	}

	i := 0
	series.EachDay(first, next, func(d time.Time) {
		value, ok := values.Lookup(d)
		if ok {
			sk.Observed++
		} else {
			value = fill
		}

		sk.Days = append(sk.Days, Day{
			Date:         d,
			ISODate:      d.Format(time.DateOnly),
			Value:        value,
			Filled:       !ok,
			WeekIndex:    weekSlots[pad+i],
			WeekdayIndex: WeekdayIndex(d),
			IsMonthStart: d.Day() == 1,
		})
		i++
	})

	return sk
}

// Values returns the cell values in date order.
func (sk *Skeleton) Values() []int {
	out := make([]int, len(sk.Days))
	for i, d := range sk.Days {
		out[i] = d.Value
	}
	return out
}

// Grid returns the weekday-by-week matrix. Slots outside the year are nil.
func (sk *Skeleton) Grid() [DaysPerWeek][Weeks]*int {
	var grid [DaysPerWeek][Weeks]*int
	for i := range sk.Days {
		d := &sk.Days[i]
		grid[d.WeekdayIndex][d.WeekIndex] = &d.Value
	}
	return grid
}

// MonthStarts returns one marker per month, in calendar order.
func (sk *Skeleton) MonthStarts() []MonthMarker {
	markers := make([]MonthMarker, 0, 12)
	for _, d := range sk.Days {
		if !d.IsMonthStart {
			continue
		}
		markers = append(markers, MonthMarker{
			Month:        d.Date.Month(),
			Label:        d.Date.Month().String()[:3],
			WeekIndex:    d.WeekIndex,
			WeekdayIndex: d.WeekdayIndex,
		})
	}
	return markers
}

// LastWeek returns the highest week index used by the year.
func (sk *Skeleton) LastWeek() int {
	if len(sk.Days) == 0 {
		return 0
	}
	return sk.Days[len(sk.Days)-1].WeekIndex
}
