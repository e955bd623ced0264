package calendar

import (
	"sort"
	"time"

	"github.com/pfrederiksen/hospi-calendar/internal/series"
)

// WeeklyPoint is the mean occupancy of one Monday–Sunday week.
type WeeklyPoint struct {
	WeekEnding time.Time `json:"-"`
	ISODate    string    `json:"week_ending"`
	Mean       float64   `json:"mean"`
	Days       int       `json:"days"`
}

// WeeklyMeans averages s by calendar week, labelling each week with its
// Sunday. Only days with a value count toward the mean; weeks without any
// value are omitted.
func WeeklyMeans(s series.Series) []WeeklyPoint {
	type acc struct {
		sum  int
		days int
	}
	weeks := make(map[time.Time]*acc)

	for _, p := range s {
		end := series.Day(p.Date).AddDate(0, 0, 6-WeekdayIndex(p.Date))
		a, ok := weeks[end]
		if !ok {
			a = &acc{}
			weeks[end] = a
		}
		a.sum += p.Value
		a.days++
	}

	out := make([]WeeklyPoint, 0, len(weeks))
	for end, a := range weeks {
		out = append(out, WeeklyPoint{
			WeekEnding: end,
			ISODate:    end.Format(time.DateOnly),
			Mean:       float64(a.sum) / float64(a.days),
			Days:       a.days,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekEnding.Before(out[j].WeekEnding)
	})
	return out
}
