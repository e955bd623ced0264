package series

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/hospi-calendar/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestBuild(t *testing.T) {
	text := strings.Join([]string{
		"chart.data.push([{date:'2020-03-02', hospi_phg:10}]);",
		"chart.data.push([{date:'2020-03-04', hospi_phg:40}]);",
		"chart.data.push([{date:'2020-03-01', hospi_phg:5}]);",
		"chart.data.push([{date:'2020-03-06', hospi_phg:oops}]);",
		"chart.data.push([{date:'2020-03-07', hospi_phg:70}]);",
	}, "\n")

	ex := extract.New(extract.DefaultMarker())
	got, stats := Build(text, ex, HistoryStart, mustDate(t, "2020-03-07"))

	want := Series{
		{Date: mustDate(t, "2020-03-01"), Value: 5},
		{Date: mustDate(t, "2020-03-02"), Value: 10},
		{Date: mustDate(t, "2020-03-04"), Value: 40},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, BuildStats{Days: 6, Found: 3, Missing: 3}, stats)
	assert.NoError(t, got.Validate())
}

func TestBuild_AlwaysAscending(t *testing.T) {
	ex := extract.New(extract.Marker{Key: "n", Terminator: ";"})

	var b strings.Builder
	// Markers are written newest first so that output order cannot come
	// from text order.
	for i := 400; i >= 0; i-- {
		if i%5 == 0 {
			continue
		}
		d := HistoryStart.AddDate(0, 0, i)
		fmt.Fprintf(&b, "date:'%s', n:%d;", d.Format(time.DateOnly), i)
	}

	got, stats := Build(b.String(), ex, HistoryStart, HistoryStart.AddDate(0, 0, 401))
	require.NotEmpty(t, got)
	assert.Equal(t, 401, stats.Days)
	assert.Equal(t, stats.Days, stats.Found+stats.Missing)

	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Date.Before(got[i].Date), "index %d not ascending", i)
	}
}

func TestBuild_EmptyRange(t *testing.T) {
	ex := extract.New(extract.DefaultMarker())

	got, stats := Build("anything", ex, mustDate(t, "2021-01-01"), mustDate(t, "2020-12-01"))
	assert.Empty(t, got)
	assert.Equal(t, 0, stats.Days)
}

func TestNew_SortsAndDeduplicates(t *testing.T) {
	got := New([]DateValue{
		{Date: mustDate(t, "2021-01-03"), Value: 3},
		{Date: mustDate(t, "2021-01-01"), Value: 1},
		{Date: mustDate(t, "2021-01-03"), Value: 30},
	})

	assert.Equal(t, Series{
		{Date: mustDate(t, "2021-01-01"), Value: 1},
		{Date: mustDate(t, "2021-01-03"), Value: 30},
	}, got)
}

func TestMerge(t *testing.T) {
	old := Series{
		{Date: mustDate(t, "2020-03-01"), Value: 1},
		{Date: mustDate(t, "2020-03-02"), Value: 2},
	}
	fresh := Series{
		{Date: mustDate(t, "2020-03-02"), Value: 20},
		{Date: mustDate(t, "2020-03-03"), Value: 3},
	}

	got := Merge(old, fresh)
	assert.Equal(t, Series{
		{Date: mustDate(t, "2020-03-01"), Value: 1},
		{Date: mustDate(t, "2020-03-02"), Value: 20},
		{Date: mustDate(t, "2020-03-03"), Value: 3},
	}, got)
}

func TestLookupAndYear(t *testing.T) {
	s := Series{
		{Date: mustDate(t, "2020-12-31"), Value: 7},
		{Date: mustDate(t, "2021-01-01"), Value: 8},
		{Date: mustDate(t, "2021-12-31"), Value: 9},
		{Date: mustDate(t, "2022-01-01"), Value: 10},
	}

	v, ok := s.Lookup(mustDate(t, "2021-01-01"))
	assert.True(t, ok)
	assert.Equal(t, 8, v)

	_, ok = s.Lookup(mustDate(t, "2021-06-01"))
	assert.False(t, ok)

	year := s.Year(2021)
	require.Len(t, year, 2)
	assert.Equal(t, "2021-01-01", year[0].ISODate())
	assert.Equal(t, "2021-12-31", year[1].ISODate())

	assert.Len(t, s.Between(time.Time{}, mustDate(t, "2021-01-01")), 1)
	assert.Len(t, s.Between(mustDate(t, "2021-01-01"), time.Time{}), 3)
}

func TestValidate(t *testing.T) {
	ok := Series{
		{Date: mustDate(t, "2021-01-01"), Value: 0},
		{Date: mustDate(t, "2021-01-02"), Value: 1},
	}
	assert.NoError(t, ok.Validate())

	dup := Series{
		{Date: mustDate(t, "2021-01-01"), Value: 0},
		{Date: mustDate(t, "2021-01-01"), Value: 1},
	}
	assert.Error(t, dup.Validate())

	neg := Series{{Date: mustDate(t, "2021-01-01"), Value: -1}}
	assert.Error(t, neg.Validate())
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 366, DaysBetween(mustDate(t, "2020-01-01"), mustDate(t, "2021-01-01")))
	assert.Equal(t, 0, DaysBetween(mustDate(t, "2021-01-02"), mustDate(t, "2021-01-01")))

	var seen []string
	EachDay(mustDate(t, "2021-02-27"), mustDate(t, "2021-03-02"), func(d time.Time) {
		seen = append(seen, d.Format(time.DateOnly))
	})
	assert.Equal(t, []string{"2021-02-27", "2021-02-28", "2021-03-01"}, seen)
}
