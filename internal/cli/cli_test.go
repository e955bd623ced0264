package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/hospi-calendar/internal/config"
	"github.com/pfrederiksen/hospi-calendar/internal/series"
	"github.com/pfrederiksen/hospi-calendar/internal/storage"
)

const dashboardPage = `<html><body>
<script>
var chart = am4core.create("chartdiv", am4charts.XYChart);
chart.data.push([{date:'2021-05-09', hospi_phg:1190}]);
chart.data.push([{date:'2021-05-10', hospi_phg:1234}]);
</script></body></html>`

var fixedNow = time.Date(2021, time.May, 11, 9, 30, 0, 0, time.UTC)

// newDashboard serves the two dashboard endpoints and points the HOSPI_*
// URLs at them.
func newDashboard(t *testing.T, trendStatus int) *[]string {
	t.Helper()
	var posted []string

	mux := http.NewServeMux()
	mux.HandleFunc("/reviewHome", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "s1", Path: "/"})
		w.Write([]byte("<html>home</html>"))
	})
	mux.HandleFunc("/reviewStoryTrend", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("JSESSIONID"); err != nil {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		r.ParseForm()
		posted = append(posted, r.PostForm.Get("date"))
		w.WriteHeader(trendStatus)
		w.Write([]byte(dashboardPage))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	t.Setenv("HOSPI_HOME_URL", server.URL+"/reviewHome")
	t.Setenv("HOSPI_TREND_URL", server.URL+"/reviewStoryTrend")
	t.Setenv("HOSPI_START_DATE", "2021-05-08")
	return &posted
}

// runCLI executes the root command with a fixed clock and no env file.
func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	a := &app{v: config.NewViper(), now: func() time.Time { return fixedNow }}
	envFile := filepath.Join(t.TempDir(), "missing.env")
	args = append([]string{"--env-file", envFile}, args...)

	code := run(context.Background(), newRootCmd(a), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func day(s string) time.Time {
	d, err := series.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seed(t *testing.T, path string, points ...series.DateValue) {
	t.Helper()
	store, err := storage.New(path)
	require.NoError(t, err)
	_, err = store.Save(series.New(points), false)
	require.NoError(t, err)
}

func load(t *testing.T, path string) series.Series {
	t.Helper()
	store, err := storage.New(path)
	require.NoError(t, err)
	s, err := store.Load()
	require.NoError(t, err)
	return s
}

func TestScrape(t *testing.T) {
	posted := newDashboard(t, http.StatusOK)
	dataFile := filepath.Join(t.TempDir(), "data.csv")

	stdout, stderr, code := runCLI(t, "--data-file", dataFile, "--format", "json", "scrape")
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Equal(t, []string{"2021-05-10"}, *posted)

	var result ScrapeResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "2021-05-11", result.AsOf)
	assert.Equal(t, "2021-05-10", result.QueryDate)
	assert.Equal(t, series.BuildStats{Days: 3, Found: 2, Missing: 1}, result.Stats)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, "2021-05-09", result.FirstDate)
	assert.Equal(t, "2021-05-10", result.LastDate)
	assert.True(t, result.Merged)

	s := load(t, dataFile)
	assert.Equal(t, series.Series{
		{Date: day("2021-05-09"), Value: 1190},
		{Date: day("2021-05-10"), Value: 1234},
	}, s)
}

func TestScrapeAsOf(t *testing.T) {
	posted := newDashboard(t, http.StatusOK)
	dataFile := filepath.Join(t.TempDir(), "data.csv")

	_, stderr, code := runCLI(t, "--data-file", dataFile, "scrape", "--as-of", "2021-05-10")
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Equal(t, []string{"2021-05-09"}, *posted)
	assert.Equal(t, series.Series{{Date: day("2021-05-09"), Value: 1190}}, load(t, dataFile))
}

func TestScrapeMergeAndOverwrite(t *testing.T) {
	newDashboard(t, http.StatusOK)
	dataFile := filepath.Join(t.TempDir(), "data.csv")

	seed(t, dataFile,
		series.DateValue{Date: day("2021-05-01"), Value: 900},
		series.DateValue{Date: day("2021-05-09"), Value: 1},
	)

	_, stderr, code := runCLI(t, "--data-file", dataFile, "scrape")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, series.Series{
		{Date: day("2021-05-01"), Value: 900},
		{Date: day("2021-05-09"), Value: 1190},
		{Date: day("2021-05-10"), Value: 1234},
	}, load(t, dataFile))

	_, stderr, code = runCLI(t, "--data-file", dataFile, "scrape", "--overwrite")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, series.Series{
		{Date: day("2021-05-09"), Value: 1190},
		{Date: day("2021-05-10"), Value: 1234},
	}, load(t, dataFile))
}

func TestScrapeAcquisitionFailure(t *testing.T) {
	useZeroBackOff(t)
	posted := newDashboard(t, http.StatusInternalServerError)
	dataFile := filepath.Join(t.TempDir(), "data.csv")

	_, stderr, code := runCLI(t, "--data-file", dataFile, "scrape", "--retries", "2")

	assert.Equal(t, ExitAcquisition, code)
	assert.Contains(t, stderr, "Acquisition failed")
	assert.Len(t, *posted, 3)

	_, err := os.Stat(dataFile)
	assert.True(t, os.IsNotExist(err), "data file must not be written")
}

func TestScrapeKeepsExistingFileOnFailure(t *testing.T) {
	newDashboard(t, http.StatusServiceUnavailable)
	dataFile := filepath.Join(t.TempDir(), "data.csv")
	seed(t, dataFile, series.DateValue{Date: day("2021-05-01"), Value: 900})

	_, _, code := runCLI(t, "--data-file", dataFile, "scrape")

	assert.Equal(t, ExitAcquisition, code)
	assert.Equal(t, series.Series{{Date: day("2021-05-01"), Value: 900}}, load(t, dataFile))
}

func TestScrapeFormatDrift(t *testing.T) {
	newDashboard(t, http.StatusOK)
	t.Setenv("HOSPI_METRIC_KEY", "hospi_uci")
	dataFile := filepath.Join(t.TempDir(), "data.csv")

	stdout, stderr, code := runCLI(t, "--data-file", dataFile, "scrape")

	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, "format may have changed")
	assert.Contains(t, stdout, "Scanned 3 days: 0 found, 3 missing")
	assert.Empty(t, load(t, dataFile))
}

func TestUsageErrors(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "data.csv")

	tests := []struct {
		name string
		args []string
	}{
		{"invalid format", []string{"--format", "xml", "weekly"}},
		{"invalid log level", []string{"--log-level", "loud", "weekly"}},
		{"bad as-of", []string{"scrape", "--as-of", "11/05/2021"}},
		{"as-of before start", []string{"scrape", "--as-of", "2019-01-01"}},
		{"unknown command", []string{"plot"}},
		{"bad export extension", []string{"calendar", "--year", "2021", "--export", filepath.Join(t.TempDir(), "grid.png")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--data-file", dataFile}, tt.args...)
			_, stderr, code := runCLI(t, args...)
			assert.Equal(t, ExitError, code)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestCalendar(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "data.csv")
	seed(t, dataFile,
		series.DateValue{Date: day("2020-12-31"), Value: 50},
		series.DateValue{Date: day("2021-01-01"), Value: 100},
		series.DateValue{Date: day("2021-01-04"), Value: 400},
		series.DateValue{Date: day("2021-12-31"), Value: 2500},
	)
	exportPath := filepath.Join(dir, "grid.xlsx")

	stdout, stderr, code := runCLI(t, "--data-file", dataFile, "--format", "json",
		"calendar", "--year", "2021", "--export", exportPath)
	require.Equal(t, ExitSuccess, code, stderr)

	var result CalendarResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, 2021, result.Year)
	assert.Equal(t, 365, result.Days)
	assert.Equal(t, 3, result.Observed)
	assert.Equal(t, 53, result.Weeks)
	assert.Equal(t, float64(0), result.Scale.Min)
	assert.Equal(t, float64(2500), result.Scale.TrueMax)
	assert.Len(t, result.Scale.TickLabels, 7)
	require.Len(t, result.MonthStarts, 12)
	assert.Equal(t, 0, result.MonthStarts[0].WeekIndex)
	assert.Equal(t, 4, result.MonthStarts[0].WeekdayIndex)
	assert.Equal(t, exportPath, result.ExportPath)

	info, err := os.Stat(exportPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestCalendarDefaultsToCurrentYear(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "data.csv")

	stdout, stderr, code := runCLI(t, "--data-file", dataFile, "calendar", "--fill", "7")
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Contains(t, stdout, "2021: 365 days over 53 weeks, 0 with data (fill 7)")
	assert.Contains(t, stderr, "No data for year")
}

func TestWeekly(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "data.csv")
	var points []series.DateValue
	for i := 0; i < 7; i++ {
		points = append(points, series.DateValue{Date: day("2021-05-03").AddDate(0, 0, i), Value: 10 + i})
	}
	points = append(points,
		series.DateValue{Date: day("2021-05-10"), Value: 40},
		series.DateValue{Date: day("2021-05-24"), Value: 99},
	)
	seed(t, dataFile, points...)

	stdout, stderr, code := runCLI(t, "--data-file", dataFile, "--format", "json",
		"weekly", "--from", "2021-05-01", "--to", "2021-05-24")
	require.Equal(t, ExitSuccess, code, stderr)

	var result WeeklyResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Weeks, 2)

	assert.Equal(t, "2021-05-09", result.Weeks[0].ISODate)
	assert.InDelta(t, 13.0, result.Weeks[0].Mean, 1e-9)
	assert.Equal(t, 7, result.Weeks[0].Days)

	assert.Equal(t, "2021-05-16", result.Weeks[1].ISODate)
	assert.InDelta(t, 40.0, result.Weeks[1].Mean, 1e-9)
	assert.Equal(t, 1, result.Weeks[1].Days)
}

func TestWeeklyText(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "data.csv")

	stdout, stderr, code := runCLI(t, "--data-file", dataFile, "weekly")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "No data found.\n", stdout)
}
