package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/hospi-calendar/internal/calendar"
	"github.com/pfrederiksen/hospi-calendar/internal/series"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// textWriter is implemented by every command result
type textWriter interface {
	writeText(w io.Writer) error
}

// ScrapeResult summarizes a scrape run
type ScrapeResult struct {
	CheckedAt time.Time         `json:"checked_at"`
	AsOf      string            `json:"as_of"`
	QueryDate string            `json:"query_date"`
	Stats     series.BuildStats `json:"stats"`
	Fetched   int               `json:"fetched"`
	Rows      int               `json:"rows"`
	FirstDate string            `json:"first_date,omitempty"`
	LastDate  string            `json:"last_date,omitempty"`
	DataFile  string            `json:"data_file"`
	Merged    bool              `json:"merged"`
}

// CalendarResult summarizes a projected year
type CalendarResult struct {
	Year        int                    `json:"year"`
	Days        int                    `json:"days"`
	Observed    int                    `json:"observed"`
	Fill        int                    `json:"fill"`
	Weeks       int                    `json:"weeks"`
	Percentile  float64                `json:"percentile"`
	Scale       calendar.Scale         `json:"scale"`
	MonthStarts []calendar.MonthMarker `json:"month_starts"`
	ExportPath  string                 `json:"export_path,omitempty"`
}

// WeeklyResult lists weekly means
type WeeklyResult struct {
	Weeks []calendar.WeeklyPoint `json:"weeks"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result textWriter, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return result.writeText(w)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func (r *ScrapeResult) writeText(w io.Writer) error {
	fmt.Fprintf(w, "Queried dashboard for %s\n", r.QueryDate)
	fmt.Fprintf(w, "Scanned %d days: %d found, %d missing\n", r.Stats.Days, r.Stats.Found, r.Stats.Missing)

	mode := "overwritten"
	if r.Merged {
		mode = "merged"
	}
	fmt.Fprintf(w, "Saved %d rows to %s (%s)\n", r.Rows, r.DataFile, mode)
	if r.Rows > 0 {
		fmt.Fprintf(w, "Range: %s to %s\n", r.FirstDate, r.LastDate)
	}
	return nil
}

func (r *CalendarResult) writeText(w io.Writer) error {
	fmt.Fprintf(w, "%d: %d days over %d weeks, %d with data (fill %d)\n",
		r.Year, r.Days, r.Weeks, r.Observed, r.Fill)
	fmt.Fprintf(w, "Scale: min %s, max %s (p%g), true max %s\n",
		calendar.FormatTick(r.Scale.Min), calendar.FormatTick(r.Scale.Max),
		r.Percentile, calendar.FormatTick(r.Scale.TrueMax))
	fmt.Fprintf(w, "Ticks: %s\n", strings.Join(r.Scale.TickLabels, " | "))

	months := make([]string, 0, len(r.MonthStarts))
	for _, m := range r.MonthStarts {
		months = append(months, fmt.Sprintf("%s w%d/d%d", m.Label, m.WeekIndex, m.WeekdayIndex))
	}
	fmt.Fprintf(w, "Month starts: %s\n", strings.Join(months, ", "))

	if r.ExportPath != "" {
		fmt.Fprintf(w, "Exported to %s\n", r.ExportPath)
	}
	return nil
}

func (r *WeeklyResult) writeText(w io.Writer) error {
	if len(r.Weeks) == 0 {
		fmt.Fprintln(w, "No data found.")
		return nil
	}

	fmt.Fprintln(w, "Week ending   Mean      Days")
	for _, p := range r.Weeks {
		fmt.Fprintf(w, "%s    %-9.1f %d\n", p.ISODate, p.Mean, p.Days)
	}
	fmt.Fprintf(w, "\nTotal: %d weeks\n", len(r.Weeks))
	return nil
}
